// Package commons holds the response envelope every HTTP handler returns.
package commons

// Response is the uniform JSON envelope for the wallet API. Data is a
// pointer so error responses omit the field instead of serializing a zero
// value.
type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

// ErrorResponse carries the client-facing message plus optional detail lines;
// detail is surfaced verbatim, so callers pass sanitized strings only.
func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}
