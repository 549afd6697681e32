package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newAuthedHandler(t *testing.T, channelID, channelKey string) http.Handler {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(channelKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash channel key: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return BasicAuth(channelID, string(hash))(next)
}

func TestBasicAuthAcceptsValidCredentials(t *testing.T) {
	handler := newAuthedHandler(t, "channel-1", "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/wallets/balance", nil)
	req.SetBasicAuth("channel-1", "s3cret")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBasicAuthRejectsWrongKey(t *testing.T) {
	handler := newAuthedHandler(t, "channel-1", "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/wallets/balance", nil)
	req.SetBasicAuth("channel-1", "wrong")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBasicAuthRejectsWrongChannel(t *testing.T) {
	handler := newAuthedHandler(t, "channel-1", "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/wallets/balance", nil)
	req.SetBasicAuth("channel-2", "s3cret")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBasicAuthRejectsMissingHeader(t *testing.T) {
	handler := newAuthedHandler(t, "channel-1", "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/wallets/balance", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBasicAuthFailsClosedWithoutServerConfig(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := BasicAuth("", "")(next)

	req := httptest.NewRequest(http.MethodGet, "/wallets/balance", nil)
	req.SetBasicAuth("channel-1", "s3cret")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
