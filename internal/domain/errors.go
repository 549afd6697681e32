package domain

import "errors"

var ErrAccountNotFound = errors.New("Account not found")
var ErrInsufficientFunds = errors.New("Insufficient funds")
var ErrInvalidAmount = errors.New("Amount must be greater than zero")
var ErrSameAccountTransfer = errors.New("Cannot transfer to the same account")
var ErrConcurrentModification = errors.New("Concurrent modification, safe to retry")
var ErrCacheUnavailable = errors.New("Cache unavailable")
var ErrStoreUnavailable = errors.New("Store unavailable")
