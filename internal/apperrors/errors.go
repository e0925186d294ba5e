package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that a trade would drive the account cash balance negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInsufficientShares indicates that a sale exceeds the shares currently held.
var ErrInsufficientShares = errors.New("insufficient shares")

// ErrUnknownSymbol indicates the quote provider has no such ticker.
var ErrUnknownSymbol = errors.New("unknown symbol")

// ErrQuoteUnavailable indicates the quote provider was reachable but failed, or timed out.
var ErrQuoteUnavailable = errors.New("quote unavailable")
