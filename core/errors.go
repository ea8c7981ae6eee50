package core

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every error produced by this module matches exactly one of them
// with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidResponse = errors.New("invalid response")
	ErrRequestFailed   = errors.New("server request failed")
)

var (
	ErrInvalidMemoID        = &ValidationError{Reason: "memo ID must be a non-negative integer"}
	ErrClientDomainWithMemo = &ValidationError{Reason: "client domain cannot be used with memo"}
	ErrTokenExpired         = &ValidationError{Reason: "auth token has already expired"}
	ErrNoWalletSigner       = &ValidationError{Reason: "no wallet signer configured"}
)

var (
	ErrMissingTransaction     = &InvalidResponseError{Reason: "the response did not contain a transaction"}
	ErrNetworkMismatch        = &InvalidResponseError{Reason: "networks don't match"}
	ErrMissingToken           = &InvalidResponseError{Reason: "token was not returned"}
	ErrMalformedResponse      = &InvalidResponseError{Reason: "malformed response body"}
	ErrMalformedToken         = &InvalidResponseError{Reason: "malformed token"}
	ErrMalformedTransaction   = &InvalidResponseError{Reason: "malformed challenge transaction"}
	ErrMissingWebAuthEndpoint = &InvalidResponseError{Reason: "stellar.toml does not contain WEB_AUTH_ENDPOINT"}
)

// ErrTokenNotFound is returned by token stores on a cache miss
var ErrTokenNotFound = errors.New("token not found")

// ValidationError is caused by caller input or by a token that can no longer be used
type ValidationError struct {
	Reason    string
	ExpiresAt time.Time // Set for expired tokens
}

func (e *ValidationError) Error() string {
	if !e.ExpiresAt.IsZero() {
		return fmt.Sprintf("%s: expiration time: %s", e.Reason, e.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

// InvalidResponseError is caused by a server reply that breaks the protocol contract
type InvalidResponseError struct {
	Reason   string
	Expected string
	Actual   string
	Err      error
}

func (e *InvalidResponseError) Error() string {
	msg := e.Reason
	if e.Expected != "" || e.Actual != "" {
		msg = fmt.Sprintf("%s: expected %q, got %q", msg, e.Expected, e.Actual)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}

func (e *InvalidResponseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	t, ok := target.(*InvalidResponseError)
	return ok && t.Reason == e.Reason
}

// RequestFailedError is returned when an HTTP exchange could not be completed
// or the server answered with a non-success status
type RequestFailedError struct {
	Op         string
	URL        string
	StatusCode int
	Message    string // Server supplied "error" field, if any
	Err        error
}

func (e *RequestFailedError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Op, e.URL)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s with status %d", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// NewNetworkMismatchError reports a challenge built for another network
func NewNetworkMismatchError(expected, actual string) error {
	return &InvalidResponseError{Reason: ErrNetworkMismatch.Reason, Expected: expected, Actual: actual}
}

// NewTokenExpiredError reports a token whose expiry is not in the future
func NewTokenExpiredError(expiresAt time.Time) error {
	return &ValidationError{Reason: ErrTokenExpired.Reason, ExpiresAt: expiresAt}
}

// Malformed wraps a decoding failure into one of the malformed response errors
func Malformed(kind *InvalidResponseError, err error) error {
	return &InvalidResponseError{Reason: kind.Reason, Err: err}
}
