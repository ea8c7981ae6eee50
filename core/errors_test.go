package core

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"invalid memo", ErrInvalidMemoID, ErrValidation},
		{"client domain with memo", ErrClientDomainWithMemo, ErrValidation},
		{"expired", NewTokenExpiredError(time.Now()), ErrValidation},
		{"missing transaction", ErrMissingTransaction, ErrInvalidResponse},
		{"network mismatch", NewNetworkMismatchError("a", "b"), ErrInvalidResponse},
		{"missing token", ErrMissingToken, ErrInvalidResponse},
		{"malformed token", Malformed(ErrMalformedToken, io.EOF), ErrInvalidResponse},
		{"request failed", &RequestFailedError{Op: "GET", URL: "http://x"}, ErrRequestFailed},
	}

	kinds := []error{ErrValidation, ErrInvalidResponse, ErrRequestFailed}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range kinds {
				assert.Equal(t, k == tt.kind, errors.Is(tt.err, k), "kind %v", k)
			}
		})
	}
}

func TestErrorIdentitySurvivesDetails(t *testing.T) {
	err := fmt.Errorf("exchange: %w", NewNetworkMismatchError("Test SDF Network ; September 2015", "Public Global Stellar Network ; September 2015"))
	assert.ErrorIs(t, err, ErrNetworkMismatch)
	assert.NotErrorIs(t, err, ErrMissingTransaction)

	var ire *InvalidResponseError
	if assert.ErrorAs(t, err, &ire) {
		assert.Equal(t, "Test SDF Network ; September 2015", ire.Expected)
		assert.Equal(t, "Public Global Stellar Network ; September 2015", ire.Actual)
	}
}

func TestTokenExpiredCarriesExpiry(t *testing.T) {
	exp := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	err := NewTokenExpiredError(exp)

	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Contains(t, err.Error(), "2020-01-02T03:04:05Z")

	var ve *ValidationError
	if assert.ErrorAs(t, err, &ve) {
		assert.Equal(t, exp, ve.ExpiresAt)
	}
}

func TestRequestFailedUnwrap(t *testing.T) {
	err := &RequestFailedError{Op: "POST", URL: "http://anchor/auth", StatusCode: 400, Message: "bad", Err: io.ErrUnexpectedEOF}
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "POST http://anchor/auth failed with status 400: bad: unexpected EOF", err.Error())
}

func TestAuthTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, AuthToken{ExpiresAt: now}.Expired(now))
	assert.True(t, AuthToken{ExpiresAt: now.Add(-time.Second)}.Expired(now))
	assert.False(t, AuthToken{ExpiresAt: now.Add(time.Second)}.Expired(now))
}
