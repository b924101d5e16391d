package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors, one per error kind in the error-handling design. Handlers
// map these to HTTP statuses via StatusCode; nothing below this package
// should construct an http.Status directly.
var (
	// ErrInvalidRequest covers missing/malformed token IDs or amounts.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoRoute is returned when no direct pool and no multi-hop path connects the tokens.
	ErrNoRoute = errors.New("no route between the given tokens")
	// ErrPoolStateUnavailable is returned when every candidate pool failed to read.
	ErrPoolStateUnavailable = errors.New("pool state unavailable for all candidate pools")
	// ErrBuildFailed marks a quote whose transaction group could not be assembled.
	// Per the error-handling design this degrades gracefully: callers should
	// still return the quote with an empty transaction list rather than fail
	// the request.
	ErrBuildFailed = errors.New("failed to build transaction group")
	// ErrInternal covers invariant violations that should never happen.
	ErrInternal = errors.New("internal error")
)

// ResponseError is the JSON body returned alongside a non-2xx status.
type ResponseError struct {
	Message string `json:"message"`
}

// StatusCode maps an error to the HTTP status the error-handling design
// assigns to its kind. Errors that don't match a known kind map to 500,
// mirroring ErrInternal's "generic message" handling.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoRoute):
		return http.StatusBadRequest
	case errors.Is(err, ErrPoolStateUnavailable):
		return http.StatusInternalServerError
	case errors.Is(err, ErrBuildFailed):
		// BuildFailed degrades gracefully at the usecase layer (the quote
		// is still returned with a 200 and an empty transaction list); a
		// handler only reaches this branch if it chose to surface the
		// error directly instead.
		return http.StatusOK
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// PoolNotFoundError is returned when a referenced pool ID is absent from
// the catalog.
type PoolNotFoundError struct {
	PoolId TokenId
}

func (e PoolNotFoundError) Error() string {
	return fmt.Sprintf("pool %d not found", e.PoolId)
}

func (e PoolNotFoundError) Unwrap() error { return ErrInvalidRequest }

// TokenNotFoundError is returned when a referenced token ID is absent from
// the catalog.
type TokenNotFoundError struct {
	TokenId TokenId
}

func (e TokenNotFoundError) Error() string {
	return fmt.Sprintf("token %d not found", e.TokenId)
}

func (e TokenNotFoundError) Unwrap() error { return ErrInvalidRequest }

// SameTokenError is returned when the input and output token of a quote
// request are identical.
type SameTokenError struct {
	TokenId TokenId
}

func (e SameTokenError) Error() string {
	return fmt.Sprintf("input and output token are both %d", e.TokenId)
}

func (e SameTokenError) Unwrap() error { return ErrInvalidRequest }

// UnsupportedDexError is returned for a PoolConfig.Dex the adapter registry
// does not recognize.
type UnsupportedDexError struct {
	Dex Dex
}

func (e UnsupportedDexError) Error() string {
	return fmt.Sprintf("unsupported dex %q", e.Dex)
}

func (e UnsupportedDexError) Unwrap() error { return ErrInternal }
