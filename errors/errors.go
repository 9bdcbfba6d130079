// Package errors provides an API for errors across the application.
package errors

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/flow-hydraulics/nft-wallet-api/nft"
)

// RequestError is an error which should be shown to the API caller with
// the given HTTP status code.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func BadRequest(err error) error {
	return &RequestError{StatusCode: http.StatusBadRequest, Err: err}
}

func NotFound(err error) error {
	return &RequestError{StatusCode: http.StatusNotFound, Err: err}
}

func Conflict(err error) error {
	return &RequestError{StatusCode: http.StatusConflict, Err: err}
}

// AsRequestError converts known domain errors to a RequestError.
// Returns nil if err should not be exposed to the caller.
func AsRequestError(err error) *RequestError {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}

	var fieldErr *nft.FieldError
	if errors.As(err, &fieldErr) {
		return &RequestError{StatusCode: http.StatusBadRequest, Err: fieldErr}
	}

	return nil
}

// IsConnectionError reports whether err looks like the wallet daemon
// could not be reached or did not answer in time.
func IsConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
