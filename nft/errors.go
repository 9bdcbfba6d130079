package nft

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidNftId   = errors.New("invalid nft id")
	ErrMissingField   = errors.New("missing field")
)

const (
	FieldAddress = "address"
	FieldNftId   = "nftId"
)

// FieldError tells which request field was rejected and why.
// It unwraps to one of the package's sentinel errors.
type FieldError struct {
	Field  string
	Value  string
	Err    error
	Reason string
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Field)
	}
	return fmt.Sprintf("%s: %s %q: %s", e.Err, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func missing(field string) *FieldError {
	return &FieldError{Field: field, Err: ErrMissingField}
}
