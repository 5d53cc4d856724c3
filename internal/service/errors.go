package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saurab2057/Filetool/internal/cloudconvert"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidOrExpired = errors.New("credential is invalid or expired")
	ErrRevoked          = errors.New("session has been revoked")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")

	// ErrNoOutputProduced is returned when a finished vendor job exported nothing.
	ErrNoOutputProduced = cloudconvert.ErrNoOutput
)

// PublicError attaches a client-facing message to one of the sentinel errors above.
type PublicError struct {
	Kind    error
	Message string
}

func (e *PublicError) Error() string { return e.Kind.Error() + ": " + e.Message }
func (e *PublicError) Unwrap() error { return e.Kind }

func publicError(kind error, message string) error {
	return &PublicError{Kind: kind, Message: message}
}

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError lists every invalid input field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Msg: msg})
}

// Err returns e when at least one field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalidField(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Msg: msg}}}
}

// UnsupportedConversionError is returned before any vendor call for pairs
// outside the recipe table.
type UnsupportedConversionError struct {
	From string
	To   string
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("unsupported conversion from .%s to .%s", e.From, e.To)
}

// VendorError wraps failures reported by the conversion vendor.
type VendorError struct {
	Err error
}

func (e *VendorError) Error() string { return "conversion vendor: " + e.Err.Error() }
func (e *VendorError) Unwrap() error { return e.Err }
