package service

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrClientNotFound     = errors.New("client not found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

// Field names reported by ValidationError.
const (
	FieldName        = "name"
	FieldTaxID       = "tax_id"
	FieldCredentials = "credentials"
)

// Messages reported by ValidationError.
const (
	MsgNameRequired   = "name is required"
	MsgTaxIDRequired  = "tax_id is required"
	MsgTaxIDMalformed = "tax_id must match format NN-NNNNNNNN-N"
	MsgTaxIDInUse     = "a client with this tax_id already exists"
)

// ValidationError lists every rejected field of a write, one message each.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, field := range slices.Sorted(maps.Keys(e.Fields)) {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field + ": " + e.Fields[field])
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// add keeps the first message per field.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func taxIDInUse() *ValidationError {
	return &ValidationError{Fields: map[string]string{FieldTaxID: MsgTaxIDInUse}}
}

// NotFoundError reports an operation on an id that does not exist. It
// matches ErrClientNotFound under errors.Is.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return "client " + e.ID + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrClientNotFound }
