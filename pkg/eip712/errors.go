package eip712

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDomain is returned when a domain cannot be built from its fields.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrUnsupportedFieldType is returned when a schema declares a type the encoder does not implement.
	ErrUnsupportedFieldType = errors.New("unsupported field type")

	// ErrFieldMismatch is returned when a message and its schema disagree.
	ErrFieldMismatch = errors.New("field mismatch")
)

// UnsupportedFieldTypeError names the offending field and its declared type.
type UnsupportedFieldTypeError struct {
	StructType string
	Field      string
	Type       string
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("%s: %s.%s has type %q", ErrUnsupportedFieldType, e.StructType, e.Field, e.Type)
}

func (e *UnsupportedFieldTypeError) Is(target error) bool {
	return target == ErrUnsupportedFieldType
}

// FieldMismatchError describes why a message does not conform to its schema.
type FieldMismatchError struct {
	StructType string
	Missing    []string
	Extra      []string

	// Field and Reason are set when a declared field carries a value that
	// cannot be encoded as the declared type.
	Field  string
	Reason string
}

func (e *FieldMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s", strings.Join(e.Missing, ",")))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("undeclared %s", strings.Join(e.Extra, ",")))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Reason))
	}
	return fmt.Sprintf("%s in %s: %s", ErrFieldMismatch, e.StructType, strings.Join(parts, "; "))
}

func (e *FieldMismatchError) Is(target error) bool {
	return target == ErrFieldMismatch
}

// InvalidDomainError carries the domain field that failed the shape check.
type InvalidDomainError struct {
	Field  string
	Reason string
}

func (e *InvalidDomainError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidDomain, e.Field, e.Reason)
}

func (e *InvalidDomainError) Is(target error) bool {
	return target == ErrInvalidDomain
}
