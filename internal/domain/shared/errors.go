// Package shared holds the error kinds every domain package reports through.
// It has no external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidFormat = errors.New("invalid format")
	ErrEmptyValue    = errors.New("value cannot be empty")
)

// DomainError is a failure raised while applying a depth chart command.
type DomainError struct {
	Domain  string // "depthchart", "position", "interpreter"
	Op      string
	Kind    error
	Message string
	Err     error
}

// Error renders only the message and cause; the text is echoed verbatim
// after "Error processing message: ".
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches another DomainError by origin and kind, so a Detail copy
// still matches its template.
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Domain == t.Domain && e.Op == t.Op && e.Kind == t.Kind
	}
	return errors.Is(e.Kind, target) || (e.Err != nil && errors.Is(e.Err, target))
}

// Templates. Concrete failures are built with Detail so the message names
// the offending input.
var (
	ErrUnknownPlayer    = &DomainError{Domain: "depthchart", Op: "AddPosition", Kind: ErrNotFound, Message: "player does not exist"}
	ErrUnknownPosition  = &DomainError{Domain: "position", Op: "Parse", Kind: ErrInvalidInput, Message: "unknown position"}
	ErrMalformedPayload = &DomainError{Domain: "interpreter", Op: "Decode", Kind: ErrInvalidFormat, Message: "malformed payload"}
	ErrMissingField     = &DomainError{Domain: "interpreter", Op: "Decode", Kind: ErrEmptyValue, Message: "required field missing"}
)

// Detail copies template with a more specific message.
func Detail(template *DomainError, message string) *DomainError {
	return &DomainError{
		Domain:  template.Domain,
		Op:      template.Op,
		Kind:    template.Kind,
		Message: message,
	}
}

// DetailWrap is Detail with a cause attached.
func DetailWrap(template *DomainError, message string, err error) *DomainError {
	d := Detail(template, message)
	d.Err = err
	return d
}

// IsNotFound reports whether err refers to a player or position that does
// not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err came from bad command input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrEmptyValue)
}
