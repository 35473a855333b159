package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSection      = errors.New("unknown section")
	ErrEmptySection        = errors.New("section must contain at least one entry")
	ErrSectionType         = errors.New("value does not match section type")
	ErrInvalidEntryID      = errors.New("entry id must be non-empty and unique")
	ErrUnknownTemplate     = errors.New("unknown template")
	ErrUnknownField        = errors.New("unknown field")
	ErrEndDateWhileOngoing = errors.New("end date set on ongoing entry")
	ErrIndexOutOfRange     = errors.New("entry index out of range")
)

// ValidationError is a rejected change. The prior state is always kept.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
