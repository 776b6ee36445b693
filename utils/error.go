package utils

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorDuplicateKey is returned when an insert or key-changing update collides with an
// existing key. Callers may retry when the key was generated.
var ErrorDuplicateKey = errors.New("duplicate key")

// ErrorCodeSequenceExhausted is returned once a four digit code series passes 9999.
var ErrorCodeSequenceExhausted = errors.New("code sequence exhausted")

// ValidationError names the first offending field. Fields lists every failed field when a
// struct had more than one violation.
type ValidationError struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field string, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date %q", e.Value)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// DuplicateKeyError wraps ErrorDuplicateKey with what collided.
func DuplicateKeyError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorDuplicateKey, fmt.Sprintf(format, args...))
}

// TranslateError maps gorm's driver-neutral errors onto our taxonomy.
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrorDuplicateKey, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorRecordNotFound
	}
	return err
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsDateParseError(err error) bool {
	var de *DateParseError
	return errors.As(err, &de)
}
