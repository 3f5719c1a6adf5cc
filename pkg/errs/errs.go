package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the transport layer can pick a status code.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// FieldError is one field-level violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the error type returned by validators and stores.
type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d problems, first: %s: %s)", e.Message, len(e.Details), e.Details[0].Field, e.Details[0].Message)
}

// NotFound 资源不存在
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation 输入校验失败，可携带字段级明细
func Validation(message string, details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Conflict 唯一性冲突
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }

// Collector accumulates field errors across a validation pass.
type Collector struct {
	details []FieldError
}

func (c *Collector) Add(field, format string, args ...interface{}) {
	c.details = append(c.details, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *Collector) Len() int { return len(c.details) }

// Err returns nil when nothing was collected, otherwise a single validation error
// carrying every collected detail in insertion order.
func (c *Collector) Err(message string) error {
	if len(c.details) == 0 {
		return nil
	}
	details := make([]FieldError, len(c.details))
	copy(details, c.details)
	return Validation(message, details...)
}
