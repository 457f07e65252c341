package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateStudentID = errors.New("student id already exists")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrNotFound           = errors.New("not found")
	ErrExpired            = errors.New("expired")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrStateConflict      = errors.New("state conflict")
)

// IsDuplicate — обе коллизии уникальности (DuplicateEntity).
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateStudentID)
}

// Error — ошибка с коротким сообщением для клиента; Kind — одна из Err* выше.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
