package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateName      = errors.New("category with this name already exists")
	ErrNotFound           = errors.New("not found")
	ErrDisabled           = errors.New("account is disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternal           = errors.New("internal error")
	ErrCategoryInUse      = errors.New("category is referenced by products")
	ErrInvalidToken       = errors.New("invalid token")
)

// FieldError describes one rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field errors; it matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil returns nil when no field was rejected.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalidField(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// notFound keeps the store sentinel reachable through errors.Is.
func notFound(err error) error {
	return fmt.Errorf("%w: %w", ErrNotFound, err)
}

// internal logs the underlying fault and hides it from the caller.
func internal(logger *zap.Logger, op string, err error) error {
	logger.Error("Operation failed", zap.String("op", op), zap.Error(err))
	return ErrInternal
}
