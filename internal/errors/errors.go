// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrQuoteUnavailable  = errors.New("quote unavailable")
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrInputValidation   = errors.New("input validation failed")
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrDatabaseError     = errors.New("database error")
	ErrDataNotFound      = errors.New("data not found")
)

// QuoteError represents an error from the market-data provider.
type QuoteError struct {
	Ticker     string
	Operation  string
	StatusCode int
	Err        error
}

func (e *QuoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("quote error [%s] %s: status %d: %v", e.Ticker, e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("quote error [%s] %s: %v", e.Ticker, e.Operation, e.Err)
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

// NewQuoteError creates a new QuoteError.
func NewQuoteError(ticker, operation string, statusCode int, err error) *QuoteError {
	return &QuoteError{
		Ticker:     ticker,
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match any ValidationError against ErrInputValidation.
func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConfigError represents a missing or malformed configuration value.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %s", e.Key, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfigInvalid
}

// NewConfigError creates a new ConfigError.
func NewConfigError(key, message string) *ConfigError {
	return &ConfigError{
		Key:     key,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
