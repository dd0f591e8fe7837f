// Package errors defines common error types and utilities used throughout the application
package errors

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Host classification errors
	ErrProbeInconclusive = errors.New("host probe was inconclusive")
	ErrHostExcluded      = errors.New("host is on the exclusion list")

	// Pagination errors
	ErrSourceFetchFailed = errors.New("source fetch failed before any item was returned")
	ErrUnknownFetchMode  = errors.New("unknown fetch mode")

	// Conversation errors
	ErrNoPullRequest = errors.New("pull request reference is empty")

	// Git errors
	ErrGitCommand     = errors.New("git command failed")
	ErrBranchNotFound = errors.New("branch not found")
	ErrRemoteNotFound = errors.New("remote not found")
	ErrNoAssociation  = errors.New("branch has no pull request association")

	// Forge errors
	ErrPRNotFound       = errors.New("pull request not found")
	ErrNotAuthenticated = errors.New("forge client is not authenticated")

	// Test errors (only used in tests)
	ErrTest = errors.New("test error")
)

// Error templates for static error definitions (satisfies err113 linter)
var (
	errInvalidFieldTemplate  = errors.New("invalid field")
	errEmptyFieldTemplate    = errors.New("field cannot be empty")
	errRequiredFieldTemplate = errors.New("field is required")
	errInvalidFormatTemplate = errors.New("invalid format")
	errValidationTemplate    = errors.New("validation failed")
)

// WrapWithContext wraps an error with operation context using consistent formatting.
// This replaces manual fmt.Errorf("failed to %s: %w", operation, err) patterns.
func WrapWithContext(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// InvalidFieldError creates a standardized invalid field error.
func InvalidFieldError(field, value string) error {
	return fmt.Errorf("%w: %s: %s", errInvalidFieldTemplate, field, value)
}

// EmptyFieldError creates a standardized empty field validation error.
func EmptyFieldError(field string) error {
	return fmt.Errorf("%w: %s", errEmptyFieldTemplate, field)
}

// RequiredFieldError creates a standardized required field error.
func RequiredFieldError(field string) error {
	return fmt.Errorf("%w: %s", errRequiredFieldTemplate, field)
}

// FormatError creates a standardized format validation error.
func FormatError(field, value, expectedFormat string) error {
	return fmt.Errorf("%w: %s '%s': expected %s", errInvalidFormatTemplate, field, value, expectedFormat)
}

// ValidationError creates a standardized validation error.
func ValidationError(item, reason string) error {
	return fmt.Errorf("%w for %s: %s", errValidationTemplate, item, reason)
}
