// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyProcessed = errors.New("already processed")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors.
	// ErrConflictRace is returned by ledger storage when a conditional insert
	// lost a race against a concurrent insert of the same award. The reward
	// service always retries it; it must never reach callers.
	ErrConflictRace = errors.New("conflicting concurrent write")

	// Infrastructure errors
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "user", "reward", "leaderboard"
	Op      string // Operation that failed, e.g., "Create", "Award"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound      = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists = NewDomainError("user", "Create", ErrAlreadyExists, "user already exists")
	ErrInvalidRole       = NewDomainError("user", "Validate", ErrInvalidInput, "invalid role")
	ErrInvalidCategory   = NewDomainError("user", "Validate", ErrInvalidInput, "invalid exam category")
	ErrProfileIncomplete = NewDomainError("user", "CheckProfile", ErrInvalidState, "profile is incomplete")
)

// Content domain errors
var (
	ErrCourseNotFound   = NewDomainError("content", "FindCourse", ErrNotFound, "course not found")
	ErrUnitNotFound     = NewDomainError("content", "FindUnit", ErrNotFound, "unit not found")
	ErrPageNotFound     = NewDomainError("content", "FindPage", ErrNotFound, "page not found")
	ErrQuizNotFound     = NewDomainError("content", "FindQuiz", ErrNotFound, "quiz not found")
	ErrResourceNotFound = NewDomainError("content", "FindResource", ErrNotFound, "resource not found")
	ErrFolderNotFound   = NewDomainError("content", "FindFolder", ErrNotFound, "resource folder not found")
	ErrUnitUnpublished  = NewDomainError("content", "CheckPublished", ErrInvalidState, "unit is not published")
)

// Access domain errors
var (
	ErrAccessDenied = NewDomainError("access", "CanAccess", ErrForbidden, "access denied")
)

// Reward domain errors
var (
	ErrAnswerCountMismatch = NewDomainError("reward", "Score", ErrInvalidInput, "answers do not match question count")
	ErrEmptyQuiz           = NewDomainError("reward", "Score", ErrInvalidInput, "quiz has no questions")
	ErrLedgerConflict      = NewDomainError("reward", "Award", ErrConflictRace, "ledger insert lost a race")
)

// Leaderboard domain errors
var (
	ErrLeaderboardNotFound = NewDomainError("leaderboard", "Find", ErrNotFound, "leaderboard bucket not found")
	ErrInvalidTimeframe    = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "invalid timeframe")
	ErrInvalidSubject      = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "invalid subject")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsForbidden checks if the error is an authorization denial. Forbidden stays
// distinguishable from NotFound inside the core; masking one as the other is
// an interface-layer policy.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsConflictRace checks if the error is a lost ledger race.
func IsConflictRace(err error) bool {
	return errors.Is(err, ErrConflictRace)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConflictRace)
}
