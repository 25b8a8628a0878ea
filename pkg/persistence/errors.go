package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrCaseNotFound indicates a case was not found by the given identifier.
	ErrCaseNotFound = errors.New("case not found")

	// ErrCaseAlreadyExists indicates a case with the same identifier already exists.
	ErrCaseAlreadyExists = errors.New("case already exists")

	// ErrCaregiverNotFound indicates a caregiver was not found by the given identifier.
	ErrCaregiverNotFound = errors.New("caregiver not found")

	// ErrAssignmentNotFound indicates an assignment was not found by the given identifier.
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// CaseError wraps case-related errors with additional context.
type CaseError struct {
	Op      string // Operation being performed (e.g., "GetByID", "Save", "Update")
	CaseID  string // Case ID if applicable
	Err     error  // Underlying error
	Message string // Additional context message
}

func (e *CaseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for case %s: %s (%v)", e.Op, e.CaseID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for case %s: %v", e.Op, e.CaseID, e.Err)
}

func (e *CaseError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for case errors.
func (e *CaseError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewCaseError creates a new case error with context.
func NewCaseError(op, caseID string, err error) *CaseError {
	return &CaseError{
		Op:     op,
		CaseID: caseID,
		Err:    err,
	}
}

// JourneyError wraps journey-log errors with additional context.
type JourneyError struct {
	Op     string
	CaseID string
	Stage  string
	Err    error
}

func (e *JourneyError) Error() string {
	return fmt.Sprintf("%s operation failed for journey stage %s of case %s: %v", e.Op, e.Stage, e.CaseID, e.Err)
}

func (e *JourneyError) Unwrap() error {
	return e.Err
}

func (e *JourneyError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsCaseNotFound checks if an error indicates a case was not found.
func IsCaseNotFound(err error) bool {
	return errors.Is(err, ErrCaseNotFound)
}

// IsCaregiverNotFound checks if an error indicates a caregiver was not found.
func IsCaregiverNotFound(err error) bool {
	return errors.Is(err, ErrCaregiverNotFound)
}

// IsAssignmentNotFound checks if an error indicates an assignment was not found.
func IsAssignmentNotFound(err error) bool {
	return errors.Is(err, ErrAssignmentNotFound)
}
