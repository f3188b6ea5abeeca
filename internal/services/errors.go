package services

import (
	"errors"
	"fmt"

	apperrors "github.com/CityQuest-2025/quest-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Session / participant errors
	ErrSessionNotFound         = errors.New("session not found")
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrParticipantExists       = errors.New("username already exists")
	ErrRegistrationDisabled    = errors.New("registration disabled; contact an administrator")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrNoParticipantForSession = errors.New("no participant associated with this submission")

	// Question / code errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrQRCodeExists     = errors.New("code already exists")
	ErrCodeWordExists   = errors.New("word already exists")
	ErrCodeWordNotFound = errors.New("code word not found")

	// Submission errors
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("task already submitted")
	ErrAlreadyRated       = errors.New("submission already rated")
	ErrInvalidFileType    = errors.New("invalid file type")
	ErrFileTooLarge       = errors.New("file too large")

	// Admin errors
	ErrAdminNotFound = errors.New("admin user not found")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ConflictError reports a state conflict (already scanned, already used,
// duplicate). Repeating the call yields the same conflict without mutation.
type ConflictError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", ce.Resource, ce.Message)
}

func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}
