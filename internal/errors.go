package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeRequiredField    ErrorCode = "REQUIRED_FIELD"
	ErrCodeInvalidWeight    ErrorCode = "INVALID_WEIGHT"
	ErrCodeInvalidTable     ErrorCode = "INVALID_TABLE"
	ErrCodeInvalidIntent    ErrorCode = "INVALID_INTENT"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"

	ErrCodeSimulationNotFound ErrorCode = "SIMULATION_NOT_FOUND"
	ErrCodeJobNotFound        ErrorCode = "JOB_NOT_FOUND"
	ErrCodeExperienceNotFound ErrorCode = "EXPERIENCE_NOT_FOUND"
	ErrCodeSeniorityNotFound  ErrorCode = "SENIORITY_NOT_FOUND"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodePageNotFound       ErrorCode = "PAGE_NOT_FOUND"

	ErrCodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken             ErrorCode = "EMAIL_TAKEN"
	ErrCodeAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"
	ErrCodeSettingsForbidden      ErrorCode = "SETTINGS_FORBIDDEN"
)

// FieldCommon is the field key used for errors that do not belong to a
// specific form input.
const FieldCommon = "common"

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Field      string      `json:"field,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// FieldErrors flattens the error into the form-error map rendered next to
// inputs. The first message per field wins.
func (e *AppError) FieldErrors() map[string]string {
	out := make(map[string]string)
	if validationErrors, ok := e.Details.(ValidationErrors); ok {
		for _, ve := range validationErrors.Errors {
			if _, exists := out[ve.Field]; !exists {
				out[ve.Field] = ve.Message
			}
		}
	}
	if len(out) == 0 {
		field := e.Field
		if field == "" {
			field = FieldCommon
		}
		out[field] = e.Message
	}
	return out
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// WithField returns a copy of the error attached to a form field.
func (e *AppError) WithField(field string) *AppError {
	cp := *e
	cp.Field = field
	return &cp
}

// Is matches AppErrors by type and code so sentinel values survive copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewJobNotFoundError(id int64) *AppError {
	return NewNotFoundError(fmt.Sprintf("Job %d not found", id), ErrCodeJobNotFound)
}

func NewExperienceNotFoundError(id int64) *AppError {
	return NewNotFoundError(fmt.Sprintf("Experience %d not found", id), ErrCodeExperienceNotFound)
}

func NewSeniorityNotFoundError(id int64) *AppError {
	return NewNotFoundError(fmt.Sprintf("Seniority %d not found", id), ErrCodeSeniorityNotFound)
}

func NewInvalidIntentError(intent string) *AppError {
	return NewValidationError(fmt.Sprintf("Unknown intent %q", intent), ErrCodeInvalidIntent)
}

var (
	ErrSimulationNotFound = NewNotFoundError("Simulation not found", ErrCodeSimulationNotFound)
	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrPageNotFound       = NewNotFoundError("Page not found", ErrCodePageNotFound)

	ErrInvalidCredentials     = NewValidationError("Invalid email or password", ErrCodeInvalidCredentials).WithField("email")
	ErrEmailTaken             = NewValidationError("A user already exists with this email", ErrCodeEmailTaken).WithField("email")
	ErrAuthenticationRequired = NewUnauthorizedError("Authentication required", ErrCodeAuthenticationRequired)
	ErrSettingsForbidden      = NewForbiddenError("You are not allowed to edit the settings", ErrCodeSettingsForbidden)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Field   string      `json:"field,omitempty"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Field:   e.Field,
		Details: e.Details,
	})
}
