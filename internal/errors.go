package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrorTypeConflict          ErrorType = "CONFLICT"
	ErrorTypeInvalidTransition ErrorType = "INVALID_TRANSITION"
	ErrorTypeStore             ErrorType = "STORE_FAILURE"
	ErrorTypeRateLimited       ErrorType = "RATE_LIMITED"
	ErrorTypeUnavailable       ErrorType = "UNAVAILABLE"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidTime      ErrorCode = "INVALID_TIME"
	ErrCodeInvalidFile      ErrorCode = "INVALID_FILE"

	ErrCodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmployeeNotFound ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeScheduleNotFound ErrorCode = "SCHEDULE_NOT_FOUND"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeShiftNotFound    ErrorCode = "SHIFT_NOT_FOUND"

	ErrCodeDuplicateShift ErrorCode = "DUPLICATE_SHIFT"

	ErrCodeEmailTaken ErrorCode = "EMAIL_TAKEN"

	ErrCodeScheduleLocked       ErrorCode = "SCHEDULE_LOCKED"
	ErrCodeScheduleEmpty        ErrorCode = "SCHEDULE_EMPTY"
	ErrCodeInvalidStatus        ErrorCode = "INVALID_STATUS"
	ErrCodeGenerationInProgress ErrorCode = "GENERATION_IN_PROGRESS"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAuthRequired       ErrorCode = "AUTH_REQUIRED"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"

	ErrCodeStoreFailure ErrorCode = "STORE_FAILURE"
	ErrCodeShuttingDown ErrorCode = "SHUTTING_DOWN"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
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

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError by code, so sentinel values work with errors.Is
// even after WithCause or WithDetails produced a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy carrying cause; sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy with a more specific message.
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
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

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInvalidTransitionError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidTransition,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewStoreError wraps a persistence failure. The response never pretends the
// collection is empty.
func NewStoreError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStore,
		Code:       ErrCodeStoreFailure,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeTooManyRequests,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

func NewUnavailableError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

var (
	ErrUserNotFound     = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrEmployeeNotFound = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)
	ErrScheduleNotFound = NewNotFoundError("Schedule not found", ErrCodeScheduleNotFound)
	ErrSessionNotFound  = NewNotFoundError("Session not found", ErrCodeSessionNotFound)
	ErrShiftNotFound    = NewNotFoundError("Shift not found", ErrCodeShiftNotFound)

	ErrEmailTaken  = NewConflictError("An account already exists for this email", ErrCodeEmailTaken)
	ErrShiftExists = NewConflictError("The schedule already has a shift with this id", ErrCodeDuplicateShift)

	ErrScheduleLocked       = NewInvalidTransitionError("Published schedules cannot be modified, unpublish first", ErrCodeScheduleLocked)
	ErrScheduleEmpty        = NewInvalidTransitionError("A schedule without shifts cannot be published", ErrCodeScheduleEmpty)
	ErrInvalidStatus        = NewInvalidTransitionError("Invalid schedule status for this operation", ErrCodeInvalidStatus)
	ErrGenerationInProgress = NewInvalidTransitionError("Schedule generation is already running", ErrCodeGenerationInProgress)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUnauthorized       = NewUnauthorizedError("Authentication required", ErrCodeAuthRequired)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)

	ErrShuttingDown = NewUnavailableError("The server is shutting down, try again shortly", ErrCodeShuttingDown)
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
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
