package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	errors "github.com/frahmantamala/shiftboard/internal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

// stringValue unwraps string and *string. ok is false for a nil pointer,
// which every string rule except Required treats as "not provided".
func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, message, code)
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok || strings.TrimSpace(s) == "" {
			return fv.fail(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// NotBlank rejects a provided but empty value; an omitted *string passes.
func (fv *FieldValidator) NotBlank() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if s, ok := stringValue(value); ok && strings.TrimSpace(s) == "" {
			return fv.fail(fmt.Sprintf("%s must not be empty", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if s, ok := stringValue(value); ok && len(s) < min {
			return fv.fail(fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if s, ok := stringValue(value); ok && len(s) > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// Email accepts an empty value; pair with Required when the address is mandatory.
func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok || s == "" {
			return nil
		}
		if addr, err := mail.ParseAddress(s); err != nil || addr.Address != s {
			return fv.fail(fmt.Sprintf("%s must be a valid email address", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// Date checks an ISO calendar date (YYYY-MM-DD). Empty values pass.
func (fv *FieldValidator) Date() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok || s == "" {
			return nil
		}
		if _, err := time.Parse(DateLayout, s); err != nil {
			return fv.fail(fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", fv.FieldName), errors.ErrCodeInvalidDate)
		}
		return nil
	})
	return fv
}

// TimeOfDay checks a 24h HH:MM value. Empty values pass.
func (fv *FieldValidator) TimeOfDay() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok || s == "" {
			return nil
		}
		if _, err := time.Parse(TimeLayout, s); err != nil {
			return fv.fail(fmt.Sprintf("%s must be a time formatted HH:MM", fv.FieldName), errors.ErrCodeInvalidTime)
		}
		return nil
	})
	return fv
}

// NonNegative applies to float64 and *float64; nil pointers pass.
func (fv *FieldValidator) NonNegative() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case *float64:
			if v == nil {
				return nil
			}
			f = *v
		default:
			return nil
		}
		if f < 0 {
			return fv.fail(fmt.Sprintf("%s must not be negative", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(allowed ...string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok || s == "" {
			return nil
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return fv.fail(fmt.Sprintf("%s must be one of %s", fv.FieldName, strings.Join(allowed, ", ")), errors.ErrCodeValidationFailed)
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
			} else {
				validationErrors = append(validationErrors, errors.ValidationError{
					Field:   field.FieldName,
					Message: appErr.Message,
					Code:    string(appErr.Code),
				})
			}
			// first failing rule per field is enough
			break
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// DateRange checks that start and end are valid dates with start <= end.
func DateRange(start, end string) *errors.AppError {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil
	}
	if e.Before(s) {
		return errors.NewValidationFieldError("endDate", "endDate must not be before startDate", errors.ErrCodeInvalidDate)
	}
	return nil
}
