package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	errors "github.com/frahmantamala/salary-simulator/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Label      string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

// Field registers a value under its form field name. Messages use the label,
// which defaults to the capitalised field name ("job" -> "Job").
func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Label:      capitalize(name),
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		missing := false
		switch v := value.(type) {
		case nil:
			missing = true
		case string:
			missing = strings.TrimSpace(v) == ""
		case *string:
			missing = v == nil || strings.TrimSpace(*v) == ""
		case int64:
			missing = v == 0
		case *int64:
			missing = v == nil
		case *float64:
			missing = v == nil
		}
		if missing {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.Label), errors.ErrCodeRequiredField)
		}
		return nil
	})
	return fv
}

// Finite accepts any real number and rejects NaN and infinities.
func (fv *FieldValidator) Finite(code errors.ErrorCode) *FieldValidator {
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
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be a number", fv.Label), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", fv.Label, max)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if !emailPattern.MatchString(v) {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is invalid", fv.Label), errors.ErrCodeInvalidEmail)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every rule and aggregates all failures.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		if fieldErr := field.run(); fieldErr != nil {
			validationErrors = append(validationErrors, *fieldErr)
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// ValidateFirst stops at the first failing field, in registration order.
func (v *ValidationBuilder) ValidateFirst() *errors.AppError {
	for _, field := range v.fields {
		if fieldErr := field.run(); fieldErr != nil {
			return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
				WithDetails(errors.ValidationErrors{Errors: []errors.ValidationError{*fieldErr}})
		}
	}
	return nil
}

// run returns the first failing rule of the field.
func (fv *FieldValidator) run() *errors.ValidationError {
	for _, validator := range fv.Validators {
		err := validator(fv.Value)
		if err == nil {
			continue
		}
		if details, ok := err.Details.(errors.ValidationErrors); ok && len(details.Errors) > 0 {
			first := details.Errors[0]
			return &first
		}
		return &errors.ValidationError{
			Field:   fv.FieldName,
			Message: err.Message,
			Code:    string(err.Code),
		}
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
