package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/richxcame/waste-chat/pkg/i18n"
)

// ValidationError maps struct field names to readable messages.
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error lists the field messages in field order.
func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for f := range v.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v.Errors[f]
	}
	return strings.Join(parts, "; ")
}

// NewValidationError converts validator output, keeping the first failure per field.
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	v := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, fe := range errs {
		if _, seen := v.Errors[fe.Field()]; !seen {
			v.Errors[fe.Field()] = fieldMessage(fe)
		}
	}
	return v
}

var tagMessages = map[string]string{
	"required": "%[1]s is required",
	"notblank": "%[1]s must not be blank",
	"min":      "%[1]s must be at least %[2]s characters long",
	"max":      "%[1]s must be at most %[2]s characters long",
	"uuid":     "%[1]s must be a valid UUID",
	"oneof":    "%[1]s must be one of: %[2]s",
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "lang" {
		return fmt.Sprintf("%s must be a supported language (%s)", fe.Field(), strings.Join(i18n.Supported(), ", "))
	}
	if format, ok := tagMessages[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

// AddError records message for field, replacing any earlier one.
func (v *ValidationError) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	v.Errors[field] = message
}

// HasErrors reports whether any field failed.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// GetFieldError returns the message recorded for field.
func (v *ValidationError) GetFieldError(field string) (string, bool) {
	msg, ok := v.Errors[field]
	return msg, ok
}
