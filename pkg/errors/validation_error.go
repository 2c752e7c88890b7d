package pkgerrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

type ErrorEntity struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ValidationError flattens ozzo field errors into a stable, sorted list.
type ValidationError struct {
	Errors []ErrorEntity
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "Validation error"
	}

	errors := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		errors = append(errors, fmt.Sprintf("%s %s", err.Name, err.Reason))
	}
	return fmt.Sprintf("Validation error: %s", strings.Join(errors, ", "))
}

func (e *ValidationError) Unwrap() []error {
	errors := make([]error, 0, len(e.Errors))

	for _, err := range e.Errors {
		errors = append(errors, fmt.Errorf("%s: %s", err.Name, err.Reason))
	}

	return errors
}

func NewValidationErrorFromOzzo(errs validation.Errors) *ValidationError {
	ve := &ValidationError{
		Errors: make([]ErrorEntity, 0, len(errs)),
	}

	if errs == nil {
		return ve
	}

	ve.parseValidationErrors(errs)
	sort.Slice(ve.Errors, func(i, j int) bool {
		return ve.Errors[i].Name < ve.Errors[j].Name
	})
	return ve
}

// FromError converts err when it carries ozzo field errors.
func FromError(err error) (*ValidationError, bool) {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil, false
	}
	return NewValidationErrorFromOzzo(errs), true
}

func (ve *ValidationError) parseValidationErrors(errs validation.Errors) {
	for field, fieldErr := range errs {

		var validationErrs validation.Errors
		switch {
		case errors.As(fieldErr, &validationErrs):
			ve.parseValidationErrors(validationErrs)
		default:
			ve.Errors = append(ve.Errors, ErrorEntity{
				Name:   field,
				Reason: fieldErr.Error(),
			})
		}
	}
}
