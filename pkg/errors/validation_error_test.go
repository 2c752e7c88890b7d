package pkgerrors

import (
	"errors"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
)

func TestNewValidationErrorFromOzzo(t *testing.T) {
	errs := validation.Errors{
		"folder": errors.New("must not contain .."),
		"data":   errors.New("cannot be blank"),
		"nested": validation.Errors{
			"filename": errors.New("must be in a valid format"),
		},
	}

	ve := NewValidationErrorFromOzzo(errs)
	if len(ve.Errors) != 3 {
		t.Fatalf("errors = %+v", ve.Errors)
	}
	if ve.Errors[0].Name != "data" || ve.Errors[1].Name != "filename" || ve.Errors[2].Name != "folder" {
		t.Errorf("errors not sorted: %+v", ve.Errors)
	}
	if !strings.HasPrefix(ve.Error(), "Validation error: data cannot be blank") {
		t.Errorf("Error() = %q", ve.Error())
	}
	if len(ve.Unwrap()) != 3 {
		t.Errorf("Unwrap() = %v", ve.Unwrap())
	}
}

func TestNewValidationErrorFromOzzo_Nil(t *testing.T) {
	ve := NewValidationErrorFromOzzo(nil)
	if ve.Error() != "Validation error" {
		t.Errorf("Error() = %q", ve.Error())
	}
}

func TestFromError(t *testing.T) {
	if _, ok := FromError(errors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
	ve, ok := FromError(validation.Errors{"data": errors.New("cannot be blank")})
	if !ok || len(ve.Errors) != 1 {
		t.Errorf("FromError = %+v, %v", ve, ok)
	}
}
