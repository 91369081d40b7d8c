package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mealcal/core/internal/domain/entities"
)

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs v on s and converts failures into *entities.ValidationError.
func ValidateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	verr := &entities.ValidationError{}
	for _, fe := range fieldErrs {
		// map key failures are reported as "ingredients[<key>]"
		field, _, _ := strings.Cut(fe.Field(), "[")
		verr.Add(field, describeTag(fe))
	}
	return verr
}

// describeTag returns "" for missing values so they read as required fields.
func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return ""
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
