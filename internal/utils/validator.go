package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/CityQuest-2025/quest-service/internal/errors"
)

// Validator wraps go-playground validation with the custom game rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Struct validates a struct and converts any failures to ValidationErrors.
func (v *Validator) Struct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Custom validation functions

func ValidateRatingPoints(fl validator.FieldLevel) bool {
	points := fl.Field().Int()
	return points >= 0 && points <= 5
}

func ValidateTimeoutSeconds(fl validator.FieldLevel) bool {
	seconds := fl.Field().Int()
	return seconds >= 1 && seconds <= 3600
}

func ValidateBoxCount(fl validator.FieldLevel) bool {
	count := fl.Field().Int()
	return count >= 0 && count <= 100
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("rating_points", ValidateRatingPoints)
	validate.RegisterValidation("timeout_seconds", ValidateTimeoutSeconds)
	validate.RegisterValidation("box_count", ValidateBoxCount)

	// Use json names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
