package services

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"accu-registry/apperrors"
)

// validateStruct runs the validator over a DTO and folds tag failures into a
// single ValidationError
func validateStruct(v *validator.Validate, dto interface{}) error {
	err := v.Struct(dto)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(err.Error())
	}

	var messages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, "field "+e.Field()+" is required")
		case "gt":
			messages = append(messages, "field "+e.Field()+" must be greater than "+e.Param())
		case "gte":
			messages = append(messages, "field "+e.Field()+" must be at least "+e.Param())
		case "oneof":
			messages = append(messages, "field "+e.Field()+" must be one of: "+e.Param())
		case "email":
			messages = append(messages, "field "+e.Field()+" must be a valid email address")
		case "min":
			messages = append(messages, "field "+e.Field()+" must be at least "+e.Param()+" characters")
		case "max":
			messages = append(messages, "field "+e.Field()+" must be at most "+e.Param()+" characters")
		default:
			messages = append(messages, "field "+e.Field()+" failed "+e.Tag()+" validation")
		}
	}
	return apperrors.NewValidationError(strings.Join(messages, "; "))
}
