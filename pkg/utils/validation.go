package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct validates a struct against its `validate` tags.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}
