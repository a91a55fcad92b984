package domain

import "github.com/go-playground/validator/v10"

// validate checks inbound parsed rows before they enter a roster.
var validate = validator.New()

// ValidateStruct checks s against its `validate` struct tags.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}
