package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration values using go-playground/validator.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the custom rules registered.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterValidation("log_level", validateLogLevel)
	v.RegisterValidation("log_format", validateLogFormat)
	return &Validator{validate: v}
}

// Validate validates a complete configuration.
func (v *Validator) Validate(config *Config) error {
	if err := v.validate.Struct(config); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				return ValidationError{
					Field:   e.Field(),
					Message: fmt.Sprintf("validation failed on tag '%s' with value '%v'", e.Tag(), e.Value()),
					Value:   e.Value(),
				}
			}
		}
		return err
	}
	return nil
}

// validateLogLevel validates log level values.
func validateLogLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	validLevels := []string{"debug", "info", "warn", "error"}
	return contains(validLevels, value)
}

// validateLogFormat validates log format values.
func validateLogFormat(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	validFormats := []string{"text", "json"}
	return contains(validFormats, value)
}

// contains checks if a string is in a slice.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
