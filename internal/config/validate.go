// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/storage"
)

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a single configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

// Error implements the error interface.
func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return tomlName(f)
	})
	v.RegisterValidation("provider", validateProvider)
	v.RegisterValidation("backend", validateBackend)
	return v
}

func validateProvider(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case model.ProviderOpenAI, model.ProviderGemini:
		return true
	}
	return false
}

func validateBackend(fl validator.FieldLevel) bool {
	return storage.IsBackend(fl.Field().String())
}

// Validate checks the configuration and returns ValidateErrors listing
// every problem.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make(ValidateErrors, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		errs = append(errs, ValidationError{Field: field, Message: describe(e)})
	}
	return errs
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "provider":
		return fmt.Sprintf("unknown provider %q, must be one of: %s, %s", e.Value(), model.ProviderOpenAI, model.ProviderGemini)
	case "backend":
		return fmt.Sprintf("unknown backend %q, must be one of: %s", e.Value(), strings.Join(storage.Backends, ", "))
	case "oneof":
		return fmt.Sprintf("invalid value %q, must be one of: %s", e.Value(), strings.ReplaceAll(e.Param(), " ", ", "))
	case "required", "required_if":
		return "is required"
	case "url":
		return fmt.Sprintf("invalid URL %q", e.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", e.Param(), e.Value())
	case "lte":
		return fmt.Sprintf("must be at most %s, got %v", e.Param(), e.Value())
	default:
		return fmt.Sprintf("validation failed on tag '%s' with value '%v'", e.Tag(), e.Value())
	}
}
