// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single field validation failure.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the dotted config key of the failing field, e.g. "obs.port".
func (e *FieldError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string { return e.tag }

// Param returns the parameter for the validation tag (e.g., "65535" for "max=65535").
func (e *FieldError) Param() string { return e.param }

// Value returns the value that failed validation.
func (e *FieldError) Value() interface{} { return e.value }

// Error returns "<field>: <rule>".
func (e *FieldError) Error() string {
	return e.field + ": " + e.message
}

// Errors is a collection of field errors.
type Errors struct {
	errors []FieldError
}

// Fields returns the individual failures.
func (ve *Errors) Fields() []FieldError {
	return ve.errors
}

// Error joins all failures with "; ".
func (ve *Errors) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(ve.errors))
	for i := range ve.errors {
		messages = append(messages, ve.errors[i].Error())
	}
	return strings.Join(messages, "; ")
}

// Has reports whether field failed validation.
func (ve *Errors) Has(field string) bool {
	for i := range ve.errors {
		if ve.errors[i].field == field {
			return true
		}
	}
	return false
}

// GetValidator returns the singleton validator instance.
//
// Field names are taken from the koanf struct tag so that errors name the
// same keys users write in the config file and environment mapping.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})

	return validate
}

// ValidateStruct validates s. It returns nil or an *Errors.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &Errors{errors: []FieldError{{field: "unknown", tag: "unknown", message: err.Error()}}}
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fieldErrors[i] = FieldError{
			field:   fieldPath(fe.Namespace()),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translateError(fe),
		}
	}
	return &Errors{errors: fieldErrors}
}

// New builds a single field error for checks that struct tags cannot
// express, such as cross-field rules.
func New(field, message string) *Errors {
	return &Errors{errors: []FieldError{{field: field, tag: "custom", message: message}}}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// errorMessageTemplates maps validation tags to messages.
var errorMessageTemplates = map[string]string{
	"required":      "is required",
	"hostname":      "must be a valid hostname",
	"hostname_port": "must be a host:port address",
	"url":           "must be a valid URL",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "must be one of: %s",
	"gte":   "must be greater than or equal to %s",
	"lte":   "must be less than or equal to %s",
	"gt":    "must be greater than %s",
	"lt":    "must be less than %s",
	"min":   "must be at least %s",
	"max":   "must be at most %s",

	"excludesall": "must not contain any of %q",
}

func translateError(fe validator.FieldError) string {
	if msg, ok := errorMessageTemplates[fe.Tag()]; ok {
		return msg
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		if fe.Kind() == reflect.String && (fe.Tag() == "min" || fe.Tag() == "max") {
			return fmt.Sprintf(template+" characters", fe.Param())
		}
		return fmt.Sprintf(template, fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
