// internal/app/system/validate/validate.go

// Package validate wraps go-playground/validator for JSON request payloads.
// Handlers decode a request struct, call Struct, and translate any failure
// into a VALIDATION_ERROR response before touching the database.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a request payload against its `validate` tags.
// The returned error message lists each failing field in a form suitable
// for the error response body.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(parts, "; "))
}

// Var validates a single value against a tag expression, e.g.
// validate.Var(status, "oneof=active completed failed dropped").
func Var(field any, tag string) error {
	return v.Var(field, tag)
}
