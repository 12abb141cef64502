// Package validator validates request bodies and forms with
// go-playground/validator, reporting fields by their JSON names.
package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps how much of a request body DecodeAndValidate reads.
const MaxBodyBytes = 1 << 20

// Sizes is the apparel size set accepted by the "size" tag.
var Sizes = []string{"xxs", "xs", "s", "m", "l", "xl", "xxl", "xxxl"}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// notblank: a string with something other than whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// size: one of Sizes, case-insensitive.
	_ = v.RegisterValidation("size", func(fl validator.FieldLevel) bool {
		s := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		for _, known := range Sizes {
			if s == known {
				return true
			}
		}
		return false
	})
	return v
}

// Validate validates a struct using its validate tags.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

// ValidationError lists the fields that failed.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field() + ": " + message(fe)
	}
	return "invalid " + strings.Join(msgs, ", ")
}

// Fields maps each failed field to its message.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

// Has reports whether the named field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field() == field {
			return true
		}
	}
	return false
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "size":
		return "must be a size from " + strings.ToUpper(Sizes[0]) + " to " + strings.ToUpper(Sizes[len(Sizes)-1])
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must have at least " + fe.Param() + " entries"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

// DecodeAndValidate decodes at most MaxBodyBytes of JSON from the request
// body into dst and validates it.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return Validate(dst)
}
