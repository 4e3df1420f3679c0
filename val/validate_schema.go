package val

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/go-playground/validator/v10"
)

const (
	CodeValidationFailed = "VALIDATION_FAILED"
)

// fixedMessages describe tags whose message does not depend on the parameter.
//
//nolint:gochecknoglobals // read-only lookup table
var fixedMessages = map[string]string{
	"required": "This field is required",
	"uuid":     "Must be a valid UUID",
	"slug":     "Must be lower-case letters and digits separated by dashes",
	"currency": "Must be a three letter ISO 4217 currency code",
}

// ValidateSchema validates schema against its `validate` tags. Failures come
// back as one T_Validation error with a description per failing field.
// Elements of `dive` slices are keyed as "amenity_ids[1]".
func ValidateSchema(schema any) error {
	err := getValidator().Struct(schema)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errx.New(
			fmt.Sprintf("Unknown validation error: %s", err.Error()),
			errx.WithCode(CodeValidationFailed),
			errx.WithType(errx.T_Validation),
		)
	}

	fields := make(errx.M, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = describe(fe)
	}
	return errx.New(
		"Validation failed. See fields for details.",
		errx.WithCode(CodeValidationFailed),
		errx.WithType(errx.T_Validation),
		errx.WithFields(fields),
	)
}

func describe(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}

	param := fe.Param()
	switch fe.Tag() {
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters", param)
		}
		return "Must be at most " + param
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", param)
		}
		return "Must be at least " + param
	case "gt":
		return "Must be greater than " + param
	case "gte":
		return "Must be " + param + " or more"
	case "lte":
		return "Must be " + param + " or less"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(param, " ", ", ")
	}
	return "Failed validation: " + fe.Tag()
}
