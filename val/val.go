// Package val validates request structs with go-playground/validator and
// reports failures as errx validation errors keyed by field name.
package val

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate //nolint: gochecknoglobals // shared, safe for concurrent use after init

func init() { //nolint: gochecknoinits // validator must be ready before the first request
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(getTagName)
	registerCustomValidations(validate)
}

func getValidator() *validator.Validate {
	return validate
}

// getTagName returns the name of a struct field based on its struct tags.
// It checks 'json' then 'yaml' and falls back to the field name.
func getTagName(fld reflect.StructField) string {
	for _, tagName := range []string{"json", "yaml"} {
		name := strings.SplitN(fld.Tag.Get(tagName), ",", 2)[0] //nolint:mnd // name and options
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
