package val

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	slugRe     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`) //nolint:gochecknoglobals // compiled once
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)                //nolint:gochecknoglobals // compiled once
)

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyRe.MatchString(fl.Field().String())
	})
}

// IsSlug reports whether s is lower-case words joined by single dashes.
func IsSlug(s string) bool {
	return slugRe.MatchString(s)
}
