package dynquery

import "github.com/code19m/errx"

const (
	// CodeFieldNotFound is returned when a selector names no field of the schema.
	CodeFieldNotFound = "FIELD_NOT_FOUND"

	// CodeUnsupportedFieldType is returned when a field cannot take part in the
	// requested operation, e.g. searching a numeric field.
	CodeUnsupportedFieldType = "UNSUPPORTED_FIELD_TYPE"

	// CodeInvalidSchema is returned by NewSchema for empty or duplicate field names.
	CodeInvalidSchema = "INVALID_SCHEMA"
)

// IsConfigError reports whether err means the query parameters reference a
// field that does not exist or has the wrong kind. Such errors are caller
// mistakes and must not be retried. An empty result is not an error at all.
func IsConfigError(err error) bool {
	return errx.IsCodeIn(err, CodeFieldNotFound, CodeUnsupportedFieldType)
}
