// Package mask flattens request structs into ordered field maps for logging,
// replacing the values of fields tagged `mask:"true"`.
package mask

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	tagName = "mask"

	// maxDepth bounds nesting; deeper values are logged as a placeholder.
	maxDepth = 16

	cyclePlaceholder = "***cycle***"
	depthPlaceholder = "***max-depth***"
)

//nolint:gochecknoglobals // reflect type used for leaf detection
var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

// StructToOrdMap returns every exported field of v in declaration order.
// Nested structs are flattened with dotted keys ("address.city"). Values of
// tagged fields are replaced with a placeholder naming their kind; zero
// values are left as is so that "was it set" stays visible in logs.
//
// Field names come from the json tag, then the yaml tag, then the Go name.
// A "-" tag hides the field. Non-struct input yields a single "" key.
// A pointer back to a struct already being flattened is rendered as a
// placeholder instead of being followed.
func StructToOrdMap(v any) *orderedmap.OrderedMap[string, any] {
	if v == nil {
		return nil
	}
	om := orderedmap.New[string, any]()
	w := walker{om: om, visiting: make(map[uintptr]struct{})}
	w.flatten(reflect.ValueOf(v), "", 0)
	return om
}

type walker struct {
	om *orderedmap.OrderedMap[string, any]
	// pointers on the path from the root to the current value
	visiting map[uintptr]struct{}
}

func (w *walker) flatten(val reflect.Value, prefix string, depth int) {
	om := w.om
	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			om.Set(prefix, nil)
			return
		}
		if val.Kind() == reflect.Pointer {
			ptr := val.Pointer()
			if _, seen := w.visiting[ptr]; seen {
				om.Set(prefix, cyclePlaceholder)
				return
			}
			w.visiting[ptr] = struct{}{}
			defer delete(w.visiting, ptr)
		}
		val = val.Elem()
	}

	if !isExpandable(val) {
		om.Set(prefix, val.Interface())
		return
	}
	if depth >= maxDepth {
		om.Set(prefix, depthPlaceholder)
		return
	}

	typ := val.Type()
	for i := range val.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, skip := fieldName(sf)
		if skip {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		field := val.Field(i)
		if masked(sf) {
			om.Set(name, maskValue(field))
			continue
		}
		w.flatten(field, name, depth+1)
	}
}

// isExpandable reports whether val is a struct worth descending into.
// Types that render themselves as text (time.Time, uuid.UUID, ...) are leaves.
func isExpandable(val reflect.Value) bool {
	if val.Kind() != reflect.Struct {
		return false
	}
	if val.Type().Implements(textMarshalerType) || reflect.PointerTo(val.Type()).Implements(textMarshalerType) {
		return false
	}
	return true
}

func masked(sf reflect.StructField) bool {
	tag, ok := sf.Tag.Lookup(tagName)
	if !ok {
		return false
	}
	return cast.ToBool(strings.TrimSpace(tag))
}

func maskValue(val reflect.Value) any {
	switch val.Kind() { //nolint:exhaustive // remaining kinds cannot be nil
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	case reflect.Slice, reflect.Map:
		if val.IsNil() {
			return nil
		}
	}

	if val.IsZero() {
		return val.Interface()
	}
	return placeholder(val.Kind())
}

func placeholder(kind reflect.Kind) string {
	switch kind { //nolint:exhaustive // grouped kinds, default covers the rest
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "***masked-int***"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "***masked-uint***"
	case reflect.Float32, reflect.Float64:
		return "***masked-float***"
	case reflect.Array:
		return "***masked-slice***"
	default:
		return fmt.Sprintf("***masked-%s***", kind)
	}
}

func fieldName(sf reflect.StructField) (string, bool) {
	for _, key := range []string{"json", "yaml"} {
		tag, ok := sf.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", true
		}
		if name != "" {
			return name, false
		}
	}
	return sf.Name, false
}
