package sqlbind

import (
	"reflect"
	"strings"
)

// renderSlice handles the "array of primitive" member of the bound
// value set (spec §3). ok is false when v isn't a slice at all, so the
// caller can fall through to its own unsupported-type error.
func renderSlice(v any) (rendered string, ok bool, err error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return "", false, nil
	}

	parts := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		lit, lerr := renderLiteral(rv.Index(i).Interface())
		if lerr != nil {
			return "", true, lerr
		}
		parts[i] = lit
	}
	return "[" + strings.Join(parts, ",") + "]", true, nil
}
