package sqlbind

import (
	"fmt"
	"strings"
)

// Binder accumulates bound values and an optional row field list, then
// renders a SQL template against them (spec §4.2). The zero value is
// ready to use.
type Binder struct {
	values    []any
	fields    []string
	hasFields bool
}

// New returns a ready-to-use Binder.
func New() *Binder {
	return &Binder{}
}

// Bind appends a bound value, consumed by the next solitary `?` in
// template order.
func (b *Binder) Bind(v any) *Binder {
	b.values = append(b.values, v)
	return b
}

// BindFields records the field names `?fields` should expand to. names
// must already be in the row type's declared order (spec §8 invariant
// 3); this is normally internal/wire.Schema.Names().
func (b *Binder) BindFields(names []string) *Binder {
	b.fields = names
	b.hasFields = true
	return b
}

// Finish scans template left to right and renders the final SQL,
// consuming bound values and the field list as it goes (spec §4.2).
func (b *Binder) Finish(template string) (string, error) {
	var out strings.Builder
	used := 0

	for i := 0; i < len(template); {
		c := template[i]
		if c != '?' {
			out.WriteByte(c)
			i++
			continue
		}

		switch {
		case i+1 < len(template) && template[i+1] == '?':
			out.WriteByte('?')
			i += 2

		case strings.HasPrefix(template[i:], "?fields"):
			if !b.hasFields {
				return "", fmt.Errorf("%w: ?fields used with no row type bound", ErrPlaceholderMismatch)
			}
			out.WriteString(renderFieldList(b.fields))
			i += len("?fields")

		default:
			if used >= len(b.values) {
				return "", fmt.Errorf("%w: not enough bound values for template", ErrPlaceholderMismatch)
			}
			lit, err := renderLiteral(b.values[used])
			if err != nil {
				return "", err
			}
			out.WriteString(lit)
			used++
			i++
		}
	}

	if used != len(b.values) {
		return "", fmt.Errorf("%w: %d bound value(s) never consumed", ErrPlaceholderMismatch, len(b.values)-used)
	}
	return out.String(), nil
}

// renderFieldList joins names in order, identifier-escaping any that
// aren't already safe to use bare.
func renderFieldList(names []string) string {
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = escapeFieldName(n)
	}
	return strings.Join(escaped, ",")
}

func escapeFieldName(name string) string {
	if isBareIdentifier(name) {
		return name
	}
	return quoteIdentifier(name)
}

func isBareIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isAlpha := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
		isDigit := c >= '0' && c <= '9'
		if i == 0 && !isAlpha {
			return false
		}
		if !isAlpha && !isDigit {
			return false
		}
	}
	return true
}
