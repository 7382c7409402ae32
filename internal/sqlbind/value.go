package sqlbind

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Identifier marks a bound value as a SQL identifier (table, column,
// database name) rather than a literal: it renders backtick-quoted
// with internal backticks doubled, per spec §3's bound-value set and
// the "Bind identifier" worked example.
type Identifier string

// renderLiteral turns a bound Go value into its SQL text (spec §3:
// "rendering is lossless and safely quoted"). The accepted types are
// the closed set the spec names, plus the domain types this library
// otherwise supports as row fields (UUID, Decimal, time.Time) so a
// caller can bind the same values it reads back out of rows.
func renderLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case Identifier:
		return quoteIdentifier(string(x)), nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case *big.Int:
		return x.String(), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return quoteString(x), nil
	case []byte:
		return quoteBytes(x), nil
	case decimal.Decimal:
		return x.String(), nil
	case uuid.UUID:
		return quoteString(x.String()), nil
	case time.Time:
		return quoteString(x.UTC().Format("2006-01-02 15:04:05")), nil
	default:
		if rendered, ok, err := renderSlice(v); ok {
			return rendered, err
		}
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// quoteString escapes a string literal: backslashes and single quotes
// are each prefixed with a backslash, matching the escaping the
// database's SQL dialect expects for String literals.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('\'')
	return b.String()
}

// quoteBytes renders a byte array as a hex string literal.
func quoteBytes(b []byte) string {
	var sb strings.Builder
	sb.WriteString("x'")
	for _, c := range b {
		fmt.Fprintf(&sb, "%02x", c)
	}
	sb.WriteByte('\'')
	return sb.String()
}

// quoteIdentifier backtick-quotes name, doubling internal backticks.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
