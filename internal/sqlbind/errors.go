package sqlbind

import "github.com/go-faster/errors"

// ErrPlaceholderMismatch means the template's `?` count didn't match
// the number of bound values, or `?fields` appeared with no row type
// bound (spec §4.2, §8 invariant 2).
var ErrPlaceholderMismatch = errors.New("sqlbind: placeholder/value count mismatch")

// ErrUnsupportedValue means bind() was called with a Go value outside
// the closed set of SQL-renderable primitives (spec §3).
var ErrUnsupportedValue = errors.New("sqlbind: unsupported bound value type")
