// Package sqlbind renders a SQL template against a sequence of bound
// values, substituting positional `?` placeholders with row-binary-safe
// SQL literals and the pseudo-placeholder `?fields` with a row type's
// comma-joined, identifier-escaped field list.
package sqlbind
