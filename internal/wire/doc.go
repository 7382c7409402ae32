// Package wire implements the row-binary primitive codec: varuint,
// fixed-width ints/floats, strings, arrays, nullable, tuples,
// enum-by-repr, low-cardinality passthrough, and the date/datetime,
// UUID, IP, decimal, geo, and variant column families.
//
// Nothing in this package frames a request or response; it only turns
// Go values into the bytes a server expects in FORMAT RowBinary order
// and back.
package wire
