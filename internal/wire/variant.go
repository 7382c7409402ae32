package wire

import "sort"

// VariantSchema fixes the discriminant assignment for a Variant(T1..Tn)
// column: variants are indexed in the order the server assigns them,
// which is alphabetical by database type name (spec §4.1). Resolving
// server-side type aliasing that could collide two variants under the
// same canonical name is explicitly left unhandled — see SPEC_FULL.md §9.
type VariantSchema struct {
	names []string
}

// NewVariantSchema builds a schema from the variants' database type
// names, sorting them into the server's canonical order.
func NewVariantSchema(typeNames ...string) *VariantSchema {
	names := append([]string(nil), typeNames...)
	sort.Strings(names)
	return &VariantSchema{names: names}
}

// Discriminant returns the wire index for a variant's type name.
func (s *VariantSchema) Discriminant(typeName string) (uint8, bool) {
	for i, n := range s.names {
		if n == typeName {
			return uint8(i), true
		}
	}
	return 0, false
}

// TypeName returns the variant type name for a wire discriminant.
func (s *VariantSchema) TypeName(discriminant uint8) (string, bool) {
	if int(discriminant) >= len(s.names) {
		return "", false
	}
	return s.names[discriminant], true
}

// Discriminant writes the u8 index selecting which variant follows.
func (e *Encoder) Discriminant(idx uint8) { e.Uint8(idx) }

// Discriminant reads the u8 index selecting which variant follows.
func (d *Decoder) Discriminant() (uint8, error) { return d.Uint8() }
