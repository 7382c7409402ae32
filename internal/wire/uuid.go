package wire

import "github.com/google/uuid"

// UUID writes a google/uuid.UUID (16 bytes, canonical RFC 4122 big-endian
// order) in the server's on-wire layout: each 8-byte half is stored with
// its own bytes reversed, i.e. reinterpreted little-endian in place
// (spec §4.1, §6 MSRV note). Round-tripping through Encoder.UUID then
// Decoder.UUID reproduces the original value exactly.
func (e *Encoder) UUID(u uuid.UUID) {
	var w [16]byte
	copy(w[:], u[:])
	reverseUUIDHalf(w[0:8])
	reverseUUIDHalf(w[8:16])
	e.Raw(w[:])
}

func (d *Decoder) UUID() (uuid.UUID, error) {
	b, err := d.Raw(16)
	if err != nil {
		return uuid.UUID{}, err
	}
	var w [16]byte
	copy(w[:], b)
	reverseUUIDHalf(w[0:8])
	reverseUUIDHalf(w[8:16])
	return uuid.UUID(w), nil
}

func reverseUUIDHalf(b []byte) {
	b[0], b[7] = b[7], b[0]
	b[1], b[6] = b[6], b[1]
	b[2], b[5] = b[5], b[2]
	b[3], b[4] = b[4], b[3]
}
