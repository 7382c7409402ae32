package lz4block

import "github.com/go-faster/errors"

// ErrChecksumMismatch means a block's CityHash128 checksum didn't match
// its declared sizes and payload — spec §8 invariant 8 (flipping any
// bit in a compressed payload causes Decompression).
var ErrChecksumMismatch = errors.New("lz4block: checksum mismatch")

// ErrMalformedFrame means the header or payload was truncated or
// otherwise structurally invalid.
var ErrMalformedFrame = errors.New("lz4block: malformed frame")
