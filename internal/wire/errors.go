package wire

import "github.com/go-faster/errors"

// ErrNotEnoughData is returned when the stream ends mid-value.
var ErrNotEnoughData = errors.New("wire: not enough data")

// ErrTooLarge is returned when a varuint or a length prefix exceeds the
// documented bound (2^31, spec §4.1).
var ErrTooLarge = errors.New("wire: value too large")

var (
	errNotEnoughData = ErrNotEnoughData
	errTooLarge      = ErrTooLarge
)
