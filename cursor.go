package chx

import (
	"io"

	"github.com/go-faster/errors"

	"github.com/mrhb33/chx/internal/lz4block"
	"github.com/mrhb33/chx/internal/wire"
)

// errorSentinel is the known prefix a trailing exception paragraph
// starts with once a response's row frames are exhausted (spec §4.5).
const errorSentinel = "Code: "

// Cursor pulls one typed row at a time from a query response. It is
// not safe for concurrent use; operations are meant to be awaited one
// at a time by a single caller (spec §9 "cooperative concurrency").
type Cursor[R any] struct {
	body   io.ReadCloser
	dec    *wire.Decoder
	schema *wire.Schema

	done bool
	err  error
}

func newCursor[R any](body io.ReadCloser, r io.Reader, schema *wire.Schema) *Cursor[R] {
	return &Cursor[R]{body: body, dec: wire.NewDecoder(r), schema: schema}
}

// Next decodes the next row. Per spec §8 invariant 4 (cursor
// linearity): rows come back in wire order; once the stream is
// exhausted or an error surfaces, every subsequent call returns the
// same terminal outcome.
func (c *Cursor[R]) Next() (R, bool, error) {
	var zero R
	if c.done {
		return zero, false, c.err
	}

	if _, err := c.dec.PeekByte(); err != nil {
		c.done = true
		if err != io.EOF {
			c.err = classifyWireErr(err)
		}
		return zero, false, c.err
	}

	if c.peekErrorSentinel() {
		tail, _ := io.ReadAll(c.dec.Reader())
		c.done = true
		c.err = badResponse(200, string(tail))
		return zero, false, c.err
	}

	var row R
	if err := c.schema.DecodeRow(c.dec, &row); err != nil {
		c.done = true
		c.err = classifyWireErr(err)
		return zero, false, c.err
	}
	return row, true, nil
}

// peekErrorSentinel looks ahead without consuming to see whether the
// remaining bytes open with the server's known trailing-error marker
// (spec §4.5: "begins with a known error sentinel").
func (c *Cursor[R]) peekErrorSentinel() bool {
	b, err := c.dec.Reader().Peek(len(errorSentinel))
	if err != nil {
		return false
	}
	return string(b) == errorSentinel
}

// Close releases the underlying response body. Safe to call more than
// once; safe to call before the stream is exhausted to abandon a
// cursor early.
func (c *Cursor[R]) Close() error {
	return c.body.Close()
}

// classifyWireErr maps an internal/wire decode failure onto the closed
// Error kind set (spec §7).
func classifyWireErr(err error) *Error {
	switch {
	case errors.Is(err, wire.ErrNotEnoughData):
		return wrapErr(KindNotEnoughData, err, "row decode truncated")
	case errors.Is(err, wire.ErrTooLarge):
		return wrapErr(KindTooLarge, err, "row decode exceeded a size bound")
	case errors.Is(err, lz4block.ErrChecksumMismatch), errors.Is(err, lz4block.ErrMalformedFrame):
		return wrapErr(KindDecompression, err, "decompress response")
	default:
		return wrapErr(KindDecode, err, "row decode failed")
	}
}
