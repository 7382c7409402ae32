package wire

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/go-faster/errors"
)

// Encoder appends row-binary-encoded values to an in-memory buffer. The
// caller drains Bytes() into a request body writer; Encoder itself does
// no I/O (spec §4.1, §4.6).
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with capacity hinted by size.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// Bytes returns the accumulated buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes accumulated so far.
func (e *Encoder) Len() int { return len(e.buf) }

// Reset empties the buffer for reuse.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Raw appends b verbatim (used by FixedString and Tuple payloads).
func (e *Encoder) Raw(b []byte) { e.buf = append(e.buf, b...) }

func (e *Encoder) Bool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

func (e *Encoder) Uint8(v uint8)   { e.buf = append(e.buf, v) }
func (e *Encoder) Int8(v int8)     { e.buf = append(e.buf, byte(v)) }
func (e *Encoder) Uint16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *Encoder) Int16(v int16)   { e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(v)) }
func (e *Encoder) Uint32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *Encoder) Int32(v int32)   { e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v)) }
func (e *Encoder) Uint64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *Encoder) Int64(v int64)   { e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v)) }

func (e *Encoder) Uint128(lo, hi uint64) {
	e.Uint64(lo)
	e.Uint64(hi)
}

func (e *Encoder) Int128(lo uint64, hi int64) {
	e.Uint64(lo)
	e.Int64(hi)
}

func (e *Encoder) Float32(v float32) { e.Uint32(math.Float32bits(v)) }
func (e *Encoder) Float64(v float64) { e.Uint64(math.Float64bits(v)) }

// String writes a varuint length prefix followed by the raw bytes.
func (e *Encoder) String(s string) {
	e.Varuint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// FixedString writes exactly n raw bytes, padding with zeros or
// truncating the source to fit — ClickHouse's FixedString(N) columns
// are fixed-width, never length-prefixed.
func (e *Encoder) FixedString(s string, n int) {
	if len(s) >= n {
		e.buf = append(e.buf, s[:n]...)
		return
	}
	e.buf = append(e.buf, s...)
	for i := len(s); i < n; i++ {
		e.buf = append(e.buf, 0)
	}
}

// Varuint writes v using the server's LEB128-style varint: 7 payload
// bits per byte, MSB set while more bytes follow (spec §4.1).
func (e *Encoder) Varuint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// maxVaruintValue bounds a varuint decode per spec §4.1's TooLarge
// invariant (values must be below 2^31).
const maxVaruintValue = 1<<31 - 1

// Decoder pulls row-binary-encoded values from a buffered reader,
// growing its internal buffer as needed. It never blocks beyond what a
// single Read on the underlying reader demands (spec §4.5, §5).
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps r in a buffered reader sized to hold at least one
// row's worth of bytes before a refill is needed.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Reader exposes the underlying buffered reader, e.g. for Cursor's
// tail-error sniffing.
func (d *Decoder) Reader() *bufio.Reader { return d.r }

func (d *Decoder) readFull(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errNotEnoughData
		}
		return nil, err
	}
	return b, nil
}

// PeekByte reports whether at least one more byte is available without
// consuming it, used to detect clean end-of-stream between rows.
func (d *Decoder) PeekByte() (byte, error) {
	b, err := d.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Bool() (bool, error) {
	b, err := d.readFull(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.readFull(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Int8() (int8, error) {
	v, err := d.Uint8()
	return int8(v), err
}

func (d *Decoder) Uint16() (uint16, error) {
	b, err := d.readFull(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) Int16() (int16, error) {
	v, err := d.Uint16()
	return int16(v), err
}

func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.readFull(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

func (d *Decoder) Uint64() (uint64, error) {
	b, err := d.readFull(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) Int64() (int64, error) {
	v, err := d.Uint64()
	return int64(v), err
}

func (d *Decoder) Uint128() (lo, hi uint64, err error) {
	if lo, err = d.Uint64(); err != nil {
		return 0, 0, err
	}
	if hi, err = d.Uint64(); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func (d *Decoder) Int128() (lo uint64, hi int64, err error) {
	if lo, err = d.Uint64(); err != nil {
		return 0, 0, err
	}
	if hi, err = d.Int64(); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func (d *Decoder) Float32() (float32, error) {
	v, err := d.Uint32()
	return math.Float32frombits(v), err
}

func (d *Decoder) Float64() (float64, error) {
	v, err := d.Uint64()
	return math.Float64frombits(v), err
}

func (d *Decoder) Raw(n int) ([]byte, error) { return d.readFull(n) }

func (d *Decoder) FixedString(n int) (string, error) {
	b, err := d.readFull(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) String() (string, error) {
	n, err := d.Varuint()
	if err != nil {
		return "", err
	}
	b, err := d.readFull(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Varuint decodes a length/count prefix, rejecting values beyond the
// documented 2^31 bound with ErrTooLarge (spec §4.1).
func (d *Decoder) Varuint() (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; i < 10; i++ {
		b, err := d.readFull(1)
		if err != nil {
			return 0, err
		}
		v |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			if v > maxVaruintValue {
				return 0, errTooLarge
			}
			return v, nil
		}
		shift += 7
	}
	return 0, errTooLarge
}
