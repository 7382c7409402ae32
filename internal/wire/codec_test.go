package wire

import (
	"bytes"
	"math"
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func roundtripDecoder(t *testing.T, e *Encoder) *Decoder {
	t.Helper()
	return NewDecoder(bytes.NewReader(e.Bytes()))
}

func TestVaruintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, maxVaruintValue}
	for _, c := range cases {
		e := NewEncoder(8)
		e.Varuint(c)
		d := roundtripDecoder(t, e)
		got, err := d.Varuint()
		if err != nil {
			t.Fatalf("varuint %d: %v", c, err)
		}
		if got != c {
			t.Fatalf("varuint roundtrip: want %d got %d", c, got)
		}
	}
}

func TestVaruintTooLarge(t *testing.T) {
	e := NewEncoder(8)
	e.Varuint(maxVaruintValue + 1)
	d := roundtripDecoder(t, e)
	if _, err := d.Varuint(); err != ErrTooLarge {
		t.Fatalf("want ErrTooLarge, got %v", err)
	}
}

func TestFloat64NaNPayloadPreserved(t *testing.T) {
	nan := math.Float64frombits(0x7ff8000000000001)
	e := NewEncoder(8)
	e.Float64(nan)
	d := roundtripDecoder(t, e)
	got, err := d.Float64()
	if err != nil {
		t.Fatal(err)
	}
	if math.Float64bits(got) != math.Float64bits(nan) {
		t.Fatalf("NaN payload not preserved: want %x got %x", math.Float64bits(nan), math.Float64bits(got))
	}
}

func TestStringRoundTrip(t *testing.T) {
	e := NewEncoder(16)
	e.String("hello, world")
	d := roundtripDecoder(t, e)
	got, err := d.String()
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello, world" {
		t.Fatalf("want %q got %q", "hello, world", got)
	}
}

func TestNotEnoughData(t *testing.T) {
	d := NewDecoder(bytes.NewReader([]byte{1, 2}))
	if _, err := d.Uint32(); err != ErrNotEnoughData {
		t.Fatalf("want ErrNotEnoughData, got %v", err)
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	u := uuid.MustParse("f4b3a1e2-1234-5678-9abc-def012345678")
	e := NewEncoder(16)
	e.UUID(u)
	d := roundtripDecoder(t, e)
	got, err := d.UUID()
	if err != nil {
		t.Fatal(err)
	}
	if got != u {
		t.Fatalf("uuid roundtrip: want %s got %s", u, got)
	}
}

func TestIPv4RoundTrip(t *testing.T) {
	a := netip.MustParseAddr("192.168.1.10")
	e := NewEncoder(4)
	e.IPv4(a)
	d := roundtripDecoder(t, e)
	got, err := d.IPv4()
	if err != nil {
		t.Fatal(err)
	}
	if got != a {
		t.Fatalf("ipv4 roundtrip: want %s got %s", a, got)
	}
}

func TestNullableRoundTrip(t *testing.T) {
	e := NewEncoder(8)
	EncodeNullable(e, true, func() { e.String("unused") })
	EncodeNullable(e, false, func() { e.String("present") })
	d := roundtripDecoder(t, e)

	var got string
	isNull, err := DecodeNullable(d, func() error {
		var decErr error
		got, decErr = d.String()
		return decErr
	})
	if err != nil {
		t.Fatal(err)
	}
	if !isNull {
		t.Fatal("want first value null")
	}

	isNull, err = DecodeNullable(d, func() error {
		var decErr error
		got, decErr = d.String()
		return decErr
	})
	if err != nil {
		t.Fatal(err)
	}
	if isNull || got != "present" {
		t.Fatalf("want present/\"present\", got null=%v val=%q", isNull, got)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	vals := []uint32{1, 2, 3, 4, 5}
	e := NewEncoder(32)
	EncodeArray(e, len(vals), func(i int) { e.Uint32(vals[i]) })
	d := roundtripDecoder(t, e)

	var got []uint32
	n, err := DecodeArray(d, func(i int) error {
		v, err := d.Uint32()
		got = append(got, v)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != len(vals) {
		t.Fatalf("want len %d got %d", len(vals), n)
	}
	for i := range vals {
		if got[i] != vals[i] {
			t.Fatalf("index %d: want %d got %d", i, vals[i], got[i])
		}
	}
}

func TestDateTime64RoundTrip(t *testing.T) {
	want := time.Date(2024, 3, 15, 12, 30, 45, 123000000, time.UTC)
	e := NewEncoder(8)
	e.DateTime64(want, 3)
	d := roundtripDecoder(t, e)
	got, err := d.DateTime64(3)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestDecimal64RoundTrip(t *testing.T) {
	want := decimal.NewFromFloat(123.45)
	e := NewEncoder(8)
	e.Decimal64(want, 2)
	d := roundtripDecoder(t, e)
	got, err := d.Decimal64(2)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("want %s got %s", want, got)
	}
}

func TestDecimal128RoundTrip(t *testing.T) {
	want := decimal.RequireFromString("-123456789012345.6789")
	e := NewEncoder(16)
	e.Decimal128(want, 4)
	d := roundtripDecoder(t, e)
	got, err := d.Decimal128(4)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("want %s got %s", want, got)
	}
}
