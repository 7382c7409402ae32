package wire

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimal32/64/128/256 store a plain signed integer of the declared
// width representing value * 10^scale (domain stack supplement to
// spec §4.1's primitive family — see SPEC_FULL.md §3).

func (e *Encoder) Decimal32(v decimal.Decimal, scale int32) {
	e.Int32(int32(scaledCoefficient(v, scale).Int64()))
}

func (d *Decoder) Decimal32(scale int32) (decimal.Decimal, error) {
	v, err := d.Int32()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.New(int64(v), -scale), nil
}

func (e *Encoder) Decimal64(v decimal.Decimal, scale int32) {
	e.Int64(scaledCoefficient(v, scale).Int64())
}

func (d *Decoder) Decimal64(scale int32) (decimal.Decimal, error) {
	v, err := d.Int64()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.New(v, -scale), nil
}

func (e *Encoder) Decimal128(v decimal.Decimal, scale int32) {
	e.bigInt(scaledCoefficient(v, scale), 16)
}

func (d *Decoder) Decimal128(scale int32) (decimal.Decimal, error) {
	b, err := d.Raw(16)
	if err != nil {
		return decimal.Decimal{}, err
	}
	coeff := bigIntFromLE(b)
	return decimal.NewFromBigInt(coeff, -scale), nil
}

func (e *Encoder) Decimal256(v decimal.Decimal, scale int32) {
	e.bigInt(scaledCoefficient(v, scale), 32)
}

func (d *Decoder) Decimal256(scale int32) (decimal.Decimal, error) {
	b, err := d.Raw(32)
	if err != nil {
		return decimal.Decimal{}, err
	}
	coeff := bigIntFromLE(b)
	return decimal.NewFromBigInt(coeff, -scale), nil
}

func scaledCoefficient(v decimal.Decimal, scale int32) *big.Int {
	return v.Shift(scale).Round(0).Coefficient()
}

// bigInt writes v as a width-byte little-endian two's-complement
// integer, sign-extended.
func (e *Encoder) bigInt(v *big.Int, width int) {
	buf := make([]byte, width)
	mag := v.Bytes() // big-endian magnitude
	for i, b := range mag {
		j := len(mag) - 1 - i // little-endian position of this byte
		if j >= width {
			continue
		}
		buf[j] = b
	}
	if v.Sign() < 0 {
		// two's complement: invert and add one
		carry := byte(1)
		for i := 0; i < width; i++ {
			buf[i] = ^buf[i]
			sum := uint16(buf[i]) + uint16(carry)
			buf[i] = byte(sum)
			carry = byte(sum >> 8)
		}
	}
	e.Raw(buf)
}

func bigIntFromLE(b []byte) *big.Int {
	negative := len(b) > 0 && b[len(b)-1]&0x80 != 0
	work := make([]byte, len(b))
	copy(work, b)
	if negative {
		carry := byte(1)
		for i := 0; i < len(work); i++ {
			work[i] = ^work[i]
			sum := uint16(work[i]) + uint16(carry)
			work[i] = byte(sum)
			carry = byte(sum >> 8)
		}
	}
	// work is now little-endian magnitude; reverse to big-endian for big.Int.
	be := make([]byte, len(work))
	for i, b := range work {
		be[len(work)-1-i] = b
	}
	v := new(big.Int).SetBytes(be)
	if negative {
		v.Neg(v)
	}
	return v
}
