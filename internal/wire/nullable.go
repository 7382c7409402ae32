package wire

// EncodeNullable writes the 1-byte null flag (1 = null, 0 = present)
// and, if present, invokes encodeValue (spec §4.1).
func EncodeNullable(e *Encoder, isNull bool, encodeValue func()) {
	if isNull {
		e.Uint8(1)
		return
	}
	e.Uint8(0)
	encodeValue()
}

// DecodeNullable reads the null flag and, if the value is present,
// invokes decodeValue. It returns isNull so the caller can zero out its
// destination.
func DecodeNullable(d *Decoder, decodeValue func() error) (isNull bool, err error) {
	flag, err := d.Uint8()
	if err != nil {
		return false, err
	}
	if flag == 1 {
		return true, nil
	}
	return false, decodeValue()
}
