package wire

// EncodeArray writes a varuint length followed by n elements, each
// written by encodeElem (spec §4.1: "Array<T>: varuint length, then
// length encoded elements"). Map<K,V> is encoded identically by the
// caller treating each element as a (K,V) pair.
func EncodeArray(e *Encoder, n int, encodeElem func(i int)) {
	e.Varuint(uint64(n))
	for i := 0; i < n; i++ {
		encodeElem(i)
	}
}

// DecodeArray reads a varuint length and invokes decodeElem that many
// times. A TooLarge length is surfaced by the Decoder's Varuint call.
func DecodeArray(d *Decoder, decodeElem func(i int) error) (int, error) {
	n, err := d.Varuint()
	if err != nil {
		return 0, err
	}
	for i := uint64(0); i < n; i++ {
		if err := decodeElem(int(i)); err != nil {
			return int(n), err
		}
	}
	return int(n), nil
}
