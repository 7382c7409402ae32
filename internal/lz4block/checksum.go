package lz4block

import (
	"encoding/binary"

	"github.com/go-faster/city"
)

// checksum computes the block checksum over the 8 size bytes followed
// by the compressed payload, per spec §4.3 ("16B cityhash128 of (size
// bytes + payload)"). This is the exact CityHash128 variant the server
// uses (go-faster/city's CH128, also relied on by go-faster/ch-go),
// hence the §6 MSRV note that implementers must supply cityhash128.
func checksum(compressedSize, uncompressedSize uint32, payload []byte) [16]byte {
	var sizeBytes [8]byte
	binary.LittleEndian.PutUint32(sizeBytes[0:4], compressedSize)
	binary.LittleEndian.PutUint32(sizeBytes[4:8], uncompressedSize)

	buf := make([]byte, 0, 8+len(payload))
	buf = append(buf, sizeBytes[:]...)
	buf = append(buf, payload...)

	sum := city.CH128(buf)
	var out [16]byte
	binary.LittleEndian.PutUint64(out[0:8], sum.Low)
	binary.LittleEndian.PutUint64(out[8:16], sum.High)
	return out
}
