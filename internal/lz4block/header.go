package lz4block

import "encoding/binary"

// headerSize is the 24-byte block header: 16-byte checksum + two
// 4-byte little-endian sizes (spec §4.3).
const headerSize = 24

// checksumSize is the CityHash128 checksum prefix.
const checksumSize = 16

func putHeader(b []byte, checksum [16]byte, compressedSize, uncompressedSize uint32) {
	copy(b[0:16], checksum[:])
	binary.LittleEndian.PutUint32(b[16:20], compressedSize)
	binary.LittleEndian.PutUint32(b[20:24], uncompressedSize)
}

func parseHeader(b []byte) (checksum [16]byte, compressedSize, uncompressedSize uint32) {
	copy(checksum[:], b[0:16])
	compressedSize = binary.LittleEndian.Uint32(b[16:20])
	uncompressedSize = binary.LittleEndian.Uint32(b[20:24])
	return
}
