package lz4block

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// Reader parses a sequence of LZ4 blocks (spec §4.3) from src,
// verifying each checksum and surfacing decompressed bytes through the
// standard io.Reader contract.
type Reader struct {
	src     io.Reader
	pending []byte
	header  [headerSize]byte
}

func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

func (r *Reader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if err := r.fillBlock(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *Reader) fillBlock() error {
	if _, err := io.ReadFull(r.src, r.header[:]); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return ErrMalformedFrame
	}
	wantChecksum, compressedSize, uncompressedSize := parseHeader(r.header[:])
	if compressedSize < headerSize {
		return ErrMalformedFrame
	}
	payloadSize := compressedSize - headerSize
	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(r.src, payload); err != nil {
		return ErrMalformedFrame
	}

	got := checksum(compressedSize, uncompressedSize, payload)
	if got != wantChecksum {
		return ErrChecksumMismatch
	}

	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(payload, dst)
	if err != nil {
		return ErrMalformedFrame
	}
	r.pending = dst[:n]
	return nil
}
