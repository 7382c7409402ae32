package lz4block

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// defaultWorkingBuffer is the 1 MiB accumulation buffer spec §4.3
// documents for insert bodies; a flush compresses whatever has
// accumulated, and the final flush on Close may be short.
const defaultWorkingBuffer = 1 << 20

// Writer accumulates written bytes and emits them as a sequence of LZ4
// blocks (spec §4.3) to the underlying writer. It implements io.Writer
// and io.Closer; Close flushes any partial final block.
type Writer struct {
	dst   io.Writer
	level int // 0 = fast LZ4, 1..12 = LZ4HC level

	buf        []byte
	maxBuf     int
	compressed []byte
	hashTable  []int
	chainTable []int
}

// NewWriter wraps dst. level 0 selects plain LZ4; 1..12 selects LZ4HC
// at that compression level (spec §3 Compression mode).
func NewWriter(dst io.Writer, level int) *Writer {
	return &Writer{dst: dst, level: level, maxBuf: defaultWorkingBuffer}
}

func (w *Writer) Write(p []byte) (int, error) {
	total := len(p)
	w.buf = append(w.buf, p...)
	for len(w.buf) >= w.maxBuf {
		if err := w.flushChunk(w.buf[:w.maxBuf]); err != nil {
			return 0, err
		}
		remaining := len(w.buf) - w.maxBuf
		copy(w.buf, w.buf[w.maxBuf:])
		w.buf = w.buf[:remaining]
	}
	return total, nil
}

// Flush compresses and writes any partially-accumulated bytes as a
// (possibly short) final block, without closing the underlying writer.
func (w *Writer) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if err := w.flushChunk(w.buf); err != nil {
		return err
	}
	w.buf = w.buf[:0]
	return nil
}

// Close flushes any remaining bytes. It does not close dst.
func (w *Writer) Close() error {
	return w.Flush()
}

func (w *Writer) flushChunk(chunk []byte) error {
	bound := lz4.CompressBlockBound(len(chunk))
	if cap(w.compressed) < bound {
		w.compressed = make([]byte, bound)
	}
	dst := w.compressed[:bound]

	var n int
	var err error
	if w.level > 0 {
		if w.hashTable == nil {
			w.hashTable = make([]int, 1<<16)
		}
		if w.chainTable == nil {
			w.chainTable = make([]int, 1<<16)
		}
		n, err = lz4.CompressBlockHC(chunk, dst, lz4.CompressionLevel(w.level), w.hashTable, w.chainTable)
	} else {
		if w.hashTable == nil {
			w.hashTable = make([]int, 1<<16)
		}
		n, err = lz4.CompressBlock(chunk, dst, w.hashTable)
	}
	if err != nil {
		return err
	}
	if n == 0 {
		// pierrec signals incompressible input by returning 0 with no
		// error. Retry through the fast LZ4 path with a fresh hash
		// table; no uncompressed (raw) block form is written.
		n, err = lz4.CompressBlock(chunk, dst, make([]int, 1<<16))
		if err != nil {
			return err
		}
	}

	payload := dst[:n]
	compressedSize := uint32(headerSize + n)
	uncompressedSize := uint32(len(chunk))
	sum := checksum(compressedSize, uncompressedSize, payload)

	var header [headerSize]byte
	putHeader(header[:], sum, compressedSize, uncompressedSize)

	if _, err := w.dst.Write(header[:]); err != nil {
		return err
	}
	_, err = w.dst.Write(payload)
	return err
}
