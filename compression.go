package chx

// CompressionMode selects whether query/insert bodies are LZ4-framed
// and, if so, which codec variant compresses each block (spec §3).
type CompressionMode int

const (
	// CompressionNone sends and expects uncompressed bodies.
	CompressionNone CompressionMode = iota
	// CompressionLZ4 uses the fast LZ4 block codec.
	CompressionLZ4
	// CompressionLZ4HC uses the high-compression LZ4HC codec at a
	// configurable level (1..12).
	CompressionLZ4HC
)

// Compression is a fully-specified compression choice: a mode plus,
// for LZ4HC, the level (spec §3 "Compression mode: one of {None, LZ4,
// LZ4HC(level 1..12)}").
type Compression struct {
	Mode  CompressionMode
	Level int
}

// NoCompression disables compression on both directions of a query.
var NoCompression = Compression{Mode: CompressionNone}

// LZ4 selects the fast LZ4 codec.
var LZ4 = Compression{Mode: CompressionLZ4}

// LZ4HC selects LZ4HC at the given level, clamped to [1, 12].
func LZ4HC(level int) Compression {
	if level < 1 {
		level = 1
	}
	if level > 12 {
		level = 12
	}
	return Compression{Mode: CompressionLZ4HC, Level: level}
}

func (c Compression) enabled() bool { return c.Mode != CompressionNone }

// lz4Level returns the lz4block.Writer level argument: 0 selects plain
// LZ4, 1..12 selects LZ4HC at that level.
func (c Compression) lz4Level() int {
	if c.Mode == CompressionLZ4HC {
		return c.Level
	}
	return 0
}
