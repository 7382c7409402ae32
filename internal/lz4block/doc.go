// Package lz4block frames a request or response body as a sequence of
// LZ4 blocks: 16-byte CityHash128 checksum, 4-byte compressed size
// (including the 24-byte header), 4-byte uncompressed size, then the
// LZ4-compressed payload (spec §4.3). Block boundaries may fall
// anywhere, including inside a row — callers read through Reader and
// write through Writer exactly like any other byte stream.
package lz4block
