package chx

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/mrhb33/chx/internal/httpexec"
	"github.com/mrhb33/chx/internal/lz4block"
	"github.com/mrhb33/chx/internal/wire"
)

// insertSoftFlushThreshold is the buffered-bytes watermark at which
// Insert.Write proactively flushes to the stream instead of letting
// the buffer grow unbounded (spec §4.6).
const insertSoftFlushThreshold = 128 << 10

// Insert is an open `INSERT INTO table (fields) FORMAT RowBinary`
// session. Rows are buffered and periodically flushed to the request
// body; the insert only becomes visible on the server once End()
// completes the body and the server accepts it (spec §4.6, §8
// invariant 5). Go has no destructors, so "dropped without End()" is
// represented here as: never call End(); whether the caller also calls
// Abort() (recommended, to release the connection promptly) or simply
// stops referencing the Insert, the request body is never completed
// and the server never sees a full insert.
type Insert[R any] struct {
	client   *Client
	schema   *wire.Schema
	stream   *httpexec.Stream
	enc      *wire.Encoder
	writer   io.Writer // stream, or an lz4block.Writer wrapping it
	lz4      *lz4block.Writer
	totalBytes int
	totalRows  int
	ended      bool
	aborted    bool
}

// InsertOption configures an Insert at OpenInsert time.
type InsertOption func(*insertConfig)

type insertConfig struct {
	settings map[string]string
	compress *Compression
}

// InsertSetting overrides a server-side setting for this insert only.
func InsertSetting(name, value string) InsertOption {
	return func(cfg *insertConfig) { cfg.settings[name] = value }
}

// InsertCompression overrides the client's default compression for
// this insert's body.
func InsertCompression(c Compression) InsertOption {
	return func(cfg *insertConfig) { cfg.compress = &c }
}

// OpenInsert opens an insert session against table for rows of type R.
func OpenInsert[R any](ctx context.Context, c *Client, table string, opts ...InsertOption) (*Insert[R], error) {
	schema, err := wire.SchemaFor(reflect.TypeOf((*R)(nil)).Elem())
	if err != nil {
		return nil, wrapErr(KindInvalidParams, err, "resolve row schema")
	}

	cfg := &insertConfig{settings: make(map[string]string)}
	for _, opt := range opts {
		opt(cfg)
	}

	compression := c.compression
	if cfg.compress != nil {
		compression = *cfg.compress
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) FORMAT RowBinary", table, strings.Join(schema.Names(), ","))

	ctx, span := c.tracer.Start(ctx, "chx.Insert")
	defer span.End()

	httpOpts := c.httpOptions(cfg.settings)
	httpOpts.Decompress = compression.enabled()
	stream := c.exec.OpenStream(ctx, sql, httpOpts)

	ins := &Insert[R]{
		client: c,
		schema: schema,
		stream: stream,
		enc:    wire.NewEncoder(4096),
	}
	if compression.enabled() {
		ins.lz4 = lz4block.NewWriter(stream, compression.lz4Level())
		ins.writer = ins.lz4
	} else {
		ins.writer = stream
	}
	return ins, nil
}

// Write encodes row and appends it to the pending buffer, flushing to
// the underlying stream once insertSoftFlushThreshold bytes have
// accumulated (spec §4.6).
func (ins *Insert[R]) Write(row *R) error {
	if ins.ended || ins.aborted {
		return newErr(KindInvalidParams, "write after end/abort")
	}
	before := ins.enc.Len()
	if err := ins.schema.EncodeRow(ins.enc, row); err != nil {
		return wrapErr(KindDecode, err, "encode row")
	}
	ins.totalBytes += ins.enc.Len() - before
	ins.totalRows++
	if ins.enc.Len() >= insertSoftFlushThreshold {
		return ins.flush()
	}
	return nil
}

// RowsWritten returns the number of rows successfully encoded into
// this session so far (buffered or already flushed).
func (ins *Insert[R]) RowsWritten() int { return ins.totalRows }

// BytesWritten returns the number of row-binary bytes encoded into
// this session so far, before compression.
func (ins *Insert[R]) BytesWritten() int { return ins.totalBytes }

func (ins *Insert[R]) flush() error {
	if ins.enc.Len() == 0 {
		return nil
	}
	if _, err := ins.writer.Write(ins.enc.Bytes()); err != nil {
		return wrapErr(KindNetwork, err, "stream insert body")
	}
	ins.enc.Reset()
	return nil
}

// End flushes any buffered rows, closes the request body, and waits
// for the server's acceptance. Once End returns successfully the
// inserted rows are visible.
func (ins *Insert[R]) End() error {
	if ins.aborted {
		return newErr(KindInvalidParams, "end after abort")
	}
	if ins.ended {
		return nil
	}
	ins.ended = true

	if err := ins.flush(); err != nil {
		ins.stream.Abort()
		return err
	}
	if ins.lz4 != nil {
		if err := ins.lz4.Close(); err != nil {
			ins.stream.Abort()
			return wrapErr(KindDecompression, err, "close lz4 writer")
		}
	}
	resp, err := ins.stream.Finish()
	if err != nil {
		return translateExecErr(err)
	}
	return resp.Close()
}

// Abort discards any buffered rows and tears down the underlying
// request without finalizing it; no rows become visible (spec §8
// invariant 5).
func (ins *Insert[R]) Abort() {
	if ins.ended || ins.aborted {
		return
	}
	ins.aborted = true
	ins.stream.Abort()
}
