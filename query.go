package chx

import (
	"context"
	"io"
	"reflect"

	"github.com/mrhb33/chx/internal/lz4block"
	"github.com/mrhb33/chx/internal/sqlbind"
	"github.com/mrhb33/chx/internal/wire"
)

// Query is a SQL template plus bound values and per-query settings,
// built against one Client. Finish it with Rows[R] once the row type
// is known, so `?fields` can expand (spec §4.2).
type Query struct {
	client   *Client
	template string
	binder   *sqlbind.Binder
	settings map[string]string
	compress *Compression
}

// Query starts building a query against the given SQL template.
func (c *Client) Query(template string) *Query {
	return &Query{
		client:   c,
		template: template,
		binder:   sqlbind.New(),
		settings: make(map[string]string),
	}
}

// Bind appends a positional bound value, consumed left to right by the
// template's `?` placeholders.
func (q *Query) Bind(v any) *Query {
	q.binder.Bind(v)
	return q
}

// Setting overrides a server-side setting for this query only.
func (q *Query) Setting(name, value string) *Query {
	q.settings[name] = value
	return q
}

// Compress overrides the client's default compression for this query.
func (q *Query) Compress(c Compression) *Query {
	q.compress = &c
	return q
}

// Rows executes q and returns a Cursor decoding rows of type R. R's
// field list (via internal/wire.SchemaFor) both drives `?fields`
// expansion and the expected RowBinary column order.
func Rows[R any](ctx context.Context, q *Query) (*Cursor[R], error) {
	schema, err := wire.SchemaFor(reflect.TypeOf((*R)(nil)).Elem())
	if err != nil {
		return nil, wrapErr(KindInvalidParams, err, "resolve row schema")
	}
	q.binder.BindFields(schema.Names())

	sql, err := q.binder.Finish(q.template)
	if err != nil {
		return nil, wrapErr(KindInvalidParams, err, "bind query template")
	}

	compression := q.client.compression
	if q.compress != nil {
		compression = *q.compress
	}

	ctx, span := q.client.tracer.Start(ctx, "chx.Query")
	defer span.End()

	opts := q.client.httpOptions(q.settings)
	opts.Compress = compression.enabled()
	body, err := q.client.exec.Fetch(ctx, sql, opts)
	if err != nil {
		return nil, translateExecErr(err)
	}

	var r io.Reader = body
	if compression.enabled() {
		r = lz4block.NewReader(body)
	}
	return newCursor[R](body, r, schema), nil
}
