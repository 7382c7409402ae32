package chx

import (
	"context"
	"fmt"
	"maps"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mrhb33/chx/internal/httpexec"
)

// Client is the immutable (after construction) configuration a Query,
// Insert, Inserter, or Watcher is built from: base URL, credentials,
// database, server-side options, and default compression (spec §3
// "Client configuration"). Clients are cheap to clone; clones share
// the underlying *httpexec.Executor and therefore its HTTP transport
// and connection pool.
type Client struct {
	exec *httpexec.Executor

	user, password, database string
	options                  map[string]string
	compression              Compression

	log    *zap.Logger
	tracer trace.Tracer
}

// Option configures a Client at construction or Clone time.
type Option func(*Client)

// WithCredentials sets the user/password sent with every request.
func WithCredentials(user, password string) Option {
	return func(c *Client) {
		c.user = user
		c.password = password
	}
}

// WithDatabase sets the default database.
func WithDatabase(database string) Option {
	return func(c *Client) { c.database = database }
}

// WithSetting adds a client-wide server-side setting (e.g.
// max_threads), merged under per-query settings at render time.
func WithSetting(name, value string) Option {
	return func(c *Client) { c.options[name] = value }
}

// WithCompression sets the default compression mode for queries and
// inserts that don't override it explicitly.
func WithCompression(c Compression) Option {
	return func(cl *Client) { cl.compression = c }
}

// WithLogger attaches a zap logger to the Client; Clone copies it.
// Defaults to zap.NewNop(). Queries, inserts, inserters and watchers do
// not write to it.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client against baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	exec, err := httpexec.New(baseURL)
	if err != nil {
		return nil, wrapErr(KindInvalidParams, err, "parse base URL %q", baseURL)
	}

	c := &Client{
		exec:    exec,
		options: make(map[string]string),
		log:     zap.NewNop(),
		tracer:  otel.Tracer("github.com/mrhb33/chx"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Clone returns a shallow copy that shares exec (and its transport)
// but owns its own settings map, so further WithSetting calls on the
// clone don't mutate the original (spec §3 "clones share the
// underlying HTTP transport").
func (c *Client) Clone(opts ...Option) *Client {
	cp := &Client{
		exec:        c.exec,
		user:        c.user,
		password:    c.password,
		database:    c.database,
		options:     maps.Clone(c.options),
		compression: c.compression,
		log:         c.log,
		tracer:      c.tracer,
	}
	for _, opt := range opts {
		opt(cp)
	}
	return cp
}

// mergedSettings combines client-wide settings with per-query
// overrides, per-query winning on key collision (§4 "Query settings
// merge order").
func (c *Client) mergedSettings(perQuery map[string]string) map[string]string {
	merged := make(map[string]string, len(c.options)+len(perQuery))
	maps.Copy(merged, c.options)
	maps.Copy(merged, perQuery)
	return merged
}

// httpOptions builds the base httpexec.Options for a request; callers
// set Compress (query response) or Decompress (insert body) depending
// on which direction they're framing (spec §4.3, §4.4).
func (c *Client) httpOptions(perQuery map[string]string) httpexec.Options {
	return httpexec.Options{
		Database: c.database,
		User:     c.user,
		Password: c.password,
		Settings: c.mergedSettings(perQuery),
	}
}

// Ping issues a cheap round trip (`SELECT 1`) to verify the server is
// reachable and credentials are accepted.
func (c *Client) Ping(ctx context.Context) error {
	cur, err := Rows[pingRow](ctx, c.Query("SELECT 1 AS ok"))
	if err != nil {
		return err
	}
	defer cur.Close()
	_, _, err = cur.Next()
	if err != nil {
		return err
	}
	return nil
}

type pingRow struct {
	OK uint8 `ch:"ok"`
}

func (c *Client) String() string {
	return fmt.Sprintf("chx.Client{database=%q}", c.database)
}
