package chx

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// WatchOption configures a Watcher at OpenWatch time.
type WatchOption func(*watchConfig)

type watchConfig struct {
	limit      int
	onlyEvents bool
	refresh    time.Duration
}

// WatchLimit caps the number of updates WATCH emits before the server
// closes the stream (SQL `LIMIT N`).
func WatchLimit(n int) WatchOption {
	return func(cfg *watchConfig) { cfg.limit = n }
}

// WatchOnlyEvents skips decoding the row payload, reporting only the
// `_version` of each update (spec §4.8 "only_events() reports versions
// only").
func WatchOnlyEvents() WatchOption {
	return func(cfg *watchConfig) { cfg.onlyEvents = true }
}

// WatchRefresh sets the live view's refresh interval (`WITH TIMEOUT AND
// REFRESH N`, in whole seconds) when a SELECT (rather than an existing
// view name) is given.
func WatchRefresh(d time.Duration) WatchOption {
	return func(cfg *watchConfig) { cfg.refresh = d }
}

// Watcher yields `(version, row)` pairs from a live view's WATCH
// stream. Per spec §9's open question, a broken WATCH stream is not
// reconnected: Next returns the underlying error and the caller is
// expected to call OpenWatch again.
type Watcher[R any] struct {
	cursor     *jsonCursor
	onlyEvents bool
}

// OpenWatch subscribes to updates on queryOrName. If it looks like a
// SELECT, a temporary live view named `lv_<hex(sha1(query))>` is
// created first (spec §4.8, §8 invariant 10: two watchers over the
// same SELECT derive the same name and therefore share the view).
func OpenWatch[R any](ctx context.Context, c *Client, queryOrName string, opts ...WatchOption) (*Watcher[R], error) {
	cfg := watchConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := queryOrName
	if isSelectQuery(queryOrName) {
		name = liveViewName(queryOrName)
		if err := createLiveView(ctx, c, name, queryOrName, cfg.refresh); err != nil {
			return nil, err
		}
	}

	watchSQL := "WATCH " + name
	if cfg.limit > 0 {
		watchSQL += fmt.Sprintf(" LIMIT %d", cfg.limit)
	}
	watchSQL += " FORMAT JSONEachRowWithProgress"

	ctx, span := c.tracer.Start(ctx, "chx.Watch")
	defer span.End()

	// WATCH always POSTs (spec §4.4): a GET endpoint is read-only and a
	// long-lived subscription has no business sharing a URL-budget
	// decision with ordinary SELECTs.
	body, err := c.exec.FetchPOST(ctx, watchSQL, c.httpOptions(nil))
	if err != nil {
		return nil, translateExecErr(err)
	}
	return &Watcher[R]{cursor: newJSONCursor(body), onlyEvents: cfg.onlyEvents}, nil
}

// liveViewName derives the deterministic temporary view name for a
// SELECT, so repeated watches over the same query converge on one
// underlying live view (spec §4.8, §8 invariant 10).
func liveViewName(query string) string {
	sum := sha1.Sum([]byte(query))
	return "lv_" + hex.EncodeToString(sum[:])
}

func isSelectQuery(s string) bool {
	trimmed := strings.TrimSpace(s)
	return len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "SELECT")
}

func createLiveView(ctx context.Context, c *Client, name, query string, refresh time.Duration) error {
	sql := "CREATE LIVE VIEW IF NOT EXISTS " + name + " WITH TIMEOUT"
	if refresh > 0 {
		sql += fmt.Sprintf(" AND REFRESH %d", int(refresh.Seconds()))
	}
	sql += " AS " + query

	ctx, span := c.tracer.Start(ctx, "chx.Watch.createLiveView")
	defer span.End()

	// CREATE LIVE VIEW is DDL, not a SELECT: it must POST even when the
	// rendered URL would easily fit the GET budget, since ClickHouse's
	// GET endpoint is read-only and rejects it outright (spec §4.4).
	body, err := c.exec.FetchPOST(ctx, sql, c.httpOptions(nil))
	if err != nil {
		return translateExecErr(err)
	}
	return body.Close()
}

// Next decodes the next watch update. ok is false at clean end of
// stream; once either ok is false or err is non-nil, every later call
// returns the same terminal outcome (mirroring Cursor's linearity).
func (w *Watcher[R]) Next() (version uint64, row R, ok bool, err error) {
	version, raw, ok, err := w.cursor.next()
	if err != nil || !ok {
		return 0, row, ok, err
	}
	if w.onlyEvents {
		return version, row, true, nil
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		var zero R
		_, _, _, ferr := w.cursor.fail(wrapErr(KindDecode, err, "decode watch row"))
		return 0, zero, false, ferr
	}
	return version, row, true, nil
}

// Close releases the underlying response body.
func (w *Watcher[R]) Close() error {
	return w.cursor.Close()
}

// jsonCursor reads NDJSON lines from a JSONEachRowWithProgress stream,
// discarding `progress` objects and surfacing each data object's
// `_version` alongside its raw JSON for the caller to decode (spec
// §4.8).
type jsonCursor struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
	err     error
}

func newJSONCursor(body io.ReadCloser) *jsonCursor {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	return &jsonCursor{body: body, scanner: sc}
}

func (j *jsonCursor) next() (uint64, json.RawMessage, bool, error) {
	if j.done {
		return 0, nil, false, j.err
	}

	for j.scanner.Scan() {
		line := j.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var probe map[string]json.RawMessage
		if err := json.Unmarshal(line, &probe); err != nil {
			return j.fail(wrapErr(KindDecode, err, "decode watch line"))
		}
		if _, isProgress := probe["progress"]; isProgress {
			continue
		}

		verRaw, ok := probe["_version"]
		if !ok {
			return j.fail(newErr(KindDecode, "watch row missing _version"))
		}
		version, err := decodeVersion(verRaw)
		if err != nil {
			return j.fail(wrapErr(KindDecode, err, "decode watch _version"))
		}

		raw := append([]byte(nil), line...)
		return version, raw, true, nil
	}

	if err := j.scanner.Err(); err != nil {
		j.err = wrapErr(KindNetwork, err, "read watch stream")
	}
	j.done = true
	return 0, nil, false, j.err
}

func (j *jsonCursor) fail(err *Error) (uint64, json.RawMessage, bool, error) {
	j.done = true
	j.err = err
	return 0, nil, false, err
}

// decodeVersion accepts _version as either a JSON number or a
// JSON string of digits — ClickHouse's JSONEachRow family renders
// wide integer columns as strings to avoid float64 precision loss.
func decodeVersion(raw json.RawMessage) (uint64, error) {
	var asNumber uint64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		return 0, err
	}
	return strconv.ParseUint(asString, 10, 64)
}

func (j *jsonCursor) Close() error {
	return j.body.Close()
}
