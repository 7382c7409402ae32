package httpexec

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Executor builds and issues the HTTP requests that carry queries,
// inserts, and watch subscriptions (spec §4.4). One Executor is shared
// by every clone of a client, so its *http.Transport (and the
// connection pool it owns) is shared too.
type Executor struct {
	base   *url.URL
	client *http.Client
}

// New builds an Executor against baseURL.
func New(baseURL string) (*Executor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Executor{base: u, client: &http.Client{Transport: newTransport()}}, nil
}

// Fetch issues a read-only SELECT. It picks GET when the rendered URL
// fits the budget and POST otherwise, moving the SQL into the body to
// keep the URL small (spec §4.4: GET only for pure SELECTs).
func (ex *Executor) Fetch(ctx context.Context, sql string, opts Options) (io.ReadCloser, error) {
	return ex.fetch(ctx, sql, opts, false)
}

// FetchPOST issues a request that always POSTs, regardless of how
// small the rendered URL would be: WATCH subscriptions and any DDL/DML
// statement (e.g. CREATE LIVE VIEW) must never go over GET, since a
// ClickHouse GET endpoint is read-only and rejects writes with
// "Cannot execute query in readonly mode" (spec §4.4: "always POST for
// INSERT and WATCH").
func (ex *Executor) FetchPOST(ctx context.Context, sql string, opts Options) (io.ReadCloser, error) {
	return ex.fetch(ctx, sql, opts, true)
}

func (ex *Executor) fetch(ctx context.Context, sql string, opts Options, forcePOST bool) (io.ReadCloser, error) {
	u := buildURL(ex.base, sql, opts)

	method := http.MethodGet
	var body io.Reader
	if forcePOST || !fitsGETBudget(u) {
		method = http.MethodPost
		body = strings.NewReader(sql)
		u = stripQueryParam(u)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	resp, err := ex.client.Do(req)
	if err != nil {
		return nil, err
	}
	return checkResponse(resp)
}

// stripQueryParam removes the rendered `query` parameter from u,
// returning a copy — used when the SQL moves into the POST body
// instead (spec §4.4).
func stripQueryParam(u *url.URL) *url.URL {
	cp := *u
	q := cp.Query()
	q.Del("query")
	cp.RawQuery = q.Encode()
	return &cp
}

// Stream is a POST request whose body the caller writes incrementally
// — the "paired body_writer/body_reader abstraction" spec §4.4
// describes, used for INSERT bodies. WATCH subscriptions go through
// FetchPOST instead.
type Stream struct {
	pw   *io.PipeWriter
	done chan streamResult
}

type streamResult struct {
	resp *http.Response
	err  error
}

// OpenStream starts the POST request; writes to the returned Stream
// become the request body as they happen.
func (ex *Executor) OpenStream(ctx context.Context, sql string, opts Options) *Stream {
	u := buildURL(ex.base, sql, opts)
	pr, pw := io.Pipe()
	s := &Stream{pw: pw, done: make(chan streamResult, 1)}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), pr)
	if err != nil {
		s.done <- streamResult{err: err}
		pw.CloseWithError(err)
		return s
	}

	go func() {
		resp, doErr := ex.client.Do(req)
		s.done <- streamResult{resp: resp, err: doErr}
	}()
	return s
}

func (s *Stream) Write(p []byte) (int, error) { return s.pw.Write(p) }

// Abort closes the body with an error instead of cleanly, so the
// server never receives a complete request and no rows become visible
// (spec §8 invariant 5).
func (s *Stream) Abort() {
	s.pw.CloseWithError(io.ErrClosedPipe)
}

// Finish closes the body normally and waits for the server's response.
func (s *Stream) Finish() (io.ReadCloser, error) {
	if err := s.pw.Close(); err != nil {
		return nil, err
	}
	res := <-s.done
	if res.err != nil {
		return nil, res.err
	}
	return checkResponse(res.resp)
}

// checkResponse surfaces a non-2xx response as ErrBadResponse with its
// drained body text; the cursor layer is responsible for the
// trailing-error case where the status line itself was 200 (spec
// §4.5).
func checkResponse(resp *http.Response) (io.ReadCloser, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}
	defer resp.Body.Close()
	text, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return nil, &ErrBadResponse{Status: resp.StatusCode, Text: string(text)}
}
