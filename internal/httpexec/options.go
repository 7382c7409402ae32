package httpexec

// Options carries the per-request pieces of a request URL: the
// database to run against, credentials, server-side settings, and
// whether the request/response bodies are LZ4-framed (spec §4.3,
// §4.4). A zero Options adds no parameter beyond the query itself,
// leaving database, credentials and settings to the server's defaults.
type Options struct {
	Database string
	User     string
	Password string
	Settings map[string]string

	// Compress asks the server to LZ4-frame the response body
	// (compress=1).
	Compress bool
	// Decompress tells the server this request's body is already
	// LZ4-framed and should be unframed before use (decompress=1).
	Decompress bool
}
