// Package httpexec builds and executes the HTTP requests that carry
// queries, inserts, and watch subscriptions to the database, selecting
// GET or POST per spec §4.4 and exposing a streaming request body for
// callers that need to write as they go (inserts).
package httpexec
