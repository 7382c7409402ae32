package chtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Response is one scripted reply: a status code and a body.
type Response struct {
	Status int
	Body   []byte
}

// Server wraps httptest.Server, replaying scripted Responses in
// request order. Requests beyond the scripted set get a bare 200 with
// an empty body, so a test only needs to script what it cares about.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses []Response
	requests  []RecordedRequest
}

// RecordedRequest is a snapshot of an inbound request, captured before
// the body is discarded.
type RecordedRequest struct {
	Method string
	URL    string
	Body   []byte
}

// New starts a Server. Call Close when done, same as httptest.Server.
func New() *Server {
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Script appends a response to the playback queue.
func (s *Server) Script(resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, resp)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{Method: r.Method, URL: r.URL.String(), Body: body})
	resp := Response{Status: http.StatusOK}
	if len(s.responses) > 0 {
		resp, s.responses = s.responses[0], s.responses[1:]
	}
	s.mu.Unlock()

	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

// Requests returns every request received so far, in order.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}
