package chtest

import (
	"io"
	"net/http"
	"testing"
)

func TestServerReplaysScriptedResponsesInOrder(t *testing.T) {
	srv := New()
	defer srv.Close()

	srv.Script(Response{Status: 200, Body: []byte("first")})
	srv.Script(Response{Status: 500, Body: []byte("second")})

	for _, want := range []struct {
		status int
		body   string
	}{
		{200, "first"},
		{500, "second"},
		{200, ""},
	} {
		resp, err := http.Get(srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != want.status || string(b) != want.body {
			t.Fatalf("got (%d, %q), want (%d, %q)", resp.StatusCode, b, want.status, want.body)
		}
	}

	if len(srv.Requests()) != 3 {
		t.Fatalf("want 3 recorded requests, got %d", len(srv.Requests()))
	}
}
