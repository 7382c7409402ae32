package httpexec

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestFetchGETForSmallQuery(t *testing.T) {
	var gotMethod, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ex, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	body, err := ex.Fetch(context.Background(), "SELECT 1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	if gotMethod != http.MethodGet {
		t.Fatalf("want GET, got %s", gotMethod)
	}
	if gotQuery != "SELECT 1" {
		t.Fatalf("want query param, got %q", gotQuery)
	}
}

func TestFetchPOSTWhenOverGETBudget(t *testing.T) {
	var gotMethod string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ex, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	bigSQL := "SELECT * FROM t WHERE x IN (" + strings.Repeat("1,", 5000) + "1)"
	body, err := ex.Fetch(context.Background(), bigSQL, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	if gotMethod != http.MethodPost {
		t.Fatalf("want POST, got %s", gotMethod)
	}
	if gotBody != bigSQL {
		t.Fatalf("want SQL moved into body, got %q", gotBody)
	}
}

func TestFetchPOSTForcesPostEvenUnderGETBudget(t *testing.T) {
	var gotMethod, gotBody, gotQueryParam string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQueryParam = r.URL.Query().Get("query")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ex, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	body, err := ex.FetchPOST(context.Background(), "WATCH lv_abc FORMAT JSONEachRowWithProgress", Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	if gotMethod != http.MethodPost {
		t.Fatalf("want POST, got %s", gotMethod)
	}
	if gotQueryParam != "" {
		t.Fatalf("want SQL moved out of the query string, got %q", gotQueryParam)
	}
	if gotBody != "WATCH lv_abc FORMAT JSONEachRowWithProgress" {
		t.Fatalf("want SQL in body, got %q", gotBody)
	}
}

func TestFetchBadResponseSurfacesStatusAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Code: 62. DB::Exception: boom"))
	}))
	defer srv.Close()

	ex, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ex.Fetch(context.Background(), "SELECT 1", Options{})
	if err == nil {
		t.Fatal("want error")
	}
	badResp, ok := err.(*ErrBadResponse)
	if !ok {
		t.Fatalf("want *ErrBadResponse, got %T: %v", err, err)
	}
	if badResp.Status != http.StatusInternalServerError {
		t.Fatalf("got status %d", badResp.Status)
	}
	if !strings.Contains(badResp.Text, "DB::Exception") {
		t.Fatalf("got text %q", badResp.Text)
	}
}

func TestOpenStreamWritesBodyIncrementally(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ex, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	s := ex.OpenStream(context.Background(), "INSERT INTO t FORMAT RowBinary", Options{})
	s.Write([]byte("row1"))
	s.Write([]byte("row2"))
	resp, err := s.Finish()
	if err != nil {
		t.Fatal(err)
	}
	resp.Close()

	if gotBody != "row1row2" {
		t.Fatalf("got body %q", gotBody)
	}
}

func TestStreamAbortSendsNoCompleteBody(t *testing.T) {
	reqDone := make(chan struct{})
	var readErr error
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		close(reqDone)
	}))
	defer srv.Close()

	ex, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	s := ex.OpenStream(context.Background(), "INSERT INTO t FORMAT RowBinary", Options{})
	s.Write([]byte("row1"))
	s.Abort()
	<-reqDone
	if readErr == nil {
		t.Fatal("want the server's body read to fail on an aborted stream")
	}
}

func TestBuildURLCarriesQueryDatabaseAndSettings(t *testing.T) {
	base, _ := url.Parse("http://localhost:8123")
	u := buildURL(base, "SELECT 1", Options{
		Database: "default",
		User:     "default",
		Settings: map[string]string{"max_threads": "4"},
	})
	q := u.Query()
	if q.Get("query") != "SELECT 1" || q.Get("database") != "default" || q.Get("max_threads") != "4" {
		t.Fatalf("missing expected params: %s", u.RawQuery)
	}
}
