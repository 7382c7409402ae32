package chx

import (
	"context"
	"testing"

	"github.com/mrhb33/chx/internal/chtest"
)

func TestInsertEndSendsFullBody(t *testing.T) {
	srv := chtest.New()
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	ins, err := OpenInsert[testRow](context.Background(), c, "events")
	if err != nil {
		t.Fatal(err)
	}
	rows := []testRow{{No: 1, Name: "a"}, {No: 2, Name: "b"}, {No: 3, Name: "c"}}
	for i := range rows {
		if err := ins.Write(&rows[i]); err != nil {
			t.Fatal(err)
		}
	}
	if ins.RowsWritten() != 3 {
		t.Fatalf("want 3 rows written, got %d", ins.RowsWritten())
	}
	if err := ins.End(); err != nil {
		t.Fatal(err)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("want 1 request, got %d", len(reqs))
	}
	want := encodeTestRows(rows)
	if string(reqs[0].Body) != string(want) {
		t.Fatalf("body mismatch: got %d bytes, want %d bytes", len(reqs[0].Body), len(want))
	}
}

func TestInsertAbortRejectsLaterWriteAndEnd(t *testing.T) {
	srv := chtest.New()
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	ins, err := OpenInsert[testRow](context.Background(), c, "events")
	if err != nil {
		t.Fatal(err)
	}
	row := testRow{No: 1, Name: "a"}
	if err := ins.Write(&row); err != nil {
		t.Fatal(err)
	}
	ins.Abort()

	// The server-side handler may or may not have observed the aborted
	// request by the time Abort returns (the pipe just stops, the server
	// goroutine unblocks on its own schedule); what matters is that
	// writing or ending after Abort is rejected.
	if err := ins.Write(&row); err == nil {
		t.Fatal("want error writing after abort")
	}
	if err := ins.End(); err == nil {
		t.Fatal("want error ending after abort")
	}
}

func TestInsertWriteAfterEndFails(t *testing.T) {
	srv := chtest.New()
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	ins, err := OpenInsert[testRow](context.Background(), c, "events")
	if err != nil {
		t.Fatal(err)
	}
	if err := ins.End(); err != nil {
		t.Fatal(err)
	}
	row := testRow{No: 1, Name: "a"}
	if err := ins.Write(&row); err == nil {
		t.Fatal("want error writing after end")
	}
}
