package chx

import (
	"context"
	"reflect"
	"testing"

	"github.com/mrhb33/chx/internal/chtest"
	"github.com/mrhb33/chx/internal/wire"
)

type testRow struct {
	No   uint32 `ch:"no"`
	Name string `ch:"name"`
}

func encodeTestRows(rows []testRow) []byte {
	schema, err := wire.SchemaFor(reflect.TypeOf(testRow{}))
	if err != nil {
		panic(err)
	}
	enc := wire.NewEncoder(256)
	for i := range rows {
		if err := schema.EncodeRow(enc, &rows[i]); err != nil {
			panic(err)
		}
	}
	return enc.Bytes()
}

func TestCursorReadsAllRowsThenCleanEnd(t *testing.T) {
	srv := chtest.New()
	defer srv.Close()

	body := encodeTestRows([]testRow{{No: 500, Name: "a"}, {No: 504, Name: "b"}})
	srv.Script(chtest.Response{Status: 200, Body: body})

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	cur, err := Rows[testRow](context.Background(), c.Query("SELECT ?fields FROM t WHERE no BETWEEN ? AND ?").Bind(uint32(500)).Bind(uint32(504)))
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()

	var got []testRow
	for {
		row, ok, err := cur.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		got = append(got, row)
	}
	if len(got) != 2 || got[0].No != 500 || got[1].Name != "b" {
		t.Fatalf("unexpected rows: %+v", got)
	}

	// Subsequent calls keep returning the terminal outcome.
	if _, ok, err := cur.Next(); ok || err != nil {
		t.Fatalf("want terminal (false, nil), got (%v, %v)", ok, err)
	}
}

func TestCursorMidStreamError(t *testing.T) {
	srv := chtest.New()
	defer srv.Close()

	body := encodeTestRows([]testRow{{No: 1, Name: "x"}, {No: 2, Name: "y"}})
	body = append(body, []byte("Code: 42. DB::Exception: something went wrong")...)
	srv.Script(chtest.Response{Status: 200, Body: body})

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	cur, err := Rows[testRow](context.Background(), c.Query("SELECT ?fields FROM t"))
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()

	row1, ok, err := cur.Next()
	if err != nil || !ok || row1.No != 1 {
		t.Fatalf("row1: %+v %v %v", row1, ok, err)
	}
	row2, ok, err := cur.Next()
	if err != nil || !ok || row2.No != 2 {
		t.Fatalf("row2: %+v %v %v", row2, ok, err)
	}
	_, ok, firstErr := cur.Next()
	if ok {
		t.Fatal("want no third row")
	}
	if !IsKind(firstErr, KindBadResponse) {
		t.Fatalf("want KindBadResponse, got %v", firstErr)
	}

	// Terminal outcome repeats.
	_, ok, secondErr := cur.Next()
	if ok || secondErr != firstErr {
		t.Fatalf("want repeated terminal error, got (%v, %v)", ok, secondErr)
	}
}

func TestPingSucceeds(t *testing.T) {
	srv := chtest.New()
	defer srv.Close()

	schema, err := wire.SchemaFor(reflect.TypeOf(pingRow{}))
	if err != nil {
		t.Fatal(err)
	}
	enc := wire.NewEncoder(8)
	row := pingRow{OK: 1}
	if err := schema.EncodeRow(enc, &row); err != nil {
		t.Fatal(err)
	}
	srv.Script(chtest.Response{Status: 200, Body: enc.Bytes()})

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}
