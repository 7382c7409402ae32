package sqlbind

import (
	"errors"
	"testing"
)

func TestSelectWithFields(t *testing.T) {
	got, err := New().
		BindFields([]string{"no", "name"}).
		Bind(uint32(500)).
		Bind(uint32(504)).
		Finish("SELECT ?fields FROM t WHERE no BETWEEN ? AND ?")
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT no,name FROM t WHERE no BETWEEN 500 AND 504"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestBindIdentifier(t *testing.T) {
	got, err := New().
		Bind(Identifier("my table")).
		Finish("SELECT * FROM ?")
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT * FROM `my table`"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestEscapedPlaceholder(t *testing.T) {
	got, err := New().Finish("SELECT '??'")
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT '?'"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPlaceholderAccountingTooFewValues(t *testing.T) {
	_, err := New().Bind(1).Finish("SELECT ? , ?")
	if !errors.Is(err, ErrPlaceholderMismatch) {
		t.Fatalf("got %v want ErrPlaceholderMismatch", err)
	}
}

func TestPlaceholderAccountingTooManyValues(t *testing.T) {
	_, err := New().Bind(1).Bind(2).Finish("SELECT ?")
	if !errors.Is(err, ErrPlaceholderMismatch) {
		t.Fatalf("got %v want ErrPlaceholderMismatch", err)
	}
}

func TestFieldsWithoutRowType(t *testing.T) {
	_, err := New().Finish("SELECT ?fields FROM t")
	if !errors.Is(err, ErrPlaceholderMismatch) {
		t.Fatalf("got %v want ErrPlaceholderMismatch", err)
	}
}

func TestStringLiteralEscaping(t *testing.T) {
	got, err := New().Bind("O'Brien").Finish("SELECT ?")
	if err != nil {
		t.Fatal(err)
	}
	want := `SELECT 'O\'Brien'`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestArrayLiteral(t *testing.T) {
	got, err := New().Bind([]int32{1, 2, 3}).Finish("SELECT ?")
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT [1,2,3]"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestUnsupportedValue(t *testing.T) {
	_, err := New().Bind(struct{ X int }{}).Finish("SELECT ?")
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("got %v want ErrUnsupportedValue", err)
	}
}

func TestIdentifierWithInternalBacktick(t *testing.T) {
	got, err := New().Bind(Identifier("weird`name")).Finish("SELECT * FROM ?")
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT * FROM `weird``name`"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
