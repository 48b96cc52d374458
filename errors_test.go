package schemax_test

import (
	"testing"

	"github.com/schemax-dev/schemax"
)

func TestErrorPointer_Escaping(t *testing.T) {
	cases := []struct {
		loc  []any
		want string
	}{
		{nil, "/"},
		{[]any{"items", 2, "price"}, "/items/2/price"},
		{[]any{"a/b"}, "/a~1b"},
		{[]any{"a~b"}, "/a~0b"},
		{[]any{"~/"}, "/~0~1"},
	}
	for _, c := range cases {
		e := schemax.Error{Loc: c.loc}
		if got := e.Pointer(); got != c.want {
			t.Fatalf("%v: got %q, want %q", c.loc, got, c.want)
		}
	}
}

func TestNewValidationError_EmptyIsNil(t *testing.T) {
	if schemax.NewValidationError() != nil {
		t.Fatal("expected nil for empty list")
	}
}

func TestAsValidationError_NilAndForeign(t *testing.T) {
	if _, ok := schemax.AsValidationError(nil); ok {
		t.Fatal("nil must not match")
	}
	if _, ok := schemax.AsValidationError(&schemax.SchemaError{Code: schemax.SchemaIncomplete}); ok {
		t.Fatal("schema errors must not match")
	}
}
