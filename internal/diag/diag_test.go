package diag

import (
	"testing"

	"github.com/csc-go/compiler/pkg/token"
)

func TestSinkAccumulates(t *testing.T) {
	s := NewSink()
	if s.HasErrors() {
		t.Fatal("empty sink reports errors")
	}
	s.Add(ResolveUndefinedSymbol, token.Range{}, "undefined symbol %q", "Foo")
	s.Add(ResolveAmbiguousMethod, token.Range{}, "ambiguous call")
	if !s.HasErrors() {
		t.Fatal("sink with diagnostics reports no errors")
	}
	if len(s.Diagnostics()) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(s.Diagnostics()))
	}
}

func TestSinkFilter(t *testing.T) {
	s := NewSink()
	s.Add(ResolveAmbiguousMethod, token.Range{}, "a")
	s.Add(ResolveMethodNotDefined, token.Range{}, "b")
	s.Add(ResolveAmbiguousMethod, token.Range{}, "c")

	got := s.Filter(ResolveAmbiguousMethod)
	if len(got) != 2 {
		t.Fatalf("expected 2 filtered diagnostics, got %d", len(got))
	}
}
