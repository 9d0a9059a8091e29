package memfactory

import (
	"testing"

	"github.com/csc-go/compiler/internal/backend"
)

func TestDeclareTypeIdempotent(t *testing.T) {
	f := New()
	h1 := f.DeclareType("App.Point", backend.KindClass, 0, nil, nil)
	h2 := f.DeclareType("App.Point", backend.KindClass, 0, nil, nil)
	if h1 != h2 {
		t.Error("DeclareType should return the same handle for a repeated name")
	}
	if len(f.Types) != 1 {
		t.Errorf("expected exactly 1 recorded type, got %d", len(f.Types))
	}
}

func TestDeclareFieldAndMethod(t *testing.T) {
	f := New()
	th := f.DeclareType("App.Point", backend.KindClass, 0, nil, nil)
	f.DeclareField(th, "x", "int", 0)
	mh := f.DeclareMethod(th, "GetX", nil, nil, "int", 0, false)
	f.EmitBody(mh, nil, []backend.Instr{{Op: backend.OpLdarg0}, {Op: backend.OpRet}})

	typ := f.FindType("App.Point")
	if len(typ.Fields) != 1 || typ.Fields[0].Name != "x" {
		t.Fatalf("expected field x, got %+v", typ.Fields)
	}
	m := typ.FindMethod("GetX")
	if m == nil || len(m.Body) != 2 {
		t.Fatalf("expected GetX with a 2-instruction body, got %+v", m)
	}
}

func TestEndOutputRejectsDoubleSave(t *testing.T) {
	f := New()
	f.BeginOutput("App")
	if err := f.EndOutput("out.exe"); err != nil {
		t.Fatalf("unexpected error on first save: %v", err)
	}
	if err := f.EndOutput("out.exe"); err == nil {
		t.Fatal("expected an error on a second EndOutput call")
	}
}
