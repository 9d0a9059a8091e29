package parser

import (
	"testing"

	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/lexer"
)

func parseSource(t *testing.T, src string) (*ast.Program, *diag.Sink) {
	t.Helper()
	diags := diag.NewSink()
	l := lexer.New("test.cs", src, diags)
	p := New(l, diags)
	return p.Parse(), diags
}

func checkNoErrors(t *testing.T, diags *diag.Sink) {
	t.Helper()
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors:\n%s", diags.Format())
	}
}

func TestParseEmptyNamespace(t *testing.T) {
	prog, diags := parseSource(t, "namespace App { }")
	checkNoErrors(t, diags)
	if len(prog.Namespaces) != 1 {
		t.Fatalf("expected 1 namespace, got %d", len(prog.Namespaces))
	}
	if prog.Namespaces[0].Name != "App" {
		t.Errorf("namespace name = %q, want %q", prog.Namespaces[0].Name, "App")
	}
}

func TestParseDottedNamespaceAndUsing(t *testing.T) {
	src := `
namespace App.Core {
	using System;
}
`
	prog, diags := parseSource(t, src)
	checkNoErrors(t, diags)
	ns := prog.Namespaces[0]
	if ns.Name != "App.Core" {
		t.Errorf("namespace name = %q, want %q", ns.Name, "App.Core")
	}
	if len(ns.Usings) != 1 || ns.Usings[0].Namespace != "System" {
		t.Fatalf("expected one using of System, got %+v", ns.Usings)
	}
}

func TestParseClassWithFieldAndMethod(t *testing.T) {
	src := `
namespace App {
	public class Point {
		public int X;
		public int GetX() {
			return X;
		}
	}
}
`
	prog, diags := parseSource(t, src)
	checkNoErrors(t, diags)
	td, ok := prog.Namespaces[0].Types[0].(*ast.TypeDecl)
	if !ok {
		t.Fatalf("expected *ast.TypeDecl, got %T", prog.Namespaces[0].Types[0])
	}
	if td.Name != "Point" || td.Kind != ast.TypeClass {
		t.Fatalf("unexpected type decl: %+v", td)
	}
	if len(td.Fields) != 1 || td.Fields[0].Name != "X" {
		t.Fatalf("expected one field named X, got %+v", td.Fields)
	}
	if len(td.Methods) != 1 || td.Methods[0].Name != "GetX" {
		t.Fatalf("expected one method named GetX, got %+v", td.Methods)
	}
}

func TestParseClassInheritanceAndInterfaces(t *testing.T) {
	src := `
namespace App {
	public class Derived : Base, IFoo, IBar {
	}
}
`
	prog, diags := parseSource(t, src)
	checkNoErrors(t, diags)
	td := prog.Namespaces[0].Types[0].(*ast.TypeDecl)
	if td.BaseName == nil || td.BaseName.Name != "Base" {
		t.Fatalf("expected BaseName Base, got %+v", td.BaseName)
	}
	if len(td.Interfaces) != 3 {
		t.Fatalf("expected 3 entries in Interfaces (base+2 ifaces), got %d", len(td.Interfaces))
	}
}

func TestParseConstructorWithBaseChain(t *testing.T) {
	src := `
namespace App {
	public class Derived : Base {
		public Derived(int x) : base(x) {
		}
	}
}
`
	prog, diags := parseSource(t, src)
	checkNoErrors(t, diags)
	td := prog.Namespaces[0].Types[0].(*ast.TypeDecl)
	m := td.Methods[0]
	if !m.IsCtor {
		t.Fatal("expected a constructor")
	}
	if m.CtorChain == nil || m.CtorChain.IsThis {
		t.Fatalf("expected a base(...) chain, got %+v", m.CtorChain)
	}
	if len(m.CtorChain.Args) != 1 {
		t.Fatalf("expected 1 ctor chain arg, got %d", len(m.CtorChain.Args))
	}
}

func TestParseEnumWithExplicitValues(t *testing.T) {
	src := `
namespace App {
	public enum Color {
		Red = 1,
		Green,
		Blue = 5
	}
}
`
	prog, diags := parseSource(t, src)
	checkNoErrors(t, diags)
	ed := prog.Namespaces[0].Types[0].(*ast.EnumDecl)
	if len(ed.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(ed.Members))
	}
	if ed.Members[0].Value == nil {
		t.Error("Red should have an explicit value")
	}
	if ed.Members[1].Value != nil {
		t.Error("Green should have no explicit value (sequential assignment)")
	}
}

func TestParseArrayTypeAndIndexing(t *testing.T) {
	src := `
namespace App {
	public class C {
		public void M() {
			int[] xs = new int[3];
			xs[0] = 1;
		}
	}
}
`
	_, diags := parseSource(t, src)
	checkNoErrors(t, diags)
}

func TestParseIfWhileForForeach(t *testing.T) {
	src := `
namespace App {
	public class C {
		public void M() {
			if (true) { } else { }
			while (true) { break; }
			for (int i = 0; i < 10; i = i + 1) { continue; }
			foreach (int x in xs) { }
		}
	}
}
`
	_, diags := parseSource(t, src)
	checkNoErrors(t, diags)
}

func TestParseTryCatchFinally(t *testing.T) {
	src := `
namespace App {
	public class C {
		public void M() {
			try {
			} catch (Exception e) {
				throw;
			} finally {
			}
		}
	}
}
`
	_, diags := parseSource(t, src)
	checkNoErrors(t, diags)
}

func TestParseSwitchStatement(t *testing.T) {
	src := `
namespace App {
	public class C {
		public void M(int x) {
			switch (x) {
				case 1:
					break;
				default:
					break;
			}
		}
	}
}
`
	_, diags := parseSource(t, src)
	checkNoErrors(t, diags)
}

func TestParseCastExpression(t *testing.T) {
	src := `
namespace App {
	public class C {
		public void M() {
			object o = null;
			int x = (int)o;
		}
	}
}
`
	_, diags := parseSource(t, src)
	checkNoErrors(t, diags)
}

func TestParseIsAsOperators(t *testing.T) {
	src := `
namespace App {
	public class C {
		public void M() {
			object o = null;
			bool b = o is C;
			C c = o as C;
		}
	}
}
`
	_, diags := parseSource(t, src)
	checkNoErrors(t, diags)
}

func TestParsePropertyWithGetSet(t *testing.T) {
	src := `
namespace App {
	public class C {
		public int X {
			get { return 0; }
			set { }
		}
	}
}
`
	prog, diags := parseSource(t, src)
	checkNoErrors(t, diags)
	td := prog.Namespaces[0].Types[0].(*ast.TypeDecl)
	if len(td.Properties) != 1 {
		t.Fatalf("expected 1 property, got %d", len(td.Properties))
	}
	if td.Properties[0].Getter == nil || td.Properties[0].Setter == nil {
		t.Error("expected both a getter and setter body")
	}
}

func TestParseSyntaxErrorRecoversToNextStatement(t *testing.T) {
	src := `
namespace App {
	public class C {
		public void M() {
			int x = ;
			int y = 1;
		}
	}
}
`
	_, diags := parseSource(t, src)
	if !diags.HasErrors() {
		t.Fatal("expected a syntax error for the malformed initializer")
	}
}

func TestParseOverloadedMethodsSameName(t *testing.T) {
	src := `
namespace App {
	public class C {
		public void M(int x) { }
		public void M(string x) { }
	}
}
`
	prog, diags := parseSource(t, src)
	checkNoErrors(t, diags)
	td := prog.Namespaces[0].Types[0].(*ast.TypeDecl)
	if len(td.Methods) != 2 {
		t.Fatalf("expected 2 overloads parsed as separate MethodDecls, got %d", len(td.Methods))
	}
}
