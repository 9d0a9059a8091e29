package resolver

import (
	"testing"

	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/lexer"
	"github.com/csc-go/compiler/internal/parser"
)

// parseProgram lexes and parses src, failing the test on a parse error.
func parseProgram(t *testing.T, src string) (*ast.Program, *diag.Sink) {
	t.Helper()
	diags := diag.NewSink()
	l := lexer.New("test.cs", src, diags)
	p := parser.New(l, diags)
	prog := p.Parse()
	if diags.HasErrors() {
		t.Fatalf("parse errors:\n%s", diags.Format())
	}
	return prog, diags
}

func findType(prog *ast.Program, name string) *ast.TypeDecl {
	for _, ns := range prog.Namespaces {
		for _, td := range ns.Types {
			if decl, ok := td.(*ast.TypeDecl); ok && decl.Name == name {
				return decl
			}
		}
	}
	return nil
}

func findMethod(td *ast.TypeDecl, name string) *ast.MethodDecl {
	for _, m := range td.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func TestForEachDesugarsOverCustomEnumerator(t *testing.T) {
	src := `
namespace App {
	public class Counter {
		private int max;
		public Counter(int max) { this.max = max; }
		public Enumerator GetEnumerator() { return new Enumerator(max); }
	}
	public class Enumerator {
		private int max;
		public int Current;
		public Enumerator(int max) { this.max = max; this.Current = -1; }
		public bool MoveNext() {
			this.Current = this.Current + 1;
			return this.Current < max;
		}
	}
	public class Program {
		public static int Sum(Counter c) {
			int total = 0;
			foreach (int v in c) {
				total = total + v;
			}
			return total;
		}
	}
}
`
	prog, diags := parseProgram(t, src)
	res := New(diags).Run(prog)
	if diags.HasErrors() {
		t.Fatalf("unexpected resolve errors:\n%s", diags.Format())
	}
	progTy := findType(prog, "Program")
	sum := findMethod(progTy, "Sum")
	desugared, ok := sum.Body.Statements[1].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected the foreach statement to desugar into a BlockStmt ($e decl + while loop), got %T", sum.Body.Statements[1])
	}
	if len(desugared.Statements) != 2 {
		t.Fatalf("expected the desugared block to hold exactly the enumerator decl and the while loop, got %d statements", len(desugared.Statements))
	}
	if _, ok := desugared.Statements[0].(*ast.LocalVarDecl); !ok {
		t.Errorf("expected the first desugared statement to be the $e = GetEnumerator() local decl, got %T", desugared.Statements[0])
	}
	if _, ok := desugared.Statements[1].(*ast.WhileStmt); !ok {
		t.Errorf("expected the second desugared statement to be the MoveNext()-driven while loop, got %T", desugared.Statements[1])
	}
	_ = res
}

func TestCtorChainInjectsImplicitBaseForDerivedClass(t *testing.T) {
	src := `
namespace App {
	public class Animal {
		public Animal() { }
	}
	public class Dog : Animal {
		public Dog() { }
	}
}
`
	prog, diags := parseProgram(t, src)
	New(diags).Run(prog)
	if diags.HasErrors() {
		t.Fatalf("unexpected resolve errors:\n%s", diags.Format())
	}
	dog := findType(prog, "Dog")
	ctor := findMethod(dog, "Dog")
	if ctor == nil {
		t.Fatal("expected Dog to declare a constructor")
	}
	if ctor.CtorChain == nil {
		t.Fatal("expected an implicit base() chain to be injected")
	}
	if ctor.CtorChain.IsThis {
		t.Error("expected the injected chain to be a base() chain, not this()")
	}
}

func TestOverloadResolutionReportsAmbiguousMethod(t *testing.T) {
	src := `
namespace App {
	public class Calc {
		public int Combine(int a, object b) { return a; }
		public int Combine(object a, int b) { return b; }
		public static void Main() {
			Calc c = new Calc();
			int r = c.Combine(1, 2);
		}
	}
}
`
	prog, diags := parseProgram(t, src)
	New(diags).Run(prog)
	if !diags.HasErrors() {
		t.Fatal("expected an ambiguous-overload resolve error")
	}
	if got := diags.Filter(diag.ResolveAmbiguousMethod); len(got) == 0 {
		t.Fatalf("expected a %s diagnostic, got:\n%s", diag.ResolveAmbiguousMethod, diags.Format())
	}
}

func TestInterfaceRealizationAcceptsMatchingPublicMethod(t *testing.T) {
	src := `
namespace App {
	public interface IGreeter {
		string Greet();
	}
	public class English : IGreeter {
		public string Greet() { return "hello"; }
	}
}
`
	prog, diags := parseProgram(t, src)
	New(diags).Run(prog)
	if diags.HasErrors() {
		t.Fatalf("unexpected resolve errors for a correctly-realized interface:\n%s", diags.Format())
	}
}

func TestInterfaceRealizationRejectsMissingMethod(t *testing.T) {
	src := `
namespace App {
	public interface IGreeter {
		string Greet();
	}
	public class Silent : IGreeter {
		public int Other() { return 0; }
	}
}
`
	prog, diags := parseProgram(t, src)
	New(diags).Run(prog)
	if !diags.HasErrors() {
		t.Fatal("expected a resolve error for a class that doesn't implement its declared interface")
	}
	if got := diags.Filter(diag.ResolveMissingIfaceMethod); len(got) != 1 {
		t.Fatalf("expected exactly one %s diagnostic, got %d: %s", diag.ResolveMissingIfaceMethod, len(got), diags.Format())
	}
}
