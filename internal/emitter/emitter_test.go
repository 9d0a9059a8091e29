package emitter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/backend"
	"github.com/csc-go/compiler/internal/backend/memfactory"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/lexer"
	"github.com/csc-go/compiler/internal/parser"
	"github.com/csc-go/compiler/internal/resolver"
	"github.com/gkampitakis/go-snaps/snaps"
)

// resolveOnly runs lex -> parse -> resolve and returns the diagnostic sink
// without failing the test, for cases that are expected to report resolve
// errors rather than compile cleanly.
func resolveOnly(t *testing.T, src string) *diag.Sink {
	t.Helper()
	diags := diag.NewSink()
	l := lexer.New("test.cs", src, diags)
	p := parser.New(l, diags)
	prog := p.Parse()
	if diags.HasErrors() {
		t.Fatalf("parse errors:\n%s", diags.Format())
	}
	resolver.New(diags).Run(prog)
	return diags
}

// compile runs the whole pipeline (lex -> parse -> resolve -> emit) over
// src and returns the in-memory factory the emitter drove, failing the
// test on any diagnostic from any stage.
func compile(t *testing.T, src string) *memfactory.Factory {
	t.Helper()
	diags := diag.NewSink()
	l := lexer.New("test.cs", src, diags)
	p := parser.New(l, diags)
	prog := p.Parse()
	if diags.HasErrors() {
		t.Fatalf("parse errors:\n%s", diags.Format())
	}
	res := resolver.New(diags).Run(prog)
	if diags.HasErrors() {
		t.Fatalf("resolve errors:\n%s", diags.Format())
	}
	f := memfactory.New()
	e := New(diags, f)
	e.Emit(prog, res, Options{AssemblyName: "test", OutputPath: "test.dll"})
	if diags.HasErrors() {
		t.Fatalf("emit errors:\n%s", diags.Format())
	}
	return f
}

func TestEmitHelloWorld(t *testing.T) {
	src := `
namespace App {
	public class Program {
		public static void Main() {
			int x = 41;
			x = x + 1;
		}
	}
}
`
	f := compile(t, src)
	if f.AssemblyName != "test" {
		t.Errorf("AssemblyName = %q, want %q", f.AssemblyName, "test")
	}
	if f.EntryPoint == nil {
		t.Fatal("expected an entry point to be set")
	}
	if f.EntryPoint.Name != "Main" {
		t.Errorf("entry point name = %q, want Main", f.EntryPoint.Name)
	}
	if f.EntryPoint.Modifiers&backend.MemberModifiers(ast.ModStatic) == 0 {
		t.Errorf("Main modifiers = %v, want static", f.EntryPoint.Modifiers)
	}
	if len(f.EntryPoint.Body) == 0 {
		t.Fatal("expected Main to have a non-empty instruction tape")
	}
	lastOp := f.EntryPoint.Body[len(f.EntryPoint.Body)-1].Op
	if lastOp != backend.OpRet {
		t.Errorf("last instruction = %v, want OpRet", lastOp)
	}
	if f.SavedPath != "test.dll" {
		t.Errorf("SavedPath = %q, want %q (confirms EndOutput ran)", f.SavedPath, "test.dll")
	}
}

func TestEmitOverloadResolution(t *testing.T) {
	src := `
namespace App {
	public class Calc {
		public int Add(int a, int b) { return a + b; }
		public string Add(string a, string b) { return a; }
		public static void Main() {
			Calc c = new Calc();
			int r = c.Add(1, 2);
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Calc")
	if ty == nil {
		t.Fatal("expected App.Calc to be declared")
	}
	var intAdd, strAdd int
	for _, m := range ty.Methods {
		if m.Name != "Add" {
			continue
		}
		if len(m.ParamTypes) == 2 {
			if ret, ok := m.ReturnType.(*externalTypeRef); ok && ret.FullName == "System.Int32" {
				intAdd++
			} else {
				strAdd++
			}
		}
	}
	if intAdd != 1 || strAdd != 1 {
		t.Fatalf("expected one int Add and one string Add overload, got int=%d string=%d", intAdd, strAdd)
	}
}

func TestEmitForEachOverArray(t *testing.T) {
	src := `
namespace App {
	public class Program {
		public static int Sum(int[] values) {
			int total = 0;
			foreach (int v in values) {
				total = total + v;
			}
			return total;
		}
		public static void Main() {
			int[] xs = new int[3];
			int s = Sum(xs);
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Program")
	if ty == nil {
		t.Fatal("expected App.Program to be declared")
	}
	sum := ty.FindMethod("Sum")
	if sum == nil {
		t.Fatal("expected Sum to be declared")
	}
	var sawLdelem, sawLdlen bool
	for _, instr := range sum.Body {
		switch instr.Op {
		case backend.OpLdelem:
			sawLdelem = true
		case backend.OpLdlen:
			sawLdlen = true
		}
	}
	if !sawLdelem {
		t.Error("expected the desugared foreach to index the array with OpLdelem")
	}
	if !sawLdlen {
		t.Error("expected the desugared foreach to bound the loop with OpLdlen")
	}
}

func TestEmitInterfaceRealization(t *testing.T) {
	src := `
namespace App {
	public interface IGreeter {
		string Greet();
	}
	public class English : IGreeter {
		public string Greet() { return "hello"; }
	}
	public class Program {
		public static void Main() {
			IGreeter g = new English();
			string s = g.Greet();
		}
	}
}
`
	f := compile(t, src)
	iface := f.FindType("App.IGreeter")
	if iface == nil || iface.Kind != backend.KindInterface {
		t.Fatalf("expected App.IGreeter to be declared as an interface, got %#v", iface)
	}
	cls := f.FindType("App.English")
	if cls == nil {
		t.Fatal("expected App.English to be declared")
	}
	if len(cls.Interfaces) != 1 {
		t.Fatalf("expected English to declare one interface, got %d", len(cls.Interfaces))
	}
	prog := f.FindType("App.Program")
	main := prog.FindMethod("Main")
	var sawCallvirt bool
	for _, instr := range main.Body {
		if instr.Op == backend.OpCallvirt {
			sawCallvirt = true
		}
	}
	if !sawCallvirt {
		t.Error("expected a call through an interface-typed receiver to use OpCallvirt")
	}
}

func TestEmitTryFinallyWithReturn(t *testing.T) {
	src := `
namespace App {
	public class Program {
		public static int Compute() {
			int result = 0;
			try {
				result = 1;
				return result;
			} finally {
				result = 2;
			}
		}
		public static void Main() {
			int x = Compute();
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Program")
	compute := ty.FindMethod("Compute")
	if compute == nil {
		t.Fatal("expected Compute to be declared")
	}
	var sawTry, sawFinally, sawLeave, sawEndRegion bool
	for _, instr := range compute.Body {
		switch instr.Op {
		case backend.OpBeginTry:
			sawTry = true
		case backend.OpBeginFinally:
			sawFinally = true
		case backend.OpLeave:
			sawLeave = true
		case backend.OpEndExceptionRegion:
			sawEndRegion = true
		}
	}
	if !sawTry || !sawFinally || !sawLeave || !sawEndRegion {
		t.Errorf("expected a full try/finally region, got try=%v finally=%v leave=%v end=%v",
			sawTry, sawFinally, sawLeave, sawEndRegion)
	}
}

func TestEmitRecursiveNestedType(t *testing.T) {
	src := `
namespace App {
	public class Tree {
		public class Node {
			public int Value;
			public Node Left;
			public Node Right;
		}
		public static int Depth(Node n) {
			if (n == null) {
				return 0;
			}
			int l = Depth(n.Left);
			int r = Depth(n.Right);
			if (l > r) {
				return l + 1;
			}
			return r + 1;
		}
		public static void Main() {
			Node n = new Node();
			int d = Depth(n);
		}
	}
}
`
	f := compile(t, src)
	node := f.FindType("App.Tree.Node")
	if node == nil {
		t.Fatal("expected the nested type App.Tree.Node to be declared with its fully-qualified name")
	}
	tree := f.FindType("App.Tree")
	depth := tree.FindMethod("Depth")
	if depth == nil {
		t.Fatal("expected Depth to be declared")
	}
	var selfCalls int
	for _, instr := range depth.Body {
		if instr.Op == backend.OpCall && instr.Operand == depth {
			selfCalls++
		}
	}
	if selfCalls != 2 {
		t.Errorf("expected Depth to call itself twice (recursive nested type), got %d", selfCalls)
	}
}

func TestEmitEnumLiteralsAndSwitch(t *testing.T) {
	src := `
namespace App {
	public enum Color {
		Red,
		Green,
		Blue
	}
	public class Program {
		public static int ToNumber(Color c) {
			switch (c) {
				case Color.Red:
					return 0;
				case Color.Green:
					return 1;
				default:
					return 2;
			}
		}
		public static void Main() {
			int n = ToNumber(Color.Blue);
		}
	}
}
`
	f := compile(t, src)
	colorTy := f.FindType("App.Color")
	if colorTy == nil || colorTy.Kind != backend.KindEnum {
		t.Fatalf("expected App.Color to be declared as an enum, got %#v", colorTy)
	}
	var literalNames []string
	for _, fld := range colorTy.Fields {
		if fld.Name != "value__" {
			literalNames = append(literalNames, fld.Name)
		}
	}
	if len(literalNames) != 3 {
		t.Fatalf("expected 3 enum literal fields, got %v", literalNames)
	}
}

func TestEmitIncDecAndCompoundAssignOnInstanceField(t *testing.T) {
	src := `
namespace App {
	public class Counter {
		private int count;
		public void Bump() {
			count++;
			count += 2;
		}
		public int Get() { return count; }
	}
	public class Program {
		public static void Main() {
			Counter c = new Counter();
			c.Bump();
			int v = c.Get();
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Counter")
	bump := ty.FindMethod("Bump")
	if bump == nil {
		t.Fatal("expected Bump to be declared")
	}
	var stfldCount int
	for _, instr := range bump.Body {
		if instr.Op == backend.OpStfld {
			stfldCount++
		}
	}
	if stfldCount != 2 {
		t.Errorf("expected two field stores (++ and +=), got %d", stfldCount)
	}
}

func TestEmitBoxingOnObjectAssignment(t *testing.T) {
	src := `
namespace App {
	public class Program {
		public static void Main() {
			object o = 5;
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Program")
	main := ty.FindMethod("Main")
	var sawBox bool
	for _, instr := range main.Body {
		if instr.Op == backend.OpBox {
			sawBox = true
		}
	}
	if !sawBox {
		t.Error("expected assigning an int to an object-typed local to box the value")
	}
}

func TestEmitStaticFieldInitializerRunsInCctor(t *testing.T) {
	src := `
namespace App {
	public class Config {
		public static int Version = 3;
	}
	public class Program {
		public static void Main() {
			int v = Config.Version;
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Config")
	cctor := ty.FindMethod(".cctor")
	if cctor == nil {
		t.Fatal("expected a synthesized static constructor for the static field initializer")
	}
	if len(cctor.Body) == 0 {
		t.Fatal("expected the static constructor to have a non-empty instruction tape")
	}
}

// TestEmitHelloWorldOpcodeSequenceSnapshot snapshots Main's recorded
// opcode tape, the same way the teacher's fixture suite snapshots an
// interpreted program's output: a deterministic, multi-field recording
// that's easier to eyeball as a snapshot diff than as a field-by-field
// assertion chain.
func TestEmitHelloWorldOpcodeSequenceSnapshot(t *testing.T) {
	src := `
namespace App {
	public class Program {
		public static void Main() {
			int x = 41;
			x = x + 1;
		}
	}
}
`
	f := compile(t, src)
	main := f.FindType("App.Program").FindMethod("Main")
	ops := make([]string, len(main.Body))
	for i, instr := range main.Body {
		ops[i] = fmt.Sprintf("%d", instr.Op)
	}
	snaps.MatchSnapshot(t, strings.Join(ops, ","))
}

func TestResolveInterfaceRealizationRejectsMissingMethod(t *testing.T) {
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
	diags := resolveOnly(t, src)
	if !diags.HasErrors() {
		t.Fatal("expected a resolve error for a class that doesn't implement its declared interface")
	}
	if got := diags.Filter(diag.ResolveMissingIfaceMethod); len(got) != 1 {
		t.Fatalf("expected exactly one %s diagnostic, got %d: %s", diag.ResolveMissingIfaceMethod, len(got), diags.Format())
	}
}

func TestResolveInterfaceRealizationRejectsNonPublicMethod(t *testing.T) {
	src := `
namespace App {
	public interface IGreeter {
		string Greet();
	}
	public class Quiet : IGreeter {
		private string Greet() { return "hi"; }
	}
}
`
	diags := resolveOnly(t, src)
	if !diags.HasErrors() {
		t.Fatal("expected a resolve error for a private method claiming to implement an interface method")
	}
	if got := diags.Filter(diag.ResolveIMethodMustBePublic); len(got) != 1 {
		t.Fatalf("expected exactly one %s diagnostic, got %d: %s", diag.ResolveIMethodMustBePublic, len(got), diags.Format())
	}
}

func TestEmitSwitchDefaultRunsLastRegardlessOfSourcePosition(t *testing.T) {
	src := `
namespace App {
	public class Program {
		public static int Classify(int n) {
			switch (n) {
				default:
					return -1;
				case 1:
					return 1;
				case 2:
					return 2;
			}
		}
		public static void Main() {
			int r = Classify(2);
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Program")
	classify := ty.FindMethod("Classify")
	if classify == nil {
		t.Fatal("expected Classify to be declared")
	}
	// Every case comparison (including the one standing in for default's
	// catch-all branch) must execute before the default body runs, so the
	// first OpBr unconditional jump in the tag-dispatch chain must target
	// a label reached only after both `case 1`/`case 2` comparisons fail —
	// i.e. the comparisons come first in the instruction stream, not the
	// default body.
	var firstCeq, firstUnconditionalBr int = -1, -1
	for i, instr := range classify.Body {
		if instr.Op == backend.OpCeq && firstCeq == -1 {
			firstCeq = i
		}
		if instr.Op == backend.OpBr && firstUnconditionalBr == -1 {
			firstUnconditionalBr = i
		}
	}
	if firstCeq == -1 {
		t.Fatal("expected at least one tag comparison (OpCeq) in the dispatch chain")
	}
	if firstUnconditionalBr == -1 || firstUnconditionalBr < firstCeq {
		t.Error("expected the default case's unconditional branch to follow every case comparison, not precede it")
	}
}

func TestEmitSwitchGroupedCaseLabelFallsThrough(t *testing.T) {
	src := `
namespace App {
	public class Program {
		public static int Classify(int n) {
			switch (n) {
				case 1:
				case 2:
					return 12;
				default:
					return -1;
			}
		}
		public static void Main() {
			int r = Classify(1);
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Program")
	classify := ty.FindMethod("Classify")
	if classify == nil {
		t.Fatal("expected Classify to be declared")
	}
	var retCount int
	for _, instr := range classify.Body {
		if instr.Op == backend.OpRet {
			retCount++
		}
	}
	// A grouped label (`case 1:` with no body of its own) must fall into
	// `case 2:`'s body rather than branch past it to the default case, so
	// Classify holds only the two `return` statements written in source
	// (12 and -1) plus the terminal return emitImplicitReturn appends to
	// every body — never a fourth path.
	if retCount != 3 {
		t.Errorf("expected exactly 3 OpRet (one shared by case 1/2, one for default, one implicit trailing return), got %d", retCount)
	}
}

func TestEmitCtorChainInjectsImplicitBaseCall(t *testing.T) {
	src := `
namespace App {
	public class Animal {
		public Animal() { }
	}
	public class Dog : Animal {
		public Dog() { }
	}
	public class Program {
		public static void Main() {
			Dog d = new Dog();
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Dog")
	ctor := ty.FindMethod(".ctor")
	if ctor == nil {
		t.Fatal("expected Dog to declare a constructor")
	}
	var sawCall bool
	for _, instr := range ctor.Body {
		if instr.Op == backend.OpCall {
			sawCall = true
		}
	}
	if !sawCall {
		t.Error("expected Dog's constructor to call Animal's implicit parameterless constructor")
	}
}

func TestEmitOverloadPrefersExactMatchOverParamsVariadic(t *testing.T) {
	src := `
namespace App {
	public class Printer {
		public int Choose(int a) { return 1; }
		public int Choose(params int[] xs) { return 2; }
		public static void Main() {
			Printer p = new Printer();
			int r = p.Choose(1);
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Printer")
	if ty == nil {
		t.Fatal("expected App.Printer to be declared")
	}
	var exact, variadic *memfactory.Method
	for _, m := range ty.Methods {
		if m.Name != "Choose" {
			continue
		}
		if len(m.ParamTypes) == 1 {
			if _, ok := m.ParamTypes[0].(*arrayTypeRef); ok {
				variadic = m
				continue
			}
		}
		exact = m
	}
	if exact == nil || variadic == nil {
		t.Fatalf("expected both Choose overloads to be declared, got exact=%v variadic=%v", exact, variadic)
	}
	mainMethod := ty.FindMethod("Main")
	if mainMethod == nil {
		t.Fatal("expected Main to be declared")
	}
	var calledExact bool
	for _, instr := range mainMethod.Body {
		if instr.Op == backend.OpCall && instr.Operand == exact {
			calledExact = true
		}
		if instr.Op == backend.OpCall && instr.Operand == variadic {
			t.Error("expected Choose(1) to resolve to the non-variadic overload, not the params overload")
		}
	}
	if !calledExact {
		t.Error("expected Choose(1) to call the exact non-variadic overload")
	}
}

func TestEmitShortCircuitDoesNotDoubleEvaluateRightOperand(t *testing.T) {
	src := `
namespace App {
	public class Program {
		public static bool Flag;
		public static bool SideEffect() {
			Flag = true;
			return true;
		}
		public static void Main() {
			bool a = false;
			bool b = a && SideEffect();
		}
	}
}
`
	f := compile(t, src)
	ty := f.FindType("App.Program")
	main := ty.FindMethod("Main")
	if main == nil {
		t.Fatal("expected Main to be declared")
	}
	var dupCount, callCount int
	for _, instr := range main.Body {
		if instr.Op == backend.OpDup {
			dupCount++
		}
		if instr.Op == backend.OpCall {
			callCount++
		}
	}
	if dupCount == 0 {
		t.Error("expected the short-circuit && to dup the left operand to decide the branch without a second evaluation")
	}
	if callCount != 1 {
		t.Errorf("expected SideEffect to be called at most once by the short-circuited &&, got %d calls", callCount)
	}
}
