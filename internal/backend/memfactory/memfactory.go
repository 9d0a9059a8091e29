// Package memfactory is an in-memory backend.RuntimeTypeFactory: it records
// every builder call the emitter makes instead of writing a real module, so
// the emitter can be exercised and its output inspected in tests without a
// host CLR/Mono runtime present.
package memfactory

import (
	"fmt"

	"github.com/csc-go/compiler/internal/backend"
)

// Type is a recorded type declaration.
type Type struct {
	FullName   string
	Kind       backend.TypeKind
	Modifiers  backend.MemberModifiers
	Super      any
	Interfaces []any
	Fields     []*Field
	Methods    []*Method
	Properties []*Property
	Events     []*Event
}

type Field struct {
	Name      string
	FieldType any
	Modifiers backend.MemberModifiers
}

type Method struct {
	Name       string
	ParamTypes []any
	ParamFlow  []backend.ParamFlow
	ReturnType any
	Modifiers  backend.MemberModifiers
	IsCtor     bool

	Locals []any
	Body   []backend.Instr
}

type Property struct {
	Name          string
	PropType      any
	Getter        *Method
	Setter        *Method
	IndexerParams []any
}

type Event struct {
	Name         string
	DelegateType any
}

// Factory is the in-memory backend.RuntimeTypeFactory implementation.
type Factory struct {
	AssemblyName string
	Types        []*Type
	byName       map[string]*Type
	EntryPoint   *Method
	SavedPath    string
	saved        bool
}

// New returns an empty Factory.
func New() *Factory {
	return &Factory{byName: make(map[string]*Type)}
}

func (f *Factory) BeginOutput(assemblyName string) {
	f.AssemblyName = assemblyName
}

func (f *Factory) DeclareType(fullName string, kind backend.TypeKind, mods backend.MemberModifiers, super any, interfaces []any) any {
	if existing, ok := f.byName[fullName]; ok {
		return existing
	}
	t := &Type{FullName: fullName, Kind: kind, Modifiers: mods, Super: super, Interfaces: interfaces}
	f.Types = append(f.Types, t)
	f.byName[fullName] = t
	return t
}

func (f *Factory) DeclareField(typeHandle any, name string, fieldType any, mods backend.MemberModifiers) any {
	t := typeHandle.(*Type)
	fld := &Field{Name: name, FieldType: fieldType, Modifiers: mods}
	t.Fields = append(t.Fields, fld)
	return fld
}

func (f *Factory) DeclareMethod(typeHandle any, name string, paramTypes []any, paramFlow []backend.ParamFlow, returnType any, mods backend.MemberModifiers, isCtor bool) any {
	t := typeHandle.(*Type)
	m := &Method{
		Name: name, ParamTypes: paramTypes, ParamFlow: paramFlow,
		ReturnType: returnType, Modifiers: mods, IsCtor: isCtor,
	}
	t.Methods = append(t.Methods, m)
	return m
}

func (f *Factory) DeclareProperty(typeHandle any, name string, propType any, getter, setter any, indexerParams []any) any {
	t := typeHandle.(*Type)
	p := &Property{Name: name, PropType: propType, IndexerParams: indexerParams}
	if getter != nil {
		p.Getter = getter.(*Method)
	}
	if setter != nil {
		p.Setter = setter.(*Method)
	}
	t.Properties = append(t.Properties, p)
	return p
}

func (f *Factory) DeclareEvent(typeHandle any, name string, delegateType any) any {
	t := typeHandle.(*Type)
	e := &Event{Name: name, DelegateType: delegateType}
	t.Events = append(t.Events, e)
	return e
}

func (f *Factory) EmitBody(methodHandle any, localTypes []any, instructions []backend.Instr) {
	m := methodHandle.(*Method)
	m.Locals = localTypes
	m.Body = instructions
}

func (f *Factory) SetEntryPoint(methodHandle any) {
	f.EntryPoint = methodHandle.(*Method)
}

func (f *Factory) EndOutput(path string) error {
	if f.saved {
		return fmt.Errorf("memfactory: EndOutput called twice for %q", f.AssemblyName)
	}
	f.saved = true
	f.SavedPath = path
	return nil
}

// FindType returns the recorded Type with the given fully-qualified name,
// or nil. Tests use this to assert on what the emitter declared.
func (f *Factory) FindType(fullName string) *Type {
	return f.byName[fullName]
}

// FindMethod returns the first method named name declared on t, or nil.
func (t *Type) FindMethod(name string) *Method {
	for _, m := range t.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}
