package decl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/blacktop/go-swiftbind/pkg/reduction"
	"github.com/blacktop/go-swiftbind/pkg/typedb"
	"github.com/blacktop/go-swiftbind/pkg/typespec"
)

var symbols = []string{
	"$s4main6PersonVMa",
	"$s4main6PersonVN",
	"$s4main6PersonVAA7GreeterAAWP",
	"$s4main6PersonVAA7GreeterAAMc",
	"$s4main6PersonV4nameACSS_tcfC",
	"$s4main6PersonV4nameSSvg",
	"$s4main3add1a1bS2i_SitF",
	"$sSi4mainE6doubleSiyF",
	"$s4main4NodeC5greetyyF",
	"$s4main4NodeC5greetyyFTj",
	"$s4main4NodeCfD",
	"$sSiSQsWP",
	"$sSiSQsMc",
	"$s4main6PersonVMp",
}

func build(t *testing.T) *ModuleDecl {
	t.Helper()
	b := NewBuilder(reduction.New("main"))
	if err := b.AddAll(symbols, 4); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}
	return b.Module()
}

func names(fns []*reduction.FunctionReduction) []string {
	var out []string
	for _, fn := range fns {
		out = append(out, fn.Function.Name)
	}
	return out
}

func TestBuilderModule(t *testing.T) {
	m := build(t)

	if m.Name != "main" {
		t.Fatalf("Name = %q, want %q", m.Name, "main")
	}
	if diff := cmp.Diff([]string{"add"}, names(m.Functions)); diff != "" {
		t.Fatalf("top level functions mismatch (-want +got):\n%s", diff)
	}

	var typeNames []string
	for _, td := range m.Types {
		typeNames = append(typeNames, td.Type.Name)
	}
	if diff := cmp.Diff([]string{"main.Node", "main.Person"}, typeNames); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}

	if len(m.Errors) != 1 || m.Errors[0].Symbol != "$s4main6PersonVMp" || m.Errors[0].Severity != reduction.Low {
		t.Fatalf("Errors = %v, want one low error for $s4main6PersonVMp", m.Errors)
	}
}

func TestBuilderPerson(t *testing.T) {
	m := build(t)
	person, ok := m.Type("main.Person")
	if !ok {
		t.Fatal("main.Person not declared")
	}
	if person.MetadataAccessor != "$s4main6PersonVMa" {
		t.Fatalf("MetadataAccessor = %q, want %q", person.MetadataAccessor, "$s4main6PersonVMa")
	}
	if diff := cmp.Diff([]string{"init", "name"}, names(person.Methods)); diff != "" {
		t.Fatalf("methods mismatch (-want +got):\n%s", diff)
	}
	if person.Methods[1].Function.Kind != reduction.Getter {
		t.Fatalf("name accessor kind = %s, want getter", person.Methods[1].Function.Kind)
	}
	greeter, ok := person.Conformance("main.Greeter")
	if !ok {
		t.Fatal("missing main.Greeter conformance")
	}
	if greeter.WitnessTable != "$s4main6PersonVAA7GreeterAAWP" {
		t.Fatalf("WitnessTable = %q", greeter.WitnessTable)
	}
	if greeter.Descriptor != "$s4main6PersonVAA7GreeterAAMc" {
		t.Fatalf("Descriptor = %q", greeter.Descriptor)
	}
}

func TestBuilderClass(t *testing.T) {
	m := build(t)
	node, ok := m.Type("main.Node")
	if !ok {
		t.Fatal("main.Node not declared")
	}
	if node.Type.Kind != typespec.ClassKind {
		t.Fatalf("Kind = %s, want class", node.Type.Kind)
	}
	if node.MetadataAccessor != "" {
		t.Fatalf("MetadataAccessor = %q, want none", node.MetadataAccessor)
	}
	if diff := cmp.Diff([]string{"greet", "deinit"}, names(node.Methods)); diff != "" {
		t.Fatalf("methods mismatch (-want +got):\n%s", diff)
	}
	if len(node.DispatchThunks) != 1 {
		t.Fatalf("DispatchThunks = %d, want 1", len(node.DispatchThunks))
	}
	if diff := cmp.Diff(node.Methods[0].Function, node.DispatchThunks[0].Function); diff != "" {
		t.Fatalf("dispatch thunk payload differs (-method +thunk):\n%s", diff)
	}
}

func TestBuilderExtensions(t *testing.T) {
	m := build(t)
	if len(m.Extensions) != 1 {
		t.Fatalf("Extensions = %d, want 1", len(m.Extensions))
	}
	ext := m.Extensions[0]
	if ext.Type.Name != "Swift.Int" {
		t.Fatalf("extended type = %q, want Swift.Int", ext.Type.Name)
	}
	if diff := cmp.Diff([]string{"double"}, names(ext.Members)); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}
	if len(ext.Conformances) != 1 || ext.Conformances[0].Protocol.Name != "Swift.Equatable" {
		t.Fatalf("Conformances = %v, want Swift.Equatable", ext.Conformances)
	}
	// the descriptor lives in the Swift module, not in main
	if ext.Conformances[0].Descriptor != "" {
		t.Fatalf("Descriptor = %q, want none", ext.Conformances[0].Descriptor)
	}
}

func TestBuilderAddDuplicate(t *testing.T) {
	b := NewBuilder(reduction.New("main"))
	for i := 0; i < 2; i++ {
		if err := b.Add("$s4main3add1a1bS2i_SitF"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if err := b.AddAll([]string{"$s4main3add1a1bS2i_SitF"}, 1); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}
	if got := len(b.Module().Functions); got != 1 {
		t.Fatalf("Functions = %d, want 1", got)
	}
}

func TestBuilderHighSeverity(t *testing.T) {
	b := NewBuilder(reduction.New("main"))
	high := &reduction.ReductionError{Symbol: "$sX", Message: "broken tree", Severity: reduction.High}
	err := b.fold(reduced{red: high})
	var rerr *reduction.ReductionError
	if !errors.As(err, &rerr) || rerr != high {
		t.Fatalf("fold() error = %v, want the high severity error", err)
	}
	if got := len(b.Module().Errors); got != 0 {
		t.Fatalf("Errors = %d, want high errors to stay out of the module", got)
	}
}

func TestBuilderRetryAfterHighSeverity(t *testing.T) {
	const add = "$s4main3add1a1bS2i_SitF"
	const broken = "$s4main6brokenyyF"

	b := NewBuilder(reduction.New("main"))
	high := &reduction.ReductionError{Symbol: broken, Message: "broken tree", Severity: reduction.High}
	err := b.addReduced([]reduced{
		{symbol: broken, red: high},
		b.reduce(add),
	})
	if err == nil {
		t.Fatal("addReduced() should stop at the high severity error")
	}
	if got := len(b.Module().Functions); got != 0 {
		t.Fatalf("Functions = %d, want nothing folded after the error", got)
	}

	if err := b.AddAll([]string{broken, add}, 2); err != nil {
		t.Fatalf("AddAll() retry error = %v", err)
	}
	if diff := cmp.Diff([]string{"broken", "add"}, names(b.Module().Functions)); diff != "" {
		t.Fatalf("functions after retry mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderAddRetry(t *testing.T) {
	const add = "$s4main3add1a1bS2i_SitF"

	b := NewBuilder(reduction.New("main"))
	high := &reduction.ReductionError{Symbol: add, Message: "broken tree", Severity: reduction.High}
	if err := b.add(reduced{symbol: add, red: high}); err == nil {
		t.Fatal("add() should return the high severity error")
	}
	if err := b.Add(add); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := len(b.Module().Functions); got != 1 {
		t.Fatalf("Functions = %d, want the retried symbol folded", got)
	}
}

func TestRegister(t *testing.T) {
	m := build(t)
	db := typedb.New()
	err := Register(db, m, "/usr/lib/libmain.dylib",
		WithHostNamespace("Main"),
		WithBlittable("main.Person"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	rec, ok := db.TryGetTypeRecord("main", "Person")
	if !ok {
		t.Fatal("main.Person not registered")
	}
	want := &typedb.TypeRecord{
		HostType:         "Person",
		NativeType:       "main.Person",
		MetadataAccessor: "$s4main6PersonVMa",
		HostNamespace:    "Main",
		Module:           "main",
		IsBlittable:      true,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if _, ok := db.TryGetTypeRecord("main", "Node"); ok {
		t.Fatal("main.Node has no metadata accessor and must not be registered")
	}
	if path, err := db.GetLibraryPath("main"); err != nil || path != "/usr/lib/libmain.dylib" {
		t.Fatalf("GetLibraryPath() = %q, %v", path, err)
	}

	if err := Register(db, m, "/usr/lib/libmain.dylib"); !errors.Is(err, typedb.ErrModuleExists) {
		t.Fatalf("second Register() error = %v, want ErrModuleExists", err)
	}
}

func TestHostTypeName(t *testing.T) {
	if got := HostTypeName("Outer.Inner"); got != "Outer_Inner" {
		t.Fatalf("HostTypeName() = %q, want %q", got, "Outer_Inner")
	}
}
