package typespec

import "testing"

func TestString(t *testing.T) {
	intSpec := Named("Swift.Int", StructKind)
	tests := []struct {
		name string
		spec TypeSpec
		want string
	}{
		{"named", intSpec, "Swift.Int"},
		{"bound generic", Named("Swift.Dictionary", StructKind, Named("Swift.String", StructKind), intSpec), "Swift.Dictionary<Swift.String, Swift.Int>"},
		{"empty tuple", EmptyTuple(), "()"},
		{"labeled tuple", &TupleTypeSpec{Elements: []TypeSpec{intSpec, intSpec}, Labels: []string{"x", ""}}, "(x: Swift.Int, Swift.Int)"},
		{"closure", &ClosureTypeSpec{Arguments: &TupleTypeSpec{Elements: []TypeSpec{intSpec}}, Return: intSpec, Async: true, Throws: true}, "(Swift.Int) async throws -> Swift.Int"},
		{"escaping closure", &ClosureTypeSpec{Escaping: true}, "@escaping () -> ()"},
		{"generic param", &GenericParameterTypeSpec{Depth: 1, Index: 2}, "τ_1_2"},
		{"associated", &AssociatedTypeSpec{Base: &GenericParameterTypeSpec{}, Name: "Element"}, "τ_0_0.Element"},
		{"any", &ProtocolListTypeSpec{}, "Any"},
		{"composition", &ProtocolListTypeSpec{Protocols: []*NamedTypeSpec{Named("Swift.Equatable", ProtocolKind), Named("Swift.Hashable", ProtocolKind)}}, "Swift.Equatable & Swift.Hashable"},
		{"metatype", &MetatypeTypeSpec{Instance: intSpec}, "Swift.Int.Type"},
		{"inout", &InOutTypeSpec{Inner: intSpec}, "inout Swift.Int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.String(); got != tt.want {
				t.Fatalf("String() got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNamedTypeSpecParts(t *testing.T) {
	n := Named("main.Outer.Inner", StructKind)
	if got, want := n.Module(), "main"; got != want {
		t.Fatalf("Module() got %q, want %q", got, want)
	}
	if got, want := n.LocalName(), "Outer.Inner"; got != want {
		t.Fatalf("LocalName() got %q, want %q", got, want)
	}
	bare := Named("Orphan", UnknownKind)
	if bare.Module() != "" || bare.LocalName() != "Orphan" {
		t.Fatalf("unexpected parts for unqualified name: %q %q", bare.Module(), bare.LocalName())
	}
}

func TestKeyAsMapKey(t *testing.T) {
	seen := map[string]int{}
	a := Named("Swift.Array", StructKind, Named("Swift.Int", StructKind))
	b := Named("Swift.Array", StructKind, Named("Swift.Int", StructKind))
	seen[Key(a)]++
	seen[Key(b)]++
	if len(seen) != 1 || seen[Key(a)] != 2 {
		t.Fatalf("structurally equal specs should share a key, got %v", seen)
	}
	if !Equal(a, b) {
		t.Fatal("Equal should report structurally equal specs")
	}
	if Equal(a, Named("Swift.Array", StructKind, Named("Swift.String", StructKind))) {
		t.Fatal("Equal should distinguish generic arguments")
	}
	if !Equal(nil, nil) || Equal(a, nil) {
		t.Fatal("Equal nil handling mismatch")
	}
}
