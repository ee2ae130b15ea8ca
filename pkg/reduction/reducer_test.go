package reduction

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/blacktop/go-swiftbind/pkg/genericsig"
	"github.com/blacktop/go-swiftbind/pkg/typedb"
	"github.com/blacktop/go-swiftbind/pkg/typespec"
)

var (
	swiftInt    = typespec.Named("Swift.Int", typespec.StructKind)
	swiftString = typespec.Named("Swift.String", typespec.StructKind)
	person      = typespec.Named("main.Person", typespec.StructKind)
	greeter     = typespec.Named("main.Greeter", typespec.ProtocolKind)
	void        = typespec.EmptyTuple()
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		want   Reduction
	}{
		{
			name:   "metadata accessor",
			symbol: "$s4main6PersonVMa",
			want:   &MetadataAccessorReduction{Symbol: "$s4main6PersonVMa", Type: person},
		},
		{
			name:   "witness table",
			symbol: "$s4main6PersonVAA7GreeterAAWP",
			want: &ProtocolWitnessTableReduction{
				Symbol:           "$s4main6PersonVAA7GreeterAAWP",
				ImplementingType: person,
				ProtocolType:     greeter,
			},
		},
		{
			name:   "witness table protocol type",
			symbol: "$s4main6PersonVAA7GreeterPAAWP",
			want: &ProtocolWitnessTableReduction{
				Symbol:           "$s4main6PersonVAA7GreeterPAAWP",
				ImplementingType: person,
				ProtocolType:     greeter,
			},
		},
		{
			name:   "user conformance descriptor",
			symbol: "$s4main6PersonVAA7GreeterAAMc",
			want: &ProtocolConformanceDescriptorReduction{
				ProtocolWitnessTableReduction: ProtocolWitnessTableReduction{
					Symbol:           "$s4main6PersonVAA7GreeterAAMc",
					ImplementingType: person,
					ProtocolType:     greeter,
				},
				Module: "main",
			},
		},
		{
			name:   "conformance descriptor",
			symbol: "$sSiSQsMc",
			want: &ProtocolConformanceDescriptorReduction{
				ProtocolWitnessTableReduction: ProtocolWitnessTableReduction{
					Symbol:           "$sSiSQsMc",
					ImplementingType: swiftInt,
					ProtocolType:     typespec.Named("Swift.Equatable", typespec.ProtocolKind),
				},
				Module: "Swift",
			},
		},
		{
			name:   "type metadata",
			symbol: "$s4main6PersonVN",
			want:   &TypeSpecReduction{Symbol: "$s4main6PersonVN", Type: person},
		},
		{
			name:   "nominal type descriptor",
			symbol: "$s4main6PersonVMn",
			want:   &TypeSpecReduction{Symbol: "$s4main6PersonVMn", Type: person},
		},
		{
			name:   "labeled function",
			symbol: "$s4main3add1a1bS2i_SitF",
			want: &FunctionReduction{Symbol: "$s4main3add1a1bS2i_SitF", Function: &Function{
				Name:       "add",
				Parameters: []Parameter{{Label: "a", Type: swiftInt}, {Label: "b", Type: swiftInt}},
				Return:     swiftInt,
			}},
		},
		{
			name:   "async throws",
			symbol: "$s4main5fetchSSyYaKF",
			want: &FunctionReduction{Symbol: "$s4main5fetchSSyYaKF", Function: &Function{
				Name:   "fetch",
				Return: swiftString,
				Async:  true,
				Throws: true,
			}},
		},
		{
			name:   "inout parameter",
			symbol: "$s4main4bumpyySizF",
			want: &FunctionReduction{Symbol: "$s4main4bumpyySizF", Function: &Function{
				Name:       "bump",
				Parameters: []Parameter{{Type: swiftInt, IsInOut: true}},
				Return:     void,
			}},
		},
		{
			name:   "constructor",
			symbol: "$s4main6PersonV4nameACSS_tcfC",
			want: &FunctionReduction{Symbol: "$s4main6PersonV4nameACSS_tcfC", Function: &Function{
				Name:       "init",
				Kind:       Constructor,
				Parameters: []Parameter{{Label: "name", Type: swiftString}},
				Return:     person,
			}},
		},
		{
			name:   "getter",
			symbol: "$s4main6PersonV4nameSSvg",
			want: &FunctionReduction{Symbol: "$s4main6PersonV4nameSSvg", Function: &Function{
				Name:   "name",
				Kind:   Getter,
				Return: swiftString,
			}},
		},
		{
			name:   "setter",
			symbol: "$s4main6PersonV4nameSSvs",
			want: &FunctionReduction{Symbol: "$s4main6PersonV4nameSSvs", Function: &Function{
				Name:       "name",
				Kind:       Setter,
				Parameters: []Parameter{{Label: "newValue", Type: swiftString}},
				Return:     void,
			}},
		},
		{
			name:   "static getter",
			symbol: "$s4main6PersonV5countSivgZ",
			want: &FunctionReduction{Symbol: "$s4main6PersonV5countSivgZ", Function: &Function{
				Name:     "count",
				Kind:     Getter,
				IsStatic: true,
				Return:   swiftInt,
			}},
		},
		{
			name:   "generic function",
			symbol: "$s4main3fooyyxSQRzlF",
			want: &FunctionReduction{Symbol: "$s4main3fooyyxSQRzlF", Function: &Function{
				Name:       "foo",
				Parameters: []Parameter{{Type: &typespec.GenericParameterTypeSpec{}}},
				Return:     void,
				Generics: []genericsig.GenericArgumentDecl{{
					Name:        "τ_0_0",
					SugaredName: "A",
					Constraints: []genericsig.Conformance{
						&genericsig.ProtocolConformance{TargetType: "τ_0_0", ProtocolName: "Swift.Equatable"},
					},
				}},
			}},
		},
		{
			name:   "user protocol requirement",
			symbol: "$s4main3fooyyxAA1PRzlF",
			want: &FunctionReduction{Symbol: "$s4main3fooyyxAA1PRzlF", Function: &Function{
				Name:       "foo",
				Parameters: []Parameter{{Type: &typespec.GenericParameterTypeSpec{}}},
				Return:     void,
				Generics: []genericsig.GenericArgumentDecl{{
					Name:        "τ_0_0",
					SugaredName: "A",
					Constraints: []genericsig.Conformance{
						&genericsig.ProtocolConformance{TargetType: "τ_0_0", ProtocolName: "main.P"},
					},
				}},
			}},
		},
		{
			name:   "associated type requirement",
			symbol: "$s4main3fooyyxAA1PRzSi2IDRtzlF",
			want: &FunctionReduction{Symbol: "$s4main3fooyyxAA1PRzSi2IDRtzlF", Function: &Function{
				Name:       "foo",
				Parameters: []Parameter{{Type: &typespec.GenericParameterTypeSpec{}}},
				Return:     void,
				Generics: []genericsig.GenericArgumentDecl{{
					Name:        "τ_0_0",
					SugaredName: "A",
					Constraints: []genericsig.Conformance{
						&genericsig.ProtocolConformance{TargetType: "τ_0_0", ProtocolName: "main.P"},
						&genericsig.AssociatedTypeConformance{TargetType: "τ_0_0", ProtocolName: "Swift.Int", AssociatedTypeName: "ID"},
					},
				}},
			}},
		},
		{
			name:   "deallocator",
			symbol: "$s4main4NodeCfD",
			want: &FunctionReduction{Symbol: "$s4main4NodeCfD", Function: &Function{
				Name:   "deinit",
				Kind:   Deallocator,
				Return: void,
			}},
		},
	}
	r := New("main")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Reduce(tt.symbol)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Reduce(%q) mismatch (-want +got):\n%s", tt.symbol, diff)
			}
		})
	}
}

func TestReduceErrors(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
	}{
		{"not swift", "_objc_msgSend"},
		{"undecodable", "$s4main6PersonVMp"},
		{"protocol descriptor", "$sSQMp"},
		{"method descriptor", "$s4main6PersonC5greetyyFTq"},
		{"unsupported generic requirement", "$s4main3fooyyxSiRszlF"},
	}
	r := New("main")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			red := r.Reduce(tt.symbol)
			rerr, ok := red.(*ReductionError)
			if !ok {
				t.Fatalf("expected *ReductionError, got %T", red)
			}
			if rerr.Severity != Low {
				t.Fatalf("severity got %s, want %s", rerr.Severity, Low)
			}
			if rerr.MangledSymbol() != tt.symbol {
				t.Fatalf("symbol got %q, want %q", rerr.MangledSymbol(), tt.symbol)
			}
		})
	}
}

func TestUnclassifiedFailureIsHigh(t *testing.T) {
	r := New("main")
	if got := r.fail("$sX", errors.New("boom")).Severity; got != High {
		t.Fatalf("severity got %s, want %s", got, High)
	}
	if got := r.fail("$sX", fmt.Errorf("wrapped: %w", lowf("skip"))).Severity; got != Low {
		t.Fatalf("severity got %s, want %s", got, Low)
	}
}

func TestDispatchThunkKeepsPayload(t *testing.T) {
	r := New("main")
	direct, ok := r.Reduce("$s4main6PersonC5greetyyF").(*FunctionReduction)
	if !ok {
		t.Fatal("expected FunctionReduction for the method")
	}
	thunk, ok := r.Reduce("$s4main6PersonC5greetyyFTj").(*DispatchThunkFunctionReduction)
	if !ok {
		t.Fatal("expected DispatchThunkFunctionReduction for the thunk")
	}
	if diff := cmp.Diff(direct.Function, thunk.Function); diff != "" {
		t.Fatalf("payload mismatch (-direct +thunk):\n%s", diff)
	}
	converted := direct.ToDispatchThunk()
	if converted.Symbol != direct.Symbol || converted.Function != direct.Function {
		t.Fatal("ToDispatchThunk must preserve symbol and function")
	}
}

func TestReduceWithTypeDatabase(t *testing.T) {
	const accessor = "$s5Other4ItemVMa"
	const user = "$s4main3use4itemy5Other4ItemVF"

	db := typedb.New()
	r := New("main", WithTypeDatabase(db))
	for _, sym := range []string{accessor, user} {
		rerr, ok := r.Reduce(sym).(*ReductionError)
		if !ok || rerr.Severity != Low {
			t.Fatalf("Reduce(%q) should fail with a low severity error, got %#v", sym, r.Reduce(sym))
		}
	}
	// own-module and standard library types never need the database
	if _, ok := r.Reduce("$s4main6PersonVMa").(*MetadataAccessorReduction); !ok {
		t.Fatal("own module types should resolve lazily")
	}

	// an overlay record owned by the wrong module does not count
	if err := db.AddOutOfModuleTypes([]typedb.OutOfModuleType{{
		RequestingModule: "main", TypeName: "Item", Record: &typedb.TypeRecord{Module: "Third"},
	}}); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Reduce(accessor).(*ReductionError); !ok {
		t.Fatal("overlay record for another owner must not resolve")
	}

	if err := db.AddOutOfModuleTypes([]typedb.OutOfModuleType{{
		RequestingModule: "main", TypeName: "Item", Record: &typedb.TypeRecord{Module: "Other", NativeType: "Other.Item"},
	}}); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Reduce(accessor).(*MetadataAccessorReduction); !ok {
		t.Fatal("overlay record should resolve the type")
	}
	fr, ok := r.Reduce(user).(*FunctionReduction)
	if !ok {
		t.Fatal("function using an overlay type should reduce")
	}
	if got, want := fr.Function.Parameters[0].Type.String(), "Other.Item"; got != want {
		t.Fatalf("parameter type got %q, want %q", got, want)
	}
}

func TestReduceWithProcessedModule(t *testing.T) {
	db := typedb.New()
	other := typedb.NewModuleTypeDatabase("Other", "/lib/libOther.dylib")
	other.RegisterType("Item", &typedb.TypeRecord{Module: "Other"})
	if err := db.AddModuleDatabase(other); err != nil {
		t.Fatal(err)
	}
	r := New("main", WithTypeDatabase(db))
	if _, ok := r.Reduce("$s5Other4ItemVMa").(*MetadataAccessorReduction); !ok {
		t.Fatal("types of processed modules should resolve")
	}
}

func TestReduceProvenance(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		want   Provenance
	}{
		{"top level function", "$s4main3fooyyF", TopLevel("main")},
		{"type", "$s4main6PersonVMa", TopLevel("main")},
		{"instance accessor", "$s4main6PersonV4nameSSvg", Instance(person)},
		{"dispatch thunk", "$s4main6PersonC5greetyyFTj", Instance(typespec.Named("main.Person", typespec.ClassKind))},
		{"extension", "$sSi4mainE6doubleSiyF", Extension(swiftInt, "main")},
	}
	r := New("main")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			red, ok := r.ReduceProvenance(tt.symbol).(*ProvenanceReduction)
			if !ok {
				t.Fatalf("expected ProvenanceReduction, got %T", r.ReduceProvenance(tt.symbol))
			}
			if diff := cmp.Diff(tt.want, red.Provenance, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("provenance mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if _, ok := r.ReduceProvenance("$sSiSQsWP").(*ReductionError); !ok {
		t.Fatal("witness tables carry no provenance")
	}
}

func TestReduceAllKeepsOrder(t *testing.T) {
	symbols := []string{
		"$s4main6PersonVMa",
		"_objc_msgSend",
		"$s4main3fooyyF",
		"$sSiSQsWP",
		"$s4main6PersonV4nameSSvg",
	}
	r := New("main")
	got := r.ReduceAll(symbols, 2)
	if len(got) != len(symbols) {
		t.Fatalf("got %d reductions, want %d", len(got), len(symbols))
	}
	for i, red := range got {
		if red.MangledSymbol() != symbols[i] {
			t.Fatalf("reduction %d is for %q, want %q", i, red.MangledSymbol(), symbols[i])
		}
	}
	if _, ok := got[1].(*ReductionError); !ok {
		t.Fatalf("expected error for non-swift symbol, got %T", got[1])
	}
}

func TestString(t *testing.T) {
	r := New("main")
	tests := []struct {
		symbol string
		want   string
	}{
		{"$s4main3add1a1bS2i_SitF", "function add(a: Swift.Int, b: Swift.Int) -> Swift.Int"},
		{"$s4main6PersonVMa", "metadata accessor for main.Person"},
		{"$sSiSQsMc", "conformance descriptor Swift.Int : Swift.Equatable in Swift"},
		{"$s4main6PersonV5countSivgZ", "function static count.getter() -> Swift.Int"},
	}
	for _, tt := range tests {
		if got := String(r.Reduce(tt.symbol)); got != tt.want {
			t.Errorf("String(%q) got %q, want %q", tt.symbol, got, tt.want)
		}
	}
}
