// Package decl folds the reductions of one module into the declaration tree the
// binding emitter walks.
package decl

import (
	"github.com/blacktop/go-swiftbind/pkg/reduction"
	"github.com/blacktop/go-swiftbind/pkg/typespec"
)

// ModuleDecl is everything the symbols of one module declare.
type ModuleDecl struct {
	Name string
	// Functions are the free-standing functions of the module.
	Functions []*reduction.FunctionReduction
	// Types are the nominal types the module owns, sorted by name.
	Types []*TypeDecl
	// Extensions hold members the module adds to types owned elsewhere.
	Extensions []*ExtensionDecl
	// Errors are the symbols that were skipped with a low severity error.
	Errors []*reduction.ReductionError
}

// Type returns the declaration of the type named name, e.g. "main.Person".
func (m *ModuleDecl) Type(name string) (*TypeDecl, bool) {
	for _, t := range m.Types {
		if t.Type.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TypeDecl is a nominal type owned by the module.
type TypeDecl struct {
	Type *typespec.NamedTypeSpec
	// MetadataAccessor is the mangled symbol of the metadata accessor, empty
	// when the module does not export one.
	MetadataAccessor string
	Methods          []*reduction.FunctionReduction
	DispatchThunks   []*reduction.DispatchThunkFunctionReduction
	Conformances     []*Conformance
	// Extensions hold members added to the type by extensions in its own module.
	Extensions []*reduction.FunctionReduction
}

// Conformance returns the conformance of the type to protocol, if known.
func (t *TypeDecl) Conformance(protocol string) (*Conformance, bool) {
	for _, c := range t.Conformances {
		if c.Protocol.Name == protocol {
			return c, true
		}
	}
	return nil, false
}

// Conformance is a protocol the type conforms to, with the symbols that
// describe the conformance.
type Conformance struct {
	Protocol     *typespec.NamedTypeSpec
	WitnessTable string
	Descriptor   string
}

// ExtensionDecl is what the module adds to a foreign type.
type ExtensionDecl struct {
	Type         *typespec.NamedTypeSpec
	Members      []*reduction.FunctionReduction
	Conformances []*Conformance
}
