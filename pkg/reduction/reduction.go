// Package reduction decides what a mangled Swift symbol denotes and decodes it
// into typed facts for the binding generator.
package reduction

import (
	"fmt"

	"github.com/blacktop/go-swiftbind/pkg/typespec"
)

// Reduction is the outcome of reducing one mangled symbol. The concrete type is
// one of *ReductionError, *TypeSpecReduction, *MetadataAccessorReduction,
// *FunctionReduction, *DispatchThunkFunctionReduction,
// *ProtocolWitnessTableReduction, *ProtocolConformanceDescriptorReduction or
// *ProvenanceReduction.
type Reduction interface {
	// MangledSymbol returns the symbol the reduction was produced from.
	MangledSymbol() string
	isReduction()
}

// Severity tells the driver how to react to a ReductionError.
type Severity uint8

const (
	// Low errors skip the symbol and let the run continue.
	Low Severity = iota
	// High errors abort the whole run.
	High
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

// ReductionError reports a symbol that could not be reduced.
type ReductionError struct {
	Symbol   string
	Message  string
	Severity Severity
}

func (r *ReductionError) MangledSymbol() string { return r.Symbol }
func (*ReductionError) isReduction() {}

func (r *ReductionError) Error() string {
	return fmt.Sprintf("%s (%s severity): %s", r.Symbol, r.Severity, r.Message)
}

// TypeSpecReduction is a symbol that names a type, such as type metadata or a
// nominal type descriptor.
type TypeSpecReduction struct {
	Symbol string
	Type   typespec.TypeSpec
}

func (r *TypeSpecReduction) MangledSymbol() string { return r.Symbol }
func (*TypeSpecReduction) isReduction() {}

// MetadataAccessorReduction is the function returning a type's runtime metadata.
type MetadataAccessorReduction struct {
	Symbol string
	Type   *typespec.NamedTypeSpec
}

func (r *MetadataAccessorReduction) MangledSymbol() string { return r.Symbol }
func (*MetadataAccessorReduction) isReduction() {}

// FunctionReduction is a directly callable function, method, initializer or accessor.
type FunctionReduction struct {
	Symbol   string
	Function *Function
}

func (r *FunctionReduction) MangledSymbol() string { return r.Symbol }
func (*FunctionReduction) isReduction() {}

// ToDispatchThunk retags the reduction as a dispatch thunk, keeping the symbol
// and the function payload.
func (r *FunctionReduction) ToDispatchThunk() *DispatchThunkFunctionReduction {
	return &DispatchThunkFunctionReduction{Symbol: r.Symbol, Function: r.Function}
}

// DispatchThunkFunctionReduction is the indirect-dispatch entry point of a
// method. Its payload is identical to the FunctionReduction of the method.
type DispatchThunkFunctionReduction struct {
	Symbol   string
	Function *Function
}

func (r *DispatchThunkFunctionReduction) MangledSymbol() string { return r.Symbol }
func (*DispatchThunkFunctionReduction) isReduction() {}

// ProtocolWitnessTableReduction is the witness table of ImplementingType for ProtocolType.
type ProtocolWitnessTableReduction struct {
	Symbol           string
	ImplementingType typespec.TypeSpec
	ProtocolType     *typespec.NamedTypeSpec
}

func (r *ProtocolWitnessTableReduction) MangledSymbol() string { return r.Symbol }
func (*ProtocolWitnessTableReduction) isReduction() {}

// ProtocolConformanceDescriptorReduction describes a conformance declared in Module.
type ProtocolConformanceDescriptorReduction struct {
	ProtocolWitnessTableReduction
	Module string
}

func (*ProtocolConformanceDescriptorReduction) isReduction() {}

// ProvenanceReduction is the declaration context of a symbol.
type ProvenanceReduction struct {
	Symbol     string
	Provenance Provenance
}

func (r *ProvenanceReduction) MangledSymbol() string { return r.Symbol }
func (*ProvenanceReduction) isReduction() {}

// ProvenanceKind enumerates where a declaration lives.
type ProvenanceKind uint8

const (
	// TopLevelProvenance is a free-standing declaration in a module.
	TopLevelProvenance ProvenanceKind = iota
	// InstanceProvenance is a member declared in the body of a type.
	InstanceProvenance
	// ExtensionProvenance is a member added by an extension of a type.
	ExtensionProvenance
)

func (k ProvenanceKind) String() string {
	switch k {
	case TopLevelProvenance:
		return "top-level"
	case InstanceProvenance:
		return "instance"
	case ExtensionProvenance:
		return "extension"
	default:
		return "unknown"
	}
}

// Provenance is built with TopLevel, Instance or Extension.
type Provenance struct {
	Kind ProvenanceKind
	// Module is the module declaring the symbol: the module itself for
	// top-level declarations and the extending module for extensions.
	Module string
	// Type is the owning type for instance and extension members.
	Type *typespec.NamedTypeSpec
}

// TopLevel is a declaration that lives directly in module.
func TopLevel(module string) Provenance {
	return Provenance{Kind: TopLevelProvenance, Module: module}
}

// Instance is a member of owner.
func Instance(owner *typespec.NamedTypeSpec) Provenance {
	return Provenance{Kind: InstanceProvenance, Module: owner.Module(), Type: owner}
}

// Extension is a member added to extended by an extension in module.
func Extension(extended *typespec.NamedTypeSpec, module string) Provenance {
	return Provenance{Kind: ExtensionProvenance, Module: module, Type: extended}
}

func (p Provenance) String() string {
	switch p.Kind {
	case TopLevelProvenance:
		return "top-level in " + p.Module
	case InstanceProvenance:
		return "member of " + p.Type.String()
	default:
		return "extension of " + p.Type.String() + " in " + p.Module
	}
}
