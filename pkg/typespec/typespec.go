// Package typespec describes native Swift types structurally: named types, generic
// instantiations, tuples, closures and generic parameters.
package typespec

import (
	"fmt"
	"strings"
)

// NominalKind is the declaration kind behind a NamedTypeSpec.
type NominalKind uint8

const (
	UnknownKind NominalKind = iota
	StructKind
	ClassKind
	EnumKind
	ProtocolKind
	TypeAliasKind
	BuiltinKind
)

func (k NominalKind) String() string {
	switch k {
	case StructKind:
		return "struct"
	case ClassKind:
		return "class"
	case EnumKind:
		return "enum"
	case ProtocolKind:
		return "protocol"
	case TypeAliasKind:
		return "typealias"
	case BuiltinKind:
		return "builtin"
	default:
		return "unknown"
	}
}

// TypeSpec is the closed set of type shapes. String returns the canonical
// spelling, which is also the identity used by Key and Equal.
type TypeSpec interface {
	fmt.Stringer
	isTypeSpec()
}

// Key returns a map key for t. Two specs describe the same type exactly when
// their keys are equal.
func Key(t TypeSpec) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// Equal reports whether a and b describe the same type.
func Equal(a, b TypeSpec) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

// NamedTypeSpec is a nominal type with its fully qualified name, e.g. "Swift.Int"
// or "main.Outer.Inner", and its generic arguments when bound.
type NamedTypeSpec struct {
	Name             string
	Kind             NominalKind
	GenericArguments []TypeSpec
}

// Named returns a NamedTypeSpec for name.
func Named(name string, kind NominalKind, args ...TypeSpec) *NamedTypeSpec {
	return &NamedTypeSpec{Name: name, Kind: kind, GenericArguments: args}
}

func (*NamedTypeSpec) isTypeSpec() {}

func (n *NamedTypeSpec) String() string {
	if len(n.GenericArguments) == 0 {
		return n.Name
	}
	return n.Name + "<" + join(n.GenericArguments) + ">"
}

// Module returns the owning module, the first segment of the qualified name.
func (n *NamedTypeSpec) Module() string {
	if idx := strings.IndexByte(n.Name, '.'); idx >= 0 {
		return n.Name[:idx]
	}
	return ""
}

// LocalName returns the name without its module, e.g. "Outer.Inner".
func (n *NamedTypeSpec) LocalName() string {
	if idx := strings.IndexByte(n.Name, '.'); idx >= 0 {
		return n.Name[idx+1:]
	}
	return n.Name
}

// IsGeneric reports whether the type is instantiated with generic arguments.
func (n *NamedTypeSpec) IsGeneric() bool {
	return len(n.GenericArguments) > 0
}

// TupleTypeSpec is an ordered product type. Labels is either empty or holds one
// entry per element, "" for an unlabeled element.
type TupleTypeSpec struct {
	Elements []TypeSpec
	Labels   []string
}

// EmptyTuple is the Swift Void type.
func EmptyTuple() *TupleTypeSpec {
	return &TupleTypeSpec{}
}

func (*TupleTypeSpec) isTypeSpec() {}

func (t *TupleTypeSpec) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, elem := range t.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i < len(t.Labels) && t.Labels[i] != "" {
			sb.WriteString(t.Labels[i])
			sb.WriteString(": ")
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// IsEmpty reports whether the tuple is Void.
func (t *TupleTypeSpec) IsEmpty() bool {
	return len(t.Elements) == 0
}

// ClosureTypeSpec is a function type.
type ClosureTypeSpec struct {
	Arguments *TupleTypeSpec
	Return    TypeSpec
	Throws    bool
	Async     bool
	Escaping  bool
}

func (*ClosureTypeSpec) isTypeSpec() {}

func (c *ClosureTypeSpec) String() string {
	var sb strings.Builder
	if c.Escaping {
		sb.WriteString("@escaping ")
	}
	args := c.Arguments
	if args == nil {
		args = EmptyTuple()
	}
	sb.WriteString(args.String())
	if c.Async {
		sb.WriteString(" async")
	}
	if c.Throws {
		sb.WriteString(" throws")
	}
	sb.WriteString(" -> ")
	if c.Return == nil {
		sb.WriteString("()")
	} else {
		sb.WriteString(c.Return.String())
	}
	return sb.String()
}

// GenericParameterTypeSpec refers to a generic parameter by position.
type GenericParameterTypeSpec struct {
	Depth int
	Index int
}

func (*GenericParameterTypeSpec) isTypeSpec() {}

func (g *GenericParameterTypeSpec) String() string {
	return fmt.Sprintf("τ_%d_%d", g.Depth, g.Index)
}

// AssociatedTypeSpec is a dependent member such as τ_0_0.Element.
type AssociatedTypeSpec struct {
	Base TypeSpec
	Name string
}

func (*AssociatedTypeSpec) isTypeSpec() {}

func (a *AssociatedTypeSpec) String() string {
	return a.Base.String() + "." + a.Name
}

// ProtocolListTypeSpec is an existential composition. An empty list is Any.
type ProtocolListTypeSpec struct {
	Protocols []*NamedTypeSpec
}

func (*ProtocolListTypeSpec) isTypeSpec() {}

func (p *ProtocolListTypeSpec) String() string {
	if len(p.Protocols) == 0 {
		return "Any"
	}
	parts := make([]string, 0, len(p.Protocols))
	for _, proto := range p.Protocols {
		parts = append(parts, proto.String())
	}
	return strings.Join(parts, " & ")
}

// MetatypeTypeSpec is T.Type.
type MetatypeTypeSpec struct {
	Instance TypeSpec
}

func (*MetatypeTypeSpec) isTypeSpec() {}

func (m *MetatypeTypeSpec) String() string {
	return m.Instance.String() + ".Type"
}

// InOutTypeSpec marks a parameter passed inout.
type InOutTypeSpec struct {
	Inner TypeSpec
}

func (*InOutTypeSpec) isTypeSpec() {}

func (i *InOutTypeSpec) String() string {
	return "inout " + i.Inner.String()
}

func join(specs []TypeSpec) string {
	parts := make([]string, 0, len(specs))
	for _, spec := range specs {
		parts = append(parts, spec.String())
	}
	return strings.Join(parts, ", ")
}
