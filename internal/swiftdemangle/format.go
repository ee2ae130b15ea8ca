package swiftdemangle

import (
	"fmt"
	"strings"
)

type printer struct {
	// sugar names generic parameters A, B, C... instead of τ_d_i
	sugar bool
	// colon separates a conformance requirement subject from its constraint
	colon string
}

var (
	displayPrinter   = printer{sugar: true, colon: ": "}
	canonicalPrinter = printer{colon: " : "}
	sugaredPrinter   = printer{sugar: true, colon: " : "}
)

// Format renders the demangled representation of a node the way swift-demangle
// prints it, with sugared generic parameter names.
func Format(node *Node) string {
	return displayPrinter.format(node)
}

// FormatCanonical renders a node with canonical τ_depth_index generic parameter names.
func FormatCanonical(node *Node) string {
	return canonicalPrinter.format(node)
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return Format(n)
}

func (pr printer) format(node *Node) string {
	if node == nil {
		return ""
	}
	switch node.Kind {
	case KindGlobal:
		return pr.format(node.Child(0))
	case KindIdentifier, KindModule, KindBuiltinTypeName, KindPrivateDeclName:
		return node.Text
	case KindStructure, KindClass, KindEnum, KindProtocol, KindTypeAlias:
		return pr.qualified(node.Child(0), node.Text)
	case KindExtension:
		return pr.format(node.Child(1))
	case KindBoundGeneric:
		return pr.format(node.Child(0)) + "<" + pr.list(node.Child(1)) + ">"
	case KindTypeList:
		return pr.list(node)
	case KindTuple:
		return "(" + pr.list(node) + ")"
	case KindTupleElement:
		s := pr.format(node.Child(0))
		if node.Flags.Variadic {
			s += "..."
		}
		if node.Text != "" {
			return node.Text + ": " + s
		}
		return s
	case KindFunctionType, KindNoEscapeFunctionType:
		return pr.format(node.Child(0)) + pr.effects(node) + " -> " + pr.format(node.Child(1))
	case KindDependentGenericType:
		return pr.signature(node.Child(0), inferBaseDepth(node.Child(0), node.Child(1))) + " " + pr.format(node.Child(1))
	case KindInOut:
		return "inout " + pr.format(node.Child(0))
	case KindMetatype:
		return pr.format(node.Child(0)) + ".Type"
	case KindProtocolList:
		protos := node.Child(0)
		switch {
		case protos == nil || len(protos.Children) == 0:
			return "Any"
		default:
			parts := make([]string, 0, len(protos.Children))
			for _, proto := range protos.Children {
				parts = append(parts, pr.format(proto))
			}
			return strings.Join(parts, " & ")
		}
	case KindDependentGenericParam:
		depth, index, _ := GenericParamPosition(node)
		return pr.paramName(depth, index)
	case KindDependentMemberType:
		return pr.format(node.Child(0)) + "." + node.Child(1).Text
	case KindDependentGenericSig:
		return pr.signature(node, 0)
	case KindConformanceRequirement, KindBaseClassRequirement:
		return pr.format(node.Child(0)) + pr.colon + pr.format(node.Child(1))
	case KindSameTypeRequirement:
		return pr.format(node.Child(0)) + " == " + pr.format(node.Child(1))
	case KindFunction:
		return pr.qualified(node.Child(0), node.Text) + pr.functionSignature(node.Child(2), node.Child(3))
	case KindAllocator, KindConstructor:
		name := "init"
		if node.Kind == KindAllocator && contextIsClass(node.Child(0)) {
			name = "__allocating_init"
		}
		return pr.qualified(node.Child(0), name) + pr.functionSignature(node.Child(1), node.Child(2))
	case KindDestructor:
		return pr.qualified(node.Child(0), "deinit")
	case KindDeallocator:
		return pr.qualified(node.Child(0), "__deallocating_deinit")
	case KindVariable:
		return pr.qualified(node.Child(0), node.Text) + " : " + pr.format(node.Child(2))
	case KindGetter, KindSetter, KindModifyAccessor, KindReadAccessor, KindWillSet, KindDidSet:
		v := node.Child(0)
		return pr.qualified(v.Child(0), v.Text) + "." + accessorSuffix[node.Kind] + " : " + pr.format(v.Child(2))
	case KindStatic:
		return "static " + pr.format(node.Child(0))
	case KindProtocolConformance:
		return pr.format(node.Child(0)) + " : " + pr.format(node.Child(1)) + " in " + pr.format(node.Child(2))
	case KindProtocolWitness:
		return "protocol witness for " + pr.format(node.Child(1)) + " in conformance " + pr.format(node.Child(0))
	case KindTypeMangling:
		return pr.format(node.Child(0))
	}
	if prefix, ok := globalPrefixes[node.Kind]; ok {
		return prefix + pr.format(node.Child(0))
	}
	return fmt.Sprintf("<%s>", node.Kind)
}

var globalPrefixes = map[NodeKind]string{
	KindTypeMetadata:                         "type metadata for ",
	KindFullTypeMetadata:                     "full type metadata for ",
	KindTypeMetadataAccessFunction:           "type metadata accessor for ",
	KindTypeMetadataCompletionFunction:       "type metadata completion function for ",
	KindTypeMetadataInstantiationCache:       "type metadata instantiation cache for ",
	KindTypeMetadataSingletonInitCache:       "type metadata singleton initialization cache for ",
	KindNominalTypeDescriptor:                "nominal type descriptor for ",
	KindProtocolDescriptor:                   "protocol descriptor for ",
	KindPropertyDescriptor:                   "property descriptor for ",
	KindProtocolConformanceDescr:             "protocol conformance descriptor for ",
	KindProtocolWitnessTable:                 "protocol witness table for ",
	KindProtocolWitnessTablePattern:          "protocol witness table pattern for ",
	KindProtocolWitnessTableAccessor:         "protocol witness table accessor for ",
	KindGenericProtocolWitnessTable:          "generic protocol witness table for ",
	KindGenericProtocolWitnessTableInstantFn: "instantiation function for generic protocol witness table for ",
	KindDispatchThunk:                        "dispatch thunk of ",
	KindMethodDescriptor:                     "method descriptor for ",
}

var accessorSuffix = map[NodeKind]string{
	KindGetter:         "getter",
	KindSetter:         "setter",
	KindModifyAccessor: "modify",
	KindReadAccessor:   "read",
	KindWillSet:        "willset",
	KindDidSet:         "didset",
}

func (pr printer) qualified(ctx *Node, name string) string {
	if ctx == nil {
		return name
	}
	return pr.format(ctx) + "." + name
}

func (pr printer) list(n *Node) string {
	if n == nil {
		return ""
	}
	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		parts = append(parts, pr.format(child))
	}
	return strings.Join(parts, ", ")
}

func (pr printer) effects(fn *Node) string {
	var sb strings.Builder
	if fn.Flags.Async {
		sb.WriteString(" async")
	}
	if fn.Flags.Throws {
		sb.WriteString(" throws")
	}
	return sb.String()
}

// functionSignature renders an entity's generic signature, labeled parameters,
// effects and result.
func (pr printer) functionSignature(labels, typ *Node) string {
	var sb strings.Builder
	fn := FunctionTypeOf(typ)
	if typ != nil && typ.Kind == KindDependentGenericType {
		sb.WriteString(pr.signature(typ.Child(0), inferBaseDepth(typ.Child(0), fn)))
	}
	if fn == nil {
		return sb.String()
	}
	params := fn.Child(0)
	sb.WriteByte('(')
	for i, elem := range params.Children {
		if i > 0 {
			sb.WriteString(", ")
		}
		if label := labels.Child(i); label != nil {
			if label.Kind == KindFirstElementMarker {
				sb.WriteString("_: ")
			} else {
				sb.WriteString(label.Text + ": ")
			}
		}
		sb.WriteString(pr.format(elem))
	}
	sb.WriteByte(')')
	sb.WriteString(pr.effects(fn))
	sb.WriteString(" -> ")
	sb.WriteString(pr.format(fn.Child(1)))
	return sb.String()
}

func contextIsClass(ctx *Node) bool {
	if ctx != nil && ctx.Kind == KindExtension {
		ctx = ctx.Child(1)
	}
	if ctx != nil && ctx.Kind == KindBoundGeneric {
		ctx = ctx.Child(0)
	}
	return ctx != nil && ctx.Kind == KindClass
}
