package swiftdemangle

// NodeKind identifies the semantic role of a node in the Swift demangling AST.
type NodeKind string

const (
	KindGlobal NodeKind = "global"

	// contexts and names
	KindModule          NodeKind = "module"
	KindIdentifier      NodeKind = "identifier"
	KindPrivateDeclName NodeKind = "privateDeclName"
	KindExtension       NodeKind = "extension"

	// nominal types
	KindStructure NodeKind = "structure"
	KindClass     NodeKind = "class"
	KindEnum      NodeKind = "enum"
	KindProtocol  NodeKind = "protocol"
	KindTypeAlias NodeKind = "typeAlias"

	// structural types
	KindBuiltinTypeName          NodeKind = "builtinTypeName"
	KindBoundGeneric             NodeKind = "boundGeneric"
	KindTypeList                 NodeKind = "typeList"
	KindTuple                    NodeKind = "tuple"
	KindTupleElement             NodeKind = "tupleElement"
	KindFunctionType             NodeKind = "functionType"
	KindNoEscapeFunctionType     NodeKind = "noEscapeFunctionType"
	KindInOut                    NodeKind = "inOut"
	KindMetatype                 NodeKind = "metatype"
	KindProtocolList             NodeKind = "protocolList"
	KindDependentGenericParam    NodeKind = "dependentGenericParamType"
	KindDependentMemberType      NodeKind = "dependentMemberType"
	KindDependentAssociatedType  NodeKind = "dependentAssociatedTypeRef"
	KindDependentGenericType     NodeKind = "dependentGenericType"
	KindDependentGenericSig      NodeKind = "dependentGenericSignature"
	KindDependentGenericCount    NodeKind = "dependentGenericParamCount"
	KindConformanceRequirement   NodeKind = "dependentGenericConformanceRequirement"
	KindSameTypeRequirement      NodeKind = "dependentGenericSameTypeRequirement"
	KindBaseClassRequirement     NodeKind = "dependentGenericBaseClassRequirement"
	KindIndex                    NodeKind = "index"
	KindLabelList                NodeKind = "labelList"
	KindEmptyList                NodeKind = "emptyList"
	KindFirstElementMarker       NodeKind = "firstElementMarker"
	KindVariadicMarker           NodeKind = "variadicMarker"
	KindThrowsAnnotation         NodeKind = "throwsAnnotation"
	KindAsyncAnnotation          NodeKind = "asyncAnnotation"
	KindSendableAnnotation       NodeKind = "sendableAnnotation"
	KindProtocolConformance      NodeKind = "protocolConformance"
	KindProtocolConformanceDescr NodeKind = "protocolConformanceDescriptor"

	// entities
	KindFunction       NodeKind = "function"
	KindAllocator      NodeKind = "allocator"
	KindConstructor    NodeKind = "constructor"
	KindDestructor     NodeKind = "destructor"
	KindDeallocator    NodeKind = "deallocator"
	KindVariable       NodeKind = "variable"
	KindGetter         NodeKind = "getter"
	KindSetter         NodeKind = "setter"
	KindModifyAccessor NodeKind = "modifyAccessor"
	KindReadAccessor   NodeKind = "readAccessor"
	KindWillSet        NodeKind = "willSet"
	KindDidSet         NodeKind = "didSet"
	KindStatic         NodeKind = "static"

	// global wrappers
	KindTypeMangling                         NodeKind = "typeMangling"
	KindTypeMetadata                         NodeKind = "typeMetadata"
	KindFullTypeMetadata                     NodeKind = "fullTypeMetadata"
	KindTypeMetadataAccessFunction           NodeKind = "typeMetadataAccessFunction"
	KindTypeMetadataCompletionFunction       NodeKind = "typeMetadataCompletionFunction"
	KindTypeMetadataInstantiationCache       NodeKind = "typeMetadataInstantiationCache"
	KindTypeMetadataSingletonInitCache       NodeKind = "typeMetadataSingletonInitializationCache"
	KindNominalTypeDescriptor                NodeKind = "nominalTypeDescriptor"
	KindProtocolDescriptor                   NodeKind = "protocolDescriptor"
	KindPropertyDescriptor                   NodeKind = "propertyDescriptor"
	KindProtocolWitnessTable                 NodeKind = "protocolWitnessTable"
	KindProtocolWitnessTablePattern          NodeKind = "protocolWitnessTablePattern"
	KindProtocolWitnessTableAccessor         NodeKind = "protocolWitnessTableAccessor"
	KindGenericProtocolWitnessTable          NodeKind = "genericProtocolWitnessTable"
	KindGenericProtocolWitnessTableInstantFn NodeKind = "genericProtocolWitnessTableInstantiationFunction"
	KindDispatchThunk                        NodeKind = "dispatchThunk"
	KindMethodDescriptor                     NodeKind = "methodDescriptor"
	KindProtocolWitness                      NodeKind = "protocolWitness"
)

// NodeFlags holds auxiliary attributes that tweak formatting semantics.
type NodeFlags struct {
	Async    bool
	Throws   bool
	Escaping bool
	Variadic bool
}

// Node represents a demangled element.
//
// Child layout per kind:
//
//	nominal types        [context, name]
//	extension            [module, extended type, signature?]
//	boundGeneric         [nominal, typeList]
//	tupleElement         [type]                  Text holds the label
//	function types       [tuple params, result]
//	dependentGenericParamType [index depth, index position]
//	dependentMemberType  [base, dependentAssociatedTypeRef]
//	function             [context, name, labelList, type]
//	allocator/constructor [context, labelList, type]
//	variable             [context, name, type]
//	protocolConformance  [type, protocol, module, signature?]
type Node struct {
	Kind     NodeKind
	Text     string
	Index    uint64
	Children []*Node
	Flags    NodeFlags
}

// NewNode creates a new node with the given kind and text.
func NewNode(kind NodeKind, text string) *Node {
	return &Node{
		Kind: kind,
		Text: text,
	}
}

func newIndexNode(kind NodeKind, index uint64) *Node {
	return &Node{Kind: kind, Index: index}
}

func newNodeWithChildren(kind NodeKind, children ...*Node) *Node {
	n := NewNode(kind, "")
	n.Append(children...)
	return n
}

// Append appends child nodes to the receiver.
func (n *Node) Append(children ...*Node) {
	if len(children) == 0 {
		return
	}
	n.Children = append(n.Children, children...)
}

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// FirstChildOfKind returns the first direct child of the given kind.
func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

// Clone shallow-copies the node. Children references are copied as-is.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:  n.Kind,
		Text:  n.Text,
		Index: n.Index,
		Flags: n.Flags,
	}
	if len(n.Children) > 0 {
		out.Children = append([]*Node(nil), n.Children...)
	}
	return out
}

// IsNominal reports whether the node names a struct, class, enum, protocol or type alias.
func (n *Node) IsNominal() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindStructure, KindClass, KindEnum, KindProtocol, KindTypeAlias:
		return true
	default:
		return false
	}
}

// IsType reports whether the node can stand in a type position.
func (n *Node) IsType() bool {
	if n == nil {
		return false
	}
	if n.IsNominal() {
		return true
	}
	switch n.Kind {
	case KindBuiltinTypeName, KindBoundGeneric, KindTuple, KindFunctionType, KindNoEscapeFunctionType,
		KindInOut, KindMetatype, KindProtocolList, KindDependentGenericParam, KindDependentMemberType,
		KindDependentGenericType:
		return true
	default:
		return false
	}
}

// IsEntity reports whether the node is a declaration that can be wrapped by thunks and
// descriptors.
func (n *Node) IsEntity() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindFunction, KindAllocator, KindConstructor, KindDestructor, KindDeallocator,
		KindVariable, KindGetter, KindSetter, KindModifyAccessor, KindReadAccessor,
		KindWillSet, KindDidSet, KindStatic:
		return true
	default:
		return false
	}
}

func isContext(n *Node) bool {
	return n != nil && (n.IsNominal() || n.Kind == KindModule || n.Kind == KindExtension || n.Kind == KindBoundGeneric)
}

func isDeclName(n *Node) bool {
	return n != nil && (n.Kind == KindIdentifier || n.Kind == KindPrivateDeclName)
}

func isRequirement(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindConformanceRequirement, KindSameTypeRequirement, KindBaseClassRequirement:
		return true
	default:
		return false
	}
}

func isLabel(n *Node) bool {
	return n != nil && (n.Kind == KindIdentifier || n.Kind == KindFirstElementMarker)
}

func isFunctionAnnotation(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindThrowsAnnotation, KindAsyncAnnotation, KindSendableAnnotation:
		return true
	default:
		return false
	}
}
