package swiftdemangle

import "fmt"

func newGenericParam(depth, index uint64) *Node {
	n := NewNode(KindDependentGenericParam, "")
	n.Append(newIndexNode(KindIndex, depth), newIndexNode(KindIndex, index))
	return n
}

// GenericParamPosition returns the depth and index of a dependentGenericParamType node.
func GenericParamPosition(n *Node) (depth, index uint64, ok bool) {
	if n == nil || n.Kind != KindDependentGenericParam || len(n.Children) != 2 {
		return 0, 0, false
	}
	return n.Children[0].Index, n.Children[1].Index, true
}

// demangleGenericParamIndex decodes GENERIC-PARAM-INDEX:
//
//	z                 depth 0, index 0
//	INDEX             depth 0, index INDEX+1
//	d INDEX INDEX     depth INDEX+1, index INDEX
func (p *parser) demangleGenericParamIndex() (*Node, error) {
	if p.nextIf('d') {
		depth, err := p.readIndex()
		if err != nil {
			return nil, err
		}
		index, err := p.readIndex()
		if err != nil {
			return nil, err
		}
		return newGenericParam(uint64(depth)+1, uint64(index)), nil
	}
	if p.nextIf('z') {
		return newGenericParam(0, 0), nil
	}
	index, err := p.readIndex()
	if err != nil {
		return nil, err
	}
	return newGenericParam(0, uint64(index)+1), nil
}

func (p *parser) demangleGenericSignature(hasParamCounts bool) (*Node, error) {
	sig := NewNode(KindDependentGenericSig, "")
	if hasParamCounts {
		for !p.nextIf('l') {
			if p.eof() {
				return nil, fmt.Errorf("unterminated generic signature")
			}
			count := 0
			if !p.nextIf('z') {
				idx, err := p.readIndex()
				if err != nil {
					return nil, err
				}
				count = idx + 1
			}
			sig.Append(newIndexNode(KindDependentGenericCount, uint64(count)))
		}
	} else {
		sig.Append(newIndexNode(KindDependentGenericCount, 1))
	}
	var reqs []*Node
	for r := p.popNodeIf(isRequirement); r != nil; r = p.popNodeIf(isRequirement) {
		reqs = append([]*Node{r}, reqs...)
	}
	sig.Append(reqs...)
	return sig, nil
}

func (p *parser) demangleGenericRequirement() (*Node, error) {
	form := byte(0)
	switch c := p.peek(); c {
	case 'p', 's', 't', 'b':
		form = p.consume()
	case 'z', 'd', '_':
	default:
		if !isDigit(c) {
			return nil, fmt.Errorf("unsupported generic requirement %q at position %d", c, p.pos)
		}
	}
	param, err := p.demangleGenericParamIndex()
	if err != nil {
		return nil, err
	}
	switch form {
	case 0:
		proto, err := p.popProtocol()
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindConformanceRequirement, param, proto), nil
	case 'p':
		assoc, err := p.popAssociatedTypeName()
		if err != nil {
			return nil, err
		}
		proto, err := p.popProtocol()
		if err != nil {
			return nil, err
		}
		member := newNodeWithChildren(KindDependentMemberType, param, assoc)
		return newNodeWithChildren(KindConformanceRequirement, member, proto), nil
	case 's':
		t, err := p.popTypeOrErr("same-type requirement")
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindSameTypeRequirement, param, t), nil
	case 't':
		assoc, err := p.popAssociatedTypeName()
		if err != nil {
			return nil, err
		}
		t, err := p.popTypeOrErr("same-type requirement")
		if err != nil {
			return nil, err
		}
		member := newNodeWithChildren(KindDependentMemberType, param, assoc)
		return newNodeWithChildren(KindSameTypeRequirement, member, t), nil
	default: // 'b'
		t, err := p.popTypeOrErr("base class requirement")
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindBaseClassRequirement, param, t), nil
	}
}

// demangleFunctionEntity handles `F`: the stack holds the context, the name,
// the argument labels, the result, the parameters, the effect annotations and
// an optional generic signature, topmost last.
func (p *parser) demangleFunctionEntity() (*Node, error) {
	sig := p.popNodeKind(KindDependentGenericSig)
	fnType, err := p.popFunctionType(KindFunctionType)
	if err != nil {
		return nil, err
	}
	labels, err := p.popLabelList(len(fnType.Children[0].Children))
	if err != nil {
		return nil, err
	}
	name := p.popNodeIf(isDeclName)
	if name == nil {
		return nil, fmt.Errorf("expected function name at position %d", p.pos)
	}
	ctx, err := p.popContext()
	if err != nil {
		return nil, err
	}
	typ := fnType
	if sig != nil {
		typ = newNodeWithChildren(KindDependentGenericType, sig, fnType)
	}
	fn := NewNode(KindFunction, name.Text)
	fn.Append(ctx, name, labels, typ)
	return fn, nil
}

// popLabelList pops the argument labels of a function with count parameters.
// An empty list marker means no parameter carries a label.
func (p *parser) popLabelList(count int) (*Node, error) {
	labels := NewNode(KindLabelList, "")
	if count == 0 || p.popNodeKind(KindEmptyList) != nil {
		return labels, nil
	}
	items := make([]*Node, count)
	for i := count - 1; i >= 0; i-- {
		label := p.popNodeIf(isLabel)
		if label == nil {
			return nil, fmt.Errorf("expected %d argument labels at position %d", count, p.pos)
		}
		items[i] = label
	}
	labels.Append(items...)
	return labels, nil
}

func (p *parser) demangleConstructorEntity() (*Node, error) {
	var kind NodeKind
	switch c := p.consume(); c {
	case 'C':
		kind = KindAllocator
	case 'c':
		kind = KindConstructor
	case 'D':
		kind = KindDeallocator
	case 'd':
		kind = KindDestructor
	default:
		return nil, fmt.Errorf("unsupported function entity %q at position %d", c, p.pos-1)
	}
	n := NewNode(kind, "")
	if kind == KindDeallocator || kind == KindDestructor {
		ctx, err := p.popContext()
		if err != nil {
			return nil, err
		}
		n.Append(ctx)
		return n, nil
	}
	typ := p.popNodeIf(func(n *Node) bool {
		return n.Kind == KindFunctionType || n.Kind == KindDependentGenericType
	})
	if typ == nil {
		return nil, fmt.Errorf("expected initializer type at position %d", p.pos)
	}
	labels, err := p.popLabelList(len(FunctionTypeOf(typ).Children[0].Children))
	if err != nil {
		return nil, err
	}
	ctx, err := p.popContext()
	if err != nil {
		return nil, err
	}
	n.Append(ctx, labels, typ)
	return n, nil
}

// FunctionTypeOf unwraps a dependentGenericType to its underlying function type.
func FunctionTypeOf(n *Node) *Node {
	if n != nil && n.Kind == KindDependentGenericType {
		return n.Child(1)
	}
	return n
}

var accessorKinds = map[byte]NodeKind{
	'g': KindGetter,
	's': KindSetter,
	'M': KindModifyAccessor,
	'r': KindReadAccessor,
	'w': KindWillSet,
	'W': KindDidSet,
}

func (p *parser) demangleVariable() (*Node, error) {
	t, err := p.popTypeOrErr("variable")
	if err != nil {
		return nil, err
	}
	name := p.popNodeIf(isDeclName)
	if name == nil {
		return nil, fmt.Errorf("expected variable name at position %d", p.pos)
	}
	ctx, err := p.popContext()
	if err != nil {
		return nil, err
	}
	variable := NewNode(KindVariable, name.Text)
	variable.Append(ctx, name, t)
	if p.nextIf('p') {
		return variable, nil
	}
	c := p.consume()
	kind, ok := accessorKinds[c]
	if !ok {
		return nil, fmt.Errorf("unsupported accessor %q at position %d", c, p.pos-1)
	}
	return newNodeWithChildren(kind, variable), nil
}

func (p *parser) popProtocolConformance() (*Node, error) {
	sig := p.popNodeKind(KindDependentGenericSig)
	module, err := p.popModule()
	if err != nil {
		return nil, err
	}
	proto, err := p.popProtocol()
	if err != nil {
		return nil, err
	}
	t, err := p.popTypeOrErr("conforming type")
	if err != nil {
		return nil, err
	}
	conf := newNodeWithChildren(KindProtocolConformance, t, proto, module)
	if sig != nil {
		conf.Append(sig)
	}
	return conf, nil
}

func (p *parser) demangleMetadata() (*Node, error) {
	switch c := p.consume(); c {
	case 'a':
		return p.wrapType(KindTypeMetadataAccessFunction)
	case 'n':
		return p.wrapType(KindNominalTypeDescriptor)
	case 'f':
		return p.wrapType(KindFullTypeMetadata)
	case 'r':
		return p.wrapType(KindTypeMetadataCompletionFunction)
	case 'I':
		return p.wrapType(KindTypeMetadataInstantiationCache)
	case 'l':
		return p.wrapType(KindTypeMetadataSingletonInitCache)
	case 'p':
		proto, err := p.popProtocol()
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindProtocolDescriptor, proto), nil
	case 'c':
		conf, err := p.popProtocolConformance()
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindProtocolConformanceDescr, conf), nil
	case 'V':
		entity, err := p.popEntity()
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindPropertyDescriptor, entity), nil
	default:
		return nil, fmt.Errorf("unsupported metadata operator %q at position %d", c, p.pos-1)
	}
}

func (p *parser) demangleThunk() (*Node, error) {
	switch c := p.consume(); c {
	case 'j':
		entity, err := p.popEntity()
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindDispatchThunk, entity), nil
	case 'q':
		entity, err := p.popEntity()
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindMethodDescriptor, entity), nil
	case 'W':
		entity, err := p.popEntity()
		if err != nil {
			return nil, err
		}
		conf, err := p.popProtocolConformance()
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindProtocolWitness, conf, entity), nil
	default:
		return nil, fmt.Errorf("unsupported thunk %q at position %d", c, p.pos-1)
	}
}

var witnessKinds = map[byte]NodeKind{
	'P': KindProtocolWitnessTable,
	'p': KindProtocolWitnessTablePattern,
	'a': KindProtocolWitnessTableAccessor,
	'G': KindGenericProtocolWitnessTable,
	'I': KindGenericProtocolWitnessTableInstantFn,
}

func (p *parser) demangleWitness() (*Node, error) {
	c := p.consume()
	kind, ok := witnessKinds[c]
	if !ok {
		return nil, fmt.Errorf("unsupported witness %q at position %d", c, p.pos-1)
	}
	conf, err := p.popProtocolConformance()
	if err != nil {
		return nil, err
	}
	return newNodeWithChildren(kind, conf), nil
}
