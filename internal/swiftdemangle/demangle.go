package swiftdemangle

import (
	"fmt"

	"github.com/blacktop/go-swiftbind/types/swift"
)

var symbolPrefixes = []string{"_$s", "$s", "_$S", "$S", "_$e", "$e"}

// stripSymbolPrefix returns the mangled payload after the Swift 5 symbol prefix.
func stripSymbolPrefix(symbol string) (string, bool) {
	for _, prefix := range symbolPrefixes {
		if len(symbol) > len(prefix) && symbol[:len(prefix)] == prefix {
			return symbol[len(prefix):], true
		}
	}
	return "", false
}

// parseSymbol runs the postfix operator loop until the input is exhausted and
// requires the stack to collapse into a single top-level node.
func (p *parser) parseSymbol() (*Node, error) {
	if err := p.run(); err != nil {
		return nil, err
	}
	if len(p.nodeStack) != 1 {
		return nil, fmt.Errorf("mangled name did not reduce to a single node (%d remain)", len(p.nodeStack))
	}
	global := NewNode(KindGlobal, "")
	global.Append(p.popNode())
	return global, nil
}

// parseType demangles a bare type mangling such as "SaySiG".
func (p *parser) parseType() (*Node, error) {
	if err := p.run(); err != nil {
		return nil, err
	}
	if len(p.nodeStack) != 1 || !p.nodeStack[0].IsType() {
		return nil, fmt.Errorf("mangled type did not reduce to a single type (%d nodes remain)", len(p.nodeStack))
	}
	return p.popNode(), nil
}

func (p *parser) run() error {
	for !p.eof() {
		start := p.pos
		n, err := p.demangleOperator()
		if err != nil {
			return err
		}
		if n == nil {
			return fmt.Errorf("operator at position %d produced no node", start)
		}
		debugf("operator %q -> %s %q (stack=%d)", p.data[start:p.pos], n.Kind, n.Text, len(p.nodeStack))
		p.pushNode(n)
	}
	return nil
}

func (p *parser) demangleOperator() (*Node, error) {
	c := p.consume()
	switch c {
	case 'A':
		return p.demangleMultiSubstitutions()
	case 'B':
		return p.demangleBuiltinType()
	case 'C':
		return p.demangleNominalType(KindClass)
	case 'D':
		return p.wrapType(KindTypeMangling)
	case 'E':
		return p.demangleExtensionContext()
	case 'F':
		return p.demangleFunctionEntity()
	case 'G':
		return p.demangleBoundGenericType()
	case 'K':
		return NewNode(KindThrowsAnnotation, ""), nil
	case 'L':
		return p.demanglePrivateDeclName()
	case 'M':
		return p.demangleMetadata()
	case 'N':
		return p.wrapType(KindTypeMetadata)
	case 'O':
		return p.demangleNominalType(KindEnum)
	case 'P':
		return p.demangleNominalType(KindProtocol)
	case 'Q':
		return p.demangleArchetype()
	case 'R':
		return p.demangleGenericRequirement()
	case 'S':
		return p.demangleStandardSubstitution()
	case 'T':
		return p.demangleThunk()
	case 'V':
		return p.demangleNominalType(KindStructure)
	case 'W':
		return p.demangleWitness()
	case 'X':
		return p.demangleSpecialType()
	case 'Y':
		return p.demangleTypeAnnotation()
	case 'Z':
		entity, err := p.popEntity()
		if err != nil {
			return nil, err
		}
		return newNodeWithChildren(KindStatic, entity), nil
	case '_':
		return NewNode(KindFirstElementMarker, ""), nil
	case 'a':
		return p.demangleNominalType(KindTypeAlias)
	case 'c':
		return p.popFunctionType(KindFunctionType)
	case 'd':
		return NewNode(KindVariadicMarker, ""), nil
	case 'f':
		return p.demangleConstructorEntity()
	case 'l':
		return p.demangleGenericSignature(false)
	case 'm':
		return p.wrapType(KindMetatype)
	case 'p':
		return p.demangleProtocolList()
	case 'q':
		return p.demangleGenericParamIndex()
	case 'r':
		return p.demangleGenericSignature(true)
	case 's':
		return NewNode(KindModule, swift.STDLIB_NAME), nil
	case 't':
		return p.popTuple()
	case 'u':
		return p.demangleGenericType()
	case 'v':
		return p.demangleVariable()
	case 'x':
		return newGenericParam(0, 0), nil
	case 'y':
		return NewNode(KindEmptyList, ""), nil
	case 'z':
		return p.wrapType(KindInOut)
	}
	if isDigit(c) {
		p.pos--
		return p.readIdentifier()
	}
	if c == 0 {
		return nil, fmt.Errorf("unexpected end of mangled name")
	}
	return nil, fmt.Errorf("unsupported operator %q at position %d", c, p.pos-1)
}

func (p *parser) wrapType(kind NodeKind) (*Node, error) {
	t, err := p.popTypeOrErr(string(kind))
	if err != nil {
		return nil, err
	}
	return newNodeWithChildren(kind, t), nil
}

func (p *parser) demangleMultiSubstitutions() (*Node, error) {
	repeat := -1
	for {
		c := p.consume()
		switch {
		case c == 0:
			return nil, fmt.Errorf("unexpected end inside substitution")
		case isLowerLetter(c):
			n, err := p.pushMultiSubstitutions(repeat, int(c-'a'))
			if err != nil {
				return nil, err
			}
			p.pushNode(n)
			repeat = -1
		case isUpperLetter(c):
			return p.pushMultiSubstitutions(repeat, int(c-'A'))
		case c == '_':
			return p.lookupSubstitution(repeat + 27)
		default:
			p.pos--
			n, ok, err := p.readNatural()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("invalid substitution character %q at position %d", c, p.pos)
			}
			repeat = n
		}
	}
}

func (p *parser) pushMultiSubstitutions(repeat, index int) (*Node, error) {
	if repeat > maxRepeatCount {
		return nil, fmt.Errorf("substitution repeat count %d too large", repeat)
	}
	n, err := p.lookupSubstitution(index)
	if err != nil {
		return nil, err
	}
	for ; repeat > 1; repeat-- {
		p.pushNode(n)
	}
	return n, nil
}

func (p *parser) demangleStandardSubstitution() (*Node, error) {
	switch {
	case p.nextIf('o'):
		return NewNode(KindModule, swift.MANGLING_MODULE_OBJC), nil
	case p.nextIf('C'):
		return NewNode(KindModule, swift.MANGLING_MODULE_CLANG_IMPORTER), nil
	case p.nextIf('g'):
		wrapped, err := p.popTypeOrErr("optional")
		if err != nil {
			return nil, err
		}
		optional := newNodeWithChildren(KindBoundGeneric,
			standardTypeNode(swift.MangledKnownTypeKind['q']),
			newNodeWithChildren(KindTypeList, wrapped))
		p.pushSubstitution(optional)
		return optional, nil
	}
	repeat, ok, err := p.readNatural()
	if err != nil {
		return nil, err
	}
	if !ok {
		repeat = 1
	}
	if repeat > maxRepeatCount {
		return nil, fmt.Errorf("standard substitution repeat count %d too large", repeat)
	}
	table := swift.MangledKnownTypeKind
	if p.nextIf('c') {
		table = swift.MangledKnownTypeKind2
	}
	c := p.consume()
	st, ok := table[c]
	if !ok {
		return nil, fmt.Errorf("unknown standard substitution %q at position %d", c, p.pos-1)
	}
	n := standardTypeNode(st)
	for ; repeat > 1; repeat-- {
		p.pushNode(n)
	}
	return n, nil
}

func standardTypeNode(st swift.StandardType) *Node {
	kind := KindStructure
	switch st.Kind {
	case swift.StandardEnum:
		kind = KindEnum
	case swift.StandardProtocol:
		kind = KindProtocol
	case swift.StandardClass:
		kind = KindClass
	}
	n := NewNode(kind, st.Name)
	n.Append(NewNode(KindModule, swift.STDLIB_NAME), NewNode(KindIdentifier, st.Name))
	return n
}

func (p *parser) demangleBuiltinType() (*Node, error) {
	c := p.consume()
	var name string
	if fixed, ok := swift.MangledBuiltinType[c]; ok {
		name = fixed
	} else {
		switch c {
		case 'i', 'f':
			width, ok, err := p.readNatural()
			if err != nil {
				return nil, err
			}
			if !ok || width <= 0 {
				return nil, fmt.Errorf("expected builtin width at position %d", p.pos)
			}
			if err := p.expect('_'); err != nil {
				return nil, err
			}
			if c == 'i' {
				name = fmt.Sprintf("%s%d", swift.BUILTIN_TYPE_NAME_INT, width)
			} else {
				name = fmt.Sprintf("%s%d", swift.BUILTIN_TYPE_NAME_FLOAT, width)
			}
		default:
			return nil, fmt.Errorf("unsupported builtin type %q at position %d", c, p.pos-1)
		}
	}
	n := NewNode(KindBuiltinTypeName, name)
	p.pushSubstitution(n)
	return n, nil
}

func (p *parser) demangleNominalType(kind NodeKind) (*Node, error) {
	name := p.popNodeIf(isDeclName)
	if name == nil {
		return nil, fmt.Errorf("expected name for %s at position %d", kind, p.pos)
	}
	ctx, err := p.popContext()
	if err != nil {
		return nil, err
	}
	n := NewNode(kind, name.Text)
	n.Append(ctx, name)
	p.pushSubstitution(n)
	return n, nil
}

func (p *parser) demanglePrivateDeclName() (*Node, error) {
	if !p.nextIf('L') {
		return nil, fmt.Errorf("unsupported private name form at position %d", p.pos)
	}
	discriminator := p.popNodeKind(KindIdentifier)
	if discriminator == nil {
		return nil, fmt.Errorf("expected private discriminator at position %d", p.pos)
	}
	name := p.popNodeKind(KindIdentifier)
	if name == nil {
		return nil, fmt.Errorf("expected private name at position %d", p.pos)
	}
	n := NewNode(KindPrivateDeclName, name.Text)
	n.Append(discriminator)
	return n, nil
}

func (p *parser) demangleExtensionContext() (*Node, error) {
	sig := p.popNodeKind(KindDependentGenericSig)
	module, err := p.popModule()
	if err != nil {
		return nil, err
	}
	extended := p.popNodeIf(func(n *Node) bool { return n.IsNominal() || n.Kind == KindBoundGeneric })
	if extended == nil {
		return nil, fmt.Errorf("expected extended type at position %d", p.pos)
	}
	ext := newNodeWithChildren(KindExtension, module, extended)
	if sig != nil {
		ext.Append(sig)
	}
	return ext, nil
}

func (p *parser) demangleBoundGenericType() (*Node, error) {
	var levels [][]*Node
	for {
		var args []*Node
		for t := p.popType(); t != nil; t = p.popType() {
			args = append([]*Node{t}, args...)
		}
		levels = append(levels, args)
		if p.popNodeKind(KindEmptyList) != nil {
			break
		}
		if p.popNodeKind(KindFirstElementMarker) == nil {
			return nil, fmt.Errorf("malformed generic argument list at position %d", p.pos)
		}
	}
	base := p.popNodeIf((*Node).IsNominal)
	if base == nil {
		return nil, fmt.Errorf("expected nominal type for generic arguments at position %d", p.pos)
	}
	list := NewNode(KindTypeList, "")
	for i := len(levels) - 1; i >= 0; i-- {
		list.Append(levels[i]...)
	}
	n := newNodeWithChildren(KindBoundGeneric, base, list)
	p.pushSubstitution(n)
	return n, nil
}

// popTuple collects elements down to the first-element marker, which sits above
// the first element. Each element is a type, an optional label and an optional
// variadic marker, topmost last.
func (p *parser) popTuple() (*Node, error) {
	tuple := NewNode(KindTuple, "")
	if p.popNodeKind(KindEmptyList) != nil {
		return tuple, nil
	}
	var elems []*Node
	for first := false; !first; {
		first = p.popNodeKind(KindFirstElementMarker) != nil
		elem := NewNode(KindTupleElement, "")
		elem.Flags.Variadic = p.popNodeKind(KindVariadicMarker) != nil
		if label := p.popNodeKind(KindIdentifier); label != nil {
			elem.Text = label.Text
		}
		t, err := p.popTypeOrErr("tuple element")
		if err != nil {
			return nil, err
		}
		elem.Append(t)
		elems = append([]*Node{elem}, elems...)
	}
	tuple.Append(elems...)
	return tuple, nil
}

func (p *parser) popFunctionType(kind NodeKind) (*Node, error) {
	fn := NewNode(kind, "")
	fn.Flags.Escaping = kind == KindFunctionType
	for ann := p.popNodeIf(isFunctionAnnotation); ann != nil; ann = p.popNodeIf(isFunctionAnnotation) {
		switch ann.Kind {
		case KindThrowsAnnotation:
			fn.Flags.Throws = true
		case KindAsyncAnnotation:
			fn.Flags.Async = true
		}
	}
	params, err := p.popFunctionParams()
	if err != nil {
		return nil, err
	}
	var result *Node
	if p.popNodeKind(KindEmptyList) != nil {
		result = NewNode(KindTuple, "")
	} else if result = p.popType(); result == nil {
		return nil, fmt.Errorf("expected function result type at position %d", p.pos)
	}
	fn.Append(params, result)
	return fn, nil
}

// popFunctionParams normalizes the parameter clause to a tuple so a lone type
// and a one-element tuple read the same way.
func (p *parser) popFunctionParams() (*Node, error) {
	if p.popNodeKind(KindEmptyList) != nil {
		return NewNode(KindTuple, ""), nil
	}
	t, err := p.popTypeOrErr("function parameters")
	if err != nil {
		return nil, err
	}
	if t.Kind == KindTuple {
		return t, nil
	}
	elem := NewNode(KindTupleElement, "")
	elem.Append(t)
	return newNodeWithChildren(KindTuple, elem), nil
}

func (p *parser) demangleSpecialType() (*Node, error) {
	switch c := p.consume(); c {
	case 'E':
		return p.popFunctionType(KindNoEscapeFunctionType)
	default:
		return nil, fmt.Errorf("unsupported special type %q at position %d", c, p.pos-1)
	}
}

func (p *parser) demangleTypeAnnotation() (*Node, error) {
	switch c := p.consume(); c {
	case 'a':
		return NewNode(KindAsyncAnnotation, ""), nil
	case 'b':
		return NewNode(KindSendableAnnotation, ""), nil
	default:
		return nil, fmt.Errorf("unsupported type annotation %q at position %d", c, p.pos-1)
	}
}

func (p *parser) demangleProtocolList() (*Node, error) {
	list := NewNode(KindTypeList, "")
	if p.popNodeKind(KindEmptyList) == nil {
		var protos []*Node
		for first := false; !first; {
			first = p.popNodeKind(KindFirstElementMarker) != nil
			proto, err := p.popProtocol()
			if err != nil {
				return nil, err
			}
			protos = append([]*Node{proto}, protos...)
		}
		list.Append(protos...)
	}
	return newNodeWithChildren(KindProtocolList, list), nil
}

func (p *parser) demangleArchetype() (*Node, error) {
	var base *Node
	switch c := p.consume(); c {
	case 'z':
		base = newGenericParam(0, 0)
	case 'y':
		param, err := p.demangleGenericParamIndex()
		if err != nil {
			return nil, err
		}
		base = param
	default:
		return nil, fmt.Errorf("unsupported archetype %q at position %d", c, p.pos-1)
	}
	assoc, err := p.popAssociatedTypeName()
	if err != nil {
		return nil, err
	}
	member := newNodeWithChildren(KindDependentMemberType, base, assoc)
	p.pushSubstitution(member)
	return member, nil
}

func (p *parser) popAssociatedTypeName() (*Node, error) {
	var qualifier *Node
	if top := p.peekNode(); top != nil && top.Kind == KindProtocol && len(p.nodeStack) > 1 &&
		p.nodeStack[len(p.nodeStack)-2].Kind == KindIdentifier {
		qualifier = p.popNode()
	}
	name := p.popNodeKind(KindIdentifier)
	if name == nil {
		return nil, fmt.Errorf("expected associated type name at position %d", p.pos)
	}
	ref := NewNode(KindDependentAssociatedType, name.Text)
	if qualifier != nil {
		ref.Append(qualifier)
	}
	return ref, nil
}

func (p *parser) demangleGenericType() (*Node, error) {
	sig := p.popNodeKind(KindDependentGenericSig)
	if sig == nil {
		return nil, fmt.Errorf("expected generic signature at position %d", p.pos)
	}
	t, err := p.popTypeOrErr("generic type")
	if err != nil {
		return nil, err
	}
	return newNodeWithChildren(KindDependentGenericType, sig, t), nil
}
