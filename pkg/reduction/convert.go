package reduction

import (
	"fmt"

	dm "github.com/blacktop/go-swiftbind/internal/swiftdemangle"
	"github.com/blacktop/go-swiftbind/pkg/typespec"
)

// failure carries the severity a conversion problem should be reported with.
type failure struct {
	severity Severity
	msg      string
}

func (f *failure) Error() string { return f.msg }

func lowf(format string, args ...any) error {
	return &failure{severity: Low, msg: fmt.Sprintf(format, args...)}
}

func highf(format string, args ...any) error {
	return &failure{severity: High, msg: fmt.Sprintf(format, args...)}
}

var nominalKinds = map[dm.NodeKind]typespec.NominalKind{
	dm.KindStructure: typespec.StructKind,
	dm.KindClass:     typespec.ClassKind,
	dm.KindEnum:      typespec.EnumKind,
	dm.KindProtocol:  typespec.ProtocolKind,
	dm.KindTypeAlias: typespec.TypeAliasKind,
}

// qualifiedName spells a nominal type with its full context chain. Members of
// extensions are named after the extended type.
func qualifiedName(n *dm.Node) (string, error) {
	switch {
	case n == nil:
		return "", highf("missing context")
	case n.Kind == dm.KindModule:
		return n.Text, nil
	case n.Kind == dm.KindExtension:
		return qualifiedName(n.Child(1))
	case n.Kind == dm.KindBoundGeneric:
		return qualifiedName(n.Child(0))
	case n.IsNominal():
		parent, err := qualifiedName(n.Child(0))
		if err != nil {
			return "", err
		}
		return parent + "." + n.Text, nil
	}
	return "", highf("unexpected context %s", n.Kind)
}

// namedType converts a nominal or bound generic node.
func namedType(n *dm.Node) (*typespec.NamedTypeSpec, error) {
	if n == nil {
		return nil, highf("missing type")
	}
	switch {
	case n.Kind == dm.KindBuiltinTypeName:
		return typespec.Named(n.Text, typespec.BuiltinKind), nil
	case n.Kind == dm.KindBoundGeneric:
		base, err := namedType(n.Child(0))
		if err != nil {
			return nil, err
		}
		list := n.Child(1)
		if list == nil {
			return nil, highf("bound generic without arguments")
		}
		for _, arg := range list.Children {
			spec, err := convertType(arg)
			if err != nil {
				return nil, err
			}
			base.GenericArguments = append(base.GenericArguments, spec)
		}
		return base, nil
	case n.IsNominal():
		name, err := qualifiedName(n)
		if err != nil {
			return nil, err
		}
		return typespec.Named(name, nominalKinds[n.Kind]), nil
	}
	return nil, lowf("%s is not a named type", n.Kind)
}

func convertType(n *dm.Node) (typespec.TypeSpec, error) {
	if n == nil {
		return nil, highf("missing type")
	}
	switch n.Kind {
	case dm.KindTuple:
		return convertTuple(n)
	case dm.KindFunctionType, dm.KindNoEscapeFunctionType:
		return convertClosure(n)
	case dm.KindInOut:
		inner, err := convertType(n.Child(0))
		if err != nil {
			return nil, err
		}
		return &typespec.InOutTypeSpec{Inner: inner}, nil
	case dm.KindMetatype:
		inner, err := convertType(n.Child(0))
		if err != nil {
			return nil, err
		}
		return &typespec.MetatypeTypeSpec{Instance: inner}, nil
	case dm.KindProtocolList:
		list := &typespec.ProtocolListTypeSpec{}
		if protos := n.Child(0); protos != nil {
			for _, proto := range protos.Children {
				spec, err := namedType(proto)
				if err != nil {
					return nil, err
				}
				list.Protocols = append(list.Protocols, spec)
			}
		}
		return list, nil
	case dm.KindDependentGenericParam:
		depth, index, ok := dm.GenericParamPosition(n)
		if !ok {
			return nil, highf("malformed generic parameter")
		}
		return &typespec.GenericParameterTypeSpec{Depth: int(depth), Index: int(index)}, nil
	case dm.KindDependentMemberType:
		base, err := convertType(n.Child(0))
		if err != nil {
			return nil, err
		}
		assoc := n.Child(1)
		if assoc == nil {
			return nil, highf("dependent member without name")
		}
		return &typespec.AssociatedTypeSpec{Base: base, Name: assoc.Text}, nil
	case dm.KindDependentGenericType:
		return nil, lowf("generic closure types are not supported")
	}
	return namedType(n)
}

func convertTuple(n *dm.Node) (*typespec.TupleTypeSpec, error) {
	tuple := &typespec.TupleTypeSpec{}
	labeled := false
	for _, elem := range n.Children {
		spec, err := convertType(elem.Child(0))
		if err != nil {
			return nil, err
		}
		tuple.Elements = append(tuple.Elements, spec)
		tuple.Labels = append(tuple.Labels, elem.Text)
		labeled = labeled || elem.Text != ""
	}
	if !labeled {
		tuple.Labels = nil
	}
	return tuple, nil
}

func convertClosure(n *dm.Node) (*typespec.ClosureTypeSpec, error) {
	args, err := convertTuple(n.Child(0))
	if err != nil {
		return nil, err
	}
	ret, err := convertType(n.Child(1))
	if err != nil {
		return nil, err
	}
	return &typespec.ClosureTypeSpec{
		Arguments: args,
		Return:    ret,
		Throws:    n.Flags.Throws,
		Async:     n.Flags.Async,
		Escaping:  n.Flags.Escaping,
	}, nil
}

// namedTypes collects every named type referenced by spec, outermost first.
func namedTypes(spec typespec.TypeSpec, out []*typespec.NamedTypeSpec) []*typespec.NamedTypeSpec {
	switch t := spec.(type) {
	case *typespec.NamedTypeSpec:
		out = append(out, t)
		for _, arg := range t.GenericArguments {
			out = namedTypes(arg, out)
		}
	case *typespec.TupleTypeSpec:
		for _, elem := range t.Elements {
			out = namedTypes(elem, out)
		}
	case *typespec.ClosureTypeSpec:
		if t.Arguments != nil {
			out = namedTypes(t.Arguments, out)
		}
		out = namedTypes(t.Return, out)
	case *typespec.AssociatedTypeSpec:
		out = namedTypes(t.Base, out)
	case *typespec.ProtocolListTypeSpec:
		out = append(out, t.Protocols...)
	case *typespec.MetatypeTypeSpec:
		out = namedTypes(t.Instance, out)
	case *typespec.InOutTypeSpec:
		out = namedTypes(t.Inner, out)
	case *typespec.GenericParameterTypeSpec, nil:
	}
	return out
}
