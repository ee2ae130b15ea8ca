package reduction

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blacktop/go-swiftbind/internal/logging"
	dm "github.com/blacktop/go-swiftbind/internal/swiftdemangle"
	"github.com/blacktop/go-swiftbind/pkg/genericsig"
	"github.com/blacktop/go-swiftbind/pkg/typedb"
	"github.com/blacktop/go-swiftbind/pkg/typespec"
	"github.com/blacktop/go-swiftbind/types/swift"
)

// Option configures a Reducer.
type Option func(*Reducer)

// WithTypeDatabase makes the reducer check every referenced type against db.
func WithTypeDatabase(db *typedb.TypeDatabase) Option {
	return func(r *Reducer) {
		r.db = db
	}
}

// WithLogger sets the logger reduction errors are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reducer) {
		r.log = logging.OrNop(l)
	}
}

// Reducer reduces the symbols exported by one module. It only reads the type
// database and is safe for concurrent use.
type Reducer struct {
	module string
	db     *typedb.TypeDatabase
	log    *zap.Logger
}

// New creates a Reducer for symbols exported by module.
func New(module string, opts ...Option) *Reducer {
	r := &Reducer{
		module: module,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Module returns the module whose symbols the reducer handles.
func (r *Reducer) Module() string {
	return r.module
}

// Reduce decodes symbol into exactly one Reduction. Failures are returned as
// *ReductionError values.
func (r *Reducer) Reduce(symbol string) Reduction {
	root, err := r.demangle(symbol)
	if err != nil {
		return r.fail(symbol, err)
	}
	red, err := r.reduceGlobal(symbol, root.Child(0))
	if err != nil {
		return r.fail(symbol, err)
	}
	return red
}

// ReduceAll reduces symbols with at most workers goroutines and returns the
// results in input order.
func (r *Reducer) ReduceAll(symbols []string, workers int) []Reduction {
	out := make([]Reduction, len(symbols))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, sym := range symbols {
		g.Go(func() error {
			out[i] = r.Reduce(sym)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ReduceProvenance reports where the declaration behind symbol lives.
func (r *Reducer) ReduceProvenance(symbol string) Reduction {
	root, err := r.demangle(symbol)
	if err != nil {
		return r.fail(symbol, err)
	}
	ctx, err := declarationContext(root.Child(0))
	if err != nil {
		return r.fail(symbol, err)
	}
	prov, err := provenanceOf(ctx)
	if err != nil {
		return r.fail(symbol, err)
	}
	return &ProvenanceReduction{Symbol: symbol, Provenance: prov}
}

func (r *Reducer) demangle(symbol string) (*dm.Node, error) {
	if !dm.IsSwiftSymbol(symbol) {
		return nil, lowf("not a swift symbol")
	}
	root, err := dm.DemangleSymbol(symbol)
	if err != nil {
		return nil, lowf("%v", err)
	}
	if root.Child(0) == nil {
		return nil, highf("empty symbol tree")
	}
	return root, nil
}

func (r *Reducer) fail(symbol string, err error) *ReductionError {
	severity := High
	var f *failure
	if errors.As(err, &f) {
		severity = f.severity
	}
	rerr := &ReductionError{Symbol: symbol, Message: err.Error(), Severity: severity}
	r.log.Debug("reduction failed",
		zap.String("symbol", symbol),
		zap.Stringer("severity", severity),
		zap.Error(err))
	return rerr
}

func (r *Reducer) reduceGlobal(symbol string, n *dm.Node) (Reduction, error) {
	switch n.Kind {
	case dm.KindTypeMetadataAccessFunction:
		named, err := namedType(n.Child(0))
		if err != nil {
			return nil, err
		}
		if err := r.resolve(named); err != nil {
			return nil, err
		}
		return &MetadataAccessorReduction{Symbol: symbol, Type: named}, nil

	case dm.KindProtocolWitnessTable:
		wt, err := r.witnessTable(symbol, n.Child(0))
		if err != nil {
			return nil, err
		}
		return wt, nil

	case dm.KindProtocolConformanceDescr:
		conf := n.Child(0)
		wt, err := r.witnessTable(symbol, conf)
		if err != nil {
			return nil, err
		}
		return &ProtocolConformanceDescriptorReduction{
			ProtocolWitnessTableReduction: *wt,
			Module:                        conf.Child(2).Text,
		}, nil

	case dm.KindTypeMetadata, dm.KindTypeMangling, dm.KindNominalTypeDescriptor, dm.KindFullTypeMetadata:
		spec, err := convertType(n.Child(0))
		if err != nil {
			return nil, err
		}
		if err := r.resolve(spec); err != nil {
			return nil, err
		}
		return &TypeSpecReduction{Symbol: symbol, Type: spec}, nil

	case dm.KindDispatchThunk:
		fn, err := r.function(n.Child(0))
		if err != nil {
			return nil, err
		}
		return (&FunctionReduction{Symbol: symbol, Function: fn}).ToDispatchThunk(), nil
	}

	if n.IsEntity() && n.Kind != dm.KindVariable {
		fn, err := r.function(n)
		if err != nil {
			return nil, err
		}
		return &FunctionReduction{Symbol: symbol, Function: fn}, nil
	}
	return nil, lowf("%s symbols are not reduced", n.Kind)
}

func (r *Reducer) witnessTable(symbol string, conf *dm.Node) (*ProtocolWitnessTableReduction, error) {
	if conf == nil || conf.Kind != dm.KindProtocolConformance || len(conf.Children) < 3 {
		return nil, highf("malformed protocol conformance")
	}
	impl, err := convertType(conf.Child(0))
	if err != nil {
		return nil, err
	}
	proto, err := namedType(conf.Child(1))
	if err != nil {
		return nil, err
	}
	if err := r.resolve(impl); err != nil {
		return nil, err
	}
	if err := r.resolve(proto); err != nil {
		return nil, err
	}
	return &ProtocolWitnessTableReduction{Symbol: symbol, ImplementingType: impl, ProtocolType: proto}, nil
}

var accessorFunctionKinds = map[dm.NodeKind]FunctionKind{
	dm.KindGetter:         Getter,
	dm.KindSetter:         Setter,
	dm.KindModifyAccessor: ModifyAccessor,
	dm.KindReadAccessor:   ReadAccessor,
	dm.KindWillSet:        WillSet,
	dm.KindDidSet:         DidSet,
}

func (r *Reducer) function(entity *dm.Node) (*Function, error) {
	if entity == nil {
		return nil, highf("missing entity")
	}
	fn := &Function{}
	if entity.Kind == dm.KindStatic {
		fn.IsStatic = true
		entity = entity.Child(0)
		if entity == nil {
			return nil, highf("static without entity")
		}
	}

	switch entity.Kind {
	case dm.KindFunction:
		fn.Name = entity.Text
		if err := r.signature(fn, entity.Child(2), entity.Child(3)); err != nil {
			return nil, err
		}
	case dm.KindAllocator, dm.KindConstructor:
		fn.Name = "init"
		fn.Kind = Constructor
		if entity.Kind == dm.KindConstructor {
			fn.Kind = Initializer
		}
		if err := r.signature(fn, entity.Child(1), entity.Child(2)); err != nil {
			return nil, err
		}
	case dm.KindDeallocator, dm.KindDestructor:
		fn.Name = "deinit"
		fn.Kind = Deallocator
		if entity.Kind == dm.KindDestructor {
			fn.Kind = Destructor
		}
		fn.Return = typespec.EmptyTuple()
	default:
		kind, ok := accessorFunctionKinds[entity.Kind]
		if !ok {
			return nil, lowf("%s entities are not reduced", entity.Kind)
		}
		if err := r.accessor(fn, kind, entity.Child(0)); err != nil {
			return nil, err
		}
	}
	return fn, nil
}

func (r *Reducer) accessor(fn *Function, kind FunctionKind, variable *dm.Node) error {
	if variable == nil || variable.Kind != dm.KindVariable || len(variable.Children) != 3 {
		return highf("malformed accessor")
	}
	spec, err := convertType(variable.Child(2))
	if err != nil {
		return err
	}
	if err := r.resolve(spec); err != nil {
		return err
	}
	fn.Name = variable.Text
	fn.Kind = kind
	switch kind {
	case Setter:
		fn.Parameters = []Parameter{{Label: "newValue", Type: spec}}
		fn.Return = typespec.EmptyTuple()
	case WillSet:
		fn.Parameters = []Parameter{{Label: "newValue", Type: spec}}
		fn.Return = typespec.EmptyTuple()
	case DidSet:
		fn.Parameters = []Parameter{{Label: "oldValue", Type: spec}}
		fn.Return = typespec.EmptyTuple()
	default:
		fn.Return = spec
	}
	return nil
}

// signature fills parameters, result, effects and generics from a function
// type that may be wrapped in a generic signature.
func (r *Reducer) signature(fn *Function, labels, typ *dm.Node) error {
	fnType := dm.FunctionTypeOf(typ)
	if fnType == nil || len(fnType.Children) != 2 {
		return highf("malformed function type")
	}
	if typ.Kind == dm.KindDependentGenericType {
		sig := typ.Child(0)
		canonical := dm.GenericSignatureText(sig, false, fnType)
		sugared := dm.GenericSignatureText(sig, true, fnType)
		generics, err := genericsig.Parse(canonical, sugared)
		if err != nil {
			return lowf("generic signature %s: %v", canonical, err)
		}
		fn.Generics = generics
	}

	params := fnType.Child(0)
	for i, elem := range params.Children {
		spec, err := convertType(elem.Child(0))
		if err != nil {
			return err
		}
		p := Parameter{Type: spec, IsVariadic: elem.Flags.Variadic}
		if inout, ok := spec.(*typespec.InOutTypeSpec); ok {
			p.Type = inout.Inner
			p.IsInOut = true
		}
		if label := labels.Child(i); label != nil && label.Kind == dm.KindIdentifier {
			p.Label = label.Text
		} else if elem.Text != "" {
			p.Label = elem.Text
		}
		if err := r.resolve(p.Type); err != nil {
			return err
		}
		fn.Parameters = append(fn.Parameters, p)
	}

	ret, err := convertType(fnType.Child(1))
	if err != nil {
		return err
	}
	if err := r.resolve(ret); err != nil {
		return err
	}
	fn.Return = ret
	fn.Throws = fnType.Flags.Throws
	fn.Async = fnType.Flags.Async
	return nil
}

// resolve checks that every named type in spec is known. A type is known when
// it belongs to the module being reduced (it can still be registered), to the
// standard library, to a processed module, or is reachable through the overlay
// under its owning module.
func (r *Reducer) resolve(spec typespec.TypeSpec) error {
	if r.db == nil {
		return nil
	}
	for _, named := range namedTypes(spec, nil) {
		owner := named.Module()
		if owner == r.module || swift.IsReservedModule(owner) {
			continue
		}
		if r.db.IsTypeProcessed(owner, named.LocalName()) {
			continue
		}
		if r.inOverlay(owner, named) {
			continue
		}
		return lowf("type %s cannot be resolved from module %s", named.Name, r.module)
	}
	return nil
}

func (r *Reducer) inOverlay(owner string, named *typespec.NamedTypeSpec) bool {
	for _, key := range []string{named.LocalName(), named.Name} {
		if rec, ok := r.db.TryGetTypeRecord(r.module, key); ok && rec.Module == owner {
			return true
		}
	}
	return false
}

// declarationContext finds the context node of the declaration a global
// symbol refers to.
func declarationContext(n *dm.Node) (*dm.Node, error) {
	for {
		switch {
		case n == nil:
			return nil, highf("missing declaration")
		case n.Kind == dm.KindStatic || n.Kind == dm.KindDispatchThunk || n.Kind == dm.KindMethodDescriptor ||
			n.Kind == dm.KindPropertyDescriptor:
			n = n.Child(0)
		case n.Kind == dm.KindProtocolWitness:
			n = n.Child(1)
		case n.Kind == dm.KindGetter || n.Kind == dm.KindSetter || n.Kind == dm.KindModifyAccessor ||
			n.Kind == dm.KindReadAccessor || n.Kind == dm.KindWillSet || n.Kind == dm.KindDidSet:
			n = n.Child(0)
		case n.IsEntity():
			return n.Child(0), nil
		case n.Kind == dm.KindTypeMetadataAccessFunction || n.Kind == dm.KindTypeMetadata ||
			n.Kind == dm.KindNominalTypeDescriptor || n.Kind == dm.KindFullTypeMetadata ||
			n.Kind == dm.KindTypeMangling:
			t := n.Child(0)
			if t != nil && t.Kind == dm.KindBoundGeneric {
				t = t.Child(0)
			}
			if !t.IsNominal() {
				return nil, lowf("type has no declaration context")
			}
			return t.Child(0), nil
		default:
			return nil, lowf("%s symbols carry no provenance", n.Kind)
		}
	}
}

func provenanceOf(ctx *dm.Node) (Provenance, error) {
	switch {
	case ctx == nil:
		return Provenance{}, highf("missing context")
	case ctx.Kind == dm.KindModule:
		return TopLevel(ctx.Text), nil
	case ctx.Kind == dm.KindExtension:
		extended, err := namedType(ctx.Child(1))
		if err != nil {
			return Provenance{}, err
		}
		return Extension(extended, ctx.Child(0).Text), nil
	case ctx.IsNominal() || ctx.Kind == dm.KindBoundGeneric:
		owner, err := namedType(ctx)
		if err != nil {
			return Provenance{}, err
		}
		return Instance(owner), nil
	}
	return Provenance{}, highf("unexpected context %s", ctx.Kind)
}

// String renders a reduction for logs and tools.
func String(red Reduction) string {
	switch r := red.(type) {
	case *ReductionError:
		return "error: " + r.Error()
	case *TypeSpecReduction:
		return "type " + r.Type.String()
	case *MetadataAccessorReduction:
		return "metadata accessor for " + r.Type.String()
	case *FunctionReduction:
		return "function " + r.Function.String()
	case *DispatchThunkFunctionReduction:
		return "dispatch thunk " + r.Function.String()
	case *ProtocolWitnessTableReduction:
		return fmt.Sprintf("witness table %s : %s", r.ImplementingType, r.ProtocolType)
	case *ProtocolConformanceDescriptorReduction:
		return fmt.Sprintf("conformance descriptor %s : %s in %s", r.ImplementingType, r.ProtocolType, r.Module)
	case *ProvenanceReduction:
		return "provenance " + r.Provenance.String()
	default:
		return fmt.Sprintf("unknown reduction %T", red)
	}
}
