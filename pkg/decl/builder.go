package decl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-set/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blacktop/go-swiftbind/internal/logging"
	"github.com/blacktop/go-swiftbind/pkg/reduction"
	"github.com/blacktop/go-swiftbind/pkg/typespec"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger the builder reports folded symbols to.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		b.log = logging.OrNop(l)
	}
}

// Builder accumulates the declarations of one module. It is not safe for
// concurrent use; AddAll parallelizes the reduction work internally.
type Builder struct {
	reducer *reduction.Reducer
	log     *zap.Logger

	seen       *set.Set[string]
	functions  []*reduction.FunctionReduction
	types      map[string]*TypeDecl
	extensions map[string]*ExtensionDecl
	extOrder   []string
	errors     []*reduction.ReductionError
}

// NewBuilder creates a Builder for the module handled by reducer.
func NewBuilder(reducer *reduction.Reducer, opts ...Option) *Builder {
	b := &Builder{
		reducer:    reducer,
		log:        zap.NewNop(),
		seen:       set.New[string](0),
		types:      make(map[string]*TypeDecl),
		extensions: make(map[string]*ExtensionDecl),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

type reduced struct {
	symbol string
	red    reduction.Reduction
	prov   reduction.Reduction
}

// Add reduces symbol and folds the result into the module. A high severity
// reduction error is returned and leaves the module unchanged; low severity
// errors are recorded in ModuleDecl.Errors. Symbols already folded are ignored.
func (b *Builder) Add(symbol string) error {
	if b.seen.Contains(symbol) {
		return nil
	}
	return b.add(b.reduce(symbol))
}

// AddAll reduces symbols with at most workers goroutines and folds them in
// input order. Folding stops at the first high severity error, which is
// returned; the failed symbol and those after it can be added again.
func (b *Builder) AddAll(symbols []string, workers int) error {
	batch := set.New[string](len(symbols))
	fresh := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if !b.seen.Contains(sym) && batch.Insert(sym) {
			fresh = append(fresh, sym)
		}
	}

	out := make([]reduced, len(fresh))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, sym := range fresh {
		g.Go(func() error {
			out[i] = b.reduce(sym)
			return nil
		})
	}
	_ = g.Wait()

	if err := b.addReduced(out); err != nil {
		return err
	}
	b.log.Debug("folded symbols",
		zap.String("module", b.reducer.Module()),
		zap.Int("symbols", len(fresh)))
	return nil
}

func (b *Builder) addReduced(rs []reduced) error {
	for _, r := range rs {
		if err := b.add(r); err != nil {
			return err
		}
	}
	return nil
}

// add folds r and marks its symbol seen only once the fold succeeded.
func (b *Builder) add(r reduced) error {
	if err := b.fold(r); err != nil {
		return err
	}
	b.seen.Insert(r.symbol)
	return nil
}

func (b *Builder) reduce(symbol string) reduced {
	red := b.reducer.Reduce(symbol)
	switch red.(type) {
	case *reduction.FunctionReduction, *reduction.DispatchThunkFunctionReduction:
		return reduced{symbol: symbol, red: red, prov: b.reducer.ReduceProvenance(symbol)}
	}
	return reduced{symbol: symbol, red: red}
}

func (b *Builder) fold(r reduced) error {
	switch red := r.red.(type) {
	case *reduction.ReductionError:
		return b.skip(red)

	case *reduction.MetadataAccessorReduction:
		if t := b.owned(red.Type); t != nil {
			t.MetadataAccessor = red.Symbol
		}

	case *reduction.TypeSpecReduction:
		if named, ok := red.Type.(*typespec.NamedTypeSpec); ok {
			b.owned(named)
		}

	case *reduction.ProtocolWitnessTableReduction:
		c := b.conformance(red)
		if c == nil {
			return b.skip(lowError(red.Symbol, "conformance of a non-nominal type %s", red.ImplementingType))
		}
		c.WitnessTable = red.Symbol

	case *reduction.ProtocolConformanceDescriptorReduction:
		if red.Module != b.reducer.Module() {
			break
		}
		c := b.conformance(&red.ProtocolWitnessTableReduction)
		if c == nil {
			return b.skip(lowError(red.Symbol, "conformance of a non-nominal type %s", red.ImplementingType))
		}
		c.Descriptor = red.Symbol

	case *reduction.FunctionReduction:
		prov, err := provenance(r.prov)
		if err != nil {
			return b.skip(err)
		}
		b.placeFunction(red, prov)

	case *reduction.DispatchThunkFunctionReduction:
		prov, err := provenance(r.prov)
		if err != nil {
			return b.skip(err)
		}
		if prov.Type == nil {
			return b.skip(lowError(red.Symbol, "dispatch thunk outside of a type"))
		}
		t := b.owned(prov.Type)
		if t == nil {
			return b.skip(lowError(red.Symbol, "dispatch thunk of foreign type %s", prov.Type))
		}
		t.DispatchThunks = append(t.DispatchThunks, red)

	default:
		return fmt.Errorf("unexpected reduction %T for %s", r.red, r.red.MangledSymbol())
	}
	return nil
}

func (b *Builder) placeFunction(fn *reduction.FunctionReduction, prov reduction.Provenance) {
	switch prov.Kind {
	case reduction.TopLevelProvenance:
		b.functions = append(b.functions, fn)
	case reduction.InstanceProvenance:
		if t := b.owned(prov.Type); t != nil {
			t.Methods = append(t.Methods, fn)
			return
		}
		ext := b.extension(prov.Type)
		ext.Members = append(ext.Members, fn)
	case reduction.ExtensionProvenance:
		if t := b.owned(prov.Type); t != nil {
			t.Extensions = append(t.Extensions, fn)
			return
		}
		ext := b.extension(prov.Type)
		ext.Members = append(ext.Members, fn)
	}
}

func (b *Builder) skip(err *reduction.ReductionError) error {
	if err.Severity == reduction.High {
		return err
	}
	b.errors = append(b.errors, err)
	return nil
}

// owned returns the declaration of named, creating it on first use, or nil when
// another module owns the type.
func (b *Builder) owned(named *typespec.NamedTypeSpec) *TypeDecl {
	if named == nil || named.Module() != b.reducer.Module() {
		return nil
	}
	if t, ok := b.types[named.Name]; ok {
		return t
	}
	t := &TypeDecl{Type: typespec.Named(named.Name, named.Kind)}
	b.types[named.Name] = t
	return t
}

func (b *Builder) extension(named *typespec.NamedTypeSpec) *ExtensionDecl {
	if ext, ok := b.extensions[named.Name]; ok {
		return ext
	}
	ext := &ExtensionDecl{Type: typespec.Named(named.Name, named.Kind)}
	b.extensions[named.Name] = ext
	b.extOrder = append(b.extOrder, named.Name)
	return ext
}

// conformance finds or creates the entry for wt. Conformances of foreign types
// are retroactive and land on the extension of that type.
func (b *Builder) conformance(wt *reduction.ProtocolWitnessTableReduction) *Conformance {
	named, ok := wt.ImplementingType.(*typespec.NamedTypeSpec)
	if !ok {
		return nil
	}
	var list *[]*Conformance
	if t := b.owned(named); t != nil {
		list = &t.Conformances
	} else {
		list = &b.extension(named).Conformances
	}
	for _, c := range *list {
		if c.Protocol.Name == wt.ProtocolType.Name {
			return c
		}
	}
	c := &Conformance{Protocol: wt.ProtocolType}
	*list = append(*list, c)
	return c
}

// Module returns the declarations folded so far.
func (b *Builder) Module() *ModuleDecl {
	m := &ModuleDecl{
		Name:      b.reducer.Module(),
		Functions: b.functions,
		Errors:    b.errors,
	}
	for _, t := range b.types {
		m.Types = append(m.Types, t)
	}
	sort.Slice(m.Types, func(i, j int) bool {
		return m.Types[i].Type.Name < m.Types[j].Type.Name
	})
	for _, name := range b.extOrder {
		m.Extensions = append(m.Extensions, b.extensions[name])
	}
	return m
}

func provenance(red reduction.Reduction) (reduction.Provenance, *reduction.ReductionError) {
	switch p := red.(type) {
	case *reduction.ProvenanceReduction:
		return p.Provenance, nil
	case *reduction.ReductionError:
		return reduction.Provenance{}, p
	}
	return reduction.Provenance{}, &reduction.ReductionError{
		Symbol:   red.MangledSymbol(),
		Message:  fmt.Sprintf("unexpected provenance %T", red),
		Severity: reduction.High,
	}
}

func lowError(symbol, format string, args ...any) *reduction.ReductionError {
	return &reduction.ReductionError{
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
		Severity: reduction.Low,
	}
}
