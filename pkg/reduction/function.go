package reduction

import (
	"strings"

	"github.com/blacktop/go-swiftbind/pkg/genericsig"
	"github.com/blacktop/go-swiftbind/pkg/typespec"
)

// FunctionKind is the kind of callable a symbol denotes.
type FunctionKind uint8

const (
	PlainFunction FunctionKind = iota
	// Constructor is an allocating initializer (fC).
	Constructor
	// Initializer initializes already allocated storage (fc).
	Initializer
	Deallocator
	Destructor
	Getter
	Setter
	ModifyAccessor
	ReadAccessor
	WillSet
	DidSet
)

var functionKindNames = map[FunctionKind]string{
	PlainFunction:  "function",
	Constructor:    "constructor",
	Initializer:    "initializer",
	Deallocator:    "deallocator",
	Destructor:     "destructor",
	Getter:         "getter",
	Setter:         "setter",
	ModifyAccessor: "modify",
	ReadAccessor:   "read",
	WillSet:        "willSet",
	DidSet:         "didSet",
}

func (k FunctionKind) String() string {
	if name, ok := functionKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsAccessor reports whether the function is a property accessor or observer.
func (k FunctionKind) IsAccessor() bool {
	return k >= Getter
}

// Parameter is one argument of a Function. Label is empty when the argument
// has no external label.
type Parameter struct {
	Label      string
	Type       typespec.TypeSpec
	IsInOut    bool
	IsVariadic bool
}

// Function is the signature of a callable symbol.
type Function struct {
	// Name is the declared name; "init" and "deinit" for initializers and
	// deinitializers, the property name for accessors.
	Name       string
	Kind       FunctionKind
	IsStatic   bool
	Parameters []Parameter
	Return     typespec.TypeSpec
	Generics   []genericsig.GenericArgumentDecl
	Throws     bool
	Async      bool
}

// IsGeneric reports whether the function declares generic parameters.
func (f *Function) IsGeneric() bool {
	return len(f.Generics) > 0
}

// String renders the function in Swift declaration order.
func (f *Function) String() string {
	var sb strings.Builder
	if f.IsStatic {
		sb.WriteString("static ")
	}
	sb.WriteString(f.Name)
	if f.Kind.IsAccessor() {
		sb.WriteString("." + f.Kind.String())
	}
	if len(f.Generics) > 0 {
		names := make([]string, 0, len(f.Generics))
		for _, g := range f.Generics {
			names = append(names, g.SugaredName)
		}
		sb.WriteString("<" + strings.Join(names, ", ") + ">")
	}
	sb.WriteByte('(')
	for i, p := range f.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Label != "" {
			sb.WriteString(p.Label + ": ")
		}
		if p.IsInOut {
			sb.WriteString("inout ")
		}
		sb.WriteString(p.Type.String())
		if p.IsVariadic {
			sb.WriteString("...")
		}
	}
	sb.WriteByte(')')
	if f.Async {
		sb.WriteString(" async")
	}
	if f.Throws {
		sb.WriteString(" throws")
	}
	sb.WriteString(" -> ")
	if f.Return == nil {
		sb.WriteString("()")
	} else {
		sb.WriteString(f.Return.String())
	}
	return sb.String()
}
