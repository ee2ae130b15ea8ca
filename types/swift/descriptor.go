package swift

import (
	"strings"
	"unsafe"
)

type ContextDescriptorKind uint8

const (
	CDKindModule     ContextDescriptorKind = 0  // module
	CDKindExtension  ContextDescriptorKind = 1  // extension
	CDKindAnonymous  ContextDescriptorKind = 2  // anonymous
	CDKindProtocol   ContextDescriptorKind = 3  // protocol
	CDKindOpaqueType ContextDescriptorKind = 4  // opaque_type
	CDKindClass      ContextDescriptorKind = 16 // class
	CDKindStruct     ContextDescriptorKind = 17 // struct
	CDKindEnum       ContextDescriptorKind = 18 // enum
)

func (k ContextDescriptorKind) String() string {
	switch k {
	case CDKindModule:
		return "module"
	case CDKindExtension:
		return "extension"
	case CDKindAnonymous:
		return "anonymous"
	case CDKindProtocol:
		return "protocol"
	case CDKindOpaqueType:
		return "opaque_type"
	case CDKindClass:
		return "class"
	case CDKindStruct:
		return "struct"
	case CDKindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// IsType reports whether the kind is a nominal type.
func (k ContextDescriptorKind) IsType() bool {
	return k >= 16 && k <= 31
}

type ContextDescriptorFlags uint32

func (f ContextDescriptorFlags) Kind() ContextDescriptorKind {
	return ContextDescriptorKind(f & 0x1F)
}
func (f ContextDescriptorFlags) IsGeneric() bool {
	return (f & 0x80) != 0
}
func (f ContextDescriptorFlags) IsUnique() bool {
	return (f & 0x40) != 0
}

// Field offsets of a context descriptor:
//
//	flags  uint32
//	parent rel32 (indirectable)
//	name   rel32        (module and type descriptors)
//	access rel32        (type descriptors)
const (
	contextFlagsOffset  = 0
	contextParentOffset = 4
	contextNameOffset   = 8
	typeAccessorOffset  = 12
)

// ContextDescriptor is a view of a context descriptor in process memory.
type ContextDescriptor struct {
	ptr unsafe.Pointer
}

// NewContextDescriptor wraps the descriptor at p.
func NewContextDescriptor(p unsafe.Pointer) ContextDescriptor {
	return ContextDescriptor{ptr: p}
}

// IsNil reports whether the view points nowhere.
func (d ContextDescriptor) IsNil() bool {
	return d.ptr == nil
}

func (d ContextDescriptor) Flags() ContextDescriptorFlags {
	return ContextDescriptorFlags(*(*uint32)(unsafe.Add(d.ptr, contextFlagsOffset)))
}

// Parent returns the enclosing context, nil for modules.
func (d ContextDescriptor) Parent() ContextDescriptor {
	return ContextDescriptor{ptr: RelativeIndirectable(unsafe.Add(d.ptr, contextParentOffset))}
}

// Name returns the declared name of module and nominal type descriptors.
func (d ContextDescriptor) Name() string {
	switch kind := d.Flags().Kind(); {
	case kind == CDKindModule, kind == CDKindProtocol, kind.IsType():
		return CString(RelativeDirect(unsafe.Add(d.ptr, contextNameOffset)))
	}
	return ""
}

// AccessFunction returns the metadata accessor of a nominal type descriptor.
func (d ContextDescriptor) AccessFunction() unsafe.Pointer {
	if !d.Flags().Kind().IsType() {
		return nil
	}
	return RelativeDirect(unsafe.Add(d.ptr, typeAccessorOffset))
}

// QualifiedName joins the names from the module down to d, e.g. "main.Outer.Inner".
// Extension and anonymous contexts end the walk.
func (d ContextDescriptor) QualifiedName() string {
	var parts []string
	for cur := d; !cur.IsNil(); cur = cur.Parent() {
		name := cur.Name()
		if name == "" {
			break
		}
		parts = append(parts, name)
		if cur.Flags().Kind() == CDKindModule {
			break
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}
