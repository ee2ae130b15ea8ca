// Package metadata caches the Swift runtime type metadata handed to native calls,
// keyed by host type.
package metadata

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/blacktop/go-swiftbind/types/swift"
)

// ErrNoMetadata is returned for types that neither describe themselves nor
// appear in the scalar table.
var ErrNoMetadata = errors.New("no type metadata")

// TypeMetadata is an opaque handle to a Swift metadata record plus the size of
// a value of the type.
type TypeMetadata struct {
	Handle unsafe.Pointer
	Size   uintptr
}

// valueWitnessSizeIndex is the position of the size field in a value witness
// table, after the eight witness functions.
const valueWitnessSizeIndex = 8

// FromHandle builds the TypeMetadata of the record at handle, reading the
// value size from the value witness table stored just before the record.
func FromHandle(handle unsafe.Pointer) (TypeMetadata, error) {
	if handle == nil {
		return TypeMetadata{}, fmt.Errorf("%w: nil metadata record", ErrNoMetadata)
	}
	vwt := *(*unsafe.Pointer)(unsafe.Add(handle, -int(unsafe.Sizeof(uintptr(0)))))
	if vwt == nil {
		return TypeMetadata{}, fmt.Errorf("%w: record %p has no value witness table", ErrNoMetadata, handle)
	}
	size := *(*uintptr)(unsafe.Add(vwt, valueWitnessSizeIndex*int(unsafe.Sizeof(uintptr(0)))))
	return TypeMetadata{Handle: handle, Size: size}, nil
}

// IsZero reports whether m carries no handle.
func (m TypeMetadata) IsZero() bool {
	return m.Handle == nil
}

// Kind reads the metadata kind word at the start of the record.
func (m TypeMetadata) Kind() swift.MetadataKind {
	if m.Handle == nil {
		return swift.MetadataKind(swift.LastEnumerated)
	}
	return swift.MetadataKindFromWord(uint64(*(*uintptr)(m.Handle)))
}

// Descriptor returns the nominal type descriptor of struct, enum and optional
// metadata. Other kinds return a nil descriptor.
func (m TypeMetadata) Descriptor() swift.ContextDescriptor {
	switch m.Kind() {
	case swift.StructMetadataKind, swift.EnumMetadataKind, swift.OptionalMetadataKind:
		desc := *(*unsafe.Pointer)(unsafe.Add(m.Handle, int(unsafe.Sizeof(uintptr(0)))))
		return swift.NewContextDescriptor(desc)
	}
	return swift.NewContextDescriptor(nil)
}

// TypeName returns the qualified Swift name recorded in the type descriptor.
func (m TypeMetadata) TypeName() (string, bool) {
	desc := m.Descriptor()
	if desc.IsNil() {
		return "", false
	}
	name := desc.QualifiedName()
	return name, name != ""
}

func (m TypeMetadata) String() string {
	return fmt.Sprintf("%s metadata %p (size %d)", m.Kind(), m.Handle, m.Size)
}

// Describer is implemented by host types that know their own Swift metadata.
type Describer interface {
	SwiftMetadata() (TypeMetadata, error)
}

// Resolver finds the address of an exported symbol, such as "$sSiN".
type Resolver interface {
	ResolveSymbol(symbol string) (unsafe.Pointer, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(symbol string) (unsafe.Pointer, error)

func (f ResolverFunc) ResolveSymbol(symbol string) (unsafe.Pointer, error) {
	return f(symbol)
}
