// Package marshal moves values between Go memory and the Swift calling
// convention. Only scalars and types that marshal themselves are supported;
// every other shape is rejected with ErrUnsupportedType.
package marshal

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/blacktop/go-swiftbind/pkg/metadata"
)

// ErrUnsupportedType is returned for values whose Swift layout is not known,
// such as structs, tuples, closures and existentials.
var ErrUnsupportedType = errors.New("unsupported type")

// Marshaler is implemented by types that describe and write themselves.
type Marshaler interface {
	metadata.Describer
	// MarshalSwift writes the value at dst and returns the pointer the native
	// call must receive, which differs from dst for indirectly passed types.
	MarshalSwift(dst unsafe.Pointer) (unsafe.Pointer, error)
}

// Unmarshaler is implemented by pointers to types that can rebuild themselves
// from a native payload.
type Unmarshaler interface {
	UnmarshalSwift(payload unsafe.Pointer) error
}

// Scalar is the set of fixed width types whose bit pattern is copied as is.
type Scalar interface {
	~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// PutScalar writes v at dst using exactly the width of T and returns dst.
// Booleans are written as a single 0 or 1 byte.
func PutScalar[T Scalar](dst unsafe.Pointer, v T) unsafe.Pointer {
	if isBool[T]() {
		*(*byte)(dst) = boolByte(*(*bool)(unsafe.Pointer(&v)))
		return dst
	}
	*(*T)(dst) = v
	return dst
}

// GetScalar reads a T from src. A boolean is true when the low bit is set.
func GetScalar[T Scalar](src unsafe.Pointer) T {
	if isBool[T]() {
		b := *(*byte)(src)&1 != 0
		return *(*T)(unsafe.Pointer(&b))
	}
	return *(*T)(src)
}

// Put marshals a self-describing value.
func Put[T Marshaler](dst unsafe.Pointer, v T) (unsafe.Pointer, error) {
	return v.MarshalSwift(dst)
}

// Get rebuilds a self-describing value from payload.
func Get[T any, PT interface {
	*T
	Unmarshaler
}](payload unsafe.Pointer) (T, error) {
	var out T
	if err := PT(&out).UnmarshalSwift(payload); err != nil {
		return out, err
	}
	return out, nil
}

// ToSwift writes v at dst for a caller that only knows T. Marshalers write
// themselves and scalars are copied at their exact width.
func ToSwift[T any](v T, dst unsafe.Pointer) (unsafe.Pointer, error) {
	if dst == nil {
		return nil, fmt.Errorf("nil destination for %s", reflect.TypeFor[T]())
	}
	if m, ok := any(v).(Marshaler); ok {
		return m.MarshalSwift(dst)
	}
	if m, ok := any(&v).(Marshaler); ok {
		return m.MarshalSwift(dst)
	}
	size, err := scalarSize[T]()
	if err != nil {
		return nil, err
	}
	if isBool[T]() {
		*(*byte)(dst) = boolByte(*(*bool)(unsafe.Pointer(&v)))
		return dst, nil
	}
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(unsafe.Pointer(&v)), size))
	return dst, nil
}

// FromSwift reads a T from src for a caller that only knows T.
func FromSwift[T any](src unsafe.Pointer) (T, error) {
	var out T
	if src == nil {
		return out, fmt.Errorf("nil source for %s", reflect.TypeFor[T]())
	}
	if u, ok := any(&out).(Unmarshaler); ok {
		err := u.UnmarshalSwift(src)
		return out, err
	}
	size, err := scalarSize[T]()
	if err != nil {
		return out, err
	}
	if isBool[T]() {
		b := *(*byte)(src)&1 != 0
		*(*bool)(unsafe.Pointer(&out)) = b
		return out, nil
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&out)), size), unsafe.Slice((*byte)(src), size))
	return out, nil
}

// Supported reports whether values of T can cross the boundary.
func Supported[T any]() bool {
	var zero T
	if _, ok := any(zero).(Marshaler); ok {
		return true
	}
	if _, ok := any(&zero).(Marshaler); ok {
		return true
	}
	_, err := scalarSize[T]()
	return err == nil
}

func scalarSize[T any]() (uintptr, error) {
	t := reflect.TypeFor[T]()
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.UnsafePointer:
		return t.Size(), nil
	}
	return 0, fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, t, t.Kind())
}

func isBool[T any]() bool {
	return reflect.TypeFor[T]().Kind() == reflect.Bool
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
