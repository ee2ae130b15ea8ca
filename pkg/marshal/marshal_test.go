package marshal

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/blacktop/go-swiftbind/pkg/metadata"
)

type buffer [16]byte

func (b *buffer) ptr() unsafe.Pointer { return unsafe.Pointer(&b[0]) }

func roundTrip[T Scalar](t *testing.T, v T) {
	t.Helper()
	var buf buffer
	if got := PutScalar(buf.ptr(), v); got != buf.ptr() {
		t.Fatalf("PutScalar(%v) returned %p, want %p", v, got, buf.ptr())
	}
	if got := GetScalar[T](buf.ptr()); got != v {
		t.Fatalf("GetScalar() = %v, want %v", got, v)
	}

	var dyn buffer
	dst, err := ToSwift(v, dyn.ptr())
	if err != nil {
		t.Fatalf("ToSwift(%v) error = %v", v, err)
	}
	if dst != dyn.ptr() {
		t.Fatalf("ToSwift(%v) returned %p, want %p", v, dst, dyn.ptr())
	}
	if dyn != buf {
		t.Fatalf("ToSwift wrote % x, PutScalar wrote % x", dyn, buf)
	}
	got, err := FromSwift[T](dyn.ptr())
	if err != nil {
		t.Fatalf("FromSwift() error = %v", err)
	}
	if got != v {
		t.Fatalf("FromSwift() = %v, want %v", got, v)
	}
}

func TestScalarRoundTrip(t *testing.T) {
	roundTrip(t, true)
	roundTrip(t, false)
	roundTrip(t, int8(math.MinInt8))
	roundTrip(t, int16(-12345))
	roundTrip(t, int32(math.MaxInt32))
	roundTrip(t, int64(math.MinInt64))
	roundTrip(t, int(-1))
	roundTrip(t, uint8(0xff))
	roundTrip(t, uint16(0xbeef))
	roundTrip(t, uint32(0xdeadbeef))
	roundTrip(t, uint64(math.MaxUint64))
	roundTrip(t, uint(42))
	roundTrip(t, uintptr(0x1000))
	roundTrip(t, float32(math.Pi))
	roundTrip(t, math.Inf(-1))
}

func TestScalarExactWidth(t *testing.T) {
	var buf buffer
	for i := range buf {
		buf[i] = 0xaa
	}
	PutScalar(buf.ptr(), uint16(0x0102))
	if buf[2] != 0xaa {
		t.Fatalf("PutScalar(uint16) touched byte 2: % x", buf)
	}
	if got := binary.NativeEndian.Uint16(buf[:2]); got != 0x0102 {
		t.Fatalf("stored %#x, want 0x0102", got)
	}
}

func TestBoolEncoding(t *testing.T) {
	var buf buffer
	buf[0] = 0xff
	PutScalar(buf.ptr(), true)
	if buf[0] != 1 {
		t.Fatalf("true encoded as %#x, want 1", buf[0])
	}
	PutScalar(buf.ptr(), false)
	if buf[0] != 0 {
		t.Fatalf("false encoded as %#x, want 0", buf[0])
	}

	buf[0] = 0x03
	if !GetScalar[bool](buf.ptr()) {
		t.Fatal("0x03 decoded as false")
	}
	buf[0] = 0x02
	if GetScalar[bool](buf.ptr()) {
		t.Fatal("0x02 decoded as true, only the low bit counts")
	}
	if v, err := FromSwift[bool](buf.ptr()); err != nil || v {
		t.Fatalf("FromSwift[bool](0x02) = %v, %v", v, err)
	}
}

type flag bool

func TestNamedScalar(t *testing.T) {
	roundTrip(t, flag(true))
}

// temperature is passed directly.
type temperature struct {
	celsius float64
}

func (temperature) SwiftMetadata() (metadata.TypeMetadata, error) {
	return metadata.TypeMetadata{Size: 8}, nil
}

func (c temperature) MarshalSwift(dst unsafe.Pointer) (unsafe.Pointer, error) {
	return PutScalar(dst, c.celsius), nil
}

func (c *temperature) UnmarshalSwift(payload unsafe.Pointer) error {
	c.celsius = GetScalar[float64](payload)
	return nil
}

// boxed is passed indirectly through its own storage.
type boxed struct {
	storage *[2]int64
}

func (boxed) SwiftMetadata() (metadata.TypeMetadata, error) {
	return metadata.TypeMetadata{Size: 16}, nil
}

func (b boxed) MarshalSwift(dst unsafe.Pointer) (unsafe.Pointer, error) {
	if b.storage == nil {
		return nil, errors.New("empty box")
	}
	return unsafe.Pointer(b.storage), nil
}

func TestMarshaler(t *testing.T) {
	var buf buffer
	dst, err := Put(buf.ptr(), temperature{celsius: 21.5})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if dst != buf.ptr() {
		t.Fatalf("Put() returned %p, want %p", dst, buf.ptr())
	}
	got, err := Get[temperature](buf.ptr())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.celsius != 21.5 {
		t.Fatalf("Get() = %v, want 21.5", got.celsius)
	}

	dyn, err := FromSwift[temperature](buf.ptr())
	if err != nil || dyn != got {
		t.Fatalf("FromSwift() = %v, %v, want %v", dyn, err, got)
	}
}

func TestMarshalerIndirect(t *testing.T) {
	var buf buffer
	box := boxed{storage: &[2]int64{1, 2}}
	dst, err := ToSwift(box, buf.ptr())
	if err != nil {
		t.Fatalf("ToSwift() error = %v", err)
	}
	if dst != unsafe.Pointer(box.storage) {
		t.Fatalf("ToSwift() returned %p, want the box storage %p", dst, box.storage)
	}
	if _, err := ToSwift(boxed{}, buf.ptr()); err == nil {
		t.Fatal("ToSwift() of an empty box succeeded")
	}
}

func TestUnsupported(t *testing.T) {
	var buf buffer
	if _, err := ToSwift(struct{ A, B int32 }{1, 2}, buf.ptr()); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("ToSwift(struct) error = %v, want ErrUnsupportedType", err)
	}
	if _, err := ToSwift(func() {}, buf.ptr()); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("ToSwift(func) error = %v, want ErrUnsupportedType", err)
	}
	if _, err := ToSwift[any](int32(1), buf.ptr()); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("ToSwift(any) error = %v, want ErrUnsupportedType", err)
	}
	if _, err := FromSwift[[2]int64](buf.ptr()); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("FromSwift(array) error = %v, want ErrUnsupportedType", err)
	}
	if _, err := FromSwift[string](buf.ptr()); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("FromSwift(string) error = %v, want ErrUnsupportedType", err)
	}
	if buf != (buffer{}) {
		t.Fatalf("unsupported marshaling wrote to the buffer: % x", buf)
	}
}

func TestSupported(t *testing.T) {
	if !Supported[int64]() || !Supported[temperature]() || !Supported[boxed]() {
		t.Fatal("scalars and marshalers must be supported")
	}
	if Supported[[]byte]() || Supported[error]() {
		t.Fatal("slices and existentials must not be supported")
	}
}
