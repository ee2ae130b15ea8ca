package metadata

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/blacktop/go-swiftbind/types/swift"
)

// fakeRecord stands in for a metadata record; only the kind word is read.
type fakeRecord struct {
	kind uintptr
	_    [3]uintptr
}

var (
	structRecord = &fakeRecord{kind: uintptr(swift.StructMetadataKind)}
	enumRecord   = &fakeRecord{kind: uintptr(swift.EnumMetadataKind)}
)

type point struct{ X, Y float64 }

func (point) SwiftMetadata() (TypeMetadata, error) {
	return TypeMetadata{Handle: unsafe.Pointer(structRecord), Size: 16}, nil
}

type direction uint8

func (*direction) SwiftMetadata() (TypeMetadata, error) {
	return TypeMetadata{Handle: unsafe.Pointer(enumRecord), Size: 1}, nil
}

func resolver(t *testing.T) (Resolver, *[]string) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []string
	)
	return ResolverFunc(func(symbol string) (unsafe.Pointer, error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, symbol)
		return unsafe.Pointer(structRecord), nil
	}), &seen
}

func TestGetOrAddSingleComputation(t *testing.T) {
	c := NewCache()
	typ := reflect.TypeFor[point]()

	var calls atomic.Int32
	compute := func() (TypeMetadata, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return TypeMetadata{Handle: unsafe.Pointer(structRecord), Size: 16}, nil
	}

	const n = 64
	results := make([]TypeMetadata, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			md, err := c.GetOrAdd(typ, compute)
			if err != nil {
				t.Errorf("GetOrAdd() error = %v", err)
				return
			}
			results[i] = md
		}(i)
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("compute called %d times, want 1", got)
	}
	for i, md := range results {
		if md != results[0] {
			t.Fatalf("result %d = %v, want %v", i, md, results[0])
		}
	}
}

func TestGetOrAddFailureNotCached(t *testing.T) {
	c := NewCache()
	typ := reflect.TypeFor[point]()
	boom := errors.New("accessor failed")

	if _, err := c.GetOrAdd(typ, func() (TypeMetadata, error) { return TypeMetadata{}, boom }); !errors.Is(err, boom) {
		t.Fatalf("GetOrAdd() error = %v, want %v", err, boom)
	}
	if _, ok := c.TryGet(typ); ok {
		t.Fatal("failed computation was cached")
	}
	md, err := c.GetOrAdd(typ, point{}.SwiftMetadata)
	if err != nil {
		t.Fatalf("GetOrAdd() error = %v", err)
	}
	if md.Size != 16 {
		t.Fatalf("Size = %d, want 16", md.Size)
	}
}

func TestTryGetDoesNotCompute(t *testing.T) {
	c := NewCache()
	if _, ok := c.TryGet(reflect.TypeFor[point]()); ok {
		t.Fatal("TryGet() found an entry in an empty cache")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
}

func TestLookupDescriber(t *testing.T) {
	c := NewCache()
	md, err := Lookup[point](c)
	if err != nil {
		t.Fatalf("Lookup[point]() error = %v", err)
	}
	if md.Kind() != swift.StructMetadataKind {
		t.Fatalf("Kind() = %s, want struct", md.Kind())
	}

	md, err = Lookup[direction](c)
	if err != nil {
		t.Fatalf("Lookup[direction]() error = %v", err)
	}
	if md.Kind() != swift.EnumMetadataKind {
		t.Fatalf("Kind() = %s, want enum", md.Kind())
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestLookupScalar(t *testing.T) {
	r, seen := resolver(t)
	c := NewCache(WithResolver(r))

	md, err := Lookup[int32](c)
	if err != nil {
		t.Fatalf("Lookup[int32]() error = %v", err)
	}
	if md.Size != 4 {
		t.Fatalf("Size = %d, want 4", md.Size)
	}
	if _, err := Lookup[int32](c); err != nil {
		t.Fatalf("second Lookup[int32]() error = %v", err)
	}
	if _, err := Lookup[bool](c); err != nil {
		t.Fatalf("Lookup[bool]() error = %v", err)
	}
	want := []string{"$ss5Int32VN", "$sSbN"}
	if len(*seen) != len(want) || (*seen)[0] != want[0] || (*seen)[1] != want[1] {
		t.Fatalf("resolved symbols = %v, want %v", *seen, want)
	}
}

func TestLookupUnsupported(t *testing.T) {
	r, _ := resolver(t)
	c := NewCache(WithResolver(r))

	if _, err := Lookup[struct{ A, B int }](c); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("Lookup[struct]() error = %v, want ErrNoMetadata", err)
	}
	if _, err := Lookup[func()](c); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("Lookup[func]() error = %v, want ErrNoMetadata", err)
	}
	if _, err := Lookup[int](NewCache()); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("Lookup[int]() without resolver error = %v, want ErrNoMetadata", err)
	}
}

func TestScalarSymbol(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeFor[bool](), "$sSbN"},
		{reflect.TypeFor[int](), "$sSiN"},
		{reflect.TypeFor[uint16](), "$ss6UInt16VN"},
		{reflect.TypeFor[float64](), "$sSdN"},
		{reflect.TypeFor[unsafe.Pointer](), "$sSvN"},
	}
	for _, tt := range tests {
		got, ok := ScalarSymbol(tt.typ)
		if !ok || got != tt.want {
			t.Fatalf("ScalarSymbol(%s) = %q, %v, want %q", tt.typ, got, ok, tt.want)
		}
	}
	if _, ok := ScalarSymbol(reflect.TypeFor[string]()); ok {
		t.Fatal("string must not be a scalar")
	}
}
