package metadata

import (
	"testing"
	"unsafe"

	"github.com/blacktop/go-swiftbind/types/swift"
)

// arena lays out fake metadata records at fixed byte offsets.
type arena struct {
	words [128]uint64
}

func (a *arena) at(off int) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(&a.words[0]), off)
}

func (a *arena) putU32(off int, v uint32) { *(*uint32)(a.at(off)) = v }

func (a *arena) putPtr(off int, p unsafe.Pointer) { *(*unsafe.Pointer)(a.at(off)) = p }

// putRel stores a relative pointer at off that targets target.
func (a *arena) putRel(off, target int) { *(*int32)(a.at(off)) = int32(target - off) }

func (a *arena) putString(off int, s string) {
	copy(unsafe.Slice((*byte)(a.at(off)), len(s)+1), s+"\x00")
}

// layout builds main.Outer.Inner as struct metadata with a 24 byte value size.
func layout() (*arena, TypeMetadata) {
	a := new(arena)
	const (
		module = 0
		outer  = 32
		inner  = 64
		vwt    = 128
		record = 256
		names  = 512
	)
	a.putString(names, "main")
	a.putString(names+16, "Outer")
	a.putString(names+32, "Inner")

	a.putU32(module, uint32(swift.CDKindModule))
	a.putRel(module+8, names)

	a.putU32(outer, uint32(swift.CDKindStruct))
	a.putRel(outer+4, module)
	a.putRel(outer+8, names+16)

	a.putU32(inner, uint32(swift.CDKindStruct))
	a.putRel(inner+4, outer)
	a.putRel(inner+8, names+32)

	*(*uintptr)(a.at(vwt + 8*8)) = 24
	a.putPtr(record-8, a.at(vwt))
	*(*uintptr)(a.at(record)) = uintptr(swift.StructMetadataKind)
	a.putPtr(record+8, a.at(inner))

	return a, TypeMetadata{Handle: a.at(record)}
}

func TestFromHandle(t *testing.T) {
	_, want := layout()
	md, err := FromHandle(want.Handle)
	if err != nil {
		t.Fatalf("FromHandle() error = %v", err)
	}
	if md.Size != 24 {
		t.Fatalf("Size = %d, want 24", md.Size)
	}
	if md.Kind() != swift.StructMetadataKind {
		t.Fatalf("Kind() = %s, want struct", md.Kind())
	}
	if !md.Kind().IsValueType() {
		t.Fatal("struct metadata must be a value type")
	}

	if _, err := FromHandle(nil); err == nil {
		t.Fatal("FromHandle(nil) succeeded")
	}
}

func TestTypeName(t *testing.T) {
	a, md := layout()
	name, ok := md.TypeName()
	if !ok || name != "main.Outer.Inner" {
		t.Fatalf("TypeName() = %q, %v, want %q", name, ok, "main.Outer.Inner")
	}
	if got := md.Descriptor().Flags().Kind(); got != swift.CDKindStruct {
		t.Fatalf("descriptor kind = %s, want struct", got)
	}

	// class metadata carries its descriptor elsewhere
	*(*uintptr)(a.at(256)) = uintptr(swift.ClassMetadataKind)
	if _, ok := md.TypeName(); ok {
		t.Fatal("TypeName() of class metadata succeeded")
	}
}

func TestKindOfIsaPointer(t *testing.T) {
	word := uintptr(0x1_0000_4000)
	md := TypeMetadata{Handle: unsafe.Pointer(&word)}
	if md.Kind() != swift.ClassMetadataKind {
		t.Fatalf("Kind() = %s, want class", md.Kind())
	}
}
