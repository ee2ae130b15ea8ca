package swift

import "unsafe"

// Relative pointers are 32-bit signed offsets from the address of the field
// that holds them. They are read from metadata mapped in the current process.

// RelativeDirect returns the target of the relative direct pointer stored at
// field, or nil when the offset is zero.
func RelativeDirect(field unsafe.Pointer) unsafe.Pointer {
	if field == nil {
		return nil
	}
	off := *(*int32)(field)
	if off == 0 {
		return nil
	}
	return unsafe.Add(field, int(off))
}

// RelativeIndirectable returns the target of a relative indirectable pointer.
// When the low bit of the offset is set the offset leads to a pointer slot
// that holds the real target.
func RelativeIndirectable(field unsafe.Pointer) unsafe.Pointer {
	if field == nil {
		return nil
	}
	off := *(*int32)(field)
	if off == 0 {
		return nil
	}
	target := unsafe.Add(field, int(off&^1))
	if off&1 != 0 {
		return *(*unsafe.Pointer)(target)
	}
	return target
}

// CString reads the NUL-terminated string at p.
func CString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}
