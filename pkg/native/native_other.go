//go:build !cgo || !(darwin || linux)

package native

import "unsafe"

// Open always fails without cgo or on platforms other than darwin and linux.
func Open(path string) (*Library, error) {
	return nil, ErrUnsupported
}

func lookup(unsafe.Pointer, string) (unsafe.Pointer, error) {
	return nil, ErrUnsupported
}

func callAccessor(unsafe.Pointer) unsafe.Pointer {
	return nil
}

func closeLibrary(unsafe.Pointer) error {
	return nil
}
