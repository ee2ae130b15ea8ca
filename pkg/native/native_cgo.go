//go:build cgo && (darwin || linux)

package native

/*
#cgo linux LDFLAGS: -ldl
#include <stdlib.h>
#include <dlfcn.h>

typedef struct {
    const void *metadata;
    size_t state;
} swiftbind_metadata_response;

typedef swiftbind_metadata_response (*swiftbind_metadata_accessor)(size_t request);

static const void *swiftbind_call_accessor(void *fn) {
    // request 0 asks for complete metadata and blocks until it is available
    return ((swiftbind_metadata_accessor)fn)(0).metadata;
}
*/
import "C"

import (
	"errors"
	"unsafe"
)

// Open loads the library at path.
func Open(path string) (*Library, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.dlopen(cpath, C.RTLD_LAZY|C.RTLD_LOCAL)
	if handle == nil {
		return nil, dlerror("dlopen failed")
	}
	return &Library{Path: path, handle: handle}, nil
}

func lookup(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	C.dlerror()
	addr := C.dlsym(handle, cname)
	if addr == nil {
		return nil, dlerror("symbol not found")
	}
	return addr, nil
}

func callAccessor(fn unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.swiftbind_call_accessor(fn))
}

func closeLibrary(handle unsafe.Pointer) error {
	if C.dlclose(handle) != 0 {
		return dlerror("dlclose failed")
	}
	return nil
}

func dlerror(fallback string) error {
	if msg := C.dlerror(); msg != nil {
		return errors.New(C.GoString(msg))
	}
	return errors.New(fallback)
}
