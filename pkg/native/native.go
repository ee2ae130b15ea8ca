// Package native loads the libraries of processed modules into the process and
// resolves their Swift symbols and type metadata.
package native

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/blacktop/go-swiftbind/internal/logging"
	"github.com/blacktop/go-swiftbind/pkg/metadata"
	"github.com/blacktop/go-swiftbind/pkg/typedb"
)

var (
	// ErrUnsupported is returned on platforms without dynamic loading.
	ErrUnsupported = errors.New("native libraries are not supported on this platform")
	// ErrNoRecord is returned for types the database does not know.
	ErrNoRecord = errors.New("no type record")
)

// symbolName turns a symbol table name into the name dlsym expects, which
// lacks the leading underscore of Mach-O symbols.
func symbolName(symbol string) string {
	if strings.HasPrefix(symbol, "_$") {
		return symbol[1:]
	}
	return symbol
}

// Library is an opened native library. It implements metadata.Resolver.
type Library struct {
	Path   string
	handle unsafe.Pointer
}

// ResolveSymbol returns the address of symbol in the library.
func (l *Library) ResolveSymbol(symbol string) (unsafe.Pointer, error) {
	if l == nil || l.handle == nil {
		return nil, fmt.Errorf("library is closed")
	}
	addr, err := lookup(l.handle, symbolName(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s in %s: %w", symbol, l.Path, err)
	}
	return addr, nil
}

// Metadata calls the metadata accessor named accessor and returns the
// complete metadata of its type. Only accessors of non-generic types, which
// take no arguments besides the request, can be called this way.
func (l *Library) Metadata(accessor string) (metadata.TypeMetadata, error) {
	fn, err := l.ResolveSymbol(accessor)
	if err != nil {
		return metadata.TypeMetadata{}, err
	}
	handle := callAccessor(fn)
	if handle == nil {
		return metadata.TypeMetadata{}, fmt.Errorf("%w: %s returned nil", metadata.ErrNoMetadata, accessor)
	}
	return metadata.FromHandle(handle)
}

// Close releases the library handle.
func (l *Library) Close() error {
	if l == nil || l.handle == nil {
		return nil
	}
	err := closeLibrary(l.handle)
	l.handle = nil
	return err
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger that records opened libraries.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		ld.log = logging.OrNop(l)
	}
}

// Loader opens module libraries on demand using the paths and accessor
// symbols recorded in a type database. Libraries stay open until Close.
type Loader struct {
	db  *typedb.TypeDatabase
	log *zap.Logger

	mu   sync.Mutex
	libs map[string]*Library
}

// NewLoader creates a Loader backed by db.
func NewLoader(db *typedb.TypeDatabase, opts ...Option) *Loader {
	ld := &Loader{
		db:   db,
		log:  zap.NewNop(),
		libs: make(map[string]*Library),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ld)
		}
	}
	return ld
}

// Library returns the opened library of module.
func (ld *Loader) Library(module string) (*Library, error) {
	path, err := ld.db.GetLibraryPath(module)
	if err != nil {
		return nil, err
	}
	ld.mu.Lock()
	defer ld.mu.Unlock()
	if lib, ok := ld.libs[module]; ok {
		return lib, nil
	}
	lib, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library of module %s: %w", module, err)
	}
	ld.libs[module] = lib
	ld.log.Debug("opened library", zap.String("module", module), zap.String("path", path))
	return lib, nil
}

// TypeMetadata returns the metadata of typeName as seen from module, calling
// the accessor recorded for it in the library of its owning module.
func (ld *Loader) TypeMetadata(module, typeName string) (metadata.TypeMetadata, error) {
	rec, ok := ld.db.TryGetTypeRecord(module, typeName)
	if !ok {
		return metadata.TypeMetadata{}, fmt.Errorf("%w: %s in module %s", ErrNoRecord, typeName, module)
	}
	if rec.MetadataAccessor == "" {
		return metadata.TypeMetadata{}, fmt.Errorf("%w: %s has no metadata accessor", metadata.ErrNoMetadata, rec.NativeType)
	}
	lib, err := ld.Library(rec.Module)
	if err != nil {
		return metadata.TypeMetadata{}, err
	}
	return lib.Metadata(rec.MetadataAccessor)
}

// Close closes every library opened by the loader.
func (ld *Loader) Close() error {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	var errs []error
	for module, lib := range ld.libs {
		if err := lib.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", module, err))
		}
		delete(ld.libs, module)
	}
	return errors.Join(errs...)
}
