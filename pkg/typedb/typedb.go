// Package typedb is the process-wide registry that maps native type names to
// their host-language records, across every module processed so far.
package typedb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-set/v3"
	"go.uber.org/zap"

	"github.com/blacktop/go-swiftbind/internal/logging"
)

var (
	// ErrModuleExists is returned when a module is registered twice.
	ErrModuleExists = errors.New("module already registered")
	// ErrModuleNotFound is returned for queries about an unregistered module.
	ErrModuleNotFound = errors.New("module not found")
)

// Option configures a TypeDatabase.
type Option func(*TypeDatabase)

// WithLogger sets the logger used for registration events.
func WithLogger(l *zap.Logger) Option {
	return func(db *TypeDatabase) {
		db.log = logging.OrNop(l)
	}
}

// TypeDatabase holds every registered ModuleTypeDatabase plus the overlay of
// cross-module forward references keyed by "requestingModule.typeName".
type TypeDatabase struct {
	mu      sync.RWMutex
	modules map[string]*ModuleTypeDatabase
	overlay map[string]*TypeRecord
	log     *zap.Logger
}

// New creates an empty TypeDatabase.
func New(opts ...Option) *TypeDatabase {
	db := &TypeDatabase{
		modules: make(map[string]*ModuleTypeDatabase),
		overlay: make(map[string]*TypeRecord),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(db)
		}
	}
	return db
}

// AddModuleDatabase registers module under its name. Registering a name twice
// fails and leaves the first registration in place.
func (db *TypeDatabase) AddModuleDatabase(module *ModuleTypeDatabase) error {
	if module == nil {
		return fmt.Errorf("nil module database")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.modules[module.Name]; ok {
		return fmt.Errorf("%w: %q", ErrModuleExists, module.Name)
	}
	db.modules[module.Name] = module
	db.log.Debug("registered module",
		zap.String("module", module.Name),
		zap.String("library", module.LibraryPath),
		zap.Int("types", module.Len()))
	return nil
}

// IsModuleProcessed reports whether a module named name has been registered.
func (db *TypeDatabase) IsModuleProcessed(name string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.modules[name]
	return ok
}

// TryGetTypeRecord resolves typeName as seen from requestingModule: first in
// that module's own registry, then in the overlay.
func (db *TypeDatabase) TryGetTypeRecord(requestingModule, typeName string) (*TypeRecord, bool) {
	db.mu.RLock()
	module := db.modules[requestingModule]
	rec, inOverlay := db.overlay[overlayKey(requestingModule, typeName)]
	db.mu.RUnlock()

	if module != nil {
		if local, ok := module.TryGetTypeRecord(typeName); ok {
			return local, true
		}
	}
	if inOverlay {
		return rec, true
	}
	return nil, false
}

// AddOutOfModuleTypes seeds the overlay. Entries do not require either module
// to be registered.
func (db *TypeDatabase) AddOutOfModuleTypes(entries []OutOfModuleType) error {
	for _, e := range entries {
		if e.Record == nil || e.RequestingModule == "" || e.TypeName == "" {
			return fmt.Errorf("invalid out-of-module entry %q.%q", e.RequestingModule, e.TypeName)
		}
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, e := range entries {
		db.overlay[overlayKey(e.RequestingModule, e.TypeName)] = e.Record
	}
	db.log.Debug("seeded overlay", zap.Int("entries", len(entries)), zap.Int("total", len(db.overlay)))
	return nil
}

// IsTypeProcessed reports whether typeName is in module's own registry. Overlay
// entries do not count.
func (db *TypeDatabase) IsTypeProcessed(module, typeName string) bool {
	db.mu.RLock()
	m := db.modules[module]
	db.mu.RUnlock()
	if m == nil {
		return false
	}
	_, ok := m.TryGetTypeRecord(typeName)
	return ok
}

// GetLibraryPath returns the library path stored for module.
func (db *TypeDatabase) GetLibraryPath(module string) (string, error) {
	m, err := db.ModuleDatabase(module)
	if err != nil {
		return "", err
	}
	return m.LibraryPath, nil
}

// ModuleDatabase returns the registry of module.
func (db *TypeDatabase) ModuleDatabase(module string) (*ModuleTypeDatabase, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	m, ok := db.modules[module]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModuleNotFound, module)
	}
	return m, nil
}

// Modules returns the registered module names in sorted order.
func (db *TypeDatabase) Modules() []string {
	db.mu.RLock()
	out := make([]string, 0, len(db.modules))
	for name := range db.modules {
		out = append(out, name)
	}
	db.mu.RUnlock()
	sort.Strings(out)
	return out
}

// OwningModules returns the distinct owning modules of the overlay records
// visible to requestingModule, sorted. The driver uses it to find modules that
// still have to be processed.
func (db *TypeDatabase) OwningModules(requestingModule string) []string {
	prefix := requestingModule + "."
	owners := set.New[string](0)
	db.mu.RLock()
	for key, rec := range db.overlay {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			owners.Insert(rec.Module)
		}
	}
	db.mu.RUnlock()
	out := owners.Slice()
	sort.Strings(out)
	return out
}
