package typedb

import (
	"sort"
	"sync"
)

// ModuleTypeDatabase is the registry of one native module.
type ModuleTypeDatabase struct {
	Name        string
	LibraryPath string

	mu    sync.RWMutex
	types map[string]*TypeRecord
}

// NewModuleTypeDatabase creates an empty registry for module name whose binary
// lives at libraryPath.
func NewModuleTypeDatabase(name, libraryPath string) *ModuleTypeDatabase {
	return &ModuleTypeDatabase{
		Name:        name,
		LibraryPath: libraryPath,
		types:       make(map[string]*TypeRecord),
	}
}

// RegisterType inserts or overwrites the record for localName.
func (m *ModuleTypeDatabase) RegisterType(localName string, record *TypeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[localName] = record
}

// TryGetTypeRecord looks localName up in this module only.
func (m *ModuleTypeDatabase) TryGetTypeRecord(localName string) (*TypeRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.types[localName]
	return rec, ok
}

// TypeNames returns the registered local type names in sorted order.
func (m *ModuleTypeDatabase) TypeNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.types))
	for name := range m.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (m *ModuleTypeDatabase) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.types)
}
