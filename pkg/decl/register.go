package decl

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v3"

	"github.com/blacktop/go-swiftbind/pkg/typedb"
)

type registerConfig struct {
	namespace string
	blittable *set.Set[string]
	frozen    *set.Set[string]
}

// RegisterOption configures Register.
type RegisterOption func(*registerConfig)

// WithHostNamespace sets the host namespace recorded for every type.
func WithHostNamespace(ns string) RegisterOption {
	return func(c *registerConfig) {
		c.namespace = ns
	}
}

// WithBlittable marks the named types as safe to copy by raw bytes. Names are
// fully qualified, e.g. "main.Point".
func WithBlittable(names ...string) RegisterOption {
	return func(c *registerConfig) {
		c.blittable.InsertSlice(names)
	}
}

// WithFrozen marks the named types as having an ABI-stable layout.
func WithFrozen(names ...string) RegisterOption {
	return func(c *registerConfig) {
		c.frozen.InsertSlice(names)
	}
}

// Records builds one TypeRecord per type of m that exports a metadata accessor.
func Records(m *ModuleDecl, libraryPath string, opts ...RegisterOption) *typedb.ModuleTypeDatabase {
	cfg := &registerConfig{
		blittable: set.New[string](0),
		frozen:    set.New[string](0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	mdb := typedb.NewModuleTypeDatabase(m.Name, libraryPath)
	for _, t := range m.Types {
		if t.MetadataAccessor == "" {
			continue
		}
		local := t.Type.LocalName()
		mdb.RegisterType(local, &typedb.TypeRecord{
			HostType:         HostTypeName(local),
			NativeType:       t.Type.Name,
			MetadataAccessor: t.MetadataAccessor,
			HostNamespace:    cfg.namespace,
			Module:           m.Name,
			IsBlittable:      cfg.blittable.Contains(t.Type.Name),
			IsFrozen:         cfg.frozen.Contains(t.Type.Name),
		})
	}
	return mdb
}

// Register records the types of m in db. A module can only be registered once.
func Register(db *typedb.TypeDatabase, m *ModuleDecl, libraryPath string, opts ...RegisterOption) error {
	if err := db.AddModuleDatabase(Records(m, libraryPath, opts...)); err != nil {
		return fmt.Errorf("failed to register module %s: %w", m.Name, err)
	}
	return nil
}

// HostTypeName derives the host identifier of a local Swift type name by
// flattening nesting, e.g. "Outer.Inner" becomes "Outer_Inner".
func HostTypeName(local string) string {
	return strings.ReplaceAll(local, ".", "_")
}
