package metadata

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/blacktop/go-swiftbind/internal/logging"
)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger that records metadata computations.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		c.log = logging.OrNop(l)
	}
}

// WithResolver sets the resolver used to find scalar metadata symbols.
func WithResolver(r Resolver) Option {
	return func(c *Cache) {
		c.resolver = r
	}
}

// Cache maps host types to their Swift metadata. Entries are computed at most
// once and never evicted; failed computations are not stored. A Cache is safe
// for concurrent use and is meant to live for the whole process.
type Cache struct {
	mu       sync.RWMutex
	entries  map[reflect.Type]TypeMetadata
	inflight singleflight.Group
	resolver Resolver
	log      *zap.Logger
}

// NewCache creates an empty Cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[reflect.Type]TypeMetadata),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// TryGet returns the cached metadata of t without computing it.
func (c *Cache) TryGet(t reflect.Type) (TypeMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	md, ok := c.entries[t]
	return md, ok
}

// GetOrAdd returns the cached metadata of t, calling compute when there is none.
// Concurrent callers for the same type share a single compute call.
func (c *Cache) GetOrAdd(t reflect.Type, compute func() (TypeMetadata, error)) (TypeMetadata, error) {
	if md, ok := c.TryGet(t); ok {
		return md, nil
	}
	// reflect.Type values are unique per type, so the rtype address is a stable key
	v, err, _ := c.inflight.Do(fmt.Sprintf("%p", t), func() (any, error) {
		if md, ok := c.TryGet(t); ok {
			return md, nil
		}
		md, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[t] = md
		c.mu.Unlock()
		c.log.Debug("computed type metadata",
			zap.Stringer("type", t),
			zap.Uintptr("size", md.Size))
		return md, nil
	})
	if err != nil {
		return TypeMetadata{}, fmt.Errorf("failed to get metadata for %s: %w", t, err)
	}
	return v.(TypeMetadata), nil
}

// Len returns the number of cached types.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Lookup returns the metadata of T. Types implementing Describer, by value or
// by pointer, describe themselves; scalars are resolved through the scalar
// symbol table. Anything else fails with ErrNoMetadata.
func Lookup[T any](c *Cache) (TypeMetadata, error) {
	t := reflect.TypeFor[T]()
	return c.GetOrAdd(t, func() (TypeMetadata, error) {
		var zero T
		if d, ok := any(zero).(Describer); ok {
			return d.SwiftMetadata()
		}
		if d, ok := any(&zero).(Describer); ok {
			return d.SwiftMetadata()
		}
		return c.scalar(t)
	})
}

func (c *Cache) scalar(t reflect.Type) (TypeMetadata, error) {
	sym, ok := ScalarSymbol(t)
	if !ok {
		return TypeMetadata{}, fmt.Errorf("%w: %s is not a scalar", ErrNoMetadata, t)
	}
	if c.resolver == nil {
		return TypeMetadata{}, fmt.Errorf("%w: no resolver for %s", ErrNoMetadata, sym)
	}
	handle, err := c.resolver.ResolveSymbol(sym)
	if err != nil {
		return TypeMetadata{}, fmt.Errorf("failed to resolve %s: %w", sym, err)
	}
	if handle == nil {
		return TypeMetadata{}, fmt.Errorf("%w: %s resolved to nil", ErrNoMetadata, sym)
	}
	return TypeMetadata{Handle: handle, Size: t.Size()}, nil
}
