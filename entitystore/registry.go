package entitystore

import (
	"errors"
	"fmt"
	"sync"
)

// DecodeFunc turns a StorableEntity back into the registered Entity type.
type DecodeFunc func(s StorableEntity) (Entity, error)

// TypeRegistry maps entity type names to decode functions.
// It is needed wherever the Go type is only known by name, e.g. when resolving included relations.
type TypeRegistry struct {
	mu       sync.RWMutex
	decoders map[string]DecodeFunc
}

// DefaultRegistry is used by units of work that are not configured WithTypeRegistry.
var DefaultRegistry = NewTypeRegistry()

// NewTypeRegistry creates an empty TypeRegistry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{decoders: make(map[string]DecodeFunc)}
}

// Register adds the decode function for an entity type name.
// Registering the same name twice returns ErrEntityTypeAlreadyRegistered.
func (r *TypeRegistry) Register(entityType string, fn DecodeFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decoders[entityType]; exists {
		return errors.Join(ErrEntityTypeAlreadyRegistered, fmt.Errorf("entity type %q", entityType))
	}

	r.decoders[entityType] = fn

	return nil
}

// Decode looks up the decode function for s.EntityType and applies it.
func (r *TypeRegistry) Decode(s StorableEntity) (Entity, error) {
	r.mu.RLock()
	fn, ok := r.decoders[s.EntityType]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Join(ErrUnknownEntityType, fmt.Errorf("entity type %q", s.EntityType))
	}

	return fn(s)
}

// IsRegistered reports whether a decode function exists for the entity type name.
func (r *TypeRegistry) IsRegistered(entityType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.decoders[entityType]

	return ok
}

// RegisterEntityType registers T under the name returned by its zero value's EntityType().
func RegisterEntityType[T Entity](r *TypeRegistry) error {
	var zero T

	return r.Register(zero.EntityType(), func(s StorableEntity) (Entity, error) {
		return decodeInto[T](s)
	})
}

// MustRegisterEntityType is like RegisterEntityType but panics on error. Meant for init functions.
func MustRegisterEntityType[T Entity](r *TypeRegistry) {
	if err := RegisterEntityType[T](r); err != nil {
		panic(err)
	}
}
