package engine

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrInvalidEntity    = errors.New("invalid entity")
	ErrComponentExists  = errors.New("component already exists")
	ErrComponentMissing = errors.New("component missing")
)

// Registry owns entity lifetimes and one typed store per component type.
type Registry struct {
	pool   entityPool
	stores map[reflect.Type]componentStore
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[reflect.Type]componentStore, 16),
	}
}

// Create issues a new entity, reusing a retired slot with a bumped
// generation when one is free.
func (r *Registry) Create() EntityID {
	return r.pool.create()
}

// Destroy removes id from every store and retires its slot.
func (r *Registry) Destroy(id EntityID) error {
	if !r.pool.valid(id) {
		return fmt.Errorf("destroy %s: %w", id, ErrInvalidEntity)
	}
	for _, s := range r.stores {
		s.remove(id)
	}
	r.pool.destroy(id)
	return nil
}

// Valid reports whether id is live. Handles to destroyed entities are not.
func (r *Registry) Valid(id EntityID) bool {
	return r.pool.valid(id)
}

// Each visits every live entity in slot order.
func (r *Registry) Each(fn func(EntityID)) {
	r.pool.each(fn)
}

// Entities returns the live entities in slot order.
func (r *Registry) Entities() []EntityID {
	ids := make([]EntityID, 0, r.pool.count)
	r.pool.each(func(id EntityID) { ids = append(ids, id) })
	return ids
}

// Len is the number of live entities.
func (r *Registry) Len() int { return r.pool.count }

// Clear destroys every entity. Handles issued before Clear stop validating.
func (r *Registry) Clear() {
	for _, s := range r.stores {
		s.clear()
	}
	r.pool.reset()
}

func storeOf[T any](r *Registry, create bool) *store[T] {
	key := reflect.TypeFor[T]()
	if s, ok := r.stores[key]; ok {
		return s.(*store[T])
	}
	if !create {
		return nil
	}
	s := newStore[T]()
	r.stores[key] = s
	return s
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().Name()
}

// Add stores a copy of c for id. Adding a type the entity already has fails
// and leaves the stored value untouched.
func Add[T any](r *Registry, id EntityID, c T) (*T, error) {
	if !r.pool.valid(id) {
		return nil, fmt.Errorf("add %s to %s: %w", typeName[T](), id, ErrInvalidEntity)
	}
	s := storeOf[T](r, true)
	if s.has(id) {
		return nil, fmt.Errorf("add %s to %s: %w", typeName[T](), id, ErrComponentExists)
	}
	p := new(T)
	*p = c
	s.insert(id, p)
	return p, nil
}

// Get returns the stored T of id. The pointer stays valid until the
// component is removed or the entity destroyed.
func Get[T any](r *Registry, id EntityID) (*T, error) {
	if !r.pool.valid(id) {
		return nil, fmt.Errorf("get %s of %s: %w", typeName[T](), id, ErrInvalidEntity)
	}
	if c, ok := TryGet[T](r, id); ok {
		return c, nil
	}
	return nil, fmt.Errorf("get %s of %s: %w", typeName[T](), id, ErrComponentMissing)
}

// TryGet is Get without the error.
func TryGet[T any](r *Registry, id EntityID) (*T, bool) {
	s := storeOf[T](r, false)
	if s == nil || !r.pool.valid(id) {
		return nil, false
	}
	return s.get(id)
}

// Remove deletes the T of id. Removing a missing component is an error.
func Remove[T any](r *Registry, id EntityID) error {
	if !r.pool.valid(id) {
		return fmt.Errorf("remove %s from %s: %w", typeName[T](), id, ErrInvalidEntity)
	}
	s := storeOf[T](r, false)
	if s == nil || !s.remove(id) {
		return fmt.Errorf("remove %s from %s: %w", typeName[T](), id, ErrComponentMissing)
	}
	return nil
}

// Has reports whether id is live and holds a T.
func Has[T any](r *Registry, id EntityID) bool {
	s := storeOf[T](r, false)
	return s != nil && r.pool.valid(id) && s.has(id)
}

// View returns a copy of the entities holding a T, in store order.
func View[T any](r *Registry) []EntityID {
	s := storeOf[T](r, false)
	if s == nil {
		return nil
	}
	return append([]EntityID(nil), s.ids...)
}

// Each1 calls fn for every entity with a T. fn may add or remove components;
// entities removed during the walk are skipped.
func Each1[T any](r *Registry, fn func(EntityID, *T)) {
	s := storeOf[T](r, false)
	if s == nil {
		return
	}
	for _, id := range View[T](r) {
		if c, ok := s.get(id); ok {
			fn(id, c)
		}
	}
}

// Each2 iterates over entities that have both A and B, walking the smaller
// store and probing the larger one.
func Each2[A, B any](r *Registry, fn func(EntityID, *A, *B)) {
	sa := storeOf[A](r, false)
	sb := storeOf[B](r, false)
	if sa == nil || sb == nil {
		return
	}
	if sa.len() <= sb.len() {
		for _, id := range View[A](r) {
			a, ok := sa.get(id)
			if !ok {
				continue
			}
			if b, ok := sb.get(id); ok {
				fn(id, a, b)
			}
		}
		return
	}
	for _, id := range View[B](r) {
		b, ok := sb.get(id)
		if !ok {
			continue
		}
		if a, ok := sa.get(id); ok {
			fn(id, a, b)
		}
	}
}
