package engine

import "fmt"

// EntityID encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. Generations start at 1, so the zero ID is
// never alive and doubles as the null handle.
type EntityID uint64

const NullEntity EntityID = 0

func newEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsNull() bool       { return id == NullEntity }

func (id EntityID) String() string {
	if id.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%d:%d", id.Index(), id.Generation())
}

// entityPool hands out generational slots. A destroyed slot bumps its
// generation so every handle issued before stops validating.
type entityPool struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	count       int
}

func (p *entityPool) create() EntityID {
	p.count++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.alive[idx] = true
		return newEntityID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 1)
	p.alive = append(p.alive, true)
	return newEntityID(idx, 1)
}

func (p *entityPool) valid(id EntityID) bool {
	idx := id.Index()
	if id.IsNull() || int(idx) >= len(p.generations) {
		return false
	}
	return p.alive[idx] && p.generations[idx] == id.Generation()
}

func (p *entityPool) destroy(id EntityID) bool {
	if !p.valid(id) {
		return false
	}
	idx := id.Index()
	p.alive[idx] = false
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.count--
	return true
}

// reset kills every live slot. The free list is rebuilt highest index first
// so the next creations reuse slots in ascending order.
func (p *entityPool) reset() {
	p.freeList = p.freeList[:0]
	for i := len(p.generations) - 1; i >= 0; i-- {
		if p.alive[i] {
			p.alive[i] = false
			p.generations[i]++
		}
		p.freeList = append(p.freeList, uint32(i))
	}
	p.count = 0
}

// each visits live entities in slot order.
func (p *entityPool) each(fn func(EntityID)) {
	for i, ok := range p.alive {
		if ok {
			fn(newEntityID(uint32(i), p.generations[i]))
		}
	}
}

// Entity is a lightweight handle pairing an EntityID with the Scene that owns
// it. Copying an Entity never copies component data.
type Entity struct {
	ID    EntityID
	scene *Scene
}

func (e Entity) Scene() *Scene { return e.scene }

// Valid reports whether the handle still refers to a live entity.
func (e Entity) Valid() bool {
	return e.scene != nil && e.scene.registry.Valid(e.ID)
}

// Destroy removes the entity and all of its components.
func (e Entity) Destroy() error {
	if e.scene == nil {
		return ErrInvalidEntity
	}
	return e.scene.DestroyEntity(e)
}

// Name returns the Identity name, or an empty string for a handle without one.
func (e Entity) Name() string {
	if id, ok := TryGetComponent[Identity](e); ok {
		return id.Name
	}
	return ""
}

func AddComponent[T any](e Entity, c T) (*T, error) {
	if e.scene == nil {
		return nil, ErrInvalidEntity
	}
	return Add(e.scene.registry, e.ID, c)
}

func GetComponent[T any](e Entity) (*T, error) {
	if e.scene == nil {
		return nil, ErrInvalidEntity
	}
	return Get[T](e.scene.registry, e.ID)
}

// TryGetComponent is GetComponent for callers that treat absence as normal.
func TryGetComponent[T any](e Entity) (*T, bool) {
	if e.scene == nil {
		return nil, false
	}
	return TryGet[T](e.scene.registry, e.ID)
}

func RemoveComponent[T any](e Entity) error {
	if e.scene == nil {
		return ErrInvalidEntity
	}
	return Remove[T](e.scene.registry, e.ID)
}

func HasComponent[T any](e Entity) bool {
	if e.scene == nil {
		return false
	}
	return Has[T](e.scene.registry, e.ID)
}
