package engine

// componentStore is implemented by every typed store so the Registry can
// drop an entity's data from all of them on destroy.
type componentStore interface {
	remove(id EntityID) bool
	has(id EntityID) bool
	clear()
	len() int
}

// store is a sparse set of components of one type. Components live behind
// pointers so a *T handed out stays valid while other entities are added or
// removed. Iteration follows the dense slice, which keeps it deterministic.
type store[T any] struct {
	index map[EntityID]int
	ids   []EntityID
	items []*T
}

func newStore[T any]() *store[T] {
	return &store[T]{index: make(map[EntityID]int, 64)}
}

func (s *store[T]) insert(id EntityID, c *T) {
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.items = append(s.items, c)
}

func (s *store[T]) get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

func (s *store[T]) has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

// remove swaps the last element into the freed slot.
func (s *store[T]) remove(id EntityID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	last := len(s.ids) - 1
	if i != last {
		s.ids[i] = s.ids[last]
		s.items[i] = s.items[last]
		s.index[s.ids[i]] = i
	}
	s.ids[last] = NullEntity
	s.items[last] = nil
	s.ids = s.ids[:last]
	s.items = s.items[:last]
	delete(s.index, id)
	return true
}

func (s *store[T]) clear() {
	clear(s.index)
	clear(s.items)
	s.ids = s.ids[:0]
	s.items = s.items[:0]
}

func (s *store[T]) len() int { return len(s.ids) }
