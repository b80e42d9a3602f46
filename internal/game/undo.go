package game

import (
	"github.com/google/uuid"

	"mirgo/internal/engine"
)

const maxUndoStack = 50

// undoState is a Transform to put back on the entity with the given UUID.
// UUIDs survive Reset, entity ids do not.
type undoState struct {
	entity    uuid.UUID
	transform engine.Transform
}

type undoStack struct {
	states []undoState
}

func (s *undoStack) push(e engine.Entity) {
	ident, ok := engine.TryGetComponent[engine.Identity](e)
	if !ok {
		return
	}
	t, ok := engine.TryGetComponent[engine.Transform](e)
	if !ok {
		return
	}
	if len(s.states) >= maxUndoStack {
		s.states = s.states[1:]
	}
	s.states = append(s.states, undoState{entity: ident.UUID, transform: *t})
}

func (s *undoStack) len() int { return len(s.states) }

func (s *undoStack) clear() { s.states = s.states[:0] }

// pop restores the newest state whose entity still exists in scene and
// returns that entity. States of destroyed entities are dropped.
func (s *undoStack) pop(scene *engine.Scene) (engine.Entity, bool) {
	for len(s.states) > 0 {
		state := s.states[len(s.states)-1]
		s.states = s.states[:len(s.states)-1]

		e, ok := scene.EntityByUUID(state.entity)
		if !ok {
			continue
		}
		if t, ok := engine.TryGetComponent[engine.Transform](e); ok {
			*t = state.transform
			return e, true
		}
	}
	return engine.Entity{}, false
}
