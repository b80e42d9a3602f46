package engine

import "errors"

// snapshotEntry keeps value copies of the components that survive a play
// session. A nil pointer means the entity lacked that component.
type snapshotEntry struct {
	id       EntityID
	identity Identity
	comps    componentSet
}

// componentSet is the allow-list shared by duplication and snapshots.
// Duplication drops the camera.
type componentSet struct {
	transform *Transform
	mesh      *MeshRef
	camera    *Camera
	body      *Rigidbody2D
	box       *BoxCollider2D
	circle    *CircleCollider2D
}

func copyOf[T any](r *Registry, id EntityID) *T {
	c, ok := TryGet[T](r, id)
	if !ok {
		return nil
	}
	v := *c
	return &v
}

// captureComponents copies the allow-listed components of id and clears
// every runtime physics handle in the copies.
func captureComponents(r *Registry, id EntityID) componentSet {
	set := componentSet{
		transform: copyOf[Transform](r, id),
		mesh:      copyOf[MeshRef](r, id),
		camera:    copyOf[Camera](r, id),
		body:      copyOf[Rigidbody2D](r, id),
		box:       copyOf[BoxCollider2D](r, id),
		circle:    copyOf[CircleCollider2D](r, id),
	}
	if set.body != nil {
		set.body.Runtime = 0
	}
	if set.box != nil {
		set.box.Runtime = 0
	}
	if set.circle != nil {
		set.circle.Runtime = 0
	}
	return set
}

// apply writes the set onto id. Transform is overwritten in place because
// every entity already carries one.
func (s componentSet) apply(r *Registry, id EntityID) error {
	var errs []error
	if s.transform != nil {
		if t, ok := TryGet[Transform](r, id); ok {
			*t = *s.transform
		} else {
			errs = append(errs, addErr(r, id, *s.transform))
		}
	}
	if s.mesh != nil {
		errs = append(errs, addErr(r, id, *s.mesh))
	}
	if s.camera != nil {
		errs = append(errs, addErr(r, id, *s.camera))
	}
	if s.body != nil {
		errs = append(errs, addErr(r, id, *s.body))
	}
	if s.box != nil {
		errs = append(errs, addErr(r, id, *s.box))
	}
	if s.circle != nil {
		errs = append(errs, addErr(r, id, *s.circle))
	}
	return errors.Join(errs...)
}

func addErr[T any](r *Registry, id EntityID, c T) error {
	_, err := Add(r, id, c)
	return err
}

type snapshot struct {
	entries []snapshotEntry
}

func takeSnapshot(r *Registry) *snapshot {
	snap := &snapshot{entries: make([]snapshotEntry, 0, r.Len())}
	r.Each(func(id EntityID) {
		e := snapshotEntry{id: id, comps: captureComponents(r, id)}
		if ident, ok := TryGet[Identity](r, id); ok {
			e.identity = *ident
		}
		snap.entries = append(snap.entries, e)
	})
	return snap
}
