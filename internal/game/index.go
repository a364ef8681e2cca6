package game

// Index is the room's entity store: a lookup by id plus an
// insertion-ordered list the tick iterates. It is exclusively owned by
// the room's worker; nothing outside the room holds a direct reference
// to an Entity, only its id.
type Index struct {
	order  []string
	byID   map[string]Entity
}

func NewIndex() *Index {
	return &Index{byID: make(map[string]Entity)}
}

// Add registers a new entity, preserving insertion order for the
// tick's update phase.
func (idx *Index) Add(e Entity) {
	idx.byID[e.ID()] = e
	idx.order = append(idx.order, e.ID())
}

// Get looks up an entity by id; references between entities are always
// by id, never a direct pointer, so every cross-entity read goes
// through here.
func (idx *Index) Get(id string) (Entity, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

// All returns every entity in insertion order, in a new slice built on
// each call. Entities in it that a later Sweep removes are no longer in
// the index.
func (idx *Index) All() []Entity {
	out := make([]Entity, 0, len(idx.order))
	for _, id := range idx.order {
		if e, ok := idx.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Sweep removes every entity marked for removal, in insertion order.
// onRemove is invoked once per removed entity before it is dropped so
// the caller can apply side effects (death rewards, reward bookkeeping)
// while the entity is still reachable.
func (idx *Index) Sweep(onRemove func(Entity)) {
	kept := idx.order[:0]
	for _, id := range idx.order {
		e, ok := idx.byID[id]
		if !ok {
			continue
		}
		if e.MarkedForRemoval() {
			if onRemove != nil {
				onRemove(e)
			}
			delete(idx.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	idx.order = kept
}

// Count returns the number of entities in the index, including dead
// ones that have not been swept.
func (idx *Index) Count() int { return len(idx.order) }

// BySide returns every non-dead entity belonging to the given side,
// used for vision-source collection and prioritizer distance checks.
func (idx *Index) BySide(side Side) []Entity {
	var out []Entity
	for _, id := range idx.order {
		if e, ok := idx.byID[id]; ok && e.Side() == side && !e.IsDead() {
			out = append(out, e)
		}
	}
	return out
}
