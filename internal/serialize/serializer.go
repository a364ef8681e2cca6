package serialize

import "github.com/riftforge/moba-server/internal/game"

type baseline struct {
	snapshot    game.Snapshot
	lastEmitTick uint64
}

// perViewer holds one viewer's baseline cache, keyed by entity id.
type perViewer struct {
	baselines map[string]*baseline
}

// Serializer is the room-owned, per-viewer delta compression cache
// described in spec §4.6. One instance per room, shared across every
// connected player.
type Serializer struct {
	staleTickThreshold uint64
	viewers            map[string]*perViewer
}

func New(staleTickThreshold int) *Serializer {
	return &Serializer{
		staleTickThreshold: uint64(staleTickThreshold),
		viewers:            make(map[string]*perViewer),
	}
}

func (s *Serializer) viewerOf(playerID string) *perViewer {
	v, ok := s.viewers[playerID]
	if !ok {
		v = &perViewer{baselines: make(map[string]*baseline)}
		s.viewers[playerID] = v
	}
	return v
}

// AddPlayer registers a viewer with an empty baseline cache.
func (s *Serializer) AddPlayer(playerID string) {
	s.viewers[playerID] = &perViewer{baselines: make(map[string]*baseline)}
}

// ClearPlayerState wipes a player's baselines; per spec §4.6, the next
// update resends full snapshots for everything visible.
func (s *Serializer) ClearPlayerState(playerID string) {
	delete(s.viewers, playerID)
}

// Update computes this tick's emitted updates for one viewer: a
// full/delta update per entity in snapshots (the prioritized, visible
// subset already selected by the caller), plus removal deltas for any
// previously tracked entity absent from visibleIDs. visibleIDs must be
// the viewer's *entire* currently visible set, not just the prioritized
// subset, or removal detection will misfire on entities merely skipped
// by this tick's prioritizer cadence.
func (s *Serializer) Update(playerID string, tick uint64, snapshots []game.Snapshot, visibleIDs map[string]bool) []Update {
	v := s.viewerOf(playerID)
	var updates []Update

	for _, snap := range snapshots {
		b, exists := v.baselines[snap.EntityID]
		if !exists {
			updates = append(updates, Update{
				EntityID: snap.EntityID, EntityType: snap.EntityType, Side: snap.Side,
				Mask: maskAll, Snapshot: snap,
			})
			v.baselines[snap.EntityID] = &baseline{snapshot: snap, lastEmitTick: tick}
			continue
		}
		mask := diff(b.snapshot, snap)
		if mask != 0 {
			// entity id, entity type, and side ride along on every Update
			// struct regardless of Mask (clients need side for fog
			// filtering even when only e.g. health changed).
			updates = append(updates, Update{
				EntityID: snap.EntityID, EntityType: snap.EntityType, Side: snap.Side,
				Mask: mask, Snapshot: snap,
			})
			b.snapshot = snap
			b.lastEmitTick = tick
		}
	}

	for id, b := range v.baselines {
		if visibleIDs != nil && !visibleIDs[id] {
			updates = append(updates, Update{
				EntityID: id, EntityType: b.snapshot.EntityType, Side: b.snapshot.Side,
				Mask: MaskState, IsRemoved: true,
			})
			delete(v.baselines, id)
		}
	}

	s.sweepStale(v, tick)
	return updates
}

func (s *Serializer) sweepStale(v *perViewer, tick uint64) {
	if s.staleTickThreshold == 0 {
		return
	}
	for id, b := range v.baselines {
		if tick-b.lastEmitTick > s.staleTickThreshold {
			delete(v.baselines, id)
		}
	}
}
