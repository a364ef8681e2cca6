// Package simulation implements the fixed-tick update loop a room
// drives: the ordered per-tick phases from spec §4.1 (drain inputs,
// update entities, forced-movement collision, fog-of-war recompute,
// reap, emit), plus the win-condition check that ends the match.
//
// Simulation itself does not own a goroutine or ticker — the room does
// — it only advances exactly one fixed step per Step call, so its
// behavior is deterministic and independent of wall-clock timing,
// mirroring the teacher's engine.tick() but driven externally instead
// of by a time.Ticker owned here.
package simulation

import (
	"go.uber.org/zap"

	"github.com/riftforge/moba-server/internal/content"
	"github.com/riftforge/moba-server/internal/game"
	"github.com/riftforge/moba-server/internal/spatial"
)

// Config controls tick timing; New fixes each step's dt at
// 1/TickRateHz seconds, and Step takes no dt argument.
type Config struct {
	TickRateHz int
}

// Simulation owns the entity index and implements game.Room, giving
// every entity's Update method the seam it needs to spawn entities,
// look up others, and emit events without importing the room package
// (which would create an import cycle back into game).
type Simulation struct {
	log      *zap.Logger
	registry *content.Registry
	bushes   *spatial.BushMap
	idgen    *game.IDGenerator
	passives *game.PassiveBus

	index *game.Index
	dt    float64
	tick  uint64
	clock float64

	pendingEvents []game.Event

	visibleBlue map[string]bool
	visibleRed  map[string]bool

	Ended       bool
	WinningSide game.Side
}

// New builds a simulation with an empty entity index. bushes may be
// nil for maps with no bush regions.
func New(log *zap.Logger, registry *content.Registry, bushes *spatial.BushMap, cfg Config) *Simulation {
	if bushes == nil {
		bushes = spatial.NewBushMap(nil)
	}
	return &Simulation{
		log:      log,
		registry: registry,
		bushes:   bushes,
		idgen:    game.NewIDGenerator(),
		passives: game.NewPassiveBus(),
		index:    game.NewIndex(),
		dt:       1.0 / float64(cfg.TickRateHz),
	}
}

// game.Room implementation -------------------------------------------

func (s *Simulation) Index() *game.Index             { return s.index }
func (s *Simulation) GameTime() float64              { return s.clock }
func (s *Simulation) Tick() uint64                   { return s.tick }
func (s *Simulation) DT() float64                    { return s.dt }
func (s *Simulation) Registry() *content.Registry    { return s.registry }
func (s *Simulation) PassiveBus() *game.PassiveBus   { return s.passives }
func (s *Simulation) NewEntityID() string            { return s.idgen.Next() }

func (s *Simulation) Spawn(e game.Entity) string {
	s.index.Add(e)
	return e.ID()
}

func (s *Simulation) Emit(evt game.Event) {
	s.pendingEvents = append(s.pendingEvents, evt)
}

// DrainEvents returns and clears the events accumulated since the last
// call; the room calls this after Step to hand them to the reliable
// queue.
func (s *Simulation) DrainEvents() []game.Event {
	if len(s.pendingEvents) == 0 {
		return nil
	}
	out := s.pendingEvents
	s.pendingEvents = nil
	return out
}

// Step advances exactly one fixed tick. drainInputs is invoked first,
// as phase 1; it is the room's InputHandler applying queued player
// input to champions before any entity logic runs this tick.
func (s *Simulation) Step(drainInputs func()) {
	s.tick++
	s.clock += s.dt

	// Phase 1: drain inputs.
	if drainInputs != nil {
		drainInputs()
	}

	// Phase 2: update entities, insertion order, dead entities skipped.
	for _, e := range s.index.All() {
		if e.IsDead() && e.Type() != game.EntityChampion {
			// Non-champion dead entities are reaped below; champions
			// stay in the update loop dead so their respawn timer advances.
			continue
		}
		e.Update(s.dt, s)
	}

	// Phase 3: collision/forced-movement resolution is performed inline
	// by each champion's Update (dash hitbox resolution against
	// HitEntities, at-most-once per forced movement) since it needs no
	// state from entities not yet updated this tick.

	// Phase 4: fog-of-war recompute.
	s.recomputeVisibility()

	// Phase 5: reap. A destroyed nexus is marked for removal by
	// Nexus.TakeDamage in the same tick it dies, so the win condition
	// must be detected here, in the removal callback, rather than by
	// re-scanning the index afterward — by then the nexus is already
	// gone from it.
	s.index.Sweep(func(e game.Entity) {
		s.log.Debug("entity reaped", zap.String("id", e.ID()), zap.String("type", string(e.Type())))
		if nexus, ok := e.(*game.Nexus); ok {
			s.onNexusDestroyed(nexus)
		}
	})

	// Phase 6: emit is the room's responsibility (DrainEvents + the
	// serializer's per-viewer snapshot emission), not Simulation's.
}

// recomputeVisibility rebuilds the per-side visible-entity-id sets used
// by the state serializer's per-viewer filtering. The computation is
// cached on the Simulation for the duration of this tick only.
func (s *Simulation) recomputeVisibility() {
	blueSources, redSources := s.collectVisionSources()

	visBlue := make(map[string]bool)
	visRed := make(map[string]bool)

	for _, e := range s.index.All() {
		if e.IsDead() {
			continue
		}
		ex, ey := e.Position()
		structure := e.Type().Structure()

		if e.Side() == game.SideBlue || structure {
			visBlue[e.ID()] = true
		} else if spatial.CanSee(s.bushes, blueSources, ex, ey, false, structure) {
			visBlue[e.ID()] = true
		}

		if e.Side() == game.SideRed || structure {
			visRed[e.ID()] = true
		} else if spatial.CanSee(s.bushes, redSources, ex, ey, false, structure) {
			visRed[e.ID()] = true
		}
	}

	s.visibleBlue = visBlue
	s.visibleRed = visRed
}

// collectVisionSources gathers every non-dead, non-stealthed entity
// with a positive sight range, split by side. Type-specific sight
// range/stealth extraction is a deliberate type switch: vision is not
// part of the Entity interface since only a handful of types grant it.
func (s *Simulation) collectVisionSources() (blue, red []spatial.VisionSource) {
	for _, e := range s.index.All() {
		if e.IsDead() {
			continue
		}
		sight, stealthed := visionOf(e)
		if sight <= 0 || stealthed {
			continue
		}
		x, y := e.Position()
		src := spatial.VisionSource{X: x, Y: y, SightRange: sight}
		if e.Side() == game.SideBlue {
			blue = append(blue, src)
		} else if e.Side() == game.SideRed {
			red = append(red, src)
		}
	}
	return blue, red
}

func visionOf(e game.Entity) (sight float64, stealthed bool) {
	switch v := e.(type) {
	case *game.Champion:
		return v.SightRange(), v.Stealthed()
	case *game.Minion:
		return v.SightRange, false
	case *game.Tower:
		return v.SightRange, false
	case *game.Ward:
		return v.SightRange, false
	}
	return 0, false
}

// VisibleTo reports whether an entity id is currently visible to side.
func (s *Simulation) VisibleTo(side game.Side, entityID string) bool {
	if side == game.SideBlue {
		return s.visibleBlue[entityID]
	}
	return s.visibleRed[entityID]
}

// onNexusDestroyed ends the match as soon as a nexus is swept out of
// the index, since that is the tick it was marked for removal by its
// own death in TakeDamage.
func (s *Simulation) onNexusDestroyed(nexus *game.Nexus) {
	if s.Ended {
		return
	}
	s.Ended = true
	s.WinningSide = nexus.Side().Opposite()
	s.log.Info("match ended", zap.String("winningSide", sideName(s.WinningSide)))
}

func sideName(s game.Side) string {
	if s == game.SideBlue {
		return "blue"
	}
	return "red"
}
