// Package priority implements the entity prioritizer (interest
// management) from spec §4.7: per-viewer distance-banded priority
// classes and their inclusion cadence.
package priority

import (
	"math"

	"github.com/riftforge/moba-server/internal/game"
)

// Class is the four-tier priority band.
type Class int

const (
	Low Class = iota
	Medium
	High
	Critical
)

// Config mirrors config.PriorityConfig; duplicated here (rather than
// importing config) so this package has no dependency on the
// configuration file format, only the tuning values it needs.
type Config struct {
	CriticalDistance      float64
	HighDistance          float64
	MediumDistance        float64
	HighCadenceTicks      int
	MediumCadenceTicks    int
	LowCadenceTicks       int
	MaxTicksWithoutUpdate int
}

type tracked struct {
	lastIncludedTick uint64
	class            Class
}

// Prioritizer holds per-(viewer, entity) inclusion tracking. One
// instance per room, shared across every connected player.
type Prioritizer struct {
	cfg     Config
	viewers map[string]map[string]*tracked
}

func New(cfg Config) *Prioritizer {
	return &Prioritizer{cfg: cfg, viewers: make(map[string]map[string]*tracked)}
}

func (p *Prioritizer) AddPlayer(playerID string) {
	p.viewers[playerID] = make(map[string]*tracked)
}

func (p *Prioritizer) ClearPlayer(playerID string) {
	delete(p.viewers, playerID)
}

// Select returns the subset of visible that should be included in this
// tick's update for playerID, given their champion's position (or, if
// viewerChampion is nil, every visible entity is included per the
// "no live champion" rule).
func (p *Prioritizer) Select(playerID string, tick uint64, viewerChampion *game.Champion, visible []game.Entity) []game.Entity {
	tracking, ok := p.viewers[playerID]
	if !ok {
		tracking = make(map[string]*tracked)
		p.viewers[playerID] = tracking
	}

	if viewerChampion == nil {
		return visible
	}
	vx, vy := viewerChampion.Position()

	var out []game.Entity
	for _, e := range visible {
		class := p.classify(e, vx, vy)
		t, known := tracking[e.ID()]
		if !known {
			tracking[e.ID()] = &tracked{lastIncludedTick: tick, class: class}
			out = append(out, e)
			continue
		}
		sinceLast := tick - t.lastIncludedTick
		if p.shouldInclude(class, sinceLast) {
			t.lastIncludedTick = tick
			t.class = class
			out = append(out, e)
		} else {
			t.class = class
		}
	}
	return out
}

func (p *Prioritizer) classify(e game.Entity, vx, vy float64) Class {
	if e.Type() == game.EntityChampion || e.Type().Structure() {
		return Critical
	}
	ex, ey := e.Position()
	d := math.Hypot(ex-vx, ey-vy)

	if e.Type() == game.EntityProjectile {
		if d < p.cfg.CriticalDistance {
			return Critical
		}
		return High
	}

	switch {
	case d < p.cfg.CriticalDistance:
		return Critical
	case d < p.cfg.HighDistance:
		return High
	case d < p.cfg.MediumDistance:
		return Medium
	default:
		return Low
	}
}

func (p *Prioritizer) shouldInclude(class Class, sinceLast uint64) bool {
	if p.cfg.MaxTicksWithoutUpdate > 0 && sinceLast >= uint64(p.cfg.MaxTicksWithoutUpdate) {
		return true
	}
	switch class {
	case Critical:
		return true
	case High:
		return sinceLast >= uint64(p.cfg.HighCadenceTicks)
	case Medium:
		return sinceLast >= uint64(p.cfg.MediumCadenceTicks)
	default:
		return sinceLast >= uint64(p.cfg.LowCadenceTicks)
	}
}
