// Package serialize implements the per-viewer state serializer: a
// full/delta snapshot cache keyed by (viewer, entity id), the §4.6
// change-mask bitset, removal-delta emission, and the staleness sweep
// that bounds per-viewer memory. Grounded on the teacher's
// game_snapshot.go pre-allocated-slice snapshot pool, adapted from a
// broadcast render snapshot into a per-viewer delta cache since this
// server, unlike the teacher's single shared render state, must filter
// every viewer's view by fog of war.
package serialize

import "github.com/riftforge/moba-server/internal/game"

// ChangeMask is the field-level dirty bitset named in spec §4.6.
type ChangeMask uint16

const (
	MaskPosition ChangeMask = 1 << iota
	MaskHealth
	MaskResource
	MaskLevel
	MaskAbilities
	MaskEffects
	MaskShields
	MaskPassive
	MaskItems
	MaskTarget
	MaskState
	MaskTrinket
	MaskGold

	maskAll = MaskPosition | MaskHealth | MaskResource | MaskLevel | MaskAbilities |
		MaskEffects | MaskShields | MaskPassive | MaskItems | MaskTarget |
		MaskState | MaskTrinket | MaskGold
)

// Update is one entity's emitted payload for one viewer this tick:
// either a full snapshot (mask = all fields), a delta (mask names only
// the changed fields), or a removal (mask = MaskState with IsRemoved).
type Update struct {
	EntityID   string
	EntityType game.EntityType
	Side       game.Side
	Mask       ChangeMask
	Snapshot   game.Snapshot
	IsRemoved  bool
}

// diff computes the change mask between a baseline and a fresh
// snapshot of the same entity. Position/health/state are compared for
// every entity type; champion-specific fields are compared only when
// both snapshots carry a Champion payload.
func diff(base, next game.Snapshot) ChangeMask {
	var mask ChangeMask

	if base.X != next.X || base.Y != next.Y {
		mask |= MaskPosition
	}
	if base.Health != next.Health || base.MaxHealth != next.MaxHealth {
		mask |= MaskHealth
	}
	if base.IsDead != next.IsDead {
		mask |= MaskState
	}

	bc, nc := base.Champion, next.Champion
	if bc == nil || nc == nil {
		return mask
	}

	if bc.Resource != nc.Resource || bc.MaxResource != nc.MaxResource {
		mask |= MaskResource
	}
	if bc.Level != nc.Level || bc.Experience != nc.Experience || bc.ExperienceToNextLevel != nc.ExperienceToNextLevel || bc.SkillPoints != nc.SkillPoints {
		mask |= MaskLevel
	}
	if !abilitiesEqual(bc.Abilities, nc.Abilities) {
		mask |= MaskAbilities
	}
	if !effectsEqual(bc.ActiveEffects, nc.ActiveEffects) {
		mask |= MaskEffects
	}
	if !shieldsEqual(bc.Shields, nc.Shields) {
		mask |= MaskShields
	}
	if bc.Passive != nc.Passive {
		mask |= MaskPassive
	}
	if !itemsEqual(bc.Items, nc.Items) {
		mask |= MaskItems
	}
	if bc.TargetEntityID != nc.TargetEntityID || bc.HasTarget != nc.HasTarget || bc.TargetX != nc.TargetX || bc.TargetY != nc.TargetY {
		mask |= MaskTarget
	}
	if bc.IsDead != nc.IsDead || bc.IsRecalling != nc.IsRecalling || bc.RecallProgress != nc.RecallProgress || bc.RespawnTimer != nc.RespawnTimer {
		mask |= MaskState
	}
	if bc.TrinketCharges != nc.TrinketCharges || bc.TrinketCooldown != nc.TrinketCooldown || bc.RechargeProgress != nc.RechargeProgress {
		mask |= MaskTrinket
	}
	if bc.Gold != nc.Gold {
		mask |= MaskGold
	}
	return mask
}

func abilitiesEqual(a, b map[string]game.AbilitySlot) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func effectsEqual(a, b []game.ActiveEffect) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func shieldsEqual(a, b []game.Shield) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func itemsEqual(a, b []game.ItemSlot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
