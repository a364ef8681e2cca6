package game

import "github.com/riftforge/moba-server/internal/content"

// ActiveEffect is one instance of a status effect currently applied to
// a champion: duration counts down in accumulated game time, never
// wall-clock, so replay and tests can drive it with an injected dt.
type ActiveEffect struct {
	EffectID          string
	SourceID          string
	RemainingDuration float64
	InitialDuration   float64
	Stacks            int
	NextTickIn        float64 // seconds until next periodic application, 0 if not periodic
	TickRate          float64 // seconds between periodic applications, copied from the effect def at apply time
	TickDamage        float64 // magnitude applied to the holder each time NextTickIn crosses zero
	TickHeal          float64
	TickDamageType    DamageType
}

// StatModifier is a timed flat/percent adjustment to a derived stat,
// tagged with a source so multiple sources of the same stat can be
// told apart and expired independently.
type StatModifier struct {
	Source            string
	Stat              string
	Flat              float64
	Percent           float64
	RemainingDuration float64 // <= 0 means permanent (cleared only by explicit removal)
}

// CCStatus is the derived boolean set recomputed any time the active
// effect list changes, per the crowd-control composition rule.
type CCStatus struct {
	Stunned  bool
	Rooted   bool
	Silenced bool
	Disarmed bool
	Blinded  bool
	Grounded bool
	Slowed   bool
}

func (c CCStatus) CanMove() bool       { return !(c.Stunned || c.Rooted) }
func (c CCStatus) CanAttack() bool     { return !(c.Stunned || c.Disarmed || c.Blinded) }
func (c CCStatus) CanCast() bool       { return !(c.Stunned || c.Silenced) }
func (c CCStatus) CanUseMobility() bool {
	return c.CanMove() && c.CanCast() && !c.Grounded
}

// RecomputeCC derives CCStatus from the currently active effects by
// looking up each effect's CC tag in the content registry.
func RecomputeCC(effects []ActiveEffect, registry *content.Registry) CCStatus {
	var status CCStatus
	for _, ae := range effects {
		def, ok := registry.Effect(ae.EffectID)
		if !ok {
			continue
		}
		switch def.CC {
		case content.CCStun:
			status.Stunned = true
		case content.CCRoot:
			status.Rooted = true
		case content.CCSilence:
			status.Silenced = true
		case content.CCDisarm:
			status.Disarmed = true
		case content.CCBlind:
			status.Blinded = true
		case content.CCGround:
			status.Grounded = true
		case content.CCSlow:
			status.Slowed = true
		}
	}
	return status
}

// ApplyEffect applies or refreshes/stacks one effect instance on the
// target's effect list per the effect's stack policy, enforcing the
// invariant of at most one instance per (effectId, target) pair.
func ApplyEffect(effects []ActiveEffect, effectID, sourceID string, duration float64, def content.EffectDef) []ActiveEffect {
	for i := range effects {
		if effects[i].EffectID != effectID {
			continue
		}
		if def.RefreshOnly || def.MaxStacks <= 1 {
			effects[i].RemainingDuration = duration
			effects[i].InitialDuration = duration
			effects[i].SourceID = sourceID
			return effects
		}
		if effects[i].Stacks < def.MaxStacks {
			effects[i].Stacks++
		}
		effects[i].RemainingDuration = duration
		effects[i].InitialDuration = duration
		return effects
	}

	ne := ActiveEffect{
		EffectID:          effectID,
		SourceID:          sourceID,
		RemainingDuration: duration,
		InitialDuration:   duration,
		Stacks:            1,
	}
	if def.TickRate > 0 {
		ne.TickRate = def.TickRate
		ne.NextTickIn = def.TickRate
	}
	return append(effects, ne)
}

// WithTickMagnitude sets the per-tick damage/heal a periodic effect
// deals its holder, once the caller (an ability or zone handler) has
// computed it; the effect definition itself stays magnitude-agnostic
// per its doc comment. Applied after ApplyEffect, matched by id since
// at most one instance per (effectId, target) exists.
func WithTickMagnitude(effects []ActiveEffect, effectID string, tickDamage, tickHeal float64, damageType DamageType) []ActiveEffect {
	for i := range effects {
		if effects[i].EffectID == effectID {
			effects[i].TickDamage = tickDamage
			effects[i].TickHeal = tickHeal
			effects[i].TickDamageType = damageType
			break
		}
	}
	return effects
}

// RemoveEffect drops every instance of effectID from the list,
// returning the new slice. Used by the round-trip law
// applyEffect-then-removeEffect.
func RemoveEffect(effects []ActiveEffect, effectID string) []ActiveEffect {
	kept := effects[:0]
	for _, e := range effects {
		if e.EffectID != effectID {
			kept = append(kept, e)
		}
	}
	return kept
}

// TickEffects advances every active effect's remaining duration by dt,
// dropping any that have expired, and returns the ids of the effects
// that crossed a periodic-tick boundary this call so the caller can
// apply their damage/heal. An effect id appears at most once per call,
// even when dt spans more than one TickRate.
func TickEffects(effects []ActiveEffect, dt float64) ([]ActiveEffect, []string) {
	var due []string
	kept := effects[:0]
	for _, e := range effects {
		e.RemainingDuration -= dt
		if e.RemainingDuration <= 0 {
			continue
		}
		if e.NextTickIn > 0 {
			e.NextTickIn -= dt
			if e.NextTickIn <= 0 {
				due = append(due, e.EffectID)
				if e.TickRate > 0 {
					e.NextTickIn += e.TickRate
				}
			}
		}
		kept = append(kept, e)
	}
	return kept, due
}

// TickModifiers advances every stat modifier's remaining duration by
// dt using accumulated game time, dropping expired ones. A
// RemainingDuration <= 0 at entry means permanent and is left
// untouched (e.g. item-granted stats).
func TickModifiers(mods []StatModifier, dt float64) []StatModifier {
	kept := mods[:0]
	for _, m := range mods {
		if m.RemainingDuration > 0 {
			m.RemainingDuration -= dt
			if m.RemainingDuration <= 0 {
				continue
			}
		}
		kept = append(kept, m)
	}
	return kept
}

// SumStat totals the flat and percent contributions of every modifier
// tagged with the given stat name.
func SumStat(mods []StatModifier, stat string) (flat, percent float64) {
	for _, m := range mods {
		if m.Stat == stat {
			flat += m.Flat
			percent += m.Percent
		}
	}
	return
}
