package game

import (
	"math"

	"github.com/riftforge/moba-server/internal/content"
)

// Zone is a ground-targeted area that ticks at its own rate, applying
// damage or heals to matching sides within its radius for its
// lifetime.
type Zone struct {
	Base

	OwnerID      string
	Radius       float64
	Duration     float64
	TickRate     float64
	nextTick     float64
	Damage       float64
	Heal         float64
	DamageType   DamageType
	AffectsEnemies bool
	AffectsAllies  bool

	AppliesEffect  string
	EffectDuration float64
}

func (z *Zone) Radius_() float64 { return z.Radius }
func (z *Zone) Update(dt float64, room Room) {
	z.Duration -= dt
	if z.Duration <= 0 {
		z.MarkForRemoval()
		return
	}
	z.nextTick -= dt
	if z.nextTick > 0 {
		return
	}
	z.nextTick = z.TickRate

	for _, e := range room.Index().All() {
		if e.IsDead() || e.ID() == z.ID() {
			continue
		}
		isEnemy := e.Side() != z.Side() && e.Side() != SideNeutral
		isAlly := e.Side() == z.Side()
		if isEnemy && !z.AffectsEnemies {
			continue
		}
		if isAlly && !z.AffectsAllies {
			continue
		}
		ex, ey := e.Position()
		if math.Hypot(ex-z.x, ey-z.y) > z.Radius {
			continue
		}
		if z.Damage > 0 && (isEnemy || (!isAlly && z.AffectsEnemies)) {
			e.TakeDamage(z.Damage, z.DamageType, z.OwnerID, room)
			if z.AppliesEffect != "" {
				if tc, ok := e.(*Champion); ok {
					if def, ok := room.Registry().Effect(z.AppliesEffect); ok {
						tc.ActiveEffects = ApplyEffect(tc.ActiveEffects, z.AppliesEffect, z.OwnerID, z.EffectDuration, def)
						if def.TickRate > 0 {
							tc.ActiveEffects = WithTickMagnitude(tc.ActiveEffects, z.AppliesEffect, z.Damage*0.3, 0, z.DamageType)
						}
					}
				}
			}
		}
		if z.Heal > 0 && isAlly {
			if b, ok := e.(interface{ Heal(float64) }); ok {
				b.Heal(z.Heal)
			}
		}
	}
}

func (z *Zone) TakeDamage(amount float64, damageType DamageType, sourceID string, room Room) float64 {
	return 0
}

func (z *Zone) ToSnapshot() Snapshot {
	return z.BaseSnapshot()
}

// Trap is a placed entity that springs on the first live entity not on
// its side inside its trigger radius: a champion caught in it is
// rooted, the owner receives 25 gold, and the trap removes itself. The
// trap is not hidden from enemy vision, and it awards no soul stacks.
type Trap struct {
	Base

	OwnerID       string
	TriggerRadius float64
	Duration      float64
	RootDuration  float64
}

func (t *Trap) Update(dt float64, room Room) {
	t.Duration -= dt
	if t.Duration <= 0 {
		t.MarkForRemoval()
		return
	}
	for _, e := range room.Index().All() {
		if e.Side() == t.Side() || e.IsDead() {
			continue
		}
		ex, ey := e.Position()
		if math.Hypot(ex-t.x, ey-t.y) > t.TriggerRadius {
			continue
		}
		if tc, ok := e.(*Champion); ok {
			if def, ok := room.Registry().Effect(string(content.CCRoot)); ok {
				tc.ActiveEffects = ApplyEffect(tc.ActiveEffects, string(content.CCRoot), t.OwnerID, t.RootDuration, def)
			}
		}
		if owner, ok := room.Index().Get(t.OwnerID); ok {
			if oc, ok := owner.(*Champion); ok {
				oc.Gold += 25
			}
		}
		t.MarkForRemoval()
		return
	}
}

func (t *Trap) TakeDamage(amount float64, damageType DamageType, sourceID string, room Room) float64 {
	return 0
}

func (t *Trap) ToSnapshot() Snapshot {
	return t.BaseSnapshot()
}

// WardType records which kind of ward was placed. Fog of war treats
// both kinds alike: a ward grants vision within its SightRange and is
// visible to enemies like any other unit. NewWard places stealth wards
// only.
type WardType string

const (
	WardStealth   WardType = "stealth"
	WardFarsight  WardType = "farsight"
)

// Ward is a placed vision source; it dies to damage or times out.
type Ward struct {
	Base

	OwnerID    string
	Kind       WardType
	SightRange float64
	Duration   float64
}

// NewWard constructs a stealth ward placed by a PLACE_WARD input, with
// a fixed 90s lifetime and 900 sight range; these values are set here
// and are not read from content data.
func NewWard(id, ownerID string, side Side, x, y float64) *Ward {
	return &Ward{
		Base:       NewBase(id, EntityWard, side, x, y, 1),
		OwnerID:    ownerID,
		Kind:       WardStealth,
		SightRange: 900,
		Duration:   90,
	}
}

func (w *Ward) Update(dt float64, room Room) {
	w.Duration -= dt
	if w.Duration <= 0 {
		w.MarkForRemoval()
	}
}

func (w *Ward) TakeDamage(amount float64, damageType DamageType, sourceID string, room Room) float64 {
	removed := w.ApplyRawDamage(amount)
	if w.IsDead() {
		w.MarkForRemoval()
	}
	return removed
}

func (w *Ward) ToSnapshot() Snapshot {
	return w.BaseSnapshot()
}

func spawnGroundZone(c *Champion, spec content.AbilitySpec, rank int, req CastRequest, room Room) {
	z := &Zone{
		Base:           NewBase(room.NewEntityID(), EntityZone, c.Side(), req.TargetX, req.TargetY, 1),
		OwnerID:        c.ID(),
		Radius:         250,
		Duration:       maxFloat(spec.EffectDurationAt(rank), 2),
		TickRate:       1.0,
		AppliesEffect:  spec.AppliesEffect,
		EffectDuration: spec.EffectDurationAt(rank),
	}
	if hasFamily(spec.Families, content.EffectDamage) {
		z.Damage = 30 + float64(rank)*12
		z.DamageType = DamageMagical
		z.AffectsEnemies = true
	}
	if hasFamily(spec.Families, content.EffectHeal) {
		z.Heal = 15 + float64(rank)*6
		z.AffectsAllies = true
	}
	room.Spawn(z)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func spawnTrap(c *Champion, spec content.AbilitySpec, rank int, req CastRequest, room Room) {
	t := &Trap{
		Base:          NewBase(room.NewEntityID(), EntityTrap, c.Side(), req.TargetX, req.TargetY, 1),
		OwnerID:       c.ID(),
		TriggerRadius: 60,
		Duration:      90,
		RootDuration:  1.5,
	}
	room.Spawn(t)
}
