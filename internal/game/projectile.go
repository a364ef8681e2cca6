package game

import (
	"math"

	"github.com/riftforge/moba-server/internal/content"
)

// Projectile is a moving, ability-spawned entity that travels in a
// straight line from its spawn point until it hits a non-piercing
// target, exceeds its max travel distance, or expires.
type Projectile struct {
	Base

	OwnerID      string
	DirX, DirY   float64
	Speed        float64
	Traveled     float64
	MaxDistance  float64
	Damage       float64
	DamageType   DamageType
	AppliesEffect string
	EffectDuration float64
	HitRadius    float64
}

func (p *Projectile) Radius() float64 { return p.HitRadius }

// spawnAbilityProjectile is the deferred handler an ability schedules
// via the keyframe pattern: origin is captured here, at spawn time,
// not at cast time, per §4.3.
func spawnAbilityProjectile(c *Champion, spec content.AbilitySpec, rank int, targetX, targetY float64, targetEntityID string, room Room) {
	tx, ty := targetX, targetY
	if targetEntityID != "" {
		if target, ok := room.Index().Get(targetEntityID); ok {
			tx, ty = target.Position()
		}
	}
	d := dist(c.x, c.y, tx, ty)
	if d == 0 {
		d = 1
	}
	dirX, dirY := (tx-c.x)/d, (ty-c.y)/d

	proj := &Projectile{
		Base:           NewBase(room.NewEntityID(), EntityProjectile, c.Side(), c.x, c.y, 1),
		OwnerID:        c.ID(),
		DirX:           dirX,
		DirY:           dirY,
		Speed:          1400,
		MaxDistance:    spec.RangeAt(rank),
		Damage:         40 + float64(rank)*18 + c.Stat("ability_power")*0.5,
		DamageType:     DamageMagical,
		AppliesEffect:  spec.AppliesEffect,
		EffectDuration: spec.EffectDurationAt(rank),
		HitRadius:      40,
	}
	room.Spawn(proj)
}

func (p *Projectile) Update(dt float64, room Room) {
	step := p.Speed * dt
	p.x += p.DirX * step
	p.y += p.DirY * step
	p.Traveled += step
	p.MarkChanged(room.Tick())

	if p.Traveled >= p.MaxDistance {
		p.MarkForRemoval()
		return
	}

	for _, e := range room.Index().All() {
		if e.ID() == p.OwnerID || e.Side() == p.Side() || e.IsDead() {
			continue
		}
		ex, ey := e.Position()
		if math.Hypot(ex-p.x, ey-p.y) > p.HitRadius {
			continue
		}
		e.TakeDamage(p.Damage, p.DamageType, p.OwnerID, room)
		if p.AppliesEffect != "" {
			if tc, ok := e.(*Champion); ok {
				if def, ok := room.Registry().Effect(p.AppliesEffect); ok {
					tc.ActiveEffects = ApplyEffect(tc.ActiveEffects, p.AppliesEffect, p.OwnerID, p.EffectDuration, def)
				}
			}
		}
		p.MarkForRemoval()
		return
	}
}

func (p *Projectile) TakeDamage(amount float64, damageType DamageType, sourceID string, room Room) float64 {
	return 0
}

func (p *Projectile) ToSnapshot() Snapshot {
	return p.BaseSnapshot()
}
