package game

import (
	"math"

	"github.com/riftforge/moba-server/internal/content"
)

// CastError is the typed failure taxonomy for the cast pipeline; the
// simulation never relies on exception control flow, every validation
// path returns one of these.
type CastError string

const (
	CastOK              CastError = ""
	CastNotLearned      CastError = "not_learned"
	CastStunned         CastError = "stunned"
	CastSilenced        CastError = "silenced"
	CastOnCooldown      CastError = "on_cooldown"
	CastNotEnoughMana   CastError = "not_enough_mana"
	CastInvalidTarget   CastError = "invalid_target"
	CastOutOfRange      CastError = "out_of_range"
)

// CastRequest is the validated input the input handler builds from a
// client ABILITY frame before invoking the cast pipeline.
type CastRequest struct {
	Slot           string // "Q","W","E","R"
	TargetEntityID string
	TargetX, TargetY float64
	HasTargetPos   bool
}

// Slot returns the ability slot named "Q"/"W"/"E"/"R", or nil for any
// other name. Exported for the input handler's LEVEL_UP dispatch.
func (c *Champion) Slot(name string) *AbilitySlot { return c.slot(name) }

func (c *Champion) slot(name string) *AbilitySlot {
	switch name {
	case "Q":
		return &c.Q
	case "W":
		return &c.W
	case "E":
		return &c.E
	case "R":
		return &c.R
	}
	return nil
}

// TryCast runs the cast pipeline in the order the spec fixes, failing
// with the first matching reason.
func TryCast(c *Champion, req CastRequest, room Room) CastError {
	slot := c.slot(req.Slot)
	if slot == nil || slot.Rank <= 0 {
		return CastNotLearned
	}

	if c.CC.Stunned {
		return CastStunned
	}
	if c.CC.Silenced {
		return CastSilenced
	}

	spec, ok := room.Registry().Ability(slot.AbilityID)
	if !ok {
		return CastNotLearned
	}

	if recastAvailable(slot, spec) {
		executeRecast(c, slot, spec, room)
		return CastOK
	}

	if slot.CooldownRemaining > 0 {
		return CastOnCooldown
	}

	manaCost := spec.ManaCostAt(slot.Rank)
	if c.Resource < manaCost {
		return CastNotEnoughMana
	}

	if err := validateTarget(c, spec, req, room); err != CastOK {
		return err
	}

	c.Resource -= manaCost
	slot.CooldownTotal = spec.CooldownAt(slot.Rank)
	slot.CooldownRemaining = slot.CooldownTotal
	c.InCombat = true
	if !spec.IsStealth {
		c.stealthed = false
	}

	room.Emit(NewEvent(EventAbilityCast, room.Tick(), c.PlayerID, AbilityCastPayload{
		CasterID: c.ID(), Slot: req.Slot, AbilityID: spec.ID,
	}))
	room.PassiveBus().Fire(content.TriggerOnAbilityCast, c, room, TriggerPayload{AbilityID: spec.ID})

	executeAbility(c, slot, spec, req, room)
	return CastOK
}

func recastAvailable(slot *AbilitySlot, spec content.AbilitySpec) bool {
	return spec.Recastable && slot.HasHitPosition && slot.RecastWindow > 0
}

func executeRecast(c *Champion, slot *AbilitySlot, spec content.AbilitySpec, room Room) {
	slot.RecastCount++
	dispatchEffectFamilies(c, slot, spec, CastRequest{TargetX: slot.HitX, TargetY: slot.HitY, HasTargetPos: true}, room)
	slot.HasHitPosition = false
	slot.RecastWindow = 0
	c.AbilityScheduler.CancelTag(ActionRecastExpire)
}

// validateTarget implements the target-validity step, one branch per
// content.TargetType.
func validateTarget(c *Champion, spec content.AbilitySpec, req CastRequest, room Room) CastError {
	switch spec.TargetType {
	case content.TargetSelf, content.TargetNone:
		return CastOK

	case content.TargetEnemy, content.TargetAlly, content.TargetUnit:
		target, ok := room.Index().Get(req.TargetEntityID)
		if !ok || target.IsDead() {
			return CastInvalidTarget
		}
		if spec.TargetType == content.TargetEnemy && target.Side() == c.Side() {
			return CastInvalidTarget
		}
		if spec.TargetType == content.TargetAlly && target.Side() != c.Side() {
			return CastInvalidTarget
		}
		if len(spec.AllowedTargets) > 0 && !allowedType(spec.AllowedTargets, target.Type()) {
			return CastInvalidTarget
		}
		tx, ty := target.Position()
		if dist(c.x, c.y, tx, ty) > spec.RangeAt(c.slotRank(spec)) {
			return CastOutOfRange
		}
		return CastOK

	case content.TargetSkillshot:
		if !req.HasTargetPos {
			return CastInvalidTarget
		}
		return CastOK

	case content.TargetGround:
		if !req.HasTargetPos {
			return CastInvalidTarget
		}
		if dist(c.x, c.y, req.TargetX, req.TargetY) > spec.RangeAt(c.slotRank(spec)) {
			return CastOutOfRange
		}
		return CastOK
	}
	return CastInvalidTarget
}

func (c *Champion) slotRank(spec content.AbilitySpec) int {
	if s := c.slot(spec.Slot); s != nil {
		return s.Rank
	}
	return 1
}

func allowedType(allowed []string, t EntityType) bool {
	for _, a := range allowed {
		if EntityType(a) == t {
			return true
		}
	}
	return false
}

func dist(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

// executeAbility dispatches the ability's effect families, scheduling
// a deferred projectile spawn if the ability specifies a keyframe
// delay instead of applying immediately.
func executeAbility(c *Champion, slot *AbilitySlot, spec content.AbilitySpec, req CastRequest, room Room) {
	if spec.KeyframeDelay > 0 && hasFamily(spec.Families, content.EffectProjectile) {
		capturedTX, capturedTY := req.TargetX, req.TargetY
		capturedTargetID := req.TargetEntityID
		rank := slot.Rank
		c.AbilityScheduler.Schedule(ActionProjectileSpawn, spec.KeyframeDelay, func(room Room) {
			if !c.CC.CanCast() {
				return
			}
			spawnAbilityProjectile(c, spec, rank, capturedTX, capturedTY, capturedTargetID, room)
		})
		return
	}
	dispatchEffectFamilies(c, slot, spec, req, room)

	if spec.Recastable {
		slot.HasHitPosition = true
		slot.HitX, slot.HitY = req.TargetX, req.TargetY
		window := spec.RecastWindow
		if window <= 0 {
			window = 3.0
		}
		slot.RecastWindow = window
		c.AbilityScheduler.Schedule(ActionRecastExpire, window, func(room Room) {
			slot.HasHitPosition = false
			slot.RecastWindow = 0
		})
	}
}

func hasFamily(families []content.EffectFamily, f content.EffectFamily) bool {
	for _, x := range families {
		if x == f {
			return true
		}
	}
	return false
}

func dispatchEffectFamilies(c *Champion, slot *AbilitySlot, spec content.AbilitySpec, req CastRequest, room Room) {
	rank := slot.Rank
	for _, fam := range spec.Families {
		switch fam {
		case content.EffectDamage:
			applyTargetedDamage(c, spec, rank, req, room)
		case content.EffectHeal:
			c.Heal(spec.EffectDurationAt(rank) * 10)
		case content.EffectShield:
			c.Shields = append(c.Shields, Shield{Amount: 80 + 20*float64(rank), RemainingDuration: 3, SourceID: c.ID(), ShieldType: DamageTrue})
		case content.EffectDash:
			startDash(c, spec, rank, req)
		case content.EffectTeleport:
			x, y := clampRange(c.x, c.y, req.TargetX, req.TargetY, spec.RangeAt(rank))
			c.SetPosition(x, y, room.Tick())
		case content.EffectGroundZone:
			spawnGroundZone(c, spec, rank, req, room)
		case content.EffectTrap:
			spawnTrap(c, spec, rank, req, room)
		case content.EffectStatTransform:
			c.StatModifiers = append(c.StatModifiers, StatModifier{Source: spec.ID, Stat: "movement_speed", Percent: 0.1, RemainingDuration: spec.EffectDurationAt(rank)})
		case content.EffectAura:
			// Auras are modeled as periodic ground zones centered on the
			// caster; spawning handled identically to EffectGroundZone.
			spawnGroundZone(c, spec, rank, CastRequest{TargetX: c.x, TargetY: c.y, HasTargetPos: true}, room)
		}
	}
}

func applyTargetedDamage(c *Champion, spec content.AbilitySpec, rank int, req CastRequest, room Room) {
	target, ok := room.Index().Get(req.TargetEntityID)
	if !ok {
		return
	}
	baseDamage := 40 + float64(rank)*18 + c.Stat("ability_power")*0.5
	dealt := target.TakeDamage(baseDamage, DamageMagical, c.ID(), room)
	room.PassiveBus().Fire(content.TriggerOnAbilityHit, c, room, TriggerPayload{
		Target: championOrNil(target), DamageAmount: dealt, DamageType: DamageMagical, SourceID: c.ID(), AbilityID: spec.ID,
	})
	if spec.AppliesEffect != "" {
		if tc, ok := target.(*Champion); ok {
			if def, ok := room.Registry().Effect(spec.AppliesEffect); ok {
				tc.ActiveEffects = ApplyEffect(tc.ActiveEffects, spec.AppliesEffect, c.ID(), spec.EffectDurationAt(rank), def)
				if def.TickRate > 0 {
					tickDamage := 8 + float64(rank)*4 + c.Stat("ability_power")*0.15
					tc.ActiveEffects = WithTickMagnitude(tc.ActiveEffects, spec.AppliesEffect, tickDamage, 0, DamageMagical)
				}
			}
		}
	}
}

func championOrNil(e Entity) *Champion {
	if c, ok := e.(*Champion); ok {
		return c
	}
	return nil
}

func clampRange(fromX, fromY, toX, toY, maxRange float64) (float64, float64) {
	d := dist(fromX, fromY, toX, toY)
	if d <= maxRange || d == 0 {
		return toX, toY
	}
	scale := maxRange / d
	return fromX + (toX-fromX)*scale, fromY + (toY-fromY)*scale
}

func startDash(c *Champion, spec content.AbilitySpec, rank int, req CastRequest) {
	x, y := clampRange(c.x, c.y, req.TargetX, req.TargetY, spec.RangeAt(rank))
	d := dist(c.x, c.y, x, y)
	dirRad := math.Atan2(y-c.y, x-c.x)
	c.Forced = &ForcedMovement{
		Kind:           ForcedDash,
		DirectionRad:   dirRad,
		Distance:       d,
		Duration:       0.25,
		HitboxRadius:   80,
		Damage:         30 + float64(rank)*15,
		DamageType:     DamagePhysical,
		AppliesEffect:  spec.AppliesEffect,
		EffectDuration: spec.EffectDurationAt(rank),
		HitEntities:    make(map[string]bool),
	}
}

// spawnAbilityProjectile and spawnGroundZone/spawnTrap are implemented
// in projectile.go and zone.go respectively, kept here only as the
// dispatch call sites the ability engine uses.
