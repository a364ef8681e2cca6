package game

import (
	"math"

	"github.com/riftforge/moba-server/internal/content"
)

// AbilitySlot is one of a champion's four ability slots (Q/W/E/R): the
// mutable per-champion state layered on top of the immutable
// content.AbilitySpec looked up by id.
type AbilitySlot struct {
	AbilityID         string
	Rank              int
	CooldownRemaining float64
	CooldownTotal     float64
	CastTimeRemaining float64
	RecastCount       int
	RecastWindow      float64
	HasHitPosition    bool
	HitX, HitY        float64
}

// ForcedMovementKind distinguishes a dash (self-propelled) from a
// knockback (externally imposed) forced movement.
type ForcedMovementKind string

const (
	ForcedDash      ForcedMovementKind = "dash"
	ForcedKnockback ForcedMovementKind = "knockback"
)

// ForcedMovement overrides normal movement gating for its duration;
// dash collisions apply at most once per enemy entity, tracked via
// HitEntities.
type ForcedMovement struct {
	Kind         ForcedMovementKind
	DirectionRad float64
	Distance     float64
	Duration     float64
	Elapsed      float64
	HitboxRadius float64
	Damage       float64
	DamageType   DamageType
	AppliesEffect string
	EffectDuration float64
	HitEntities  map[string]bool
}

// Trinket is the ward-placement charge mechanic shared by every
// champion regardless of kit.
type Trinket struct {
	Charges         int
	MaxCharges      int
	Cooldown        float64
	RechargeTimer   float64
	RechargePeriod  float64
}

// ItemSlot is one of a champion's six nullable inventory slots.
type ItemSlot struct {
	ItemID            string // empty means the slot is empty
	PassiveCooldown   float64
	NextIntervalTick  uint64
}

// RecallState tracks an in-progress recall-to-base channel.
type RecallState struct {
	Recalling bool
	Progress  float64 // 0..1
}

// Champion is the player-controlled entity: the richest entity
// variant, carrying the ability kit, inventory, crowd control, and
// the per-champion deferred-action schedulers.
type Champion struct {
	Base

	PlayerID    string
	ChampionDef content.ChampionDef

	Resource, MaxResource float64
	Level                 int
	XP, XPToNext          float64
	SkillPoints           int

	Q, W, E, R AbilitySlot

	StatModifiers []StatModifier
	Shields       []Shield
	ActiveEffects []ActiveEffect
	CC            CCStatus

	Items []ItemSlot
	Gold  int

	InCombat       bool
	TimeSinceCombat float64

	Recall RecallState

	Forced *ForcedMovement

	FacingRad float64

	TrinketState Trinket

	AttackScheduler  *Scheduler
	AbilityScheduler *Scheduler

	Passive PassiveState

	MoveTargetX, MoveTargetY   float64
	HasMoveTarget              bool
	AttackTargetID             string
	FollowTargetID             string
	AttackCooldownRemaining    float64

	RespawnTimerRemaining float64

	Kills, Deaths, Assists, CS int

	stealthed bool
}

// ChampionSnapshot is the champion-specific payload of Snapshot,
// carrying every field the wire contract in §6 names.
type ChampionSnapshot struct {
	ChampionID  string
	PlayerID    string
	TargetX, TargetY float64
	HasTarget   bool
	TargetEntityID string

	Health, MaxHealth       float64
	Resource, MaxResource   float64
	Level                   int
	Experience              float64
	ExperienceToNextLevel   float64
	SkillPoints             int

	AttackDamage  float64
	AbilityPower  float64
	Armor         float64
	MagicResist   float64
	AttackSpeed   float64
	MovementSpeed float64

	IsDead         bool
	RespawnTimer   float64
	IsRecalling    bool
	RecallProgress float64

	Abilities map[string]AbilitySlot // "Q","W","E","R"
	Passive   PassiveState

	ActiveEffects []ActiveEffect
	Shields       []Shield
	Items         []ItemSlot
	Gold          int

	Kills, Deaths, Assists, CS int

	TrinketCharges    int
	TrinketMaxCharges int
	TrinketCooldown   float64
	RechargeProgress  float64
}

const maxInventorySlots = 6

// NewChampion constructs a champion at the given spawn point with the
// level-1 stat line derived from its content definition.
func NewChampion(id, playerID string, side Side, def content.ChampionDef, spawnX, spawnY float64) *Champion {
	c := &Champion{
		Base:             NewBase(id, EntityChampion, side, spawnX, spawnY, def.BaseHealth),
		PlayerID:         playerID,
		ChampionDef:      def,
		Resource:         def.BaseResource,
		MaxResource:      def.BaseResource,
		Level:            1,
		XPToNext:         280,
		Items:            make([]ItemSlot, maxInventorySlots),
		AttackScheduler:  NewScheduler(),
		AbilityScheduler: NewScheduler(),
		TrinketState: Trinket{
			Charges:        2,
			MaxCharges:     2,
			RechargePeriod: 180,
		},
	}
	c.Q = AbilitySlot{AbilityID: def.AbilityIDs[0]}
	c.W = AbilitySlot{AbilityID: def.AbilityIDs[1]}
	c.E = AbilitySlot{AbilityID: def.AbilityIDs[2]}
	c.R = AbilitySlot{AbilityID: def.AbilityIDs[3]}
	return c
}

// statBase returns the champion's level-scaled base value for stat.
func (c *Champion) statBase(stat string) float64 {
	lvl := float64(c.Level - 1)
	switch stat {
	case "attack_damage":
		return c.ChampionDef.BaseAD + c.ChampionDef.ADPerLvl*lvl
	case "armor":
		return c.ChampionDef.BaseArmor + c.ChampionDef.ArmorPerLvl*lvl
	case "magic_resist":
		return c.ChampionDef.BaseMR + c.ChampionDef.MRPerLvl*lvl
	case "attack_speed":
		return c.ChampionDef.AttackSpeed
	case "movement_speed":
		return c.ChampionDef.MoveSpeed
	case "attack_range":
		return c.ChampionDef.AttackRange
	case "ability_power":
		return 0
	}
	return 0
}

// Stat returns a derived combat stat: the level-scaled base plus the
// flat/percent contributions of active stat modifiers. Items in the
// inventory do not contribute.
func (c *Champion) Stat(stat string) float64 {
	flat, percent := SumStat(c.StatModifiers, stat)
	return (c.statBase(stat) + flat) * (1 + percent)
}

// SightRange is the champion's vision radius, used by fog-of-war
// recompute to build the tick's vision-source list.
func (c *Champion) SightRange() float64 { return c.ChampionDef.SightRange }

// Stealthed reports whether the champion is currently hidden from
// enemy vision (e.g. mid-cast on a stealth ability).
func (c *Champion) Stealthed() bool { return c.stealthed }

// Update advances one tick of champion logic: cooldowns, effects,
// forced movement, schedulers, and recall progress; health and resource
// do not regenerate. Movement goes toward MoveTargetX/Y as set by the
// input handler. AttackTargetID and FollowTargetID are recorded by the
// input handler, but Update neither moves toward nor attacks them.
func (c *Champion) Update(dt float64, room Room) {
	if c.IsDead() {
		c.updateRespawn(dt, room)
		return
	}

	var due []string
	c.ActiveEffects, due = TickEffects(c.ActiveEffects, dt)
	c.applyPeriodicEffects(due, room)
	c.StatModifiers = TickModifiers(c.StatModifiers, dt)
	c.CC = RecomputeCC(c.ActiveEffects, room.Registry())
	TickPassiveDecay(&c.Passive, dt)

	if c.Q.CooldownRemaining > 0 {
		c.Q.CooldownRemaining -= dt
	}
	if c.W.CooldownRemaining > 0 {
		c.W.CooldownRemaining -= dt
	}
	if c.E.CooldownRemaining > 0 {
		c.E.CooldownRemaining -= dt
	}
	if c.R.CooldownRemaining > 0 {
		c.R.CooldownRemaining -= dt
	}
	if c.AttackCooldownRemaining > 0 {
		c.AttackCooldownRemaining -= dt
	}

	if c.InCombat {
		c.TimeSinceCombat = 0
	} else {
		c.TimeSinceCombat += dt
	}
	if c.TimeSinceCombat > 5 {
		c.InCombat = false
	}

	c.AttackScheduler.Tick(dt, room)
	c.AbilityScheduler.Tick(dt, room)

	c.updateForcedMovement(dt, room)
	c.updateRecall(dt, room)
	c.updateMovement(dt, room)

	if c.TrinketState.Charges < c.TrinketState.MaxCharges {
		c.TrinketState.RechargeTimer += dt
		if c.TrinketState.RechargeTimer >= c.TrinketState.RechargePeriod {
			c.TrinketState.RechargeTimer = 0
			c.TrinketState.Charges++
		}
	}
	if c.TrinketState.Cooldown > 0 {
		c.TrinketState.Cooldown -= dt
	}
}

// applyPeriodicEffects resolves each effect id TickEffects reported as
// due this tick to its stored per-tick magnitude and applies it to the
// champion carrying it (damage-over-time/heal-over-time, e.g. burn).
func (c *Champion) applyPeriodicEffects(due []string, room Room) {
	for _, id := range due {
		for i := range c.ActiveEffects {
			if c.ActiveEffects[i].EffectID != id {
				continue
			}
			e := c.ActiveEffects[i]
			if e.TickDamage > 0 {
				c.TakeDamage(e.TickDamage, e.TickDamageType, e.SourceID, room)
			}
			if e.TickHeal > 0 {
				c.Heal(e.TickHeal)
			}
			break
		}
	}
}

func (c *Champion) updateRespawn(dt float64, room Room) {
	if c.RespawnTimerRemaining <= 0 {
		return
	}
	c.RespawnTimerRemaining -= dt
	if c.RespawnTimerRemaining <= 0 {
		c.respawn(room)
	}
}

func (c *Champion) respawn(room Room) {
	c.health = c.maxHealth
	c.dead = false
	c.Resource = c.MaxResource
	c.Forced = nil
	c.Recall = RecallState{}
	c.AttackTargetID = ""
	c.FollowTargetID = ""
	c.HasMoveTarget = false
	c.MarkChanged(room.Tick())
}

// respawnDelay scales with level per the spec's "respawns in place on
// death after a level-scaled timer" lifecycle rule.
func (c *Champion) respawnDelay() float64 {
	return 6 + float64(c.Level)*2.5
}

func (c *Champion) updateForcedMovement(dt float64, room Room) {
	fm := c.Forced
	if fm == nil {
		return
	}
	prevProgress := fm.Elapsed / fm.Duration
	fm.Elapsed += dt
	progress := fm.Elapsed / fm.Duration
	if progress > 1 {
		progress = 1
	}
	dist := fm.Distance * (progress - prevProgress)
	if fm.Duration <= 0 {
		dist = fm.Distance
	}
	x := c.x + math.Cos(fm.DirectionRad)*dist
	y := c.y + math.Sin(fm.DirectionRad)*dist
	c.SetPosition(x, y, room.Tick())

	if fm.HitboxRadius > 0 {
		c.resolveForcedMovementHits(fm, room)
	}

	if fm.Elapsed >= fm.Duration {
		c.Forced = nil
	}
}

// resolveForcedMovementHits applies the forced movement's on-hit
// damage/effect to enemies inside its hitbox that are not already in
// HitEntities, then adds them — at-most-once per forced movement per
// the tick's collision/forced-movement resolution phase.
func (c *Champion) resolveForcedMovementHits(fm *ForcedMovement, room Room) {
	for _, e := range room.Index().All() {
		if e.Side() == c.Side() || e.IsDead() {
			continue
		}
		if fm.HitEntities[e.ID()] {
			continue
		}
		ex, ey := e.Position()
		dx, dy := ex-c.x, ey-c.y
		if dx*dx+dy*dy > fm.HitboxRadius*fm.HitboxRadius {
			continue
		}
		fm.HitEntities[e.ID()] = true
		if fm.Damage > 0 {
			e.TakeDamage(fm.Damage, fm.DamageType, c.ID(), room)
		}
		if fm.AppliesEffect != "" {
			if target, ok := e.(*Champion); ok {
				if def, ok := room.Registry().Effect(fm.AppliesEffect); ok {
					target.ActiveEffects = ApplyEffect(target.ActiveEffects, fm.AppliesEffect, c.ID(), fm.EffectDuration, def)
				}
			}
		}
	}
}

func (c *Champion) updateRecall(dt float64, room Room) {
	if !c.Recall.Recalling {
		return
	}
	if c.InCombat {
		c.Recall.Recalling = false
		c.Recall.Progress = 0
		return
	}
	c.Recall.Progress += dt / 8.0
	if c.Recall.Progress >= 1 {
		c.Recall.Recalling = false
		c.Recall.Progress = 0
		sx, sy := spawnPointFor(c.Side())
		c.SetPosition(sx, sy, room.Tick())
	}
}

func (c *Champion) updateMovement(dt float64, room Room) {
	if c.Forced != nil || c.Recall.Recalling {
		return
	}
	if !c.CC.CanMove() {
		return
	}
	if !c.HasMoveTarget {
		return
	}
	speed := c.Stat("movement_speed")
	dx := c.MoveTargetX - c.x
	dy := c.MoveTargetY - c.y
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		c.HasMoveTarget = false
		return
	}
	step := speed * dt
	if step >= dist {
		c.SetPosition(c.MoveTargetX, c.MoveTargetY, room.Tick())
		c.HasMoveTarget = false
		return
	}
	nx := c.x + dx/dist*step
	ny := c.y + dy/dist*step
	c.FacingRad = math.Atan2(dy, dx)
	c.SetPosition(nx, ny, room.Tick())
}

// TakeDamage implements Entity: resistance reduction, shield
// absorption, then health reduction, death handling, and the
// on_take_damage passive trigger.
func (c *Champion) TakeDamage(amount float64, damageType DamageType, sourceID string, room Room) float64 {
	if c.IsDead() {
		return 0
	}
	applied := ResolveDamage(amount, damageType, c.Stat("armor"), c.Stat("magic_resist"), &c.Shields)
	removed := c.ApplyRawDamage(applied)
	c.InCombat = true
	c.MarkChanged(room.Tick())

	if bus := room.PassiveBus(); bus != nil && removed > 0 {
		bus.Fire(content.TriggerOnTakeDamage, c, room, TriggerPayload{
			DamageAmount: removed,
			DamageType:   damageType,
			SourceID:     sourceID,
		})
	}

	if c.IsDead() {
		c.onDeath(sourceID, room)
	}
	return removed
}

func (c *Champion) onDeath(killerID string, room Room) {
	c.Forced = nil
	c.Recall = RecallState{}
	c.AttackTargetID = ""
	c.FollowTargetID = ""
	c.HasMoveTarget = false
	c.Deaths++
	c.RespawnTimerRemaining = c.respawnDelay()
	if killer, ok := room.Index().Get(killerID); ok {
		if kc, ok := killer.(*Champion); ok {
			kc.Kills++
			kc.Gold += 300
		}
	}
}

func (c *Champion) ToSnapshot() Snapshot {
	cs := &ChampionSnapshot{
		ChampionID:            c.ChampionDef.ID,
		PlayerID:              c.PlayerID,
		TargetX:               c.MoveTargetX,
		TargetY:               c.MoveTargetY,
		HasTarget:             c.HasMoveTarget,
		TargetEntityID:        c.AttackTargetID,
		Health:                c.health,
		MaxHealth:             c.maxHealth,
		Resource:              c.Resource,
		MaxResource:           c.MaxResource,
		Level:                 c.Level,
		Experience:            c.XP,
		ExperienceToNextLevel: c.XPToNext,
		SkillPoints:           c.SkillPoints,
		AttackDamage:          c.Stat("attack_damage"),
		AbilityPower:          c.Stat("ability_power"),
		Armor:                 c.Stat("armor"),
		MagicResist:           c.Stat("magic_resist"),
		AttackSpeed:           c.Stat("attack_speed"),
		MovementSpeed:         c.Stat("movement_speed"),
		IsDead:                c.IsDead(),
		RespawnTimer:          c.RespawnTimerRemaining,
		IsRecalling:           c.Recall.Recalling,
		RecallProgress:        c.Recall.Progress,
		Abilities: map[string]AbilitySlot{
			"Q": c.Q, "W": c.W, "E": c.E, "R": c.R,
		},
		Passive:       c.Passive,
		ActiveEffects: append([]ActiveEffect(nil), c.ActiveEffects...),
		Shields:       append([]Shield(nil), c.Shields...),
		Items:         append([]ItemSlot(nil), c.Items...),
		Gold:          c.Gold,
		Kills:         c.Kills,
		Deaths:        c.Deaths,
		Assists:       c.Assists,
		CS:            c.CS,
		TrinketCharges:    c.TrinketState.Charges,
		TrinketMaxCharges: c.TrinketState.MaxCharges,
		TrinketCooldown:   c.TrinketState.Cooldown,
		RechargeProgress:  c.TrinketState.RechargeTimer / c.TrinketState.RechargePeriod,
	}
	snap := c.BaseSnapshot()
	snap.Champion = cs
	return snap
}

// spawnPointFor returns a side's base location; the room sets actual
// map coordinates at start() from the match descriptor, this is the
// fallback used by recall.
func spawnPointFor(side Side) (float64, float64) {
	if side == SideBlue {
		return 200, 15600
	}
	return 15600, 200
}
