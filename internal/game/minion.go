package game

import "math"

// MinionKind distinguishes lane minions from neutral jungle creatures;
// both share the same auto-attack/leash behavior, only their targeting
// and spawn rules differ.
type MinionKind string

const (
	MinionMelee   MinionKind = "melee"
	MinionCaster  MinionKind = "caster"
	MinionSiege   MinionKind = "siege"
	MinionJungle  MinionKind = "jungle"
)

// Minion is a lane creep or jungle creature: it walks its path (or
// stays put, for jungle camps) and auto-attacks the nearest valid
// target in range, leashing back to its spawn/path when no target is
// in range.
type Minion struct {
	Base

	Kind  MinionKind
	Lane  string // "top","mid","bot"; empty for jungle creatures

	AttackDamage    float64
	AttackRange     float64
	AttackCooldown  float64
	attackTimer     float64
	MoveSpeed       float64
	Armor           float64
	MagicResist     float64
	SightRange      float64

	WaypointX, WaypointY float64
	TargetID             string

	AggroRange float64
	SpawnX, SpawnY float64
	LeashRange     float64

	XPReward, GoldReward int
}

func NewMinion(id string, kind MinionKind, side Side, lane string, x, y, health, ad, armor, mr, speed, attackRange, attackCooldown float64) *Minion {
	return &Minion{
		Base:           NewBase(id, entityTypeFor(kind), side, x, y, health),
		Kind:           kind,
		Lane:           lane,
		AttackDamage:   ad,
		AttackRange:    attackRange,
		AttackCooldown: attackCooldown,
		MoveSpeed:      speed,
		Armor:          armor,
		MagicResist:    mr,
		SightRange:     800,
		WaypointX:      x,
		WaypointY:      y,
		SpawnX:         x,
		SpawnY:         y,
		AggroRange:     600,
		LeashRange:     1000,
	}
}

func entityTypeFor(k MinionKind) EntityType {
	if k == MinionJungle {
		return EntityJungleCreature
	}
	return EntityMinion
}

func (m *Minion) Update(dt float64, room Room) {
	if m.IsDead() {
		return
	}
	if m.attackTimer > 0 {
		m.attackTimer -= dt
	}

	target := m.findTarget(room)
	if target == nil {
		m.advanceWaypoint(dt, room)
		return
	}
	tx, ty := target.Position()
	d := math.Hypot(tx-m.x, ty-m.y)
	if d > m.LeashRange {
		m.TargetID = ""
		m.advanceWaypoint(dt, room)
		return
	}
	if d > m.AttackRange {
		m.moveToward(tx, ty, dt, room)
		return
	}
	if m.attackTimer <= 0 {
		target.TakeDamage(m.AttackDamage, DamagePhysical, m.ID(), room)
		m.attackTimer = m.AttackCooldown
		room.Emit(NewEvent(EventBasicAttack, room.Tick(), "", DamagePayload{SourceID: m.ID(), TargetID: target.ID(), Amount: m.AttackDamage, Type: DamagePhysical}))
	}
}

func (m *Minion) findTarget(room Room) Entity {
	if m.TargetID != "" {
		if e, ok := room.Index().Get(m.TargetID); ok && !e.IsDead() {
			ex, ey := e.Position()
			if math.Hypot(ex-m.x, ey-m.y) <= m.LeashRange {
				return e
			}
		}
		m.TargetID = ""
	}
	var best Entity
	bestDist := math.MaxFloat64
	for _, e := range room.Index().All() {
		if e.Side() == m.Side() || e.Side() == SideNeutral || e.IsDead() {
			continue
		}
		if m.Kind == MinionJungle {
			continue // jungle creatures only aggro on being attacked, handled in TakeDamage
		}
		ex, ey := e.Position()
		d := math.Hypot(ex-m.x, ey-m.y)
		if d > m.AggroRange || d > bestDist {
			continue
		}
		best, bestDist = e, d
	}
	if best != nil {
		m.TargetID = best.ID()
	}
	return best
}

func (m *Minion) advanceWaypoint(dt float64, room Room) {
	dx, dy := m.WaypointX-m.x, m.WaypointY-m.y
	d := math.Hypot(dx, dy)
	if d < 5 {
		return
	}
	step := m.MoveSpeed * dt
	if step >= d {
		m.SetPosition(m.WaypointX, m.WaypointY, room.Tick())
		return
	}
	m.SetPosition(m.x+dx/d*step, m.y+dy/d*step, room.Tick())
}

func (m *Minion) moveToward(tx, ty float64, dt float64, room Room) {
	dx, dy := tx-m.x, ty-m.y
	d := math.Hypot(dx, dy)
	if d < 1 {
		return
	}
	step := m.MoveSpeed * dt
	if step >= d-m.AttackRange {
		return
	}
	m.SetPosition(m.x+dx/d*step, m.y+dy/d*step, room.Tick())
}

func (m *Minion) TakeDamage(amount float64, damageType DamageType, sourceID string, room Room) float64 {
	applied := amount
	switch damageType {
	case DamagePhysical:
		applied = amount * 100 / (100 + m.Armor)
	case DamageMagical:
		applied = amount * 100 / (100 + m.MagicResist)
	}
	removed := m.ApplyRawDamage(applied)
	m.MarkChanged(room.Tick())
	if m.TargetID == "" && m.Kind == MinionJungle {
		m.TargetID = sourceID
	}
	if m.IsDead() {
		m.MarkForRemoval()
		if killer, ok := room.Index().Get(sourceID); ok {
			if kc, ok := killer.(*Champion); ok {
				kc.Gold += m.GoldReward
				kc.XP += float64(m.XPReward)
			}
		}
	}
	return removed
}

func (m *Minion) ToSnapshot() Snapshot {
	return m.BaseSnapshot()
}
