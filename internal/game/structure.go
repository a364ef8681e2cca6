package game

import "math"

// Tower is a stationary structure that auto-attacks the highest
// priority enemy in range (champions with aggro first, then the
// closest non-champion) and is destroyed, never respawning, at
// health = 0.
type Tower struct {
	Base

	Lane string
	Tier int // 1=outer, 2=inner, 3=inhibitor tower

	AttackDamage   float64
	AttackRange    float64
	AttackCooldown float64
	attackTimer    float64
	SightRange     float64

	aggroID string
}

func NewTower(id string, side Side, lane string, tier int, x, y, health, ad, attackRange, attackCooldown float64) *Tower {
	return &Tower{
		Base:           NewBase(id, EntityTower, side, x, y, health),
		Lane:           lane,
		Tier:           tier,
		AttackDamage:   ad,
		AttackRange:    attackRange,
		AttackCooldown: attackCooldown,
		SightRange:     900,
	}
}

func (t *Tower) Update(dt float64, room Room) {
	if t.IsDead() {
		return
	}
	if t.attackTimer > 0 {
		t.attackTimer -= dt
	}
	target := t.acquireTarget(room)
	if target == nil || t.attackTimer > 0 {
		return
	}
	target.TakeDamage(t.AttackDamage, DamagePhysical, t.ID(), room)
	t.attackTimer = t.AttackCooldown
	room.Emit(NewEvent(EventBasicAttack, room.Tick(), "", DamagePayload{SourceID: t.ID(), TargetID: target.ID(), Amount: t.AttackDamage, Type: DamagePhysical}))
}

// acquireTarget implements tower aggro priority: a champion that has
// already damaged the tower itself keeps aggro until it dies or
// leaves range; otherwise the closest enemy minion, then champion.
func (t *Tower) acquireTarget(room Room) Entity {
	if t.aggroID != "" {
		if e, ok := room.Index().Get(t.aggroID); ok && !e.IsDead() && t.inRange(e) {
			return e
		}
		t.aggroID = ""
	}
	var bestMinion, bestChampion Entity
	bestMinionDist, bestChampionDist := math.MaxFloat64, math.MaxFloat64
	for _, e := range room.Index().All() {
		if e.Side() == t.Side() || e.Side() == SideNeutral || e.IsDead() {
			continue
		}
		if !t.inRange(e) {
			continue
		}
		ex, ey := e.Position()
		d := math.Hypot(ex-t.x, ey-t.y)
		switch e.Type() {
		case EntityMinion:
			if d < bestMinionDist {
				bestMinion, bestMinionDist = e, d
			}
		case EntityChampion:
			if d < bestChampionDist {
				bestChampion, bestChampionDist = e, d
			}
		}
	}
	if bestMinion != nil {
		return bestMinion
	}
	return bestChampion
}

func (t *Tower) inRange(e Entity) bool {
	ex, ey := e.Position()
	return math.Hypot(ex-t.x, ey-t.y) <= t.AttackRange
}

func (t *Tower) TakeDamage(amount float64, damageType DamageType, sourceID string, room Room) float64 {
	if t.IsDead() {
		return 0
	}
	if t.aggroID == "" {
		if attacker, ok := room.Index().Get(sourceID); ok && attacker.Type() == EntityChampion {
			t.aggroID = sourceID
		}
	}
	removed := t.ApplyRawDamage(amount)
	t.MarkChanged(room.Tick())
	if t.IsDead() {
		t.MarkForRemoval()
		room.Emit(NewEvent(EventTowerDestroyed, room.Tick(), "", TowerDestroyedPayload{TowerID: t.ID(), Side: t.Side()}))
	}
	return removed
}

func (t *Tower) ToSnapshot() Snapshot {
	return t.BaseSnapshot()
}

// Nexus is the win-condition structure: it never attacks, and its
// destruction ends the room with the opposing side as winner.
type Nexus struct {
	Base
}

func NewNexus(id string, side Side, x, y, health float64) *Nexus {
	return &Nexus{Base: NewBase(id, EntityNexus, side, x, y, health)}
}

func (n *Nexus) Update(dt float64, room Room) {}

func (n *Nexus) TakeDamage(amount float64, damageType DamageType, sourceID string, room Room) float64 {
	if n.IsDead() {
		return 0
	}
	removed := n.ApplyRawDamage(amount)
	n.MarkChanged(room.Tick())
	if n.IsDead() {
		n.MarkForRemoval()
		room.Emit(NewEvent(EventNexusDestroyed, room.Tick(), "", NexusDestroyedPayload{NexusID: n.ID(), WinningSide: n.Side().Opposite()}))
	}
	return removed
}

func (n *Nexus) ToSnapshot() Snapshot {
	return n.BaseSnapshot()
}
