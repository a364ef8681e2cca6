package game

import (
	"testing"

	"github.com/riftforge/moba-server/internal/content"
)

type fakeChampionRoom struct {
	index      *Index
	registry   *content.Registry
	passiveBus *PassiveBus
	tick       uint64
}

func newFakeChampionRoom() *fakeChampionRoom {
	return &fakeChampionRoom{
		index:      NewIndex(),
		registry:   &content.Registry{Effects: map[string]content.EffectDef{}},
		passiveBus: NewPassiveBus(),
	}
}

func (r *fakeChampionRoom) Index() *Index               { return r.index }
func (r *fakeChampionRoom) Spawn(e Entity) string        { r.index.Add(e); return e.ID() }
func (r *fakeChampionRoom) Emit(evt Event)               {}
func (r *fakeChampionRoom) GameTime() float64            { return 0 }
func (r *fakeChampionRoom) Tick() uint64                 { return r.tick }
func (r *fakeChampionRoom) DT() float64                  { return 1.0 / 30 }
func (r *fakeChampionRoom) Registry() *content.Registry  { return r.registry }
func (r *fakeChampionRoom) PassiveBus() *PassiveBus      { return r.passiveBus }
func (r *fakeChampionRoom) NewEntityID() string          { return "generated" }

func testDef() content.ChampionDef {
	return content.ChampionDef{
		ID:          "vanguard",
		BaseHealth:  600,
		BaseResource: 300,
		BaseAD:      60,
		ADPerLvl:    3,
		BaseArmor:   30,
		ArmorPerLvl: 3.5,
		BaseMR:      30,
		MRPerLvl:    1.3,
		AttackSpeed: 0.65,
		MoveSpeed:   340,
		AttackRange: 150,
		SightRange:  1200,
		AbilityIDs:  [4]string{"q_ability", "w_ability", "e_ability", "r_ability"},
	}
}

func testChampionAt(x, y float64) *Champion {
	return NewChampion("champ-1", "player-1", SideBlue, testDef(), x, y)
}

func TestNewChampionSeedsLevelOneStats(t *testing.T) {
	c := testChampionAt(100, 100)
	if c.Level != 1 {
		t.Fatalf("expected level 1, got %d", c.Level)
	}
	if c.Q.AbilityID != "q_ability" || c.R.AbilityID != "r_ability" {
		t.Fatalf("expected ability slots seeded from ChampionDef.AbilityIDs, got %+v / %+v", c.Q, c.R)
	}
	if len(c.Items) != maxInventorySlots {
		t.Fatalf("expected %d inventory slots, got %d", maxInventorySlots, len(c.Items))
	}
}

func TestStatScalesWithLevel(t *testing.T) {
	c := testChampionAt(0, 0)
	base := c.Stat("attack_damage")
	c.Level = 5
	leveled := c.Stat("attack_damage")
	if leveled <= base {
		t.Fatalf("expected attack_damage to grow with level, base=%v leveled=%v", base, leveled)
	}
}

func TestTakeDamageReducesHealthAndMarksInCombat(t *testing.T) {
	c := testChampionAt(0, 0)
	room := newFakeChampionRoom()
	removed := c.TakeDamage(100, DamagePhysical, "attacker", room)
	if removed <= 0 {
		t.Fatal("expected nonzero damage applied")
	}
	if !c.InCombat {
		t.Fatal("expected TakeDamage to set InCombat")
	}
}

func TestTakeDamageKillsAndCreditsKiller(t *testing.T) {
	room := newFakeChampionRoom()
	victim := testChampionAt(0, 0)
	killer := testChampionAt(500, 500)
	killer.id = "killer-1"
	room.Spawn(killer)

	victim.TakeDamage(100000, DamageTrue, "killer-1", room)

	if !victim.IsDead() {
		t.Fatal("expected victim to be dead")
	}
	if victim.Deaths != 1 {
		t.Fatalf("expected Deaths incremented, got %d", victim.Deaths)
	}
	if killer.Kills != 1 {
		t.Fatalf("expected killer's Kills incremented, got %d", killer.Kills)
	}
	if victim.RespawnTimerRemaining <= 0 {
		t.Fatal("expected a respawn timer to be set on death")
	}
}

func TestTakeDamageOnDeadChampionIsNoop(t *testing.T) {
	room := newFakeChampionRoom()
	c := testChampionAt(0, 0)
	c.TakeDamage(100000, DamageTrue, "x", room)
	if !c.IsDead() {
		t.Fatal("expected champion to be dead after lethal damage")
	}
	removed := c.TakeDamage(50, DamagePhysical, "x", room)
	if removed != 0 {
		t.Fatalf("expected no further damage applied to a dead champion, got %v", removed)
	}
}

func TestUpdateRespawnsAfterTimerElapses(t *testing.T) {
	room := newFakeChampionRoom()
	c := testChampionAt(0, 0)
	c.TakeDamage(100000, DamageTrue, "x", room)
	remaining := c.RespawnTimerRemaining

	c.Update(remaining-0.01, room)
	if !c.IsDead() {
		t.Fatal("should still be dead just before the respawn timer elapses")
	}

	c.Update(0.02, room)
	if c.IsDead() {
		t.Fatal("expected champion to respawn once the timer elapses")
	}
	if h, _ := c.Health(); h != c.maxHealth {
		t.Fatalf("expected full health on respawn, got %v", h)
	}
}

func TestUpdateMovesTowardMoveTarget(t *testing.T) {
	room := newFakeChampionRoom()
	c := testChampionAt(0, 0)
	c.HasMoveTarget = true
	c.MoveTargetX, c.MoveTargetY = 1000, 0

	c.Update(1.0/30, room)

	x, y := c.Position()
	if x <= 0 || y != 0 {
		t.Fatalf("expected champion to move toward (1000,0), got (%v,%v)", x, y)
	}
	if !c.HasMoveTarget {
		t.Fatal("should still be moving toward the target, far short of arrival")
	}
}

func TestUpdateArrivesAndClearsMoveTarget(t *testing.T) {
	room := newFakeChampionRoom()
	c := testChampionAt(0, 0)
	c.HasMoveTarget = true
	c.MoveTargetX, c.MoveTargetY = 1, 0

	c.Update(10, room)

	if c.HasMoveTarget {
		t.Fatal("expected move target cleared on arrival")
	}
	x, _ := c.Position()
	if x != 1 {
		t.Fatalf("expected champion to land exactly on the target, got x=%v", x)
	}
}

func TestForcedMovementOverridesNormalMovement(t *testing.T) {
	room := newFakeChampionRoom()
	c := testChampionAt(0, 0)
	c.HasMoveTarget = true
	c.MoveTargetX, c.MoveTargetY = 1000, 1000
	c.Forced = &ForcedMovement{
		Kind:         ForcedDash,
		DirectionRad: 0,
		Distance:     300,
		Duration:     1.0,
		HitEntities:  map[string]bool{},
	}

	c.Update(0.5, room)

	x, y := c.Position()
	if y != 0 {
		t.Fatalf("expected forced movement to override normal movement toward a different target, got y=%v", y)
	}
	if x <= 0 {
		t.Fatalf("expected forward progress along the dash direction, got x=%v", x)
	}
	if c.Forced == nil {
		t.Fatal("forced movement should still be active mid-duration")
	}
}

func TestForcedMovementClearsAfterDuration(t *testing.T) {
	room := newFakeChampionRoom()
	c := testChampionAt(0, 0)
	c.Forced = &ForcedMovement{
		Kind:        ForcedDash,
		Distance:    300,
		Duration:    0.5,
		HitEntities: map[string]bool{},
	}
	c.Update(0.6, room)
	if c.Forced != nil {
		t.Fatal("expected forced movement to clear once elapsed reaches duration")
	}
}
