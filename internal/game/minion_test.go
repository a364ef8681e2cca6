package game

import "testing"

func testMinion(x, y float64) *Minion {
	return NewMinion("minion-1", MinionMelee, SideBlue, "mid", x, y, 500, 20, 0, 0, 200, 150, 1.0)
}

func TestMinionAdvancesAlongWaypointWhenNoTarget(t *testing.T) {
	room := newFakeChampionRoom()
	m := testMinion(0, 0)
	m.WaypointX, m.WaypointY = 1000, 0
	room.Spawn(m)

	m.Update(1.0/30, room)

	x, _ := m.Position()
	if x <= 0 {
		t.Fatalf("expected the minion to advance toward its waypoint, got x=%v", x)
	}
}

func TestMinionAggroesEnemyWithinRange(t *testing.T) {
	room := newFakeChampionRoom()
	m := testMinion(0, 0)
	room.Spawn(m)
	enemy := testChampionAt(300, 0)
	enemy.id = "enemy-1"
	enemy.side = SideRed
	room.Spawn(enemy)

	target := m.findTarget(room)
	if target == nil || target.ID() != "enemy-1" {
		t.Fatalf("expected the minion to aggro the nearby enemy, got %v", target)
	}
}

func TestJungleCreatureDoesNotAutoAggroEnemy(t *testing.T) {
	room := newFakeChampionRoom()
	m := testMinion(0, 0)
	m.Kind = MinionJungle
	room.Spawn(m)
	enemy := testChampionAt(100, 0)
	enemy.id = "enemy-1"
	enemy.side = SideRed
	room.Spawn(enemy)

	if target := m.findTarget(room); target != nil {
		t.Fatalf("expected a jungle creature not to auto-aggro, got %v", target)
	}
}

func TestMinionAttacksWhenTargetInRange(t *testing.T) {
	room := newFakeChampionRoom()
	m := testMinion(0, 0)
	room.Spawn(m)
	enemy := testChampionAt(100, 0)
	enemy.id = "enemy-1"
	enemy.side = SideRed
	room.Spawn(enemy)

	m.Update(1.0/30, room)

	h, max := enemy.Health()
	if h >= max {
		t.Fatalf("expected the minion to auto-attack the in-range enemy, health=%v/%v", h, max)
	}
}

func TestMinionLeashesBackWhenTargetBeyondLeashRange(t *testing.T) {
	room := newFakeChampionRoom()
	m := testMinion(0, 0)
	m.LeashRange = 500
	m.TargetID = "enemy-1"
	room.Spawn(m)
	enemy := testChampionAt(5000, 0)
	enemy.id = "enemy-1"
	enemy.side = SideRed
	room.Spawn(enemy)

	target := m.findTarget(room)
	if target != nil {
		t.Fatal("expected the minion to drop a target beyond its leash range")
	}
	if m.TargetID != "" {
		t.Fatal("expected TargetID cleared once leash range is exceeded")
	}
}

func TestMinionTakeDamageAppliesArmorReductionAndAwardsKillerRewards(t *testing.T) {
	room := newFakeChampionRoom()
	m := testMinion(0, 0)
	m.Armor = 100
	m.GoldReward = 20
	m.XPReward = 40
	room.Spawn(m)
	killer := testChampionAt(0, 0)
	killer.id = "killer-1"
	room.Spawn(killer)

	removed := m.TakeDamage(1000000, DamagePhysical, "killer-1", room)
	if !m.IsDead() {
		t.Fatal("expected the minion to die from lethal damage")
	}
	if !m.MarkedForRemoval() {
		t.Fatal("expected a dead minion to be marked for removal")
	}
	if killer.Gold != 20 || killer.XP != 40 {
		t.Fatalf("expected killer rewarded gold/xp, got gold=%v xp=%v", killer.Gold, killer.XP)
	}
	if removed <= 0 {
		t.Fatal("expected nonzero damage removed")
	}
}
