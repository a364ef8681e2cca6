package game

import "testing"

func testTower(x, y float64) *Tower {
	return NewTower("tower-1", SideBlue, "mid", 1, x, y, 2000, 150, 700, 0.8)
}

func TestTowerPrefersMinionOverChampionInRange(t *testing.T) {
	room := newFakeChampionRoom()
	tower := testTower(0, 0)
	room.Spawn(tower)

	minion := NewMinion("minion-1", MinionMelee, SideRed, "mid", 100, 0, 500, 20, 0, 0, 200, 150, 1.0)
	room.Spawn(minion)
	champ := testChampionAt(50, 0)
	champ.id = "champ-1"
	champ.side = SideRed
	room.Spawn(champ)

	target := tower.acquireTarget(room)
	if target == nil || target.ID() != "minion-1" {
		t.Fatalf("expected the tower to prioritize the minion, got %v", target)
	}
}

func TestTowerKeepsAggroOnceAttacked(t *testing.T) {
	room := newFakeChampionRoom()
	tower := testTower(0, 0)
	room.Spawn(tower)
	attacker := testChampionAt(100, 0)
	attacker.id = "attacker-1"
	attacker.side = SideRed
	room.Spawn(attacker)

	tower.TakeDamage(10, DamagePhysical, "attacker-1", room)

	target := tower.acquireTarget(room)
	if target == nil || target.ID() != "attacker-1" {
		t.Fatalf("expected the tower to keep aggro on its attacker, got %v", target)
	}
}

func TestTowerDestructionMarksForRemoval(t *testing.T) {
	room := newFakeChampionRoom()
	tower := testTower(0, 0)
	room.Spawn(tower)

	tower.TakeDamage(999999, DamagePhysical, "attacker-1", room)

	if !tower.IsDead() || !tower.MarkedForRemoval() {
		t.Fatal("expected the tower to be dead and marked for removal")
	}
}

func TestTowerTakeDamageOnDeadIsNoop(t *testing.T) {
	room := newFakeChampionRoom()
	tower := testTower(0, 0)
	tower.TakeDamage(999999, DamagePhysical, "x", room)
	removed := tower.TakeDamage(100, DamagePhysical, "x", room)
	if removed != 0 {
		t.Fatalf("expected no further damage applied to a destroyed tower, got %v", removed)
	}
}

func TestNexusDestructionMarksForRemoval(t *testing.T) {
	room := newFakeChampionRoom()
	nexus := NewNexus("nexus-blue", SideBlue, 0, 0, 5000)
	room.Spawn(nexus)

	nexus.TakeDamage(999999, DamageTrue, "attacker-1", room)

	if !nexus.IsDead() || !nexus.MarkedForRemoval() {
		t.Fatal("expected the nexus to be destroyed and marked for removal")
	}
}

func TestNexusNeverAttacks(t *testing.T) {
	nexus := NewNexus("nexus-blue", SideBlue, 0, 0, 5000)
	room := newFakeChampionRoom()
	nexus.Update(1.0/30, room)
}
