package game

import (
	"testing"

	"github.com/riftforge/moba-server/internal/content"
)

func TestZoneDamagesEnemiesInRadiusOnTick(t *testing.T) {
	room := newFakeChampionRoom()
	z := &Zone{
		Base: NewBase("zone-1", EntityZone, SideBlue, 0, 0, 1),
		OwnerID: "caster-1", Radius: 200, Duration: 5, TickRate: 1.0,
		Damage: 40, DamageType: DamageMagical, AffectsEnemies: true,
	}
	room.Spawn(z)
	enemy := testChampionAt(50, 0)
	enemy.id = "enemy-1"
	enemy.side = SideRed
	room.Spawn(enemy)

	z.Update(1.0, room)

	h, max := enemy.Health()
	if h >= max {
		t.Fatal("expected the zone to damage the enemy standing inside it")
	}
}

func TestZoneExpiresAfterDuration(t *testing.T) {
	room := newFakeChampionRoom()
	z := &Zone{
		Base: NewBase("zone-1", EntityZone, SideBlue, 0, 0, 1),
		Duration: 1.0, TickRate: 1.0,
	}
	room.Spawn(z)
	z.Update(1.5, room)
	if !z.MarkedForRemoval() {
		t.Fatal("expected the zone to be marked for removal once its duration elapses")
	}
}

func TestZoneIgnoresEnemiesOutsideRadius(t *testing.T) {
	room := newFakeChampionRoom()
	z := &Zone{
		Base: NewBase("zone-1", EntityZone, SideBlue, 0, 0, 1),
		Radius: 50, Duration: 5, TickRate: 1.0, Damage: 40, AffectsEnemies: true,
	}
	room.Spawn(z)
	enemy := testChampionAt(5000, 0)
	enemy.id = "enemy-1"
	enemy.side = SideRed
	room.Spawn(enemy)

	z.Update(1.0, room)

	h, max := enemy.Health()
	if h != max {
		t.Fatal("expected an enemy far outside the zone's radius to be untouched")
	}
}

func TestTrapRootsFirstEnemyInRangeAndRewardsOwner(t *testing.T) {
	room := newFakeChampionRoom()
	room.registry.Effects[string(content.CCRoot)] = content.EffectDef{ID: string(content.CCRoot), CC: content.CCRoot}
	owner := testChampionAt(-1000, -1000)
	owner.id = "owner-1"
	room.Spawn(owner)

	trap := &Trap{
		Base: NewBase("trap-1", EntityTrap, SideBlue, 0, 0, 1),
		OwnerID: "owner-1", TriggerRadius: 100, Duration: 90, RootDuration: 1.5,
	}
	room.Spawn(trap)
	enemy := testChampionAt(50, 0)
	enemy.id = "enemy-1"
	enemy.side = SideRed
	room.Spawn(enemy)

	trap.Update(1.0/30, room)

	if len(enemy.ActiveEffects) != 1 {
		t.Fatalf("expected the enemy to be rooted, got %+v", enemy.ActiveEffects)
	}
	if owner.Gold != 25 {
		t.Fatalf("expected the owner rewarded 25 gold, got %d", owner.Gold)
	}
	if !trap.MarkedForRemoval() {
		t.Fatal("expected the trap to consume itself once triggered")
	}
}

func TestTrapExpiresWithoutTriggering(t *testing.T) {
	room := newFakeChampionRoom()
	trap := &Trap{
		Base: NewBase("trap-1", EntityTrap, SideBlue, 0, 0, 1),
		Duration: 1.0, TriggerRadius: 10,
	}
	room.Spawn(trap)
	trap.Update(1.5, room)
	if !trap.MarkedForRemoval() {
		t.Fatal("expected the trap to expire after its duration elapses")
	}
}

func TestWardExpiresAfterDuration(t *testing.T) {
	w := NewWard("ward-1", "owner-1", SideBlue, 0, 0)
	room := newFakeChampionRoom()
	w.Update(w.Duration+1, room)
	if !w.MarkedForRemoval() {
		t.Fatal("expected the ward to expire once its duration elapses")
	}
}

func TestWardDiesToDamage(t *testing.T) {
	w := NewWard("ward-1", "owner-1", SideBlue, 0, 0)
	room := newFakeChampionRoom()
	w.TakeDamage(1000, DamageTrue, "x", room)
	if !w.IsDead() || !w.MarkedForRemoval() {
		t.Fatal("expected the ward to die and be removed when damaged")
	}
}
