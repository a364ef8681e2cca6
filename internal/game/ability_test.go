package game

import (
	"testing"

	"github.com/riftforge/moba-server/internal/content"
)

func abilityRoomWith(abilities map[string]content.AbilitySpec) *fakeChampionRoom {
	r := newFakeChampionRoom()
	r.registry = &content.Registry{
		Abilities: abilities,
		Effects:   map[string]content.EffectDef{},
	}
	return r
}

func TestTryCastFailsWhenNotLearned(t *testing.T) {
	c := testChampionAt(0, 0)
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {ID: "q_ability", TargetType: content.TargetSelf},
	})
	got := TryCast(c, CastRequest{Slot: "Q"}, room)
	if got != CastNotLearned {
		t.Fatalf("expected CastNotLearned for rank-0 ability, got %v", got)
	}
}

func TestTryCastFailsWhenStunned(t *testing.T) {
	c := testChampionAt(0, 0)
	c.Q.Rank = 1
	c.CC.Stunned = true
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {ID: "q_ability", TargetType: content.TargetSelf},
	})
	if got := TryCast(c, CastRequest{Slot: "Q"}, room); got != CastStunned {
		t.Fatalf("expected CastStunned, got %v", got)
	}
}

func TestTryCastFailsWhenOnCooldown(t *testing.T) {
	c := testChampionAt(0, 0)
	c.Q.Rank = 1
	c.Q.CooldownRemaining = 5
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {ID: "q_ability", TargetType: content.TargetSelf, Cooldown: []float64{8}},
	})
	if got := TryCast(c, CastRequest{Slot: "Q"}, room); got != CastOnCooldown {
		t.Fatalf("expected CastOnCooldown, got %v", got)
	}
}

func TestTryCastFailsWhenNotEnoughMana(t *testing.T) {
	c := testChampionAt(0, 0)
	c.Q.Rank = 1
	c.Resource = 0
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {ID: "q_ability", TargetType: content.TargetSelf, ManaCost: []float64{50}},
	})
	if got := TryCast(c, CastRequest{Slot: "Q"}, room); got != CastNotEnoughMana {
		t.Fatalf("expected CastNotEnoughMana, got %v", got)
	}
}

func TestTryCastEnemyTargetOutOfRange(t *testing.T) {
	c := testChampionAt(0, 0)
	c.Q.Rank = 1
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {ID: "q_ability", TargetType: content.TargetEnemy, Range: []float64{500}},
	})
	target := testChampionAt(5000, 0)
	target.id = "enemy-1"
	target.side = SideRed
	room.Spawn(target)

	got := TryCast(c, CastRequest{Slot: "Q", TargetEntityID: "enemy-1"}, room)
	if got != CastOutOfRange {
		t.Fatalf("expected CastOutOfRange, got %v", got)
	}
}

func TestTryCastEnemyTargetInvalidWhenAlly(t *testing.T) {
	c := testChampionAt(0, 0)
	c.Q.Rank = 1
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {ID: "q_ability", TargetType: content.TargetEnemy, Range: []float64{500}},
	})
	ally := testChampionAt(100, 0)
	ally.id = "ally-1"
	ally.side = SideBlue
	room.Spawn(ally)

	got := TryCast(c, CastRequest{Slot: "Q", TargetEntityID: "ally-1"}, room)
	if got != CastInvalidTarget {
		t.Fatalf("expected CastInvalidTarget for an ally under TargetEnemy, got %v", got)
	}
}

func TestTryCastSucceedsAndDeductsManaSetsCooldown(t *testing.T) {
	c := testChampionAt(0, 0)
	c.Q.Rank = 1
	c.Resource = 100
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {
			ID: "q_ability", TargetType: content.TargetSelf,
			ManaCost: []float64{40}, Cooldown: []float64{8},
			Families: []content.EffectFamily{content.EffectHeal},
			EffectDuration: []float64{1},
		},
	})

	got := TryCast(c, CastRequest{Slot: "Q"}, room)
	if got != CastOK {
		t.Fatalf("expected CastOK, got %v", got)
	}
	if c.Resource != 60 {
		t.Fatalf("expected mana deducted to 60, got %v", c.Resource)
	}
	if c.Q.CooldownRemaining != 8 {
		t.Fatalf("expected cooldown set to 8, got %v", c.Q.CooldownRemaining)
	}
}

func TestTryCastSkillshotRequiresTargetPosition(t *testing.T) {
	c := testChampionAt(0, 0)
	c.Q.Rank = 1
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {ID: "q_ability", TargetType: content.TargetSkillshot},
	})
	got := TryCast(c, CastRequest{Slot: "Q"}, room)
	if got != CastInvalidTarget {
		t.Fatalf("expected CastInvalidTarget when no target position is supplied, got %v", got)
	}
}

func TestTryCastAppliesDamageAndEffectOnHit(t *testing.T) {
	c := testChampionAt(0, 0)
	c.Q.Rank = 1
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {
			ID: "q_ability", TargetType: content.TargetEnemy, Range: []float64{1000},
			Families: []content.EffectFamily{content.EffectDamage},
			AppliesEffect:  "slow_effect",
			EffectDuration: []float64{2},
		},
	})
	room.registry.Effects["slow_effect"] = content.EffectDef{ID: "slow_effect", CC: content.CCSlow}

	target := testChampionAt(100, 0)
	target.id = "enemy-1"
	target.side = SideRed
	room.Spawn(target)

	got := TryCast(c, CastRequest{Slot: "Q", TargetEntityID: "enemy-1"}, room)
	if got != CastOK {
		t.Fatalf("expected CastOK, got %v", got)
	}
	if h, max := target.Health(); h >= max {
		t.Fatalf("expected target to take damage, health=%v/%v", h, max)
	}
	if len(target.ActiveEffects) != 1 || target.ActiveEffects[0].EffectID != "slow_effect" {
		t.Fatalf("expected slow_effect applied to target, got %+v", target.ActiveEffects)
	}
}

func TestTryCastStartsDashForward(t *testing.T) {
	c := testChampionAt(0, 0)
	c.Q.Rank = 1
	room := abilityRoomWith(map[string]content.AbilitySpec{
		"q_ability": {
			ID: "q_ability", TargetType: content.TargetGround, Range: []float64{400},
			Families: []content.EffectFamily{content.EffectDash},
		},
	})

	got := TryCast(c, CastRequest{Slot: "Q", TargetX: 400, TargetY: 0, HasTargetPos: true}, room)
	if got != CastOK {
		t.Fatalf("expected CastOK, got %v", got)
	}
	if c.Forced == nil || c.Forced.Kind != ForcedDash {
		t.Fatal("expected a dash forced movement to be set")
	}
}
