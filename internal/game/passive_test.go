package game

import (
	"testing"

	"github.com/riftforge/moba-server/internal/content"
)

func championWithPassive(spec content.PassiveSpec) *Champion {
	c := testChampionAt(0, 0)
	c.ChampionDef.PassiveID = spec.ID
	c.ChampionDef.Passive = spec
	return c
}

func TestFireIgnoresChampionsWithNoPassive(t *testing.T) {
	bus := NewPassiveBus()
	c := testChampionAt(0, 0)
	room := newFakeChampionRoom()
	bus.Fire(content.TriggerOnTakeDamage, c, room, TriggerPayload{})
	if c.Passive.Stacks != 0 {
		t.Fatal("expected no stack accumulation without a configured passive")
	}
}

func TestFireIgnoresNonMatchingTrigger(t *testing.T) {
	bus := NewPassiveBus()
	c := championWithPassive(content.PassiveSpec{ID: "p1", PrimaryTrigger: content.TriggerOnAbilityCast})
	room := newFakeChampionRoom()
	bus.Fire(content.TriggerOnTakeDamage, c, room, TriggerPayload{})
	if c.Passive.Stacks != 0 {
		t.Fatal("expected no stack accumulation on a non-matching trigger")
	}
}

func TestFireMatchesAdditionalTrigger(t *testing.T) {
	bus := NewPassiveBus()
	c := championWithPassive(content.PassiveSpec{
		ID: "p1", PrimaryTrigger: content.TriggerOnAbilityCast,
		AdditionalTriggers: []content.PassiveTrigger{content.TriggerOnTakeDamage},
	})
	room := newFakeChampionRoom()
	bus.Fire(content.TriggerOnTakeDamage, c, room, TriggerPayload{})
	if c.Passive.Stacks != 1 {
		t.Fatalf("expected stack accumulated via additional trigger, got %d", c.Passive.Stacks)
	}
}

func TestFireRespectsInternalCooldown(t *testing.T) {
	bus := NewPassiveBus()
	c := championWithPassive(content.PassiveSpec{
		ID: "p1", PrimaryTrigger: content.TriggerOnAbilityCast, InternalCooldown: 5,
	})
	room := newFakeChampionRoom()
	bus.Fire(content.TriggerOnAbilityCast, c, room, TriggerPayload{})
	bus.Fire(content.TriggerOnAbilityCast, c, room, TriggerPayload{})
	if c.Passive.Stacks != 1 {
		t.Fatalf("expected the second fire to be blocked by internal cooldown, got %d stacks", c.Passive.Stacks)
	}
}

func TestFireActivatesAtRequiredStacksAndConsumes(t *testing.T) {
	bus := NewPassiveBus()
	c := championWithPassive(content.PassiveSpec{
		ID: "p1", PrimaryTrigger: content.TriggerOnAbilityCast,
		RequiredStacks: 2, ConsumeOnUse: true,
	})
	room := newFakeChampionRoom()
	c.Passive.Stacks = 1
	bus.Fire(content.TriggerOnAbilityCast, c, room, TriggerPayload{})
	if !c.Passive.Active {
		t.Fatal("expected passive to activate once required stacks are reached")
	}
	if c.Passive.Stacks != 0 {
		t.Fatalf("expected stacks consumed on activation, got %d", c.Passive.Stacks)
	}
}

func TestFireDispatchesBespokeHandler(t *testing.T) {
	bus := NewPassiveBus()
	called := false
	bus.Register("p1", func(champ *Champion, spec content.PassiveSpec, payload TriggerPayload, room Room) {
		called = true
	})
	c := championWithPassive(content.PassiveSpec{ID: "p1", PrimaryTrigger: content.TriggerOnAbilityCast})
	room := newFakeChampionRoom()
	bus.Fire(content.TriggerOnAbilityCast, c, room, TriggerPayload{})
	if !called {
		t.Fatal("expected the registered bespoke handler to be invoked")
	}
	if c.Passive.Stacks != 0 {
		t.Fatal("a bespoke handler should not also trigger generic stack accumulation")
	}
}

func TestTickPassiveDecayExpiresStacksAndActive(t *testing.T) {
	p := &PassiveState{Stacks: 3, Active: true, StackTimeRemaining: 1.0, CooldownRemaining: 2.0}
	TickPassiveDecay(p, 0.5)
	if p.CooldownRemaining != 1.5 {
		t.Fatalf("expected cooldown decremented, got %v", p.CooldownRemaining)
	}
	if p.Stacks != 3 {
		t.Fatal("stacks should not decay before StackTimeRemaining elapses")
	}

	TickPassiveDecay(p, 1.0)
	if p.Stacks != 0 || p.Active {
		t.Fatalf("expected stacks cleared and passive deactivated after decay, got stacks=%d active=%v", p.Stacks, p.Active)
	}
}
