package game

import (
	"testing"

	"github.com/riftforge/moba-server/internal/content"
)

func testRegistryWithEffects(effects map[string]content.EffectDef) *content.Registry {
	return &content.Registry{Effects: effects}
}

func TestRecomputeCCAggregatesAcrossEffects(t *testing.T) {
	reg := testRegistryWithEffects(map[string]content.EffectDef{
		"stun_effect":  {ID: "stun_effect", CC: content.CCStun},
		"slow_effect":  {ID: "slow_effect", CC: content.CCSlow},
	})
	effects := []ActiveEffect{{EffectID: "stun_effect"}, {EffectID: "slow_effect"}}

	status := RecomputeCC(effects, reg)

	if !status.Stunned || !status.Slowed {
		t.Fatalf("expected both stun and slow flags set, got %+v", status)
	}
	if status.CanMove() {
		t.Fatal("a stunned unit cannot move")
	}
}

func TestApplyEffectRefreshesSingleInstance(t *testing.T) {
	def := content.EffectDef{ID: "root_effect", CC: content.CCRoot, MaxStacks: 1}
	effects := ApplyEffect(nil, "root_effect", "caster-1", 2.0, def)
	effects = ApplyEffect(effects, "root_effect", "caster-2", 5.0, def)

	if len(effects) != 1 {
		t.Fatalf("expected a single non-stacking instance, got %d", len(effects))
	}
	if effects[0].RemainingDuration != 5.0 || effects[0].SourceID != "caster-2" {
		t.Fatalf("expected the reapplication to refresh duration and source, got %+v", effects[0])
	}
}

func TestApplyEffectStacksUpToMax(t *testing.T) {
	def := content.EffectDef{ID: "poison", MaxStacks: 3}
	effects := ApplyEffect(nil, "poison", "caster", 4.0, def)
	effects = ApplyEffect(effects, "poison", "caster", 4.0, def)
	effects = ApplyEffect(effects, "poison", "caster", 4.0, def)
	effects = ApplyEffect(effects, "poison", "caster", 4.0, def)

	if len(effects) != 1 {
		t.Fatalf("expected one stacked instance, got %d entries", len(effects))
	}
	if effects[0].Stacks != 3 {
		t.Fatalf("expected stacks capped at MaxStacks=3, got %d", effects[0].Stacks)
	}
}

func TestRemoveEffectDropsAllInstancesOfID(t *testing.T) {
	effects := []ActiveEffect{{EffectID: "a"}, {EffectID: "b"}, {EffectID: "a"}}
	got := RemoveEffect(effects, "a")
	if len(got) != 1 || got[0].EffectID != "b" {
		t.Fatalf("expected only 'b' to remain, got %+v", got)
	}
}

func TestTickEffectsExpiresWhenDurationElapses(t *testing.T) {
	effects := []ActiveEffect{{EffectID: "root", RemainingDuration: 1.0}}
	kept, due := TickEffects(effects, 1.5)
	if len(kept) != 0 {
		t.Fatalf("expected the effect to expire, got %+v", kept)
	}
	if len(due) != 0 {
		t.Fatalf("expired effect should not report a periodic tick, got %v", due)
	}
}

func TestTickEffectsReportsPeriodicTickDue(t *testing.T) {
	effects := []ActiveEffect{{EffectID: "poison", RemainingDuration: 10, NextTickIn: 1.0}}
	kept, due := TickEffects(effects, 1.0)
	if len(kept) != 1 {
		t.Fatalf("expected the effect to survive, got %+v", kept)
	}
	if len(due) != 1 || due[0] != "poison" {
		t.Fatalf("expected poison to be due this tick, got %v", due)
	}
}

func TestTickModifiersExpiresTimedButKeepsPermanent(t *testing.T) {
	mods := []StatModifier{
		{Source: "buff", Stat: "attack_damage", Flat: 10, RemainingDuration: 1.0},
		{Source: "item", Stat: "armor", Flat: 20, RemainingDuration: 0},
	}
	kept := TickModifiers(mods, 1.5)
	if len(kept) != 1 || kept[0].Source != "item" {
		t.Fatalf("expected only the permanent modifier to survive, got %+v", kept)
	}
}

func TestSumStatTotalsMatchingModifiers(t *testing.T) {
	mods := []StatModifier{
		{Stat: "attack_damage", Flat: 10, Percent: 0.1},
		{Stat: "attack_damage", Flat: 5, Percent: 0.05},
		{Stat: "armor", Flat: 100},
	}
	flat, percent := SumStat(mods, "attack_damage")
	if flat != 15 {
		t.Fatalf("expected flat=15, got %v", flat)
	}
	if diff := percent - 0.15; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected percent=0.15, got %v", percent)
	}
}
