// Package content loads and indexes the immutable champion, ability,
// effect, and item tables the simulation consumes read-only. A Registry
// is built once at startup and shared by every room without
// synchronization — nothing in this package mutates after Load.
package content

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TargetType classifies what an ability requires as its target, per
// the cast pipeline's target-validity step.
type TargetType string

const (
	TargetSelf      TargetType = "self"
	TargetNone      TargetType = "no_target"
	TargetEnemy     TargetType = "target_enemy"
	TargetAlly      TargetType = "target_ally"
	TargetUnit      TargetType = "target_unit"
	TargetSkillshot TargetType = "skillshot"
	TargetGround    TargetType = "ground_target"
)

// EffectFamily tags the implementation-neutral effect kinds an ability
// can compose.
type EffectFamily string

const (
	EffectDamage        EffectFamily = "damage"
	EffectHeal          EffectFamily = "heal"
	EffectShield        EffectFamily = "shield"
	EffectProjectile    EffectFamily = "projectile"
	EffectDash          EffectFamily = "dash"
	EffectTeleport      EffectFamily = "teleport"
	EffectGroundZone    EffectFamily = "ground_zone"
	EffectTrap          EffectFamily = "trap"
	EffectStatTransform EffectFamily = "stat_transform"
	EffectAura          EffectFamily = "aura"
)

// CCType enumerates the crowd-control categories a status effect can
// carry; the champion's CC status is recomputed as a boolean function
// of which of these are currently active.
type CCType string

const (
	CCStun      CCType = "stun"
	CCRoot      CCType = "root"
	CCSilence   CCType = "silence"
	CCDisarm    CCType = "disarm"
	CCBlind     CCType = "blind"
	CCGround    CCType = "ground"
	CCSlow      CCType = "slow"
	CCNone      CCType = ""
)

// PassiveTrigger names a point in the simulation a passive can hook.
type PassiveTrigger string

const (
	TriggerOnAttack      PassiveTrigger = "on_attack"
	TriggerOnHit         PassiveTrigger = "on_hit"
	TriggerOnAbilityCast PassiveTrigger = "on_ability_cast"
	TriggerOnAbilityHit  PassiveTrigger = "on_ability_hit"
	TriggerOnTakeDamage  PassiveTrigger = "on_take_damage"
	TriggerOnKill        PassiveTrigger = "on_kill"
	TriggerOnLowHealth   PassiveTrigger = "on_low_health"
	TriggerOnInterval    PassiveTrigger = "on_interval"
	TriggerAlways        PassiveTrigger = "always"
)

// EffectDef is the data record behind one active-effect id: duration,
// stacking policy, and the crowd-control tag (if any) it carries while
// active. Concrete per-tick behavior (damage-over-time amount, etc.) is
// supplied by the ability that applies it, not by the effect definition
// itself — effects here describe *what kind* of thing is on the unit,
// the ability/aura/zone handler decides magnitude.
type EffectDef struct {
	ID           string `toml:"id"`
	Name         string `toml:"name"`
	CC           CCType `toml:"cc"`
	MaxStacks    int    `toml:"max_stacks"`    // 0/1 means non-stacking
	RefreshOnly  bool   `toml:"refresh_only"`  // reapplication refreshes duration instead of stacking
	TickRate     float64 `toml:"tick_rate"`    // seconds between periodic applications, 0 = not periodic
}

// AbilitySpec is one rank-independent ability definition: the static
// shape of the kit slot, independent of champion.
type AbilitySpec struct {
	ID             string       `toml:"id"`
	Name           string       `toml:"name"`
	Slot           string       `toml:"slot"` // Q, W, E, R
	TargetType     TargetType   `toml:"target_type"`
	Families       []EffectFamily `toml:"families"`
	AllowedTargets []string     `toml:"allowed_targets"` // entity types allowed for target_* types; empty = any entity type
	Range          []float64    `toml:"range"`           // per rank
	ManaCost       []float64    `toml:"mana_cost"`       // per rank
	Cooldown       []float64    `toml:"cooldown"`        // per rank, seconds
	CastTime       float64      `toml:"cast_time"`       // seconds
	KeyframeDelay  float64      `toml:"keyframe_delay"`  // seconds from cast to projectile/effect spawn
	Recastable     bool         `toml:"recastable"`
	RecastWindow   float64      `toml:"recast_window"` // seconds
	AppliesEffect  string       `toml:"applies_effect"` // effect id, if any
	EffectDuration []float64    `toml:"effect_duration"` // per rank, seconds
	IsStealth      bool         `toml:"is_stealth"`
}

// rankIndexed returns the value for rank (1-based); ranks beyond the
// table clamp to the last defined entry so a partially-specified kit
// does not panic on max rank.
func rankIndexed(values []float64, rank int) float64 {
	if len(values) == 0 {
		return 0
	}
	idx := rank - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}

func (a AbilitySpec) ManaCostAt(rank int) float64  { return rankIndexed(a.ManaCost, rank) }
func (a AbilitySpec) CooldownAt(rank int) float64  { return rankIndexed(a.Cooldown, rank) }
func (a AbilitySpec) RangeAt(rank int) float64      { return rankIndexed(a.Range, rank) }
func (a AbilitySpec) EffectDurationAt(rank int) float64 {
	return rankIndexed(a.EffectDuration, rank)
}

// PassiveSpec describes a champion passive: the trigger(s) it listens
// on, an optional internal cooldown, and optional stack-decay timing.
type PassiveSpec struct {
	ID                string           `toml:"id"`
	PrimaryTrigger    PassiveTrigger   `toml:"primary_trigger"`
	AdditionalTriggers []PassiveTrigger `toml:"additional_triggers"`
	InternalCooldown  float64          `toml:"internal_cooldown"`
	RequiredStacks    int              `toml:"required_stacks"`
	StackDecay        float64          `toml:"stack_decay"` // seconds, 0 = no decay
	ConsumeOnUse      bool             `toml:"consume_on_use"`
}

// ChampionDef is the immutable content definition for one champion:
// base stats, growth per level, and the four ability slots plus
// passive.
type ChampionDef struct {
	ID            string   `toml:"id"`
	Name          string   `toml:"name"`
	BaseHealth    float64  `toml:"base_health"`
	HealthPerLvl  float64  `toml:"health_per_level"`
	BaseResource  float64  `toml:"base_resource"`
	ResourcePerLvl float64 `toml:"resource_per_level"`
	BaseAD        float64  `toml:"base_attack_damage"`
	ADPerLvl      float64  `toml:"attack_damage_per_level"`
	BaseArmor     float64  `toml:"base_armor"`
	ArmorPerLvl   float64  `toml:"armor_per_level"`
	BaseMR        float64  `toml:"base_magic_resist"`
	MRPerLvl      float64  `toml:"magic_resist_per_level"`
	AttackSpeed   float64  `toml:"attack_speed"`
	AttackRange   float64  `toml:"attack_range"`
	MoveSpeed     float64  `toml:"move_speed"`
	SightRange    float64  `toml:"sight_range"`
	Q, W, E, R    AbilitySpec `toml:"-"` // resolved from AbilityIDs at Load
	AbilityIDs    [4]string  `toml:"abilities"` // [Q,W,E,R]
	PassiveID     string   `toml:"passive"`
	Passive       PassiveSpec `toml:"-"`
}

// ItemDef is an immutable shop item definition.
type ItemDef struct {
	ID            string  `toml:"id"`
	Name          string  `toml:"name"`
	Cost          int     `toml:"cost"`
	FlatAD        float64 `toml:"flat_attack_damage"`
	FlatAP        float64 `toml:"flat_ability_power"`
	FlatArmor     float64 `toml:"flat_armor"`
	FlatMR        float64 `toml:"flat_magic_resist"`
	FlatHealth    float64 `toml:"flat_health"`
	PassiveID     string  `toml:"passive"`
	PassiveCooldown float64 `toml:"passive_cooldown"`
}

// Registry is the immutable, read-only-after-load lookup set for all
// content tables. Safe to share across every room without locking.
type Registry struct {
	Champions map[string]ChampionDef
	Abilities map[string]AbilitySpec
	Effects   map[string]EffectDef
	Items     map[string]ItemDef
	Passives  map[string]PassiveSpec
}

// file is the on-disk TOML shape: a flat table of each content kind,
// keyed by id, loaded in one pass per source file.
type file struct {
	Champions []ChampionDef `toml:"champion"`
	Abilities []AbilitySpec `toml:"ability"`
	Effects   []EffectDef   `toml:"effect"`
	Items     []ItemDef     `toml:"item"`
	Passives  []PassiveSpec `toml:"passive"`
}

// Load builds a Registry from one or more TOML source blobs (typically
// the embedded defaults plus an optional operator override file) and
// validates cross-references. A validation failure here is fatal to
// the process per the error-handling design: content is trusted input
// assembled once before any room exists.
func Load(sources ...string) (*Registry, error) {
	reg := &Registry{
		Champions: make(map[string]ChampionDef),
		Abilities: make(map[string]AbilitySpec),
		Effects:   make(map[string]EffectDef),
		Items:     make(map[string]ItemDef),
		Passives:  make(map[string]PassiveSpec),
	}

	for i, src := range sources {
		var f file
		if _, err := toml.Decode(src, &f); err != nil {
			return nil, fmt.Errorf("content: decode source %d: %w", i, err)
		}
		for _, c := range f.Champions {
			reg.Champions[c.ID] = c
		}
		for _, a := range f.Abilities {
			reg.Abilities[a.ID] = a
		}
		for _, e := range f.Effects {
			reg.Effects[e.ID] = e
		}
		for _, it := range f.Items {
			reg.Items[it.ID] = it
		}
		for _, p := range f.Passives {
			reg.Passives[p.ID] = p
		}
	}

	if err := reg.resolveAndValidate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *Registry) resolveAndValidate() error {
	for id, champ := range r.Champions {
		slots := [4]*AbilitySpec{&champ.Q, &champ.W, &champ.E, &champ.R}
		for i, abilityID := range champ.AbilityIDs {
			if abilityID == "" {
				continue
			}
			spec, ok := r.Abilities[abilityID]
			if !ok {
				return fmt.Errorf("content: champion %q references unknown ability %q", id, abilityID)
			}
			*slots[i] = spec
		}
		if champ.PassiveID != "" {
			spec, ok := r.Passives[champ.PassiveID]
			if !ok {
				return fmt.Errorf("content: champion %q references unknown passive %q", id, champ.PassiveID)
			}
			champ.Passive = spec
		}
		r.Champions[id] = champ
	}

	for id, ability := range r.Abilities {
		if ability.AppliesEffect != "" {
			if _, ok := r.Effects[ability.AppliesEffect]; !ok {
				return fmt.Errorf("content: ability %q references unknown effect %q", id, ability.AppliesEffect)
			}
		}
	}
	return nil
}

// Champion looks up a champion definition by id.
func (r *Registry) Champion(id string) (ChampionDef, bool) {
	c, ok := r.Champions[id]
	return c, ok
}

// Ability looks up an ability spec by id.
func (r *Registry) Ability(id string) (AbilitySpec, bool) {
	a, ok := r.Abilities[id]
	return a, ok
}

// Effect looks up an effect definition by id.
func (r *Registry) Effect(id string) (EffectDef, bool) {
	e, ok := r.Effects[id]
	return e, ok
}

// Item looks up an item definition by id.
func (r *Registry) Item(id string) (ItemDef, bool) {
	it, ok := r.Items[id]
	return it, ok
}

// Passive looks up a passive spec by id.
func (r *Registry) Passive(id string) (PassiveSpec, bool) {
	p, ok := r.Passives[id]
	return p, ok
}
