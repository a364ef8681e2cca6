package game

import "github.com/riftforge/moba-server/internal/content"

// TriggerPayload carries the context a passive handler needs; fields
// not applicable to a given trigger are left zero.
type TriggerPayload struct {
	Target       *Champion
	DamageAmount float64
	DamageType   DamageType
	SourceID     string
	AbilityID    string
}

// PassiveState is the per-champion runtime state for its one passive,
// independent of the static PassiveSpec in the content registry.
type PassiveState struct {
	Active             bool
	CooldownRemaining  float64
	Stacks             int
	StackTimeRemaining float64
	NextIntervalIn     float64
}

// PassiveHandler reacts to a fired trigger; most passives only need to
// accumulate stacks (handled generically below) but a few champions
// need bespoke logic registered by ability/champion id.
type PassiveHandler func(champ *Champion, spec content.PassiveSpec, payload TriggerPayload, room Room)

// PassiveBus dispatches named triggers to champion passives. It is
// stateless with respect to rooms — all mutable state lives on the
// champion — and holds only the registered handler table. Each
// simulation creates its own bus.
type PassiveBus struct {
	handlers map[string]PassiveHandler
}

func NewPassiveBus() *PassiveBus {
	return &PassiveBus{handlers: make(map[string]PassiveHandler)}
}

// Register installs a bespoke handler for a champion's named passive,
// overriding the generic stack-accumulation behavior.
func (b *PassiveBus) Register(passiveID string, h PassiveHandler) {
	b.handlers[passiveID] = h
}

// Fire dispatches trigger to champ's passive if it listens on it and
// is off internal cooldown. Handlers consume a payload as applicable;
// stack-based passives accumulate automatically unless a bespoke
// handler is registered.
func (b *PassiveBus) Fire(trigger content.PassiveTrigger, champ *Champion, room Room, payload TriggerPayload) {
	if champ.ChampionDef.PassiveID == "" {
		return
	}
	spec := champ.ChampionDef.Passive
	if spec.PrimaryTrigger != trigger {
		matched := false
		for _, t := range spec.AdditionalTriggers {
			if t == trigger {
				matched = true
				break
			}
		}
		if !matched {
			return
		}
	}
	if champ.Passive.CooldownRemaining > 0 {
		return
	}

	if h, ok := b.handlers[champ.ChampionDef.PassiveID]; ok {
		h(champ, spec, payload, room)
		if spec.InternalCooldown > 0 {
			champ.Passive.CooldownRemaining = spec.InternalCooldown
		}
		return
	}

	b.accumulateStacks(champ, spec)
	if spec.InternalCooldown > 0 {
		champ.Passive.CooldownRemaining = spec.InternalCooldown
	}
}

func (b *PassiveBus) accumulateStacks(champ *Champion, spec content.PassiveSpec) {
	champ.Passive.Stacks++
	if spec.StackDecay > 0 {
		champ.Passive.StackTimeRemaining = spec.StackDecay
	}
	if spec.RequiredStacks > 0 && champ.Passive.Stacks >= spec.RequiredStacks {
		champ.Passive.Active = true
		if spec.ConsumeOnUse {
			champ.Passive.Stacks = 0
		}
	}
}

// TickPassiveDecay advances a champion's passive cooldown and stack-decay
// timers by dt, clearing stacks (and active state) when decay expires.
func TickPassiveDecay(p *PassiveState, dt float64) {
	if p.CooldownRemaining > 0 {
		p.CooldownRemaining -= dt
		if p.CooldownRemaining < 0 {
			p.CooldownRemaining = 0
		}
	}
	if p.StackTimeRemaining > 0 {
		p.StackTimeRemaining -= dt
		if p.StackTimeRemaining <= 0 {
			p.Stacks = 0
			p.Active = false
			p.StackTimeRemaining = 0
		}
	}
}
