package game

import "encoding/json"

// EventType enumerates every game event the simulation can emit. The
// reliable/unreliable split (§4.8) is a property of the type, queried
// via Reliable(), not a separate field — so a new event type is
// correct by construction as soon as it is added to one list.
type EventType string

const (
	EventChampionKill        EventType = "CHAMPION_KILL"
	EventTowerDestroyed      EventType = "TOWER_DESTROYED"
	EventDragonKilled        EventType = "DRAGON_KILLED"
	EventBaronKilled         EventType = "BARON_KILLED"
	EventInhibitorDestroyed  EventType = "INHIBITOR_DESTROYED"
	EventInhibitorRespawned  EventType = "INHIBITOR_RESPAWNED"
	EventNexusDestroyed      EventType = "NEXUS_DESTROYED"
	EventFirstBlood          EventType = "FIRST_BLOOD"
	EventAce                 EventType = "ACE"
	EventLevelUp             EventType = "LEVEL_UP"

	EventAbilityCast EventType = "ABILITY_CAST"
	EventBasicAttack EventType = "BASIC_ATTACK"
	EventDamage      EventType = "DAMAGE"
	EventHeal        EventType = "HEAL"
	EventCastFailed  EventType = "CAST_FAILED"
)

// reliableTypes is the taxonomy fixed by §4.8: every event type not
// listed here is best-effort.
var reliableTypes = map[EventType]bool{
	EventChampionKill:       true,
	EventTowerDestroyed:     true,
	EventDragonKilled:       true,
	EventBaronKilled:        true,
	EventInhibitorDestroyed: true,
	EventInhibitorRespawned: true,
	EventNexusDestroyed:     true,
	EventFirstBlood:         true,
	EventAce:                true,
	EventLevelUp:            true,
}

// Reliable reports whether this event type requires at-least-once
// delivery via the reliable event queue.
func (t EventType) Reliable() bool { return reliableTypes[t] }

// Event is one game event produced during a tick's emit phase. Payload
// is a JSON-encoded, type-specific record. Event ids are assigned by
// the reliable queue and kept on its own records, not on Event.
// Best-effort events are not delivered to players: the room hands
// drained events only to the reliable queue, which ignores them.
type Event struct {
	Type     EventType `json:"type"`
	Tick     uint64    `json:"tick"`
	PlayerID string    `json:"playerId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an Event with its payload marshaled to JSON.
func NewEvent(t EventType, tick uint64, playerID string, payload interface{}) Event {
	data, _ := json.Marshal(payload)
	return Event{Type: t, Tick: tick, PlayerID: playerID, Payload: data}
}

type AbilityCastPayload struct {
	CasterID  string `json:"casterId"`
	Slot      string `json:"slot"`
	AbilityID string `json:"abilityId"`
}

type ChampionKillPayload struct {
	KillerID string `json:"killerId"`
	VictimID string `json:"victimId"`
	IsFirstBlood bool `json:"isFirstBlood"`
}

type TowerDestroyedPayload struct {
	TowerID string `json:"towerId"`
	Side    Side   `json:"side"`
}

type NexusDestroyedPayload struct {
	NexusID string `json:"nexusId"`
	WinningSide Side `json:"winningSide"`
}

type LevelUpPayload struct {
	ChampionID string `json:"championId"`
	NewLevel   int    `json:"newLevel"`
}

type DamagePayload struct {
	SourceID string     `json:"sourceId"`
	TargetID string     `json:"targetId"`
	Amount   float64    `json:"amount"`
	Type     DamageType `json:"damageType"`
}
