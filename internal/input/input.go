// Package input implements the per-player FIFO input queue, sequence
// validation, per-type sliding-window rate limiting, and dispatch to
// champion actions described in spec §4.5.
package input

import (
	"github.com/riftforge/moba-server/internal/game"
)

// Type enumerates the known client input kinds; any other string is
// rejected as invalid_type.
type Type string

const (
	TypeMove       Type = "MOVE"
	TypeAttackMove Type = "ATTACK_MOVE"
	TypeTargetUnit Type = "TARGET_UNIT"
	TypeStop       Type = "STOP"
	TypeAbility    Type = "ABILITY"
	TypeLevelUp    Type = "LEVEL_UP"
	TypeBuyItem    Type = "BUY_ITEM"
	TypeSellItem   Type = "SELL_ITEM"
	TypeRecall     Type = "RECALL"
	TypePing       Type = "PING"
	TypeChat       Type = "CHAT"
	TypePlaceWard  Type = "PLACE_WARD"
)

// RejectReason is the typed failure taxonomy for the validation
// pipeline; never exposed as an exception, always returned.
type RejectReason string

const (
	Accepted          RejectReason = ""
	RejectOldSequence RejectReason = "old_sequence"
	RejectInvalidType RejectReason = "invalid_type"
	RejectRateLimited RejectReason = "rate_limited"
)

// Input is one client frame after transport decoding; fields not
// applicable to Type are left zero.
type Input struct {
	PlayerID       string
	Sequence       uint64
	Type           Type
	TargetX, TargetY float64
	TargetEntityID string
	Slot           string // ability slot for ABILITY and LEVEL_UP, inventory index for SELL_ITEM (as string)
	ItemID         string
	ChatMessage    string
}

// ChampionLookup resolves a player id to their champion entity; the
// room supplies this since only it owns the playerId -> championId map.
type ChampionLookup func(playerID string) (*game.Champion, bool)

type playerState struct {
	lastAcked uint64
	window    map[Type][]float64 // timestamps (game time seconds) within the trailing 1s window
}

// Handler owns every connected player's pending input queue and rate
// limit state. One Handler per room.
type Handler struct {
	limits      map[Type]int
	defaultLimit int

	worldWidth, worldHeight float64

	queues  map[string][]Input
	players map[string]*playerState
}

// NewHandler builds a handler from the configured per-type rate
// limits (spec §4.5 defaults) and the map bounds MOVE/ATTACK_MOVE
// targets are validated against.
func NewHandler(limits map[string]int, defaultLimit int, worldWidth, worldHeight float64) *Handler {
	h := &Handler{
		limits:       make(map[Type]int, len(limits)),
		defaultLimit: defaultLimit,
		worldWidth:   worldWidth,
		worldHeight:  worldHeight,
		queues:       make(map[string][]Input),
		players:      make(map[string]*playerState),
	}
	for k, v := range limits {
		h.limits[Type(k)] = v
	}
	return h
}

// AddPlayer registers a player with a clean rate-limit/sequence slate.
func (h *Handler) AddPlayer(playerID string) {
	h.players[playerID] = &playerState{window: make(map[Type][]float64)}
	h.queues[playerID] = nil
}

// ClearPlayer removes a player's queue and rate-limit state; Enqueue
// ignores the player until AddPlayer registers it again.
func (h *Handler) ClearPlayer(playerID string) {
	delete(h.queues, playerID)
	delete(h.players, playerID)
}

// Enqueue appends an input to a player's FIFO; called by the
// transport/gateway layer as frames arrive.
func (h *Handler) Enqueue(in Input) {
	if _, ok := h.players[in.PlayerID]; !ok {
		return
	}
	h.queues[in.PlayerID] = append(h.queues[in.PlayerID], in)
}

func (h *Handler) rateLimit(t Type) int {
	if n, ok := h.limits[t]; ok {
		return n
	}
	return h.defaultLimit
}

// Drain processes every queued input for every player, in FIFO order,
// applying sequence validation, rate limiting, and dispatch. now is
// the room's accumulated game time, used as the sliding-window clock
// (never wall-clock, per the scheduler's no-wall-clock invariant).
func (h *Handler) Drain(now float64, room game.Room, lookup ChampionLookup) {
	for playerID, queue := range h.queues {
		if len(queue) == 0 {
			continue
		}
		ps := h.players[playerID]
		for _, in := range queue {
			h.process(ps, in, now, room, lookup)
		}
		h.queues[playerID] = h.queues[playerID][:0]
	}
}

func (h *Handler) process(ps *playerState, in Input, now float64, room game.Room, lookup ChampionLookup) RejectReason {
	if ps == nil {
		return RejectInvalidType
	}
	if in.Sequence <= ps.lastAcked && ps.lastAcked != 0 {
		return RejectOldSequence
	}
	if !knownType(in.Type) {
		return RejectInvalidType
	}
	if !h.withinRateLimit(ps, in.Type, now) {
		return RejectRateLimited
	}

	champ, ok := lookup(in.PlayerID)
	if !ok {
		return RejectInvalidType
	}
	dispatch(champ, in, room, h.worldWidth, h.worldHeight)

	ps.lastAcked = in.Sequence
	return Accepted
}

// withinRateLimit implements the sliding 1-second window: timestamps
// older than now-1 are dropped, then the remaining count is compared
// against the type's limit.
func (h *Handler) withinRateLimit(ps *playerState, t Type, now float64) bool {
	limit := h.rateLimit(t)
	ts := ps.window[t]
	kept := ts[:0]
	for _, stamp := range ts {
		if now-stamp < 1.0 {
			kept = append(kept, stamp)
		}
	}
	if len(kept) >= limit {
		ps.window[t] = kept
		return false
	}
	ps.window[t] = append(kept, now)
	return true
}

func knownType(t Type) bool {
	switch t {
	case TypeMove, TypeAttackMove, TypeTargetUnit, TypeStop, TypeAbility,
		TypeLevelUp, TypeBuyItem, TypeSellItem, TypeRecall, TypePing, TypeChat, TypePlaceWard:
		return true
	}
	return false
}
