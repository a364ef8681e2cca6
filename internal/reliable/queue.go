// Package reliable implements the per-player reliable event queue from
// spec §4.8: at-least-once delivery for the fixed kill/objective/level
// event taxonomy, with retry, ack-cutoff trimming, and a capacity bound
// that sheds the oldest entry under back-pressure. Grounded on the
// teacher's event_log.go bounded-buffer design, simplified from its
// lock-free SPSC circular buffer to a plain slice since a room's tick
// is strictly sequential (spec §5) — there is no producer/consumer
// concurrency to guard against within one room.
package reliable

import "github.com/riftforge/moba-server/internal/game"

// Tracked is one reliable event awaiting acknowledgment by a player.
type Tracked struct {
	Event           game.Event
	EventID         uint64
	FirstQueuedTick uint64
	Attempts        int
	LastSentTick    uint64
}

// Config mirrors config.ReliableConfig; duplicated for the same reason
// as internal/priority.Config — no dependency on the file format.
type Config struct {
	RetryIntervalTicks int
	MaxRetries         int
	QueueCapacity      int
}

type playerQueue struct {
	events           []*Tracked
	lastAckedEventID uint64
}

// Queue is the room-global reliable event system: one nextEventId
// counter shared by every player, and one FIFO per player.
type Queue struct {
	cfg         Config
	nextEventID uint64
	players     map[string]*playerQueue
}

func New(cfg Config) *Queue {
	return &Queue{cfg: cfg, players: make(map[string]*playerQueue)}
}

func (q *Queue) AddPlayer(playerID string) {
	q.players[playerID] = &playerQueue{}
}

func (q *Queue) ClearPlayer(playerID string) {
	delete(q.players, playerID)
}

// Enqueue adds a reliable event to every currently tracked player's
// queue, assigning one room-global monotonic event id shared by all of
// them (an event id identifies the occurrence, not a per-player copy).
// Capacity overflow sheds the oldest entry per player, per spec §4.8.
func (q *Queue) Enqueue(evt game.Event, tick uint64) {
	if !evt.Type.Reliable() {
		return
	}
	q.nextEventID++
	id := q.nextEventID
	for _, pq := range q.players {
		pq.events = append(pq.events, &Tracked{
			Event: evt, EventID: id, FirstQueuedTick: tick,
		})
		if q.cfg.QueueCapacity > 0 && len(pq.events) > q.cfg.QueueCapacity {
			pq.events = pq.events[len(pq.events)-q.cfg.QueueCapacity:]
		}
	}
}

// PendingFor returns every event that should be (re)sent to playerID
// this tick, per the send policy: attempts == 0, or the retry interval
// has elapsed. Events that have exhausted maxRetries are skipped
// (they remain queryable via Failed but are never sent again).
func (q *Queue) PendingFor(playerID string, tick uint64) []game.Event {
	pq, ok := q.players[playerID]
	if !ok {
		return nil
	}
	var out []game.Event
	for _, t := range pq.events {
		if q.cfg.MaxRetries > 0 && t.Attempts >= q.cfg.MaxRetries {
			continue
		}
		due := t.Attempts == 0 || (tick-t.LastSentTick) >= uint64(q.cfg.RetryIntervalTicks)
		if !due {
			continue
		}
		t.Attempts++
		t.LastSentTick = tick
		out = append(out, t.Event)
	}
	return out
}

// Ack drops every tracked event with eventId <= lastEventID for
// playerID. Stale acks (lastEventID <= current lastAckedEventID) are
// no-ops; lastAckedEventId is monotone non-decreasing.
func (q *Queue) Ack(playerID string, lastEventID uint64) {
	pq, ok := q.players[playerID]
	if !ok || lastEventID <= pq.lastAckedEventID {
		return
	}
	pq.lastAckedEventID = lastEventID
	kept := pq.events[:0]
	for _, t := range pq.events {
		if t.EventID > lastEventID {
			kept = append(kept, t)
		}
	}
	pq.events = kept
}

// Failed returns the events for playerID that have exhausted their
// retry budget, for callers that want to sweep or log them.
func (q *Queue) Failed(playerID string) []*Tracked {
	pq, ok := q.players[playerID]
	if !ok || q.cfg.MaxRetries <= 0 {
		return nil
	}
	var out []*Tracked
	for _, t := range pq.events {
		if t.Attempts >= q.cfg.MaxRetries {
			out = append(out, t)
		}
	}
	return out
}
