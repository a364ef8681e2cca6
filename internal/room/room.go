// Package room wires the domain packages — simulation, input,
// serialize, priority, reliable — into the single-goroutine-per-match
// unit spec §4.9 and §5 describe: one Room owns exactly one match's
// state and is driven by exactly one worker goroutine, so nothing
// inside it needs a lock. Grounded on the teacher's engine.go
// composition root, generalized from a single always-running fight
// loop into a room with an explicit waiting/starting/playing/ended
// lifecycle.
package room

import (
	"time"

	"go.uber.org/zap"

	"github.com/riftforge/moba-server/internal/content"
	"github.com/riftforge/moba-server/internal/game"
	"github.com/riftforge/moba-server/internal/input"
	"github.com/riftforge/moba-server/internal/priority"
	"github.com/riftforge/moba-server/internal/reliable"
	"github.com/riftforge/moba-server/internal/serialize"
	"github.com/riftforge/moba-server/internal/simulation"
	"github.com/riftforge/moba-server/internal/spatial"
)

// State is the room lifecycle named in spec §4.9.
type State string

const (
	StateWaiting  State = "waiting"
	StateStarting State = "starting"
	StatePlaying  State = "playing"
	StateEnded    State = "ended"
)

// PlayerDescriptor is one seat in a match, assigned before the room
// starts.
type PlayerDescriptor struct {
	PlayerID   string
	ChampionID string
	Side       game.Side
}

// MatchDescriptor is everything the room manager hands a new room at
// creation time.
type MatchDescriptor struct {
	GameID  string
	Players []PlayerDescriptor
}

// Config bundles every sub-package's tuning into one value so the
// room manager can build rooms from config.AppConfig without each
// constructor call threading a dozen primitives.
type Config struct {
	Sim        simulation.Config
	Serializer int // stale tick threshold
	Priority   priority.Config
	Reliable   reliable.Config
	RateLimits map[string]int
	DefaultRateLimit int
	WorldWidth, WorldHeight float64
}

// Room owns one match's complete mutable state. Every exported method
// is safe to call only from the goroutine that owns the room (the
// gateway's RunRoomTicker goroutine); spec §5 forbids any cross-room or cross-goroutine
// access to a Room's internals.
type Room struct {
	log   *zap.Logger
	id    string
	state State

	sim        *simulation.Simulation
	inputs     *input.Handler
	serializer *serialize.Serializer
	prioritizer *priority.Prioritizer
	reliableQ  *reliable.Queue

	players map[string]*playerSeat
	match   MatchDescriptor

	startedAt time.Time
}

type playerSeat struct {
	desc    PlayerDescriptor
	champID string
}

// New builds a room in StateWaiting; it does not spawn anything until
// Start is called.
func New(log *zap.Logger, id string, registry *content.Registry, bushes *spatial.BushMap, cfg Config) *Room {
	return &Room{
		log:         log.With(zap.String("room", id)),
		id:          id,
		state:       StateWaiting,
		sim:         simulation.New(log, registry, bushes, cfg.Sim),
		inputs:      input.NewHandler(cfg.RateLimits, cfg.DefaultRateLimit, cfg.WorldWidth, cfg.WorldHeight),
		serializer:  serialize.New(cfg.Serializer),
		prioritizer: priority.New(cfg.Priority),
		reliableQ:   reliable.New(cfg.Reliable),
		players:     make(map[string]*playerSeat),
	}
}

func (r *Room) ID() string    { return r.id }
func (r *Room) State() State  { return r.state }

// Start transitions waiting -> starting -> playing, spawning the map's
// structures and every player's champion at their side's spawn point.
// Per spec §4.9, a room that fails to reach playing (e.g. an unknown
// champion id) stays in starting and reports the error to the caller,
// which is responsible for notifying the affected players.
func (r *Room) Start(match MatchDescriptor) error {
	r.state = StateStarting
	r.match = match
	r.spawnStructures()
	r.spawnJungleCamps()

	for _, p := range match.Players {
		def, ok := r.sim.Registry().Champion(p.ChampionID)
		if !ok {
			return &UnknownChampionError{ChampionID: p.ChampionID}
		}
		sx, sy := spawnPoint(p.Side)
		champ := game.NewChampion(r.sim.NewEntityID(), p.PlayerID, p.Side, def, sx, sy)
		r.sim.Spawn(champ)

		r.players[p.PlayerID] = &playerSeat{desc: p, champID: champ.ID()}
		r.inputs.AddPlayer(p.PlayerID)
		r.serializer.AddPlayer(p.PlayerID)
		r.prioritizer.AddPlayer(p.PlayerID)
		r.reliableQ.AddPlayer(p.PlayerID)
	}

	r.state = StatePlaying
	r.startedAt = time.Now()
	r.log.Info("room started", zap.Int("players", len(match.Players)))
	return nil
}

// UnknownChampionError is returned by Start when a match descriptor
// names a champion id absent from the content registry.
type UnknownChampionError struct{ ChampionID string }

func (e *UnknownChampionError) Error() string {
	return "room: unknown champion id " + e.ChampionID
}

// spawnPoint mirrors game.spawnPointFor's side bases; kept here too
// since the room, not the champion package, owns map layout.
func spawnPoint(side game.Side) (float64, float64) {
	if side == game.SideBlue {
		return 200, 15600
	}
	return 15600, 200
}

func (r *Room) spawnStructures() {
	lanes := []string{"top", "mid", "bot"}
	for _, side := range []game.Side{game.SideBlue, game.SideRed} {
		for _, lane := range lanes {
			for tier := 1; tier <= 3; tier++ {
				x, y := towerPosition(side, lane, tier)
				r.sim.Spawn(game.NewTower(r.sim.NewEntityID(), side, lane, tier, x, y, 5400, 170, 775, 0.85))
			}
		}
		nx, ny := spawnPoint(side)
		r.sim.Spawn(game.NewNexus(r.sim.NewEntityID(), side, nx, ny, 5500))
	}
}

// towerPosition lays out three towers per lane per side along a
// diagonal toward the map's center, a simplified stand-in for the
// original's authored lane geometry.
func towerPosition(side game.Side, lane string, tier int) (float64, float64) {
	laneOffset := map[string]float64{"top": -4000, "mid": 0, "bot": 4000}[lane]
	depth := float64(tier) * 1800
	if side == game.SideBlue {
		return 1500 + depth, 14500 - depth + laneOffset
	}
	return 14500 - depth, 1500 + depth - laneOffset
}

// spawnJungleCamps places the neutral jungle creature camps; positions
// are simplified fixed points rather than a full camp layout.
func (r *Room) spawnJungleCamps() {
	camps := []struct{ x, y, health, ad float64 }{
		{4000, 8000, 1000, 40},
		{8000, 4000, 1000, 40},
		{8000, 12000, 1000, 40},
		{12000, 8000, 1000, 40},
	}
	for _, c := range camps {
		m := game.NewMinion(r.sim.NewEntityID(), game.MinionJungle, game.SideNeutral, "", c.x, c.y, c.health, c.ad, 30, 30, 0, 200, 1.5)
		r.sim.Spawn(m)
	}
}

// RemovePlayer drops a disconnected player's per-subsystem state; the
// champion entity itself remains in the simulation (AFK, not removed)
// per spec §4.9's reconnect semantics — Start's seat bookkeeping is
// left intact so a later AddConnection-style reconnect can resume it.
func (r *Room) RemovePlayer(playerID string) {
	r.inputs.ClearPlayer(playerID)
	r.serializer.ClearPlayerState(playerID)
	r.prioritizer.ClearPlayer(playerID)
	r.reliableQ.ClearPlayer(playerID)
}

// Match returns the descriptor the room was started with, for the
// gateway's GAME_START roster.
func (r *Room) Match() MatchDescriptor { return r.match }

// ChampionEntityID resolves a seated player's champion entity id.
func (r *Room) ChampionEntityID(playerID string) (string, bool) {
	seat, ok := r.players[playerID]
	if !ok {
		return "", false
	}
	return seat.champID, true
}

// ChampionOf resolves a player's champion, the lookup input.Handler's
// dispatch needs.
func (r *Room) ChampionOf(playerID string) (*game.Champion, bool) {
	seat, ok := r.players[playerID]
	if !ok {
		return nil, false
	}
	e, ok := r.sim.Index().Get(seat.champID)
	if !ok {
		return nil, false
	}
	c, ok := e.(*game.Champion)
	return c, ok
}

// EnqueueInput hands one decoded client input to the input handler's
// per-player FIFO.
func (r *Room) EnqueueInput(in input.Input) {
	r.inputs.Enqueue(in)
}

// AckEvents records a player's EVENT_ACK, trimming the reliable
// queue's backlog up to lastEventID.
func (r *Room) AckEvents(playerID string, lastEventID uint64) {
	r.reliableQ.Ack(playerID, lastEventID)
}

// Stop transitions the room to ended without a winner, for graceful
// server shutdown: the gateway's ticker goroutine observes Ended() on
// its next select and exits instead of advancing the simulation
// further. Inputs still queued are not applied, and a Step after Stop
// returns no updates, so players receive no GAME_END frame.
func (r *Room) Stop() {
	if r.state == StateEnded {
		return
	}
	r.state = StateEnded
	r.log.Info("room stopped")
}

// Ended reports whether the match has reached a win condition or the
// room was stopped.
func (r *Room) Ended() bool { return r.sim.Ended || r.state == StateEnded }

// WinningSide is valid only once Ended() is true.
func (r *Room) WinningSide() game.Side { return r.sim.WinningSide }

// CurrentTick reports the tick counter without advancing it, for the
// gateway's GAME_START frame.
func (r *Room) CurrentTick() uint64 { return r.sim.Tick() }

// Step advances the room exactly one fixed step and returns the set of
// per-player outbound updates the gateway should deliver. It is the
// single entry point the room's owning goroutine calls on its ticker.
func (r *Room) Step() []PlayerUpdate {
	if r.state != StatePlaying {
		return nil
	}

	r.sim.Step(func() {
		r.inputs.Drain(r.sim.GameTime(), r.sim, r.ChampionOf)
	})

	tick := r.sim.Tick()
	for _, evt := range r.sim.DrainEvents() {
		r.reliableQ.Enqueue(evt, tick)
	}

	if r.sim.Ended {
		r.state = StateEnded
	}

	return r.buildUpdates(tick)
}

// PlayerUpdate is one player's complete outbound payload for a tick,
// ready for the gateway to translate into a transport.Frame.
type PlayerUpdate struct {
	PlayerID    string
	Tick        uint64
	GameTime    float64
	Updates     []serialize.Update
	Events      []game.Event
	LastEventID uint64
}

func (r *Room) buildUpdates(tick uint64) []PlayerUpdate {
	out := make([]PlayerUpdate, 0, len(r.players))
	all := r.sim.Index().All()

	for playerID, seat := range r.players {
		champ, _ := r.ChampionOf(playerID)
		side := seat.desc.Side

		visible := make([]game.Entity, 0, len(all))
		visibleIDs := make(map[string]bool, len(all))
		for _, e := range all {
			if r.sim.VisibleTo(side, e.ID()) {
				visible = append(visible, e)
				visibleIDs[e.ID()] = true
			}
		}

		selected := r.prioritizer.Select(playerID, tick, champ, visible)
		snapshots := make([]game.Snapshot, 0, len(selected))
		for _, e := range selected {
			snapshots = append(snapshots, e.ToSnapshot())
		}

		updates := r.serializer.Update(playerID, tick, snapshots, visibleIDs)
		events := r.reliableQ.PendingFor(playerID, tick)

		out = append(out, PlayerUpdate{
			PlayerID: playerID,
			Tick:     tick,
			GameTime: r.sim.GameTime(),
			Updates:  updates,
			Events:   events,
		})
	}
	return out
}
