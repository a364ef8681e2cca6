package gateway

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/riftforge/moba-server/internal/input"
	"github.com/riftforge/moba-server/internal/room"
	"github.com/riftforge/moba-server/internal/transport"
)

// Server owns the websocket transport, the room manager, and the
// per-connection goroutines that translate transport.Frame traffic
// into room.Room calls and back, per spec §6's external interface.
type Server struct {
	log      *zap.Logger
	manager  *room.Manager
	ws       *WSTransport
	tickRate int

	mu          sync.RWMutex
	connByPlayer map[string]*wsConn

	roomsStarted map[string]bool
}

func NewServer(log *zap.Logger, manager *room.Manager, ws *WSTransport, tickRateHz int) *Server {
	return &Server{
		log:          log,
		manager:      manager,
		ws:           ws,
		tickRate:     tickRateHz,
		connByPlayer: make(map[string]*wsConn),
		roomsStarted: make(map[string]bool),
	}
}

// sendToPlayer delivers f to playerID's live connection, if any. A
// disconnected or not-yet-reconnected player simply misses the frame.
// Reliable events are retried by internal/reliable only while the
// player's queue exists; a disconnect clears it.
func (s *Server) sendToPlayer(playerID string, f transport.Frame) {
	s.mu.RLock()
	c, ok := s.connByPlayer[playerID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	c.Send(f)
}

// Run accepts connections until ctx is cancelled, spawning one
// goroutine per connection. It does not return until every accepted
// connection's goroutine has been signalled to stop.
func (s *Server) Run(ctx context.Context) {
	for {
		conn, err := s.ws.Accept(ctx)
		if err != nil {
			return
		}
		go s.handleConn(ctx, conn.(*wsConn))
	}
}

// handleConn performs the READY handshake, then pumps inbound frames
// to the player's room and forwards PING/EVENT_ACK, until the
// connection errors or ctx is cancelled. It never drives a room's
// tick loop itself — that is RunRoomTicker's job, one per room.
func (s *Server) handleConn(ctx context.Context, c *wsConn) {
	defer func() {
		s.ws.Release(c.IP())
		c.Close()
		if c.playerID != "" {
			s.mu.Lock()
			delete(s.connByPlayer, c.playerID)
			s.mu.Unlock()
			s.manager.Disconnect(c.playerID)
		}
	}()

	r, err := s.awaitReady(ctx, c)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.connByPlayer[c.playerID] = c
	s.mu.Unlock()
	s.sendGameStart(c, r)
	s.ensureRoomRunning(ctx, r)

	for {
		f, err := c.Recv(ctx)
		if err != nil {
			return
		}
		s.handleFrame(c, r, f)
	}
}

// awaitReady blocks until the connection sends a READY frame naming a
// player already seated in a room (the room manager's playerToGame map
// is populated when the room manager created the match), or returns an
// error if the frame is invalid or the wait is cancelled.
func (s *Server) awaitReady(ctx context.Context, c *wsConn) (*room.Room, error) {
	f, err := c.Recv(ctx)
	if err != nil {
		return nil, err
	}
	if f.Type != transport.FrameReady {
		c.Send(transport.Frame{Type: transport.FrameError, Body: errBody("expected READY")})
		return nil, io.ErrUnexpectedEOF
	}
	var body transport.ReadyBody
	if err := json.Unmarshal(f.Body, &body); err != nil {
		return nil, err
	}
	r, err := s.manager.RoomForPlayer(body.PlayerID)
	if err != nil {
		c.Send(transport.Frame{Type: transport.FrameError, Body: errBody("unknown player")})
		return nil, err
	}
	c.playerID = body.PlayerID
	return r, nil
}

// sendGameStart builds and sends the GAME_START roster frame spec §6
// defines, from the room's match descriptor.
func (s *Server) sendGameStart(c *wsConn, r *room.Room) {
	match := r.Match()
	players := make([]transport.PlayerStart, 0, len(match.Players))
	var yourSide int
	for _, p := range match.Players {
		entityID, _ := r.ChampionEntityID(p.PlayerID)
		players = append(players, transport.PlayerStart{
			PlayerID: p.PlayerID, ChampionID: p.ChampionID, Side: int(p.Side), EntityID: entityID,
		})
		if p.PlayerID == c.playerID {
			yourSide = int(p.Side)
		}
	}
	body, _ := json.Marshal(transport.GameStartBody{
		GameID: r.ID(), Tick: r.CurrentTick(), GameTime: 0, YourSide: yourSide, Players: players,
	})
	c.Send(transport.Frame{Type: transport.FrameGameStart, Body: body})
}

// ensureRoomRunning spawns the room's tick-driving goroutine exactly
// once, the first time any player connects to it.
func (s *Server) ensureRoomRunning(ctx context.Context, r *room.Room) {
	s.mu.Lock()
	if s.roomsStarted[r.ID()] {
		s.mu.Unlock()
		return
	}
	s.roomsStarted[r.ID()] = true
	s.mu.Unlock()

	setRoomsActive(s.manager.RoomCount())
	go s.RunRoomTicker(ctx, r)
}

func errBody(msg string) json.RawMessage {
	data, _ := json.Marshal(transport.ErrorBody{Error: msg})
	return data
}

func (s *Server) handleFrame(c *wsConn, r *room.Room, f transport.Frame) {
	switch f.Type {
	case transport.FrameInput:
		var ci transport.ClientInput
		if err := json.Unmarshal(f.Body, &ci); err != nil {
			return
		}
		r.EnqueueInput(input.Input{
			PlayerID:       c.playerID,
			Sequence:       ci.Seq,
			Type:           input.Type(ci.Type),
			TargetX:        ci.TargetX,
			TargetY:        ci.TargetY,
			TargetEntityID: ci.TargetEntityID,
			Slot:           ci.Slot,
			ItemID:         ci.ItemID,
		})
	case transport.FramePing:
		var body transport.PingBody
		if err := json.Unmarshal(f.Body, &body); err != nil {
			return
		}
		pong, _ := json.Marshal(transport.PongBody{ClientTimestamp: body.Timestamp, ServerTimestamp: time.Now().UnixMilli()})
		c.Send(transport.Frame{Type: transport.FramePong, Body: pong})
	case transport.FrameEventAck:
		var body transport.EventAckBody
		if err := json.Unmarshal(f.Body, &body); err != nil {
			return
		}
		r.AckEvents(c.playerID, body.LastEventID)
	}
}

// RunRoomTicker drives one room's fixed-tick loop on its own ticker
// and fans each tick's per-player updates out through sendToPlayer, until the
// room ends or ctx is cancelled. One goroutine per room, per spec §5 —
// no two rooms ever share this loop.
func (s *Server) RunRoomTicker(ctx context.Context, r *room.Room) {
	interval := time.Second / time.Duration(s.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			updates := r.Step()
			recordTick(time.Since(start))

			for _, u := range updates {
				s.sendToPlayer(u.PlayerID, buildStateFrame(u))
			}

			if r.Ended() {
				for _, u := range updates {
					body, _ := json.Marshal(transport.GameEndBody{WinningSide: int(r.WinningSide()), Duration: u.GameTime})
					s.sendToPlayer(u.PlayerID, transport.Frame{Type: transport.FrameGameEnd, Body: body})
				}
				s.manager.EndRoom(r.ID())
				return
			}
		}
	}
}

func buildStateFrame(u room.PlayerUpdate) transport.Frame {
	deltas := make([]transport.EntityDelta, 0, len(u.Updates))
	for _, up := range u.Updates {
		if up.IsRemoved {
			deltas = append(deltas, transport.EntityDelta{EntityID: up.EntityID, ChangeMask: int(up.Mask)})
			continue
		}
		data, _ := json.Marshal(up.Snapshot)
		deltas = append(deltas, transport.EntityDelta{EntityID: up.EntityID, ChangeMask: int(up.Mask), Data: data})
	}

	events := make([]transport.GameEvent, 0, len(u.Events))
	for _, evt := range u.Events {
		events = append(events, transport.GameEvent{Type: string(evt.Type), Tick: evt.Tick, PlayerID: evt.PlayerID, Payload: evt.Payload})
	}

	body, _ := json.Marshal(transport.StateUpdateBody{
		Tick:     u.Tick,
		Timestamp: time.Now().UnixMilli(),
		GameTime: u.GameTime,
		Deltas:   deltas,
		Events:   events,
	})
	return transport.Frame{Type: transport.FrameStateUpdate, Body: body}
}
