package room

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/riftforge/moba-server/internal/content"
	"github.com/riftforge/moba-server/internal/spatial"
)

// ErrRoomNotFound is returned when a caller references a game id the
// manager has no record of.
var ErrRoomNotFound = errors.New("room: not found")

// ErrPlayerNotInRoom is returned when a caller references a player id
// not seated in any active room.
var ErrPlayerNotInRoom = errors.New("room: player not in any room")

// Manager owns the gameId -> Room and playerId -> gameId maps spec
// §4.9 describes. Each Room is driven by its own worker goroutine
// (wired by the gateway, not this package); Manager's own methods are
// safe for concurrent use since connect/disconnect routing happens off
// any single room's tick goroutine.
type Manager struct {
	log      *zap.Logger
	registry *content.Registry
	bushes   *spatial.BushMap
	cfg      Config

	mu            sync.RWMutex
	rooms         map[string]*Room
	playerToGame  map[string]string
}

func NewManager(log *zap.Logger, registry *content.Registry, bushes *spatial.BushMap, cfg Config) *Manager {
	return &Manager{
		log:          log,
		registry:     registry,
		bushes:       bushes,
		cfg:          cfg,
		rooms:        make(map[string]*Room),
		playerToGame: make(map[string]string),
	}
}

// CreateAndStart builds a new room for match, starts it immediately,
// and registers every seated player's routing entry. The caller is
// responsible for spawning the room's tick goroutine.
func (m *Manager) CreateAndStart(match MatchDescriptor) (*Room, error) {
	r := New(m.log, match.GameID, m.registry, m.bushes, m.cfg)
	if err := r.Start(match); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.rooms[match.GameID] = r
	for _, p := range match.Players {
		m.playerToGame[p.PlayerID] = match.GameID
	}
	m.mu.Unlock()

	return r, nil
}

// Get returns the room for gameID.
func (m *Manager) Get(gameID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[gameID]
	return r, ok
}

// RoomForPlayer resolves a connecting/reconnecting player to their
// room, for the gateway's READY-frame handshake.
func (m *Manager) RoomForPlayer(playerID string) (*Room, error) {
	m.mu.RLock()
	gameID, ok := m.playerToGame[playerID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrPlayerNotInRoom
	}
	r, ok := m.Get(gameID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Disconnect drops a player's live connection state (input queue,
// serializer baselines, reliable backlog) without removing their seat,
// per spec §4.9's distinction between a disconnect and a forfeit.
func (m *Manager) Disconnect(playerID string) {
	r, err := m.RoomForPlayer(playerID)
	if err != nil {
		return
	}
	r.RemovePlayer(playerID)
}

// EndRoom removes a finished room and its players' routing entries.
// Called once the gateway has delivered the GAME_END frame to every
// connected player.
func (m *Manager) EndRoom(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[gameID]
	if !ok {
		return
	}
	for playerID, gid := range m.playerToGame {
		if gid == gameID {
			delete(m.playerToGame, playerID)
		}
	}
	delete(m.rooms, gameID)
	m.log.Info("room ended", zap.String("room", r.ID()))
}

// StopAll tells every currently tracked room to stop, for graceful
// shutdown. It does not wait for each room's tick goroutine to notice;
// the caller is expected to give them a bounded grace period before
// exiting the process regardless.
func (m *Manager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rooms {
		r.Stop()
	}
}

// RoomCount reports how many rooms are currently tracked, for the
// gateway's health endpoint and rooms gauge. The manager enforces no
// room limit; config.ResourceLimits.MaxRooms is not read here.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
