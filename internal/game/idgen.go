package game

import "github.com/google/uuid"

// IDGenerator hands out unique, never-reused entity ids for one room.
// A uuid is used rather than a counter so ids stay stable and
// collision-free across room restarts and log correlation.
type IDGenerator struct{}

func NewIDGenerator() *IDGenerator { return &IDGenerator{} }

func (g *IDGenerator) Next() string {
	return uuid.NewString()
}
