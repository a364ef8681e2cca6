package input

import (
	"strconv"

	"github.com/riftforge/moba-server/internal/game"
)

// ultimateLevelGate is the per-rank level requirement for the ultimate slot.
var ultimateLevelGate = [3]int{6, 11, 16}

// dispatch applies one accepted input to its champion. Per-type
// validation failures (insufficient gold, no skill points, etc.) are
// silently void — spec §4.5 only defines rejection reasons for the
// queue-level checks (sequence/type/rate), not for dispatch outcomes.
func dispatch(c *game.Champion, in Input, room game.Room, worldWidth, worldHeight float64) {
	switch in.Type {
	case TypeMove, TypeAttackMove:
		x, y := clampToBounds(in.TargetX, in.TargetY, worldWidth, worldHeight)
		c.MoveTargetX, c.MoveTargetY = x, y
		c.HasMoveTarget = true
		c.AttackTargetID = ""
		c.FollowTargetID = ""

	case TypeTargetUnit:
		target, ok := room.Index().Get(in.TargetEntityID)
		if !ok {
			return
		}
		if target.Side() == c.Side() {
			c.FollowTargetID = in.TargetEntityID
			c.AttackTargetID = ""
		} else {
			c.AttackTargetID = in.TargetEntityID
			c.FollowTargetID = ""
		}
		c.HasMoveTarget = false

	case TypeStop:
		c.HasMoveTarget = false
		c.AttackTargetID = ""
		c.FollowTargetID = ""
		c.Forced = nil

	case TypeAbility:
		game.TryCast(c, game.CastRequest{
			Slot:           in.Slot,
			TargetEntityID: in.TargetEntityID,
			TargetX:        in.TargetX,
			TargetY:        in.TargetY,
			HasTargetPos:   in.TargetX != 0 || in.TargetY != 0,
		}, room)

	case TypeLevelUp:
		dispatchLevelUp(c, in)

	case TypeBuyItem:
		dispatchBuyItem(c, in, room)

	case TypeSellItem:
		dispatchSellItem(c, in)

	case TypeRecall:
		if !c.IsDead() && !c.InCombat {
			c.Recall.Recalling = true
			c.Recall.Progress = 0
		}

	case TypePlaceWard:
		dispatchPlaceWard(c, in, room, worldWidth, worldHeight)

	case TypePing, TypeChat:
		// Accepted and rate-limited, with no server-side effect; they
		// are not relayed to other players.
	}
}

func clampToBounds(x, y, w, h float64) (float64, float64) {
	if x < 0 {
		x = 0
	}
	if x > w {
		x = w
	}
	if y < 0 {
		y = 0
	}
	if y > h {
		y = h
	}
	return x, y
}

func dispatchLevelUp(c *game.Champion, in Input) {
	if c.SkillPoints <= 0 {
		return
	}
	slot := c.Slot(in.Slot)
	if slot == nil {
		return
	}
	if in.Slot == "R" && slot.Rank >= levelGateRank(c.Level) {
		return
	}
	slot.Rank++
	c.SkillPoints--
}

// levelGateRank returns how many ultimate ranks are unlocked at the
// champion's current level (one per gate reached).
func levelGateRank(level int) int {
	n := 0
	for _, gate := range ultimateLevelGate {
		if level >= gate {
			n++
		}
	}
	return n
}

func dispatchBuyItem(c *game.Champion, in Input, room game.Room) {
	item, ok := room.Registry().Item(in.ItemID)
	if !ok || c.Gold < item.Cost {
		return
	}
	for i := range c.Items {
		if c.Items[i].ItemID == "" {
			c.Items[i] = game.ItemSlot{ItemID: in.ItemID}
			c.Gold -= item.Cost
			return
		}
	}
}

func dispatchSellItem(c *game.Champion, in Input) {
	idx, err := strconv.Atoi(in.Slot)
	if err != nil || idx < 0 || idx >= len(c.Items) {
		return
	}
	if c.Items[idx].ItemID == "" {
		return
	}
	c.Items[idx] = game.ItemSlot{}
}

func dispatchPlaceWard(c *game.Champion, in Input, room game.Room, worldWidth, worldHeight float64) {
	if c.TrinketState.Charges <= 0 {
		return
	}
	x, y := clampToBounds(in.TargetX, in.TargetY, worldWidth, worldHeight)
	if distSquared(c.X(), c.Y(), x, y) > 700*700 {
		return
	}
	c.TrinketState.Charges--
	ward := game.NewWard(room.NewEntityID(), c.ID(), c.Side(), x, y)
	room.Spawn(ward)
}

func distSquared(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}
