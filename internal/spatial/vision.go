package spatial

import "math"

// BushShape is the containment test a bush region uses.
type BushShape int

const (
	BushRect BushShape = iota
	BushCircle
)

// Bush is a map-defined region that hides non-structure entities from
// observers that do not themselves have a presence inside it.
type Bush struct {
	ID     string
	Shape  BushShape
	X, Y   float64 // center (circle) or top-left corner (rect)
	Width  float64 // rect only
	Height float64 // rect only
	Radius float64 // circle only
}

// Contains reports whether (x, y) lies inside the bush. Edge-inclusive
// on the outer boundary is deliberately false: a point exactly on the
// boundary is outside, matching the "inside by any positive epsilon can
// see" boundary behavior the bush visibility rule requires.
func (b Bush) Contains(x, y float64) bool {
	switch b.Shape {
	case BushCircle:
		dx, dy := x-b.X, y-b.Y
		return dx*dx+dy*dy < b.Radius*b.Radius
	default:
		return x > b.X && x < b.X+b.Width && y > b.Y && y < b.Height+b.Y
	}
}

// BushMap holds every bush on the map and answers containment queries.
type BushMap struct {
	bushes []Bush
}

// NewBushMap builds a lookup from a fixed list of map-authored bushes.
func NewBushMap(bushes []Bush) *BushMap {
	return &BushMap{bushes: append([]Bush(nil), bushes...)}
}

// Find returns the bush containing (x, y), if any.
func (m *BushMap) Find(x, y float64) (Bush, bool) {
	for _, b := range m.bushes {
		if b.Contains(x, y) {
			return b, true
		}
	}
	return Bush{}, false
}

// VisionSource is anything that can grant sight to its team: a living
// unit with sightRange > 0, or a ward.
type VisionSource struct {
	X, Y       float64
	SightRange float64
	Side       int
}

// CanSee implements the observer-team visibility rule from the fog of
// war invariant: always-visible structures aside, a target position is
// visible to a team iff some source of that team is within sight range
// of it AND, if the target sits in a bush, the bush rule is satisfied.
//
// sources must already be filtered to the observing team.
func CanSee(bushes *BushMap, sources []VisionSource, targetX, targetY float64, targetIsOwnTeam, targetIsStructure bool) bool {
	if targetIsOwnTeam || targetIsStructure {
		return true
	}

	bush, inBush := bushes.Find(targetX, targetY)

	for _, src := range sources {
		dx, dy := targetX-src.X, targetY-src.Y
		withinRange := dx*dx+dy*dy <= src.SightRange*src.SightRange
		if !withinRange {
			continue
		}
		if !inBush {
			return true
		}
		// Target is in a bush: the source itself must also be inside
		// the same bush. A source outside the bush whose sight range
		// merely reaches the target's coordinates is not sufficient.
		if bush.Contains(src.X, src.Y) {
			return true
		}
	}
	return false
}

// Dist2 is the squared euclidean distance, used wherever only a
// threshold comparison is needed so callers can skip the sqrt.
func Dist2(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}

// Dist is the euclidean distance between two points.
func Dist(ax, ay, bx, by float64) float64 {
	return math.Sqrt(Dist2(ax, ay, bx, by))
}
