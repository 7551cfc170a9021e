// Package battleship implements a hidden-ship-placement POMDP on a 10x10
// board: four ships of decreasing length sit fixed and unseen, and each
// action probes one cell, observing "hit" or "miss" until every occupied
// cell has been found.
//
// Grounded on original_source/envs/battleship/{types,transition_model,
// observation_model,reward_model,policy_model,problem}.py.
package battleship

import "pomcp/pomdp"

// BoardSize is the board's edge length.
const BoardSize = 10

// NumShips is the fleet size; ShipLengths gives each ship's length, matching
// original_source/types.py's get_random_state, which places one ship per
// length in {5, 4, 3, 2}.
const NumShips = 4

var ShipLengths = [NumShips]int{5, 4, 3, 2}

// Coord is a board cell.
type Coord struct {
	X, Y int
}

// IsValid reports whether c lies on the board.
func (c Coord) IsValid() bool {
	return c.X >= 0 && c.Y >= 0 && c.X < BoardSize && c.Y < BoardSize
}

func (c Coord) plus(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y}
}

// compassOffsets mirrors original_source/types.py's Compass enum order:
// North, East, South, West, Null, NorthEast, SouthEast, SouthWest, NorthWest.
var compassOffsets = [9]Coord{
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
	{X: 0, Y: 0},
	{X: 1, Y: 1},
	{X: 1, Y: -1},
	{X: -1, Y: -1},
	{X: -1, Y: 1},
}

// Ship is a fixed-length line of board cells starting at Pos and running in
// direction Direction (an index into compassOffsets).
type Ship struct {
	Pos       Coord
	Direction int
	Length    int
}

func occupationCoords(s Ship) []Coord {
	coords := make([]Coord, s.Length)
	off := compassOffsets[s.Direction]
	for i := 0; i < s.Length; i++ {
		coords[i] = s.Pos.plus(Coord{X: off.X * i, Y: off.Y * i})
	}
	return coords
}

func occupiedBy(ships []Ship, c Coord) bool {
	for _, s := range ships {
		for _, seg := range occupationCoords(s) {
			if seg == c {
				return true
			}
		}
	}
	return false
}

// collides reports whether placing ship among the already-placed ships
// would overlap another ship or run off the board, or land adjacent
// (including diagonally) to another ship — matching
// original_source/types.py's State_Battleship.ship_collision, which keeps a
// one-cell buffer between ships.
func collides(placed []Ship, ship Ship) bool {
	off := compassOffsets[ship.Direction]
	for i := 0; i < ship.Length; i++ {
		target := ship.Pos.plus(Coord{X: off.X * i, Y: off.Y * i})
		if !target.IsValid() {
			return true
		}
		if occupiedBy(placed, target) {
			return true
		}
		for _, off := range compassOffsets {
			adjPos := target.plus(off)
			if adjPos.IsValid() && occupiedBy(placed, adjPos) {
				return true
			}
		}
	}
	return false
}

// State is the hidden fleet layout. It is a fixed-size array (not a slice)
// so it remains comparable, the one capability the planner's search tree
// and particle belief need from a State.
type State [NumShips]Ship

// IsOccupied reports whether any ship occupies c.
func (s State) IsOccupied(c Coord) bool {
	return occupiedBy(s[:], c)
}

// AllOccupied returns every cell occupied by some ship.
func (s State) AllOccupied() []Coord {
	var coords []Coord
	for _, ship := range s {
		coords = append(coords, occupationCoords(ship)...)
	}
	return coords
}

// CoherentWithHistory reports whether every recorded (action, observation)
// pair in h is consistent with this fleet layout, matching
// original_source/types.py's State_Battleship._is_coherent_with_history.
func (s State) CoherentWithHistory(h History) bool {
	for _, step := range h {
		occ := s.IsOccupied(step.Action)
		if step.Observation == ObsHit && !occ {
			return false
		}
		if step.Observation == ObsMiss && occ {
			return false
		}
	}
	return true
}

// Action is a probed board cell.
type Action = Coord

// Observation is the probe result.
type Observation string

const (
	ObsHit  Observation = "hit"
	ObsMiss Observation = "miss"
)

// History is the (action, observation) history type for this domain.
type History = pomdp.History[Action, Observation]
