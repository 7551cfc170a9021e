package battleship

import "strings"

// Board is a renderable view of a State, continuing
// tabular/grid_world/grid_world.go's rune-grid Visit/ShowGrid idiom for
// this domain's occupancy grid.
type Board struct {
	State State
}

// Visit calls fn for every board cell, top row first, matching
// tabular/grid_world.go's ShowGrid traversal order.
func (b Board) Visit(fn func(c Coord, occupied bool)) {
	for y := BoardSize - 1; y >= 0; y-- {
		for x := 0; x < BoardSize; x++ {
			c := Coord{X: x, Y: y}
			fn(c, b.State.IsOccupied(c))
		}
	}
}

// Render draws the board as a rune grid: 'o' for unprobed water, 'W' for an
// unprobed occupied cell, 'X' for a hit, '.' for a miss — the same
// console-rune-grid style tabular/grid_world.go's ShowGrid used, replacing
// original_source/types.py's pygame window (no GUI dependency appears
// anywhere else in the example pack).
func (b Board) Render(h History) string {
	hits := make(map[Coord]struct{})
	misses := make(map[Coord]struct{})
	for _, step := range h {
		if step.Observation == ObsHit {
			hits[step.Action] = struct{}{}
		} else {
			misses[step.Action] = struct{}{}
		}
	}

	var sb strings.Builder
	b.Visit(func(c Coord, occupied bool) {
		var r rune
		switch {
		case isMember(hits, c):
			r = 'X'
		case isMember(misses, c):
			r = '.'
		case occupied:
			r = 'W'
		default:
			r = 'o'
		}
		sb.WriteRune(r)
		sb.WriteRune(' ')
		if c.X == BoardSize-1 {
			sb.WriteRune('\n')
		}
	})
	return sb.String()
}

func isMember(set map[Coord]struct{}, c Coord) bool {
	_, ok := set[c]
	return ok
}
