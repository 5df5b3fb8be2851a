// board/board.go
package board

import (
	"errors"
	"math/rand"
	"sort"
)

// ErrInvalidBoardSize is returned when the cell count cannot be laid out
// as a square perimeter with four equal sides.
var ErrInvalidBoardSize = errors.New("board size must be >= 8 and divisible by 4")

// Cell is one position on the perimeter path.
type Cell struct {
	Index    int  `json:"index"`
	X        int  `json:"x"`
	Y        int  `json:"y"`
	IsStart  bool `json:"isStart"`
	IsFinish bool `json:"isFinish"`
}

// Geometry is the immutable layout of a board. Cells run clockwise from the
// bottom-left corner: bottom edge, right edge, top edge, left edge.
// Coordinates are grid positions with the origin at the top-left, so the
// starting cell sits at (0, side).
type Geometry struct {
	Total int
	Side  int
	Cells []Cell
}

// NewGeometry lays out a perimeter of total cells. total must be divisible
// into four equal sides; anything else is rejected rather than approximated.
func NewGeometry(total int) (*Geometry, error) {
	if total < 8 || total%4 != 0 {
		return nil, ErrInvalidBoardSize
	}

	side := total / 4
	cells := make([]Cell, total)
	for i := 0; i < total; i++ {
		var x, y int
		switch {
		case i < side: // bottom edge, left to right
			x, y = i, side
		case i < 2*side: // right edge, bottom to top
			x, y = side, side-(i-side)
		case i < 3*side: // top edge, right to left
			x, y = side-(i-2*side), 0
		default: // left edge, top to bottom
			x, y = 0, i-3*side
		}
		cells[i] = Cell{
			Index:    i,
			X:        x,
			Y:        y,
			IsStart:  i == 0,
			IsFinish: i == total-1,
		}
	}

	return &Geometry{Total: total, Side: side, Cells: cells}, nil
}

// LastIndex is the finish cell index.
func (g *Geometry) LastIndex() int {
	return g.Total - 1
}

// SampleTaskCells picks max(1, floor(eligible*ratio)) task cells uniformly
// without replacement from the cells between start and finish. The returned
// indices are sorted. Geometry itself is not mutated; task cells live in the
// room's task table.
func (g *Geometry) SampleTaskCells(ratio float64, rng *rand.Rand) []int {
	eligible := make([]int, 0, g.Total-2)
	for _, c := range g.Cells {
		if c.IsStart || c.IsFinish {
			continue
		}
		eligible = append(eligible, c.Index)
	}

	count := int(float64(len(eligible)) * ratio)
	if count < 1 {
		count = 1
	}
	if count > len(eligible) {
		count = len(eligible)
	}

	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	picked := append([]int(nil), eligible[:count]...)
	sort.Ints(picked)
	return picked
}
