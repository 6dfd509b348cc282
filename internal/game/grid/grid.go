// Package grid provides board coordinates and the distance rules shared by
// movement and attack-range checks.
package grid

import (
	"fmt"
	"math"
)

// FeetPerTile converts a distance in tiles to feet for speed and range checks.
const FeetPerTile = 5

// Coords identifies a cell on a square board. X is the column, Y the row.
type Coords struct {
	X int
	Y int
}

// Invalid is the sentinel returned when a location cannot be copied.
var Invalid = Coords{X: -1, Y: -1}

// At is shorthand for Coords{X: x, Y: y}.
func At(x, y int) Coords {
	return Coords{X: x, Y: y}
}

// CopyOf returns a copy of *c, or Invalid when c is nil.
func CopyOf(c *Coords) Coords {
	if c == nil {
		return Invalid
	}
	return *c
}

// String renders the coordinates as "(x, y)".
func (c Coords) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// InBounds reports whether c lies on a board with the given side length.
func (c Coords) InBounds(size int) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < size && c.Y < size
}

// Distance returns the straight-line distance between a and b in tiles,
// truncated toward zero. Diagonal steps are therefore cheaper than in
// Manhattan distance and (1,1) is a single tile away.
//
// Postcondition: Distance(a, b) == Distance(b, a); Distance(a, a) == 0.
func Distance(a, b Coords) int {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return int(math.Sqrt(dx*dx + dy*dy))
}

// DistanceFeet returns Distance(a, b) converted to feet.
func DistanceFeet(a, b Coords) int {
	return Distance(a, b) * FeetPerTile
}
