package command

import (
	"errors"
	"strconv"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Errors returned by ParseCoordPair.
var (
	ErrUsage              = errors.New("wrong number of arguments")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// ParseCoordPair parses "x1 y1 x2 y2" into a start and end cell.
//
// Postcondition: Returns ErrUsage unless len(args) == 4, ErrInvalidCoordinates
// unless every argument is an integer in [0, size-1], otherwise both cells.
func ParseCoordPair(args []string, size int) (grid.Coords, grid.Coords, error) {
	if len(args) != 4 {
		return grid.Invalid, grid.Invalid, ErrUsage
	}
	var vals [4]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 || n > size-1 {
			return grid.Invalid, grid.Invalid, ErrInvalidCoordinates
		}
		vals[i] = n
	}
	return grid.At(vals[0], vals[1]), grid.At(vals[2], vals[3]), nil
}
