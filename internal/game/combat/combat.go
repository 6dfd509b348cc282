// Package combat implements the grid combat engine: pieces, attackers,
// attack resolution, and the board that owns piece placement.
package combat

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Kind distinguishes the piece variants. Players and enemies behave
// identically; only their symbol and the side that controls them differ.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
	KindObstacle
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindObstacle:
		return "obstacle"
	default:
		return "unknown"
	}
}

// Symbol returns the board rendering character for the kind.
func (k Kind) Symbol() rune {
	switch k {
	case KindPlayer:
		return 'P'
	case KindEnemy:
		return 'E'
	case KindObstacle:
		return '#'
	default:
		return '?'
	}
}

// Piece is anything that can occupy a board cell.
//
// Only the Board changes a piece's location; the unexported setter keeps
// implementations inside this package.
type Piece interface {
	ID() string
	Name() string
	Kind() Kind
	Symbol() rune
	// Location returns the cell the piece occupies and whether it is placed.
	Location() (grid.Coords, bool)
	setLocation(loc *grid.Coords)
}

type pieceBase struct {
	id       string
	name     string
	kind     Kind
	location *grid.Coords
}

func newPieceBase(kind Kind, name string) pieceBase {
	return pieceBase{id: uuid.New().String(), name: name, kind: kind}
}

func (p *pieceBase) ID() string   { return p.id }
func (p *pieceBase) Name() string { return p.name }
func (p *pieceBase) Kind() Kind   { return p.kind }
func (p *pieceBase) Symbol() rune { return p.kind.Symbol() }

func (p *pieceBase) Location() (grid.Coords, bool) {
	return grid.CopyOf(p.location), p.location != nil
}

func (p *pieceBase) setLocation(loc *grid.Coords) {
	if loc == nil {
		p.location = nil
		return
	}
	c := *loc
	p.location = &c
}

// Obstacle is an inert piece that blocks a cell. It cannot move, attack, or
// be attacked.
type Obstacle struct {
	pieceBase
}

// NewObstacle creates an unplaced obstacle.
func NewObstacle(name string) *Obstacle {
	return &Obstacle{pieceBase: newPieceBase(KindObstacle, name)}
}
