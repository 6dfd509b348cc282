package combat

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Errors reported by CheckMove and CheckAttack.
var (
	ErrOutOfBounds = errors.New("coordinates out of bounds")
	ErrNoMover     = errors.New("no piece at start location")
	ErrOccupied    = errors.New("occupied end location")
	ErrTooFar      = errors.New("cannot move that far")
	ErrNoAttacker  = errors.New("invalid attack source or target")
	ErrOutOfRange  = errors.New("target out of attack range")
)

// AttackOutcome is the result of ObserveAttack.
type AttackOutcome struct {
	AttackResult
	// Defeated is true when the target was hit to HP <= 0 and removed.
	Defeated bool
	// XPTransferred is the experience moved from the target to the attacker.
	XPTransferred int
}

// Board is a fixed-size square grid in which each cell holds at most one
// piece. It is the only writer of piece locations.
//
// Invariant: a piece appears in at most one cell, and a placed piece's
// Location matches the cell holding it.
//
// Board is not safe for concurrent use.
type Board struct {
	size   int
	cells  [][]Piece // indexed [y][x]
	src    dice.Source
	logger *zap.Logger
}

// NewBoard creates an empty board with the given side length.
//
// Precondition: size >= 1; src and logger must be non-nil.
// Postcondition: Returns an empty board or a non-nil error.
func NewBoard(size int, src dice.Source, logger *zap.Logger) (*Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("combat: board size must be >= 1, got %d", size)
	}
	if src == nil {
		return nil, errors.New("combat: board dice source must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		size:   size,
		cells:  newCells(size),
		src:    src,
		logger: logger,
	}, nil
}

func newCells(size int) [][]Piece {
	cells := make([][]Piece, size)
	for y := range cells {
		cells[y] = make([]Piece, size)
	}
	return cells
}

// Size returns the side length of the board.
func (b *Board) Size() int { return b.size }

// InBounds reports whether c lies on the board.
func (b *Board) InBounds(c grid.Coords) bool { return c.InBounds(b.size) }

// At returns the piece at c, if any. Out-of-bounds cells are empty.
func (b *Board) At(c grid.Coords) (Piece, bool) {
	if !b.InBounds(c) {
		return nil, false
	}
	p := b.cells[c.Y][c.X]
	return p, p != nil
}

// AttackerAt returns the attacker at c, if the cell holds one.
func (b *Board) AttackerAt(c grid.Coords) (*Attacker, bool) {
	p, ok := b.At(c)
	if !ok {
		return nil, false
	}
	a, ok := p.(*Attacker)
	return a, ok
}

// Pieces returns all placed pieces in row-major order.
func (b *Board) Pieces() []Piece {
	var out []Piece
	for _, row := range b.cells {
		for _, p := range row {
			if p != nil {
				out = append(out, p)
			}
		}
	}
	return out
}

// Attackers returns all placed attackers in row-major order.
func (b *Board) Attackers() []*Attacker {
	var out []*Attacker
	for _, p := range b.Pieces() {
		if a, ok := p.(*Attacker); ok {
			out = append(out, a)
		}
	}
	return out
}

// Place puts piece at c. A piece already in c is overwritten and loses its
// location. If piece is already placed elsewhere on this board it is lifted
// from that cell first.
//
// Precondition: piece must be non-nil.
// Postcondition: At(c) returns piece and piece.Location() == c, or an error
// is returned and the board is unchanged.
func (b *Board) Place(piece Piece, c grid.Coords) error {
	if piece == nil {
		return errors.New("combat: cannot place a nil piece")
	}
	if !b.InBounds(c) {
		return fmt.Errorf("combat: place %s at %s: %w", piece.Name(), c, ErrOutOfBounds)
	}
	if prev, ok := piece.Location(); ok && b.InBounds(prev) && b.cells[prev.Y][prev.X] == piece {
		b.cells[prev.Y][prev.X] = nil
	}
	if existing := b.cells[c.Y][c.X]; existing != nil && existing != piece {
		b.logger.Warn("place overwrote occupied cell",
			zap.String("cell", c.String()),
			zap.String("displaced", existing.Name()),
			zap.String("piece", piece.Name()),
		)
		existing.setLocation(nil)
	}
	b.cells[c.Y][c.X] = piece
	piece.setLocation(&c)
	b.logger.Debug("piece placed",
		zap.String("piece", piece.Name()),
		zap.String("kind", piece.Kind().String()),
		zap.String("cell", c.String()),
	)
	return nil
}

// CheckMove reports why a move from start to end would be rejected.
//
// Postcondition: Returns nil iff an attacker occupies start, end is empty,
// and the truncated distance in feet does not exceed the mover's speed.
// Never mutates the board.
func (b *Board) CheckMove(start, end grid.Coords) error {
	if !b.InBounds(start) || !b.InBounds(end) {
		return ErrOutOfBounds
	}
	mover, ok := b.AttackerAt(start)
	if !ok {
		return ErrNoMover
	}
	if _, occupied := b.At(end); occupied {
		return ErrOccupied
	}
	if dist := grid.DistanceFeet(start, end); dist > mover.Speed() {
		return fmt.Errorf("%w: %d ft exceeds speed %d ft", ErrTooFar, dist, mover.Speed())
	}
	return nil
}

// Move relocates the attacker at start to end.
//
// Postcondition: Returns true iff CheckMove(start, end) == nil, in which
// case start is empty, end holds the mover, and the mover's location is end.
// Returns false with no state change otherwise.
func (b *Board) Move(start, end grid.Coords) bool {
	if err := b.CheckMove(start, end); err != nil {
		b.logger.Debug("move rejected",
			zap.String("start", start.String()),
			zap.String("end", end.String()),
			zap.Error(err),
		)
		return false
	}
	mover := b.cells[start.Y][start.X]
	b.cells[start.Y][start.X] = nil
	b.cells[end.Y][end.X] = mover
	mover.setLocation(&end)
	b.logger.Debug("piece moved",
		zap.String("piece", mover.Name()),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
	)
	return true
}

// CheckAttack reports why an attack from source on target would be rejected.
//
// Postcondition: Returns nil iff both cells hold attackers and the truncated
// distance in feet does not exceed the source weapon's range. Never mutates
// the board.
func (b *Board) CheckAttack(source, target grid.Coords) error {
	if !b.InBounds(source) || !b.InBounds(target) {
		return ErrOutOfBounds
	}
	attacker, ok := b.AttackerAt(source)
	if !ok {
		return ErrNoAttacker
	}
	if _, ok := b.AttackerAt(target); !ok {
		return ErrNoAttacker
	}
	if dist := grid.DistanceFeet(source, target); dist > attacker.Weapon().Range() {
		return fmt.Errorf("%w: %d ft exceeds %s range %d ft",
			ErrOutOfRange, dist, attacker.Weapon().Name(), attacker.Weapon().Range())
	}
	return nil
}

// ValidateAttack reports whether an attack from source on target is legal.
// It must be called before ObserveAttack, which does not re-validate.
func (b *Board) ValidateAttack(source, target grid.Coords) bool {
	return b.CheckAttack(source, target) == nil
}

// ObserveAttack makes the attacker at source attack the attacker at target.
// A hit that drops the target to HP <= 0 removes it from the board and adds
// its experience to the attacker. Range is not checked here.
//
// Precondition: both cells hold attackers and ValidateAttack returned true.
// Panics if either cell does not hold an attacker.
func (b *Board) ObserveAttack(source, target grid.Coords) AttackOutcome {
	attacker, ok := b.AttackerAt(source)
	if !ok {
		panic(fmt.Sprintf("combat: ObserveAttack precondition violated: no attacker at source %s", source))
	}
	defender, ok := b.AttackerAt(target)
	if !ok {
		panic(fmt.Sprintf("combat: ObserveAttack precondition violated: no attacker at target %s", target))
	}

	outcome := AttackOutcome{AttackResult: attacker.Attack(defender, b.src)}
	b.logger.Debug("attack resolved",
		zap.String("attacker", attacker.Name()),
		zap.String("target", defender.Name()),
		zap.Int("roll", outcome.AttackRoll),
		zap.Int("ac", outcome.TargetAC),
		zap.Bool("hit", outcome.Hit),
		zap.Int("damage", outcome.Damage),
		zap.Int("target_hp", outcome.TargetHP),
	)

	if outcome.Hit && defender.HP() <= 0 {
		b.cells[target.Y][target.X] = nil
		defender.setLocation(nil)
		outcome.Defeated = true
		outcome.XPTransferred = defender.XP()
		attacker.AddXP(outcome.XPTransferred)
		b.logger.Info("attacker defeated",
			zap.String("victor", attacker.Name()),
			zap.String("victim", defender.Name()),
			zap.Int("xp", outcome.XPTransferred),
		)
	}
	return outcome
}

// Reset empties every cell. Pieces that were on the board become unplaced.
func (b *Board) Reset() {
	for _, p := range b.Pieces() {
		p.setLocation(nil)
	}
	b.cells = newCells(b.size)
	b.logger.Debug("board reset")
}

// String renders the board with row labels on the left and column labels
// underneath. Empty cells are shown as '.'.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("   ")
	sb.WriteString(strings.Repeat("__", b.size))
	sb.WriteString("\n")
	for y, row := range b.cells {
		fmt.Fprintf(&sb, "%d |", y)
		for _, p := range row {
			symbol := '.'
			if p != nil {
				symbol = p.Symbol()
			}
			sb.WriteRune(symbol)
			sb.WriteByte(' ')
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("   ")
	sb.WriteString(strings.Repeat("--", b.size))
	sb.WriteString("\n   ")
	for x := 0; x < b.size; x++ {
		fmt.Fprintf(&sb, "%d ", x)
	}
	return sb.String()
}
