package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// Default combat stats for a newly created attacker.
const (
	DefaultModifier = 2
	DefaultAC       = 15
	DefaultMaxHP    = 10
	DefaultSpeed    = 30
)

// Stats holds the configurable combat statistics of an attacker.
type Stats struct {
	// Modifier is the attack modifier. It is stored but does not take part
	// in hit resolution.
	Modifier int
	// AC is the armor class an attack roll must meet or exceed.
	AC int
	// MaxHP is the starting and maximum hit points.
	MaxHP int
	// Speed is the movement allowance in feet.
	Speed int
}

// DefaultStats returns modifier 2, AC 15, max HP 10, speed 30.
func DefaultStats() Stats {
	return Stats{
		Modifier: DefaultModifier,
		AC:       DefaultAC,
		MaxHP:    DefaultMaxHP,
		Speed:    DefaultSpeed,
	}
}

// Validate checks the stat invariants.
//
// Postcondition: Returns nil iff AC >= 1, MaxHP >= 1 and Speed >= 0.
func (s Stats) Validate() error {
	var errs []error
	if s.AC < 1 {
		errs = append(errs, fmt.Errorf("ac must be >= 1, got %d", s.AC))
	}
	if s.MaxHP < 1 {
		errs = append(errs, fmt.Errorf("max_hp must be >= 1, got %d", s.MaxHP))
	}
	if s.Speed < 0 {
		errs = append(errs, fmt.Errorf("speed must be >= 0, got %d", s.Speed))
	}
	return errors.Join(errs...)
}

// Attacker is a piece that can make and receive attacks.
//
// Invariant: weapon is always set; hp starts at maxHP and only decreases
// through Attack; xp only changes through AddXP.
type Attacker struct {
	pieceBase
	weapon   inventory.Weapon
	modifier int
	ac       int
	maxHP    int
	hp       int
	speed    int
	xp       int
}

// NewAttacker creates an unplaced attacker with full HP and zero experience.
//
// Precondition: kind is KindPlayer or KindEnemy; stats must validate.
// Postcondition: Returns an attacker or a non-nil error.
func NewAttacker(kind Kind, name string, weapon inventory.Weapon, stats Stats) (*Attacker, error) {
	if kind != KindPlayer && kind != KindEnemy {
		return nil, fmt.Errorf("combat: attacker kind must be player or enemy, got %s", kind)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("combat: invalid stats for %q: %w", name, err)
	}
	return &Attacker{
		pieceBase: newPieceBase(kind, name),
		weapon:    weapon,
		modifier:  stats.Modifier,
		ac:        stats.AC,
		maxHP:     stats.MaxHP,
		hp:        stats.MaxHP,
		speed:     stats.Speed,
	}, nil
}

// NewPlayer creates a player attacker with default stats.
func NewPlayer(name string, weapon inventory.Weapon) *Attacker {
	return mustAttacker(KindPlayer, name, weapon)
}

// NewEnemy creates an enemy attacker with default stats.
func NewEnemy(name string, weapon inventory.Weapon) *Attacker {
	return mustAttacker(KindEnemy, name, weapon)
}

func mustAttacker(kind Kind, name string, weapon inventory.Weapon) *Attacker {
	a, err := NewAttacker(kind, name, weapon, DefaultStats())
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Attacker) HP() int                  { return a.hp }
func (a *Attacker) MaxHP() int               { return a.maxHP }
func (a *Attacker) AC() int                  { return a.ac }
func (a *Attacker) Modifier() int            { return a.modifier }
func (a *Attacker) Speed() int               { return a.speed }
func (a *Attacker) Weapon() inventory.Weapon { return a.weapon }
func (a *Attacker) XP() int                  { return a.xp }

// AddXP adds amount to the experience total. A negative amount subtracts.
func (a *Attacker) AddXP(amount int) {
	a.xp += amount
}

// IsDead reports whether HP has dropped to zero or below.
func (a *Attacker) IsDead() bool {
	return a.hp <= 0
}
