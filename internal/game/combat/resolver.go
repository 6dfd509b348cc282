package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// D20 is the number of sides on the attack die.
const D20 = 20

// AttackResult holds the outcome of a single attack action.
type AttackResult struct {
	AttackerID   string
	AttackerName string
	TargetID     string
	TargetName   string
	// AttackRoll is the raw d20 result.
	AttackRoll int
	// TargetAC is the armor class the roll was compared against.
	TargetAC int
	// Hit is true when AttackRoll >= TargetAC.
	Hit bool
	// Damage is the weapon damage applied; zero on a miss.
	Damage int
	// TargetHP is the target's HP after damage was applied.
	TargetHP int
}

// Message returns the console notification for the attack.
func (r AttackResult) Message() string {
	if r.Hit {
		return fmt.Sprintf("Attack hit and dealt %d damage.", r.Damage)
	}
	return "Attack missed."
}

// Hits reports whether an attack roll meets the armor class.
func Hits(roll, ac int) bool {
	return roll >= ac
}

// Attack rolls a d20 against target's AC and, on a hit, rolls the weapon's
// damage and subtracts it from the target's HP. HP is not clamped at zero.
// The attacker's modifier does not apply.
//
// Precondition: target and src must be non-nil.
// Postcondition: On a miss exactly one value is drawn from src and the
// target is unchanged; on a hit two values are drawn.
func (a *Attacker) Attack(target *Attacker, src dice.Source) AttackResult {
	roll := src.Intn(D20) + 1
	result := AttackResult{
		AttackerID:   a.ID(),
		AttackerName: a.Name(),
		TargetID:     target.ID(),
		TargetName:   target.Name(),
		AttackRoll:   roll,
		TargetAC:     target.ac,
	}
	if Hits(roll, target.ac) {
		result.Hit = true
		result.Damage = a.weapon.RollDamage(src)
		target.hp -= result.Damage
	}
	result.TargetHP = target.hp
	return result
}
