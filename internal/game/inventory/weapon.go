// Package inventory provides weapon definitions and their YAML loader.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// ShortswordID is the registry ID of the built-in default weapon.
const ShortswordID = "shortsword"

// Weapon is an immutable damage and range profile.
//
// Invariant: damageDie >= 1; rangeFt >= 0.
type Weapon struct {
	id        string
	name      string
	damageDie int
	rangeFt   int
}

// NewWeapon builds a Weapon.
//
// Precondition: damageDie >= 1; rangeFt >= 0.
// Postcondition: Returns a Weapon or an error naming every violated field.
func NewWeapon(id, name string, damageDie, rangeFt int) (Weapon, error) {
	var errs []error
	if id == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if damageDie < 1 {
		errs = append(errs, fmt.Errorf("damage die must be >= 1, got %d", damageDie))
	}
	if rangeFt < 0 {
		errs = append(errs, fmt.Errorf("range must be >= 0, got %d", rangeFt))
	}
	if len(errs) > 0 {
		return Weapon{}, fmt.Errorf("weapon validation failed: %w", errors.Join(errs...))
	}
	return Weapon{id: id, name: name, damageDie: damageDie, rangeFt: rangeFt}, nil
}

// Shortsword is a d6 melee weapon with a 5 foot reach.
var Shortsword = Weapon{id: ShortswordID, name: "Shortsword", damageDie: 6, rangeFt: 5}

// DefaultWeapon returns the weapon given to pieces that do not name one.
func DefaultWeapon() Weapon { return Shortsword }

// ID returns the registry key.
func (w Weapon) ID() string { return w.id }

// Name returns the display name.
func (w Weapon) Name() string { return w.name }

// DamageDie returns the number of sides on the damage die.
func (w Weapon) DamageDie() int { return w.damageDie }

// Range returns the attack range in feet.
func (w Weapon) Range() int { return w.rangeFt }

// RollDamage rolls the damage die.
//
// Precondition: src must be non-nil.
// Postcondition: 1 <= result <= DamageDie().
func (w Weapon) RollDamage(src dice.Source) int {
	return src.Intn(w.damageDie) + 1
}

// String renders the weapon as "Shortsword (d6, 5 ft)".
func (w Weapon) String() string {
	return fmt.Sprintf("%s (d%d, %d ft)", w.name, w.damageDie, w.rangeFt)
}

// WeaponDef is the YAML representation of a weapon.
type WeaponDef struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	DamageDice string `yaml:"damage_dice"`
	Range      int    `yaml:"range"`
}

// Build validates d and converts it to a Weapon. DamageDice must be a single
// unmodified die such as "d8" or "1d8".
//
// Postcondition: Returns a valid Weapon or a non-nil error.
func (d WeaponDef) Build() (Weapon, error) {
	expr, err := dice.Parse(d.DamageDice)
	if err != nil {
		return Weapon{}, fmt.Errorf("weapon %q: %w", d.ID, err)
	}
	if expr.Count != 1 || expr.Modifier != 0 || expr.KeepHighest != 0 {
		return Weapon{}, fmt.Errorf("weapon %q: damage_dice %q must be a single die", d.ID, d.DamageDice)
	}
	return NewWeapon(d.ID, d.Name, expr.Sides, d.Range)
}

// LoadWeapons reads all *.yaml and *.yml files from dir, parses each as a
// WeaponDef, and returns the validated weapons.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Weapons or the first encountered error.
func LoadWeapons(dir string) ([]Weapon, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: cannot read directory %q: %w", dir, err)
	}

	var weapons []Weapon
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot read file %q: %w", path, err)
		}
		var def WeaponDef
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot parse file %q: %w", path, err)
		}
		w, err := def.Build()
		if err != nil {
			return nil, fmt.Errorf("LoadWeapons: invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, w)
	}
	return weapons, nil
}
