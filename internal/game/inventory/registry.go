package inventory

import (
	"fmt"
	"sort"
)

// Registry holds weapons indexed by ID.
//
// Invariant: the shortsword is always registered.
type Registry struct {
	weapons map[string]Weapon
}

// NewRegistry returns a Registry holding only the shortsword.
func NewRegistry() *Registry {
	return &Registry{
		weapons: map[string]Weapon{ShortswordID: Shortsword},
	}
}

// RegisterWeapon adds w to the registry.
//
// Postcondition: Weapon(w.ID()) returns w; returns error if the ID is already registered.
func (r *Registry) RegisterWeapon(w Weapon) error {
	if _, exists := r.weapons[w.ID()]; exists {
		return fmt.Errorf("inventory: Registry.RegisterWeapon: weapon ID %q already registered", w.ID())
	}
	r.weapons[w.ID()] = w
	return nil
}

// Weapon returns the weapon for id and whether it was found.
func (r *Registry) Weapon(id string) (Weapon, bool) {
	w, ok := r.weapons[id]
	return w, ok
}

// AllWeapons returns all registered weapons sorted by ID.
func (r *Registry) AllWeapons() []Weapon {
	out := make([]Weapon, 0, len(r.weapons))
	for _, w := range r.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// LoadRegistry builds a Registry from the YAML files in dir. An empty dir
// path yields the built-in registry.
func LoadRegistry(dir string) (*Registry, error) {
	r := NewRegistry()
	if dir == "" {
		return r, nil
	}
	weapons, err := LoadWeapons(dir)
	if err != nil {
		return nil, err
	}
	for _, w := range weapons {
		if err := r.RegisterWeapon(w); err != nil {
			return nil, err
		}
	}
	return r, nil
}
