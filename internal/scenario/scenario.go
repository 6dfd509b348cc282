// Package scenario loads board setups from YAML and places their pieces.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// DefaultBoardSize is the side length of the built-in duel.
const DefaultBoardSize = 10

// PieceSpec describes one piece to place.
type PieceSpec struct {
	Kind     combat.Kind
	Name     string
	WeaponID string
	At       grid.Coords
	Stats    combat.Stats
	// XP is the experience the piece starts with; it is what a victor
	// receives for defeating it.
	XP int
}

// Scenario is a validated board setup.
type Scenario struct {
	Name string
	// BoardSize is the side length; zero means the caller's default.
	BoardSize int
	Pieces    []PieceSpec
}

// Default returns the built-in duel: a player at (0,0) and a goblin at (4,0),
// both carrying shortswords, on a 10x10 board.
func Default() *Scenario {
	return &Scenario{
		Name:      "duel",
		BoardSize: DefaultBoardSize,
		Pieces: []PieceSpec{
			{Kind: combat.KindPlayer, Name: "Player", WeaponID: inventory.ShortswordID, At: grid.At(0, 0), Stats: combat.DefaultStats()},
			{Kind: combat.KindEnemy, Name: "Goblin", WeaponID: inventory.ShortswordID, At: grid.At(4, 0), Stats: combat.DefaultStats()},
		},
	}
}

// Validate checks the scenario invariants that do not depend on a board.
//
// Postcondition: Returns nil iff there is exactly one player, every piece is
// named, no two pieces share a cell, stats are valid, and BoardSize >= 0.
func (s *Scenario) Validate() error {
	var errs []error
	if s.BoardSize < 0 {
		errs = append(errs, fmt.Errorf("board_size must be >= 0, got %d", s.BoardSize))
	}
	players := 0
	seen := make(map[grid.Coords]string, len(s.Pieces))
	for i, p := range s.Pieces {
		label := fmt.Sprintf("piece %d (%s)", i, p.Name)
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("piece %d: name must not be empty", i))
		}
		if p.Kind == combat.KindPlayer {
			players++
		}
		if p.At.X < 0 || p.At.Y < 0 {
			errs = append(errs, fmt.Errorf("%s: coordinates %s must be non-negative", label, p.At))
		}
		if other, dup := seen[p.At]; dup {
			errs = append(errs, fmt.Errorf("%s: cell %s already holds %s", label, p.At, other))
		}
		seen[p.At] = p.Name
		if p.Kind != combat.KindObstacle {
			if err := p.Stats.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", label, err))
			}
		}
	}
	if players != 1 {
		errs = append(errs, fmt.Errorf("scenario must have exactly one player, got %d", players))
	}
	if len(errs) > 0 {
		return fmt.Errorf("scenario %q: %w", s.Name, errors.Join(errs...))
	}
	return nil
}

// Setup is the result of placing a scenario on a board.
type Setup struct {
	Player  *combat.Attacker
	Enemies []*combat.Attacker
}

// Build creates every piece and places it on b. Weapons are looked up in
// weapons; an empty weapon ID selects the shortsword.
//
// Precondition: b must be empty; s must validate.
// Postcondition: Returns the placed player and enemies, or an error and
// leaves b empty.
func (s *Scenario) Build(b *combat.Board, weapons *inventory.Registry) (*Setup, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	setup := &Setup{}
	for _, spec := range s.Pieces {
		piece, err := s.newPiece(spec, weapons)
		if err != nil {
			b.Reset()
			return nil, err
		}
		if err := b.Place(piece, spec.At); err != nil {
			b.Reset()
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		if a, ok := piece.(*combat.Attacker); ok {
			if a.Kind() == combat.KindPlayer {
				setup.Player = a
			} else {
				setup.Enemies = append(setup.Enemies, a)
			}
		}
	}
	return setup, nil
}

func (s *Scenario) newPiece(spec PieceSpec, weapons *inventory.Registry) (combat.Piece, error) {
	if spec.Kind == combat.KindObstacle {
		return combat.NewObstacle(spec.Name), nil
	}
	id := spec.WeaponID
	if id == "" {
		id = inventory.ShortswordID
	}
	w, ok := weapons.Weapon(id)
	if !ok {
		return nil, fmt.Errorf("scenario %q: piece %q: unknown weapon %q", s.Name, spec.Name, id)
	}
	a, err := combat.NewAttacker(spec.Kind, spec.Name, w, spec.Stats)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	a.AddXP(spec.XP)
	return a, nil
}

// yamlScenarioFile is the top-level YAML structure for scenario files.
type yamlScenarioFile struct {
	Scenario yamlScenario `yaml:"scenario"`
}

type yamlScenario struct {
	Name      string      `yaml:"name"`
	BoardSize int         `yaml:"board_size"`
	Pieces    []yamlPiece `yaml:"pieces"`
}

type yamlPiece struct {
	Kind   string     `yaml:"kind"`
	Name   string     `yaml:"name"`
	Weapon string     `yaml:"weapon"`
	X      int        `yaml:"x"`
	Y      int        `yaml:"y"`
	XP     int        `yaml:"xp"`
	Stats  *yamlStats `yaml:"stats"`
}

// yamlStats overrides individual default stats; omitted fields keep defaults.
type yamlStats struct {
	Modifier *int `yaml:"modifier"`
	AC       *int `yaml:"ac"`
	MaxHP    *int `yaml:"max_hp"`
	Speed    *int `yaml:"speed"`
}

// LoadFromFile reads and validates a scenario YAML file.
//
// Precondition: path must point to a valid YAML scenario file.
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadFromFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a scenario from YAML bytes.
//
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadFromBytes(data []byte) (*Scenario, error) {
	var file yamlScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	s, err := convertYAMLScenario(file.Scenario)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating scenario: %w", err)
	}
	return s, nil
}

func convertYAMLScenario(ys yamlScenario) (*Scenario, error) {
	s := &Scenario{
		Name:      ys.Name,
		BoardSize: ys.BoardSize,
		Pieces:    make([]PieceSpec, 0, len(ys.Pieces)),
	}
	for i, yp := range ys.Pieces {
		kind, err := parseKind(yp.Kind)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: piece %d: %w", ys.Name, i, err)
		}
		s.Pieces = append(s.Pieces, PieceSpec{
			Kind:     kind,
			Name:     yp.Name,
			WeaponID: yp.Weapon,
			At:       grid.At(yp.X, yp.Y),
			Stats:    yp.Stats.apply(combat.DefaultStats()),
			XP:       yp.XP,
		})
	}
	return s, nil
}

func (ys *yamlStats) apply(base combat.Stats) combat.Stats {
	if ys == nil {
		return base
	}
	if ys.Modifier != nil {
		base.Modifier = *ys.Modifier
	}
	if ys.AC != nil {
		base.AC = *ys.AC
	}
	if ys.MaxHP != nil {
		base.MaxHP = *ys.MaxHP
	}
	if ys.Speed != nil {
		base.Speed = *ys.Speed
	}
	return base
}

func parseKind(s string) (combat.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player":
		return combat.KindPlayer, nil
	case "enemy":
		return combat.KindEnemy, nil
	case "obstacle":
		return combat.KindObstacle, nil
	default:
		return 0, fmt.Errorf("unknown piece kind %q", s)
	}
}
