// Package main runs the skirmish console: it loads configuration, content,
// and scripts, places the scenario on a board, and plays it over stdin/stdout.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scenario"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/server"
	"github.com/cory-johannsen/skirmish/internal/session"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty uses defaults and SKIRMISH_* env)")
	envFile := flag.String("env", ".env", "path to a dotenv file loaded before configuration")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("loading env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	g, err := newGame(cfg, os.Stdin, os.Stdout, logger)
	if err != nil {
		logger.Fatal("setting up game", zap.Error(err))
	}
	defer g.close()

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("session", &server.FuncService{
		StartFn: g.session.Run,
		StopFn:  g.session.Stop,
	})

	logger.Info("skirmish initialized",
		zap.String("scenario", g.scenario.Name),
		zap.Int("board_size", g.board.Size()),
		zap.Bool("scripting", g.scripts != nil),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("session error", zap.Error(err))
	}
}

// game holds everything wired for one session.
type game struct {
	scenario *scenario.Scenario
	board    *combat.Board
	setup    *scenario.Setup
	scripts  *scripting.Manager
	session  *session.Session
}

// newGame builds the board, scenario, scripts, and session described by cfg.
//
// Precondition: cfg must validate; logger must be non-nil.
// Postcondition: Returns a ready game or a non-nil error; on error nothing needs closing.
func newGame(cfg config.Config, in io.Reader, out io.Writer, logger *zap.Logger) (*game, error) {
	src := diceSource(cfg.Dice)

	weapons, err := inventory.LoadRegistry(cfg.Content.WeaponsDir)
	if err != nil {
		return nil, err
	}
	logger.Info("weapons loaded", zap.Int("count", len(weapons.AllWeapons())))

	sc := scenario.Default()
	if cfg.Content.Scenario != "" {
		sc, err = scenario.LoadFromFile(cfg.Content.Scenario)
		if err != nil {
			return nil, err
		}
	}
	size := cfg.Board.Size
	if sc.BoardSize > 0 {
		size = sc.BoardSize
	}

	board, err := combat.NewBoard(size, src, logger.Named("board"))
	if err != nil {
		return nil, err
	}
	setup, err := sc.Build(board, weapons)
	if err != nil {
		return nil, err
	}
	logger.Info("scenario placed",
		zap.String("scenario", sc.Name),
		zap.String("player", setup.Player.Name()),
		zap.Int("enemies", len(setup.Enemies)),
	)

	g := &game{scenario: sc, board: board, setup: setup}
	opts := []session.Option{session.WithColor(cfg.Display.Color)}
	if cfg.Scripting.Dir != "" {
		mgr := scripting.NewManager(dice.NewLoggedRoller(src, logger.Named("dice")), logger.Named("scripting"))
		mgr.QueryPiece = queryPiece(board)
		if err := mgr.Load(cfg.Scripting.Dir, cfg.Scripting.InstructionLimit); err != nil {
			return nil, err
		}
		g.scripts = mgr
		opts = append(opts, session.WithHooks(mgr))
	}

	g.session, err = session.New(board, in, out, logger.Named("session"), opts...)
	if err != nil {
		g.close()
		return nil, err
	}
	return g, nil
}

func (g *game) close() {
	if g.scripts != nil {
		g.scripts.Close()
	}
}

// diceSource returns a reproducible source for a non-zero seed and the
// crypto source otherwise.
func diceSource(cfg config.DiceConfig) dice.Source {
	if cfg.Seed != 0 {
		return dice.NewSeededSource(cfg.Seed)
	}
	return dice.NewCryptoSource()
}

// queryPiece exposes a read-only snapshot of board cells to scripts.
func queryPiece(b *combat.Board) func(x, y int) *scripting.PieceInfo {
	return func(x, y int) *scripting.PieceInfo {
		p, ok := b.At(grid.At(x, y))
		if !ok {
			return nil
		}
		info := &scripting.PieceInfo{
			ID:   p.ID(),
			Name: p.Name(),
			Kind: p.Kind().String(),
			X:    x,
			Y:    y,
		}
		if a, ok := p.(*combat.Attacker); ok {
			info.HP = a.HP()
			info.MaxHP = a.MaxHP()
			info.AC = a.AC()
			info.XP = a.XP()
		}
		return info
	}
}
