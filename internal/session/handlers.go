package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// handlerContext carries all inputs a handler needs.
type handlerContext struct {
	session *Session
	cmd     *command.Command
	parsed  command.ParseResult
}

// handlerResult is returned by every handler. quit ends the session.
type handlerResult struct {
	quit bool
}

type handlerFunc func(hctx *handlerContext) (handlerResult, error)

// Handlers returns the map from Handler constant to session function.
// Exported so tests can verify every built-in command is wired.
func Handlers() map[string]handlerFunc {
	return handlerMap
}

// handlerMap is the single source of truth for session command dispatch.
// To add a new command: add a Handler constant to commands.go AND add an entry here.
var handlerMap = map[string]handlerFunc{
	command.HandlerMove:   handleMove,
	command.HandlerAttack: handleAttack,
	command.HandlerLook:   handleLook,
	command.HandlerStatus: handleStatus,
	command.HandlerHelp:   handleHelp,
	command.HandlerQuit:   handleQuit,
}

// coordArgs parses the four coordinate arguments, printing the usage or
// invalid-coordinate message on failure. ok is false when the command must
// not proceed.
func coordArgs(hctx *handlerContext) (start, end grid.Coords, ok bool, err error) {
	s := hctx.session
	start, end, perr := command.ParseCoordPair(hctx.parsed.Args, s.board.Size())
	switch {
	case errors.Is(perr, command.ErrUsage):
		return start, end, false, s.writeLine("Usage: " + hctx.cmd.Usage)
	case errors.Is(perr, command.ErrInvalidCoordinates):
		return start, end, false, s.writeLine(MsgInvalidCoords)
	case perr != nil:
		return start, end, false, perr
	}
	return start, end, true, nil
}

func handleMove(hctx *handlerContext) (handlerResult, error) {
	s := hctx.session
	start, end, ok, err := coordArgs(hctx)
	if !ok || err != nil {
		return handlerResult{}, err
	}

	if err := s.board.CheckMove(start, end); err != nil {
		s.logger.Debug("move rejected",
			zap.String("start", start.String()),
			zap.String("end", end.String()),
			zap.Error(err),
		)
		return handlerResult{}, s.writeLine(s.palette.Reject(moveRejection(err)))
	}
	mover, _ := s.board.AttackerAt(start)
	if !s.board.Move(start, end) {
		return handlerResult{}, fmt.Errorf("session: move %s -> %s rejected after check", start, end)
	}
	if err := s.writeLine(MsgMoved); err != nil {
		return handlerResult{}, err
	}
	return handlerResult{}, s.narrate(s.hooks.OnMove(mover.Name(), start.X, start.Y, end.X, end.Y))
}

func moveRejection(err error) string {
	switch {
	case errors.Is(err, combat.ErrTooFar):
		return MsgTooFar
	case errors.Is(err, combat.ErrOutOfBounds):
		return MsgInvalidCoords
	default:
		return MsgBlockedMove
	}
}

func handleAttack(hctx *handlerContext) (handlerResult, error) {
	s := hctx.session
	source, target, ok, err := coordArgs(hctx)
	if !ok || err != nil {
		return handlerResult{}, err
	}

	if err := s.board.CheckAttack(source, target); err != nil {
		s.logger.Debug("attack rejected",
			zap.String("source", source.String()),
			zap.String("target", target.String()),
			zap.Error(err),
		)
		return handlerResult{}, s.writeLine(s.palette.Reject(attackRejection(err)))
	}

	outcome := s.board.ObserveAttack(source, target)
	line := s.palette.Miss(outcome.Message())
	if outcome.Hit {
		line = s.palette.Hit(outcome.Message())
	}
	if err := s.writeLine(line); err != nil {
		return handlerResult{}, err
	}
	if err := s.narrate(s.hooks.OnAttack(outcome.AttackerName, outcome.TargetName, outcome.Hit, outcome.Damage, outcome.TargetHP)); err != nil {
		return handlerResult{}, err
	}
	if !outcome.Defeated {
		return handlerResult{}, nil
	}

	if err := s.writeLine(s.palette.Defeat(outcome.TargetName + " was defeated.")); err != nil {
		return handlerResult{}, err
	}
	if err := s.writeLine(fmt.Sprintf("%s gained %d XP.", outcome.AttackerName, outcome.XPTransferred)); err != nil {
		return handlerResult{}, err
	}
	return handlerResult{}, s.narrate(s.hooks.OnDefeat(outcome.AttackerName, outcome.TargetName, outcome.XPTransferred))
}

func attackRejection(err error) string {
	switch {
	case errors.Is(err, combat.ErrOutOfRange):
		return MsgOutOfRange
	case errors.Is(err, combat.ErrOutOfBounds):
		return MsgInvalidCoords
	default:
		return MsgBadAttack
	}
}

// handleLook lists every piece with its symbol and cell.
func handleLook(hctx *handlerContext) (handlerResult, error) {
	s := hctx.session
	pieces := s.board.Pieces()
	if len(pieces) == 0 {
		return handlerResult{}, s.writeLine("The board is empty.")
	}
	var sb strings.Builder
	sb.WriteString("Pieces:\n")
	for _, p := range pieces {
		loc, _ := p.Location()
		fmt.Fprintf(&sb, "  %c %s at %s\n", p.Symbol(), p.Name(), loc)
	}
	return handlerResult{}, s.write(sb.String())
}

// handleStatus shows HP, AC, XP, and weapon for every attacker on the board.
func handleStatus(hctx *handlerContext) (handlerResult, error) {
	s := hctx.session
	attackers := s.board.Attackers()
	if len(attackers) == 0 {
		return handlerResult{}, s.writeLine("No attackers on the board.")
	}
	var sb strings.Builder
	for _, a := range attackers {
		loc, _ := a.Location()
		fmt.Fprintf(&sb, "%s [%c] at %s: HP %d/%d, AC %d, XP %d, %s\n",
			a.Name(), a.Symbol(), loc, a.HP(), a.MaxHP(), a.AC(), a.XP(), a.Weapon())
	}
	return handlerResult{}, s.write(sb.String())
}

var helpCategories = []struct {
	name  string
	label string
}{
	{command.CategoryBoard, "Board"},
	{command.CategoryCombat, "Combat"},
	{command.CategorySystem, "System"},
}

// handleHelp lists commands by category.
func handleHelp(hctx *handlerContext) (handlerResult, error) {
	s := hctx.session
	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	byCategory := s.registry.CommandsByCategory()
	for _, cat := range helpCategories {
		cmds := byCategory[cat.name]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  %s:\n", cat.label)
		for _, cmd := range sortedByName(cmds) {
			aliases := ""
			if len(cmd.Aliases) > 0 {
				aliases = " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			fmt.Fprintf(&sb, "    %-20s%s - %s\n", cmd.Usage, aliases, cmd.Help)
		}
	}
	return handlerResult{}, s.write(sb.String())
}

func sortedByName(cmds []*command.Command) []*command.Command {
	out := append([]*command.Command(nil), cmds...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func handleQuit(*handlerContext) (handlerResult, error) {
	return handlerResult{quit: true}, nil
}
