// Package session runs the interactive console game loop over a combat board.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/console"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/command"
)

// Console messages.
const (
	MsgPrompt        = "> "
	MsgMakeMove      = "Make a move."
	MsgInvalidCoords = "Invalid coordinates."
	MsgMoved         = "Moved successfully."
	MsgBlockedMove   = "Cannot move: No piece at start location or occupied end location."
	MsgTooFar        = "Cannot move that far."
	MsgBadAttack     = "Invalid attack source or target."
	MsgOutOfRange    = "Target out of attack range."
)

// Hooks receives game events after they are applied. Each method may return
// a line of narration to print.
type Hooks interface {
	OnMove(name string, x1, y1, x2, y2 int) (string, bool)
	OnAttack(attacker, target string, hit bool, damage, targetHP int) (string, bool)
	OnDefeat(victor, victim string, xp int) (string, bool)
}

type noHooks struct{}

func (noHooks) OnMove(string, int, int, int, int) (string, bool)       { return "", false }
func (noHooks) OnAttack(string, string, bool, int, int) (string, bool) { return "", false }
func (noHooks) OnDefeat(string, string, int) (string, bool)            { return "", false }

// Option configures a Session.
type Option func(*Session)

// WithHooks installs event hooks. A nil value disables them.
func WithHooks(h Hooks) Option {
	return func(s *Session) {
		if h != nil {
			s.hooks = h
		}
	}
}

// WithColor enables ANSI styling of board symbols and result lines.
func WithColor(enabled bool) Option {
	return func(s *Session) { s.palette = console.NewPalette(enabled) }
}

// WithRegistry replaces the built-in command registry.
func WithRegistry(r *command.Registry) Option {
	return func(s *Session) { s.registry = r }
}

// Session reads commands from in, applies them to the board, and writes
// results to out. It is the only caller that mutates the board while running.
type Session struct {
	board    *combat.Board
	in       io.Reader
	out      io.Writer
	logger   *zap.Logger
	registry *command.Registry
	hooks    Hooks
	palette  console.Palette

	turn     int
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a Session.
//
// Precondition: board, in, and out must be non-nil; a nil logger discards output.
// Postcondition: Returns a Session ready for Run, or an error.
func New(board *combat.Board, in io.Reader, out io.Writer, logger *zap.Logger, opts ...Option) (*Session, error) {
	if board == nil {
		return nil, errors.New("session: board must not be nil")
	}
	if in == nil || out == nil {
		return nil, errors.New("session: input and output must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		board:    board,
		in:       in,
		out:      out,
		logger:   logger,
		registry: command.DefaultRegistry(),
		hooks:    noHooks{},
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Stop ends a running session before its next command. Safe to call more
// than once and from any goroutine.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Turns returns the number of commands processed so far.
func (s *Session) Turns() int { return s.turn }

type readResult struct {
	line string
	err  error
}

// Run prints the board and prompt, then processes one command per input line
// until quit, end of input, Stop, or ctx cancellation.
//
// Postcondition: Returns nil on quit, EOF, or Stop; ctx.Err() on cancellation;
// a wrapped error if reading or writing fails.
func (s *Session) Run(ctx context.Context) error {
	lines := make(chan readResult)
	go s.readLines(ctx, lines)

	s.logger.Info("session started", zap.Int("board_size", s.board.Size()))
	for {
		if err := s.showTurn(); err != nil {
			return err
		}

		var rr readResult
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			s.logger.Info("session stopped", zap.Int("turns", s.turn))
			return nil
		case rr, ok = <-lines:
		}
		if !ok {
			s.logger.Info("session input closed", zap.Int("turns", s.turn))
			return nil
		}
		if rr.err != nil {
			return fmt.Errorf("session: reading input: %w", rr.err)
		}

		s.turn++
		quit, err := s.dispatch(rr.line)
		if err != nil {
			return err
		}
		if quit {
			s.logger.Info("session quit", zap.Int("turns", s.turn))
			return nil
		}
	}
}

func (s *Session) readLines(ctx context.Context, lines chan<- readResult) {
	defer close(lines)
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		select {
		case lines <- readResult{line: scanner.Text()}:
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case lines <- readResult{err: err}:
		case <-ctx.Done():
		case <-s.stopCh:
		}
	}
}

func (s *Session) showTurn() error {
	if err := s.writeLine(s.palette.Board(s.board.String())); err != nil {
		return err
	}
	if err := s.writeLine(MsgMakeMove); err != nil {
		return err
	}
	return s.write(MsgPrompt)
}

func (s *Session) write(text string) error {
	if _, err := io.WriteString(s.out, text); err != nil {
		return fmt.Errorf("session: writing output: %w", err)
	}
	return nil
}

func (s *Session) writeLine(text string) error {
	return s.write(text + "\n")
}

// dispatch runs one input line. It reports whether the session should end.
func (s *Session) dispatch(line string) (bool, error) {
	parsed := command.Parse(line)
	cmd, ok := s.registry.Resolve(parsed.Command)
	if !ok {
		s.logger.Debug("unrecognized command", zap.String("line", line))
		return false, s.writeLine(s.palette.Reject("Unrecognized command: " + line))
	}
	handler, ok := handlerMap[cmd.Handler]
	if !ok {
		return false, fmt.Errorf("session: command %q has no handler %q", cmd.Name, cmd.Handler)
	}
	res, err := handler(&handlerContext{session: s, cmd: cmd, parsed: parsed})
	if err != nil {
		return false, err
	}
	return res.quit, nil
}

// narrate prints a hook's line when it returned one.
func (s *Session) narrate(line string, ok bool) error {
	if !ok || strings.TrimSpace(line) == "" {
		return nil
	}
	return s.writeLine(s.palette.Narration(line))
}
