package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// Hook names called by the session.
const (
	HookMove   = "on_move"
	HookAttack = "on_attack"
	HookDefeat = "on_defeat"
)

// PieceInfo is a snapshot of a board piece passed to Lua callbacks.
type PieceInfo struct {
	ID    string
	Name  string
	Kind  string
	X, Y  int
	HP    int
	MaxHP int
	AC    int
	XP    int
}

// Manager owns one sandboxed LState and exposes hook dispatch.
//
// Manager is safe for concurrent use; calls into the VM are serialized.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	cancel    context.CancelFunc
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger

	// Injected after construction. nil = engine.board.piece_at returns nil.
	QueryPiece func(x, y int) *PieceInfo
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: roller must be non-nil; a nil logger discards output.
// Postcondition: Returns a non-nil Manager whose hooks are all no-ops.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{roller: roller, logger: logger}
}

// Load creates a sandboxed VM, registers the engine.* modules, then executes
// every *.lua file in scriptDir in lexicographic order. A previously loaded
// VM is replaced only when the new one loads cleanly.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: VM is registered; returns error on Lua load failure.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	m.closeLocked()
	m.state = L
	m.cancel = cancel
	m.instLimit = normalizeLimit(instLimit)
	m.mu.Unlock()

	m.logger.Info("scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Close releases the VM. Hooks become no-ops afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

// CallHook calls the named Lua global function with a fresh instruction
// budget. Returns (LNil, nil) if no VM is loaded or the hook is not defined.
// Lua runtime errors are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L := m.state
	if L == nil {
		m.logger.Debug("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := newCountingContext(m.instLimit)
	L.SetContext(ctx)
	m.cancel = cancel

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		L.SetTop(0)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// narration converts a hook's return value to a line of text. Only non-empty
// strings count.
func narration(v lua.LValue) (string, bool) {
	s, ok := v.(lua.LString)
	if !ok || s == "" {
		return "", false
	}
	return string(s), true
}

func (m *Manager) callNarration(hook string, args ...lua.LValue) (string, bool) {
	ret, err := m.CallHook(hook, args...)
	if err != nil {
		return "", false
	}
	return narration(ret)
}

// OnMove calls on_move(name, x1, y1, x2, y2) after a successful move.
func (m *Manager) OnMove(name string, x1, y1, x2, y2 int) (string, bool) {
	return m.callNarration(HookMove,
		lua.LString(name),
		lua.LNumber(x1), lua.LNumber(y1),
		lua.LNumber(x2), lua.LNumber(y2),
	)
}

// OnAttack calls on_attack(attacker, target, hit, damage, target_hp) after an
// attack resolves.
func (m *Manager) OnAttack(attacker, target string, hit bool, damage, targetHP int) (string, bool) {
	return m.callNarration(HookAttack,
		lua.LString(attacker), lua.LString(target),
		lua.LBool(hit), lua.LNumber(damage), lua.LNumber(targetHP),
	)
}

// OnDefeat calls on_defeat(victor, victim, xp) after a piece is removed.
func (m *Manager) OnDefeat(victor, victim string, xp int) (string, bool) {
	return m.callNarration(HookDefeat,
		lua.LString(victor), lua.LString(victim), lua.LNumber(xp),
	)
}
