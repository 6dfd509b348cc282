package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func runScript(t testing.TB, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook(hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	mgr, logs := newTestManager(t, nil)
	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	levels := map[string]bool{}
	for _, e := range logs.FilterField(zap.String("source", "lua")).All() {
		levels[e.Level.String()] = true
	}
	assert.True(t, levels["debug"], "expected debug log")
	assert.True(t, levels["info"], "expected info log")
	assert.True(t, levels["warn"], "expected warn log")
	assert.True(t, levels["error"], "expected error log")
}

func TestEngineDice_Roll_UsesSource(t *testing.T) {
	mgr, logs := newTestManager(t, dice.NewFaceSource(20))
	ret := runScript(t, mgr, `
		function do_roll()
			local r = engine.dice.roll("d20")
			return r.total
		end
	`, "do_roll")
	assert.Equal(t, lua.LNumber(20), ret)
	assert.Equal(t, 1, logs.FilterMessage("dice roll").Len())
}

func TestEngineDice_Roll_InvalidExpression_ReturnsNil(t *testing.T) {
	mgr, logs := newTestManager(t, nil)
	ret := runScript(t, mgr, `
		function do_roll() return engine.dice.roll("banana") == nil end
	`, "do_roll")
	assert.Equal(t, lua.LTrue, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: dice roll failed").Len())
}

func TestProperty_DiceRoll_TotalEqualsDicePlusModifier(t *testing.T) {
	mgr, _ := newTestManager(t, nil)
	dir := writeTempLua(t, "check.lua", `
		function check_invariant(expr)
			local r = engine.dice.roll(expr)
			return r.total == r.dice + r.modifier
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.SampledFrom([]string{"1d6", "2d6+3", "1d4-1", "d20", "4d6kh3"}).Draw(rt, "expr")
		ret, err := mgr.CallHook("check_invariant", lua.LString(expr))
		require.NoError(rt, err)
		assert.Equal(rt, lua.LTrue, ret, "total must equal dice + modifier for expr %s", expr)
	})
}

func TestEngineBoard_PieceAt_NilCallback_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t, nil)
	ret := runScript(t, mgr, `
		function get_it() return engine.board.piece_at(0, 0) end
	`, "get_it")
	assert.Equal(t, lua.LNil, ret)
}

func TestEngineBoard_PieceAt_WithCallback(t *testing.T) {
	mgr, _ := newTestManager(t, nil)
	mgr.QueryPiece = func(x, y int) *scripting.PieceInfo {
		if x != 4 || y != 0 {
			return nil
		}
		return &scripting.PieceInfo{ID: "g1", Name: "Goblin", Kind: "enemy", X: x, Y: y, HP: 7, MaxHP: 10, AC: 15, XP: 25}
	}
	ret := runScript(t, mgr, `
		function get_it()
			local p = engine.board.piece_at(4, 0)
			local empty = engine.board.piece_at(1, 1)
			return p.name .. ":" .. p.kind .. ":" .. p.hp .. "/" .. p.max_hp .. ":" .. tostring(empty == nil)
		end
	`, "get_it")
	assert.Equal(t, lua.LString("Goblin:enemy:7/10:true"), ret)
}

func TestAnnouncerScript(t *testing.T) {
	mgr, _ := newTestManager(t, dice.NewFaceSource(20))
	dir := filepath.Join(repoRoot(t), "content", "scripts")
	require.NoError(t, mgr.Load(dir, 0))

	_, ok := mgr.OnMove("Player", 0, 0, 1, 0)
	assert.False(t, ok)

	line, ok := mgr.OnAttack("Player", "Goblin", true, 6, 4)
	require.True(t, ok)
	assert.Equal(t, "Player lands a crushing blow on Goblin!", line)

	line, ok = mgr.OnAttack("Player", "Goblin", false, 0, 10)
	require.True(t, ok, "a natural 20 on the taunt roll narrates the miss")
	assert.Contains(t, line, "clumsy swing")

	line, ok = mgr.OnDefeat("Player", "Goblin", 0)
	require.True(t, ok)
	assert.Equal(t, "Goblin falls. Player stands victorious.", line)
}

// repoRoot walks up from the test's working directory to find the module root.
func repoRoot(t testing.TB) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatalf("could not find repo root from %s", wd)
		}
		root = parent
	}
}
