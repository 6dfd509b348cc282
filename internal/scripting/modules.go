package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.{debug,info,warn,error}(msg)
//	engine.dice.roll(expr) -> {total, dice, modifier} or nil
//	engine.board.piece_at(x, y) -> {id, name, kind, x, y, hp, max_hp, ac, xp} or nil
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.newLogModule(L))
	L.SetField(engine, "dice", m.newDiceModule(L))
	L.SetField(engine, "board", m.newBoardModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) newLogModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, logf := range levels {
		logf := logf
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logf(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) newDiceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		expr := L.CheckString(1)
		result, err := m.roller.RollExpr(expr)
		if err != nil {
			m.logger.Warn("scripting: dice roll failed",
				zap.String("expression", expr),
				zap.Error(err),
			)
			L.Push(lua.LNil)
			return 1
		}
		dice := 0
		for _, d := range result.Dice {
			dice += d
		}
		t := L.NewTable()
		L.SetField(t, "total", lua.LNumber(result.Total()))
		L.SetField(t, "dice", lua.LNumber(dice))
		L.SetField(t, "modifier", lua.LNumber(result.Modifier))
		L.Push(t)
		return 1
	}))
	return mod
}

func (m *Manager) newBoardModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "piece_at", L.NewFunction(func(L *lua.LState) int {
		x, y := L.CheckInt(1), L.CheckInt(2)
		if m.QueryPiece == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.QueryPiece(x, y)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		t := L.NewTable()
		L.SetField(t, "id", lua.LString(info.ID))
		L.SetField(t, "name", lua.LString(info.Name))
		L.SetField(t, "kind", lua.LString(info.Kind))
		L.SetField(t, "x", lua.LNumber(info.X))
		L.SetField(t, "y", lua.LNumber(info.Y))
		L.SetField(t, "hp", lua.LNumber(info.HP))
		L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
		L.SetField(t, "ac", lua.LNumber(info.AC))
		L.SetField(t, "xp", lua.LNumber(info.XP))
		L.Push(t)
		return 1
	}))
	return mod
}
