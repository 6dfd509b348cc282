// Package command provides the console command registry, parser, and
// built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryBoard  = "board"
	CategoryCombat = "combat"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to session handlers.
const (
	HandlerMove   = "move"
	HandlerAttack = "attack"
	HandlerLook   = "look"
	HandlerStatus = "status"
	HandlerHelp   = "help"
	HandlerQuit   = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis printed when arguments are wrong.
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the session handler.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "move", Aliases: []string{"m"}, Usage: "move x1 y1 x2 y2", Help: "Move the piece at (x1, y1) to (x2, y2)", Category: CategoryBoard, Handler: HandlerMove},
		{Name: "look", Aliases: []string{"l"}, Usage: "look", Help: "Show the board", Category: CategoryBoard, Handler: HandlerLook},

		{Name: "attack", Aliases: []string{"a"}, Usage: "attack x1 y1 x2 y2", Help: "Attack the piece at (x2, y2) with the piece at (x1, y1)", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "status", Aliases: []string{"st"}, Usage: "status", Help: "Show HP, XP and weapon of every attacker", Category: CategoryCombat, Handler: HandlerStatus},

		{Name: "help", Aliases: []string{"h", "?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"q"}, Usage: "quit", Help: "End the session", Category: CategorySystem, Handler: HandlerQuit},
	}
}
