package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalAndAlias(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		input   string
		handler string
	}{
		{"move", HandlerMove},
		{"m", HandlerMove},
		{"attack", HandlerAttack},
		{"a", HandlerAttack},
		{"quit", HandlerQuit},
		{"q", HandlerQuit},
		{"look", HandlerLook},
		{"l", HandlerLook},
		{"status", HandlerStatus},
		{"st", HandlerStatus},
		{"help", HandlerHelp},
		{"?", HandlerHelp},
	}
	for _, tc := range tests {
		cmd, ok := r.Resolve(tc.input)
		require.True(t, ok, "command %q not found", tc.input)
		assert.Equal(t, tc.handler, cmd.Handler, tc.input)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()
	_, ok := r.Resolve("teleport")
	assert.False(t, ok)
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "move"}, {Name: "move"}})
	assert.Error(t, err)
}

func TestNewRegistry_AliasCollision(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "move", Aliases: []string{"m"}},
		{Name: "march", Aliases: []string{"m"}},
	})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{
		{Name: "move"},
		{Name: "mv", Aliases: []string{"move"}},
	})
	assert.Error(t, err)
}

func TestCommandsByCategory(t *testing.T) {
	cats := DefaultRegistry().CommandsByCategory()
	assert.Len(t, cats[CategoryBoard], 2)
	assert.Len(t, cats[CategoryCombat], 2)
	assert.Len(t, cats[CategorySystem], 2)
}

func TestSorted(t *testing.T) {
	sorted := DefaultRegistry().Sorted()
	require.Len(t, sorted, 6)
	names := make([]string, len(sorted))
	for i, c := range sorted {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"look", "move", "attack", "status", "help", "quit"}, names)
}
