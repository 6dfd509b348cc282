package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

// TestRollResult_Total verifies the postcondition: Total() == sum(Dice) + Modifier.
func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, 12, r.Total(), "Total() must equal sum(Dice)+Modifier")
}

// TestRollResult_String verifies the audit string contains expression, dice, and total.
func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	s := r.String()
	require.Contains(t, s, "2d6+3", "String() must contain the expression")
	require.Contains(t, s, "[4 5]", "String() must contain the dice results")
	require.Contains(t, s, "12", "String() must contain the total")
	assert.Equal(t, "2d6+3 \u2192 [4 5] +3 = 12", s, "String() must match exact format")
}

// TestRollResult_Total_Property uses property-based testing to verify the
// postcondition Total() == sum(Dice) + Modifier for arbitrary inputs.
func TestRollResult_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dice_ := rapid.SliceOf(rapid.IntRange(1, 20)).Draw(rt, "dice")
		modifier := rapid.Int().Draw(rt, "modifier")

		r := dice.RollResult{
			Expression: "Nd6+M",
			Dice:       dice_,
			Modifier:   modifier,
		}

		expected := modifier
		for _, d := range dice_ {
			expected += d
		}

		assert.Equal(rt, expected, r.Total(),
			"Total() postcondition: must equal sum(Dice)+Modifier")
	})
}

// TestRollResult_String_Property verifies String() always contains the expression
// and the total for arbitrary RollResult values.
func TestRollResult_String_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.StringMatching(`[0-9]+d[0-9]+[+-][0-9]+`).Draw(rt, "expression")
		dice_ := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 10).Draw(rt, "dice")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")

		r := dice.RollResult{
			Expression: expr,
			Dice:       dice_,
			Modifier:   modifier,
		}

		s := r.String()
		assert.True(rt, strings.Contains(s, expr),
			"String() must contain the expression %q", expr)
		assert.True(rt, strings.Contains(s, "\u2192"),
			"String() must contain the unicode arrow \u2192")
		assert.Contains(rt, s, fmt.Sprintf("%d", r.Total()),
			"String() must contain the computed total")
	})
}

// TestRollResult_String_PanicsOnEmptyExpression verifies that String() enforces
// its precondition and panics when Expression is empty.
func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}, Modifier: 0}
	assert.Panics(t, func() { _ = r.String() })
}

// TestCryptoSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

// TestCryptoSource_Intn_PanicsOnZero verifies the precondition:
// Intn panics when called with n <= 0.
func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(20), b.Intn(20))
	}
}

func TestSeededSource_ZeroSeedUsable(t *testing.T) {
	src := dice.NewSeededSource(0)
	v := src.Intn(6)
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, 6)
}

func TestSeededSource_Property_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		n := rapid.IntRange(1, 100).Draw(rt, "n")
		v := dice.NewSeededSource(seed).Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}

func TestFixedSource_ReplaysAndClamps(t *testing.T) {
	src := dice.NewFixedSource(3, -2, 99)
	assert.Equal(t, 3, src.Intn(20))
	assert.Equal(t, 0, src.Intn(20))
	assert.Equal(t, 5, src.Intn(6))
	assert.Equal(t, 0, src.Remaining())
	assert.Panics(t, func() { src.Intn(6) })
}

func TestNewFaceSource_RollsFaces(t *testing.T) {
	src := dice.NewFaceSource(15, 4)
	r, err := dice.Roll(dice.D20, src)
	require.NoError(t, err)
	assert.Equal(t, 15, r.Total())
	r, err = dice.Roll(dice.Die(6), src)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Total())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		count int
		sides int
		mod   int
		kh    int
	}{
		{"d20", 1, 20, 0, 0},
		{"1d6", 1, 6, 0, 0},
		{"2d6+3", 2, 6, 3, 0},
		{"4d8-2", 4, 8, -2, 0},
		{"4d6kh3", 4, 6, 0, 3},
		{"D1", 1, 1, 0, 0},
	}
	for _, tc := range tests {
		e, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.in, e.Raw)
		assert.Equal(t, tc.count, e.Count, tc.in)
		assert.Equal(t, tc.sides, e.Sides, tc.in)
		assert.Equal(t, tc.mod, e.Modifier, tc.in)
		assert.Equal(t, tc.kh, e.KeepHighest, tc.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "20", "0d6", "d0", "dx", "2d6+x", "2d6kh2"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestRoll_Property_SingleDieInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.IntRange(1, 100).Draw(rt, "sides")
		r, err := dice.Roll(dice.Die(sides), dice.NewCryptoSource())
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, r.Total(), 1)
		assert.LessOrEqual(rt, r.Total(), sides)
	})
}

func TestRoller_LogsRoll(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewLoggedRoller(dice.NewFaceSource(3, 5), zap.New(core))
	r, err := roller.RollExpr("2d6+1")
	require.NoError(t, err)
	assert.Equal(t, 9, r.Total())
	require.Equal(t, 1, logs.FilterMessage("dice roll").Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "2d6+1", fields["expression"])
	assert.EqualValues(t, 9, fields["total"])
}
