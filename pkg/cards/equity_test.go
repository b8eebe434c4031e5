package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateEquityExactBoardWin(t *testing.T) {
	calc := NewCalculator()
	hero := mustPair(t, "AcAd")
	villain := mustPair(t, "KcKd")
	board := mustCardsLocal(t, "AhKhQhJh2s")
	eq := calc.CalculateEquity(hero, villain, board, 0)
	assert.Equal(t, 1.0, eq)
}

func TestCalculateEquityExactBoardLoss(t *testing.T) {
	calc := NewCalculator()
	hero := mustPair(t, "2c3d")
	villain := mustPair(t, "AcAd")
	board := mustCardsLocal(t, "AhKhQhJh2s")
	eq := calc.CalculateEquity(hero, villain, board, 0)
	assert.Equal(t, 0.0, eq)
}

func TestCalculateEquityExactBoardTie(t *testing.T) {
	calc := NewCalculator()
	hero := mustPair(t, "2c3d")
	villain := mustPair(t, "2h3h")
	board := mustCardsLocal(t, "AhKhQhJhTh")
	eq := calc.CalculateEquity(hero, villain, board, 0)
	assert.Equal(t, 0.5, eq)
}

func TestCalculateEquityMonteCarloDominantPair(t *testing.T) {
	calc := NewCalculator()
	hero := mustPair(t, "AcAd")
	villain := mustPair(t, "7h2s")
	board := mustCardsLocal(t, "Kc9d4s")
	eq := calc.CalculateEquity(hero, villain, board, 500)
	assert.Greater(t, eq, 0.7)
}

func TestCalculateEquityDeadCardMismatchFallsBackToHalf(t *testing.T) {
	calc := NewCalculator()
	hero := mustPair(t, "AcAd")
	villain := mustPair(t, "AcKd")
	board := mustCardsLocal(t, "2s3s4s")
	eq := calc.CalculateEquity(hero, villain, board, 100)
	assert.Equal(t, 0.5, eq)
}

func TestEquityVsRangeSkipsConflictsAndWeights(t *testing.T) {
	calc := NewCalculator()
	hero := mustPair(t, "AcAd")
	board := mustCardsLocal(t, "Kc9d4s")
	villainRange := []WeightedCombo{
		{Card1: mustPair(t, "AcKd")[0], Card2: mustPair(t, "AcKd")[1], Weight: 1}, // conflicts with hero's Ac
		{Card1: mustPair(t, "7h2s")[0], Card2: mustPair(t, "7h2s")[1], Weight: 2},
	}
	eq := calc.EquityVsRange(hero, villainRange, board, 200)
	assert.Greater(t, eq, 0.7)
}

func TestEquityVsRangeAllConflictingReturnsHalf(t *testing.T) {
	calc := NewCalculator()
	hero := mustPair(t, "AcAd")
	board := mustCardsLocal(t, "Kc9d4s")
	villainRange := []WeightedCombo{
		{Card1: mustPair(t, "AcKd")[0], Card2: mustPair(t, "AcKd")[1], Weight: 1},
	}
	eq := calc.EquityVsRange(hero, villainRange, board, 50)
	assert.Equal(t, 0.5, eq)
}

func mustPair(t *testing.T, s string) [2]Card {
	t.Helper()
	cs := mustCardsLocal(t, s)
	require.Len(t, cs, 2)
	return [2]Card{cs[0], cs[1]}
}

func mustCardsLocal(t *testing.T, s string) []Card {
	t.Helper()
	cs, err := ParseCards(s)
	require.NoError(t, err)
	return cs
}
