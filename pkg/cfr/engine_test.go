package cfr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behrlich/subgame-solver/pkg/cards"
	"github.com/behrlich/subgame-solver/pkg/tree"
)

func mustCards(t *testing.T, s string) []cards.Card {
	t.Helper()
	c, err := cards.ParseCards(s)
	require.NoError(t, err)
	return c
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseSampleSize = 4
	cfg.UseParallel = false
	e := NewEngine(cfg, nil)

	board := mustCards(t, "As Kd 7h 2c 9s")
	betting := tree.BettingConfig{InitialPot: 20, OOPStack: 100, IPStack: 100}
	require.NoError(t, e.BuildTree(betting, board))

	jj := mustCards(t, "JcJd")
	tt := mustCards(t, "ThTd")
	e.SetOOPRange([]Combo{{Card1: jj[0], Card2: jj[1], Weight: 1, Label: "JJ"}})
	e.SetIPRange([]Combo{{Card1: tt[0], Card2: tt[1], Weight: 1, Label: "TT"}})
	return e
}

func TestEngineSolveRunsAndRecordsHistory(t *testing.T) {
	e := newTestEngine(t)
	err := e.Solve(context.Background(), 4, nil)
	require.NoError(t, err)
	assert.Len(t, e.GetRegretHistory(), 4)
	assert.Equal(t, e.GetRegretHistory()[len(e.GetRegretHistory())-1], e.GetAverageRegret())
}

func TestEngineGetNodeData(t *testing.T) {
	e := newTestEngine(t)
	data, err := e.GetNodeData(0)
	require.NoError(t, err)
	assert.Equal(t, "player", data.Type)
	assert.Equal(t, "river", data.Street)
	assert.Len(t, data.Actions, 2)
	assert.Equal(t, "check:0.00", data.Actions[0])
	assert.Equal(t, "allin:100.00", data.Actions[1])
}

func TestEngineGetNodeHandStrategies(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Solve(context.Background(), 2, nil))

	strategies, err := e.GetNodeHandStrategies(0)
	require.NoError(t, err)
	require.Contains(t, strategies, "JJ")
	assert.Len(t, strategies["JJ"], 2)
}

func TestEngineStopIsCooperative(t *testing.T) {
	e := newTestEngine(t)
	e.Stop()
	err := e.Solve(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Less(t, len(e.GetRegretHistory()), 10)
}

func TestEngineSolveRequiresRangesAndTree(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg, nil)
	err := e.Solve(context.Background(), 1, nil)
	assert.Error(t, err)
}
