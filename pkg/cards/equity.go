package cards

import (
	"crypto/rand"
	"encoding/binary"
	"math/bits"
	mrand "math/rand"
	"sync"
)

// WeightedCombo is a two-card starting hand carried with a range weight,
// used by EquityVsRange. The CFR engine's own Combo type (which also
// carries a display label) converts to this at the equity boundary.
type WeightedCombo struct {
	Card1, Card2 Card
	Weight       float64
}

// Calculator estimates showdown equity by Monte Carlo runout when the
// board is incomplete, and by exact evaluation when it is not. It is
// stateless; the pool below supplies a private random source per call
// so concurrent callers never share generator state.
type Calculator struct{}

// NewCalculator returns a ready-to-use equity Calculator.
func NewCalculator() Calculator { return Calculator{} }

var rngPool = sync.Pool{
	New: func() any {
		return mrand.New(mrand.NewSource(seedFromEntropy()))
	},
}

func seedFromEntropy() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0x5DEECE66D
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// deckRemaining returns the 52-card deck minus the cards in dead.
func deckRemaining(dead Mask) []Card {
	out := make([]Card, 0, 52-bits.OnesCount64(uint64(dead)))
	for c := Card(0); c < 52; c++ {
		if !dead.HasCard(c) {
			out = append(out, c)
		}
	}
	return out
}

// partialShuffle Fisher-Yates shuffles only the first k positions of
// deck, matching the original evaluator's partial-shuffle Monte Carlo
// runout (no need to fully randomize cards that are never drawn).
func partialShuffle(deck []Card, k int, rng *mrand.Rand) {
	n := len(deck)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// CalculateEquity estimates hero's equity against villain given a
// (possibly incomplete) board. A 5-card board is scored exactly; a
// shorter board is completed by `trials` random runouts. Overlapping
// cards between hero, villain, and board (a dead-card mismatch) fall
// back to 0.5, matching the defensive behavior of the evaluator this is
// grounded on.
func (Calculator) CalculateEquity(hero, villain [2]Card, board []Card, trials int) float64 {
	dead := MaskOf(hero[0], hero[1], villain[0], villain[1])
	for _, c := range board {
		dead = dead.AddCard(c)
	}
	wantDead := 4 + len(board)
	if bits.OnesCount64(uint64(dead)) != wantDead {
		return 0.5
	}

	if len(board) == 5 {
		heroCards := append(append([]Card{}, hero[0], hero[1]), board...)
		villainCards := append(append([]Card{}, villain[0], villain[1]), board...)
		hv, vv := Evaluate(heroCards), Evaluate(villainCards)
		switch {
		case hv > vv:
			return 1
		case hv < vv:
			return 0
		default:
			return 0.5
		}
	}

	need := 5 - len(board)
	remaining := deckRemaining(dead)
	if trials <= 0 {
		trials = 1
	}

	rng := rngPool.Get().(*mrand.Rand)
	defer rngPool.Put(rng)

	deck := make([]Card, len(remaining))
	wins, ties := 0.0, 0.0
	for t := 0; t < trials; t++ {
		copy(deck, remaining)
		partialShuffle(deck, need, rng)
		fullBoard := append(append([]Card{}, board...), deck[:need]...)
		heroCards := append(append([]Card{}, hero[0], hero[1]), fullBoard...)
		villainCards := append(append([]Card{}, villain[0], villain[1]), fullBoard...)
		hv, vv := Evaluate(heroCards), Evaluate(villainCards)
		switch {
		case hv > vv:
			wins++
		case hv == vv:
			ties++
		}
	}
	return (wins + ties/2) / float64(trials)
}

// EquityVsRange averages hero's equity against every combo in a weighted
// villain range, skipping combos that conflict with hero's hole cards or
// the board, and weighting the rest by their range weight. Grounded on
// the original evaluator's calculate_equity_batch; not exercised by the
// CFR hot path but provided for read-back callers that want range-vs-
// range equity without running a solve.
func (c Calculator) EquityVsRange(hero [2]Card, villainRange []WeightedCombo, board []Card, trialsPerCombo int) float64 {
	heroMask := MaskOf(hero[0], hero[1])
	for _, bc := range board {
		heroMask = heroMask.AddCard(bc)
	}

	totalWeight := 0.0
	weightedEquity := 0.0
	for _, combo := range villainRange {
		if heroMask.HasCard(combo.Card1) || heroMask.HasCard(combo.Card2) || combo.Card1 == combo.Card2 {
			continue
		}
		eq := c.CalculateEquity(hero, [2]Card{combo.Card1, combo.Card2}, board, trialsPerCombo)
		weightedEquity += eq * combo.Weight
		totalWeight += combo.Weight
	}
	if totalWeight == 0 {
		return 0.5
	}
	return weightedEquity / totalWeight
}
