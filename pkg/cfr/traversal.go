package cfr

import (
	"math/rand"

	"github.com/behrlich/subgame-solver/pkg/cards"
	"github.com/behrlich/subgame-solver/pkg/tree"
)

// terminalMonteCarloTrials is the number of random runouts used to
// estimate equity at a showdown terminal whose board is not yet
// complete (an all-in-before-river deep leaf).
const terminalMonteCarloTrials = 50

// sampleComboIndex picks a combo index weighted by Combo.Weight.
func sampleComboIndex(combos []Combo, rng *rand.Rand) int {
	total := 0.0
	for _, c := range combos {
		total += c.Weight
	}
	if total <= 0 {
		return rng.Intn(len(combos))
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, c := range combos {
		acc += c.Weight
		if r < acc {
			return i
		}
	}
	return len(combos) - 1
}

// sampleActionIndex picks an action index according to a strategy
// distribution (cumulative-probability sampling).
func sampleActionIndex(strategy []float64, rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	for i, p := range strategy {
		acc += p
		if r < acc {
			return i
		}
	}
	return len(strategy) - 1
}

// runSample draws one OOP/IP combo pair consistent with the board and
// each other, then runs one external-sampling traversal from the root
// for the given traverser, updating that traverser's regrets in place.
func (e *Engine) runSample(traverser int, rng *rand.Rand) {
	boardMask := cards.MaskOf(e.board...)

	oopIdx := sampleComboIndex(e.oopCombos, rng)
	for e.oopCombos[oopIdx].conflictsWith(boardMask) {
		oopIdx = sampleComboIndex(e.oopCombos, rng)
	}
	oopMask := boardMask.AddCard(e.oopCombos[oopIdx].Card1).AddCard(e.oopCombos[oopIdx].Card2)

	ipIdx := sampleComboIndex(e.ipCombos, rng)
	for e.ipCombos[ipIdx].conflictsWith(oopMask) {
		ipIdx = sampleComboIndex(e.ipCombos, rng)
	}

	e.cfrTraverse(0, traverser, oopIdx, ipIdx, rng)
}

func (e *Engine) cfrTraverse(nodeID int32, traverser, oopIdx, ipIdx int, rng *rand.Rand) float64 {
	node := &e.pool.Nodes[nodeID]

	switch node.Type {
	case tree.NodeTypeTerminal:
		return e.terminalEV(node, traverser, oopIdx, ipIdx)

	case tree.NodeTypeChance:
		return e.chanceNodeCFR(node, traverser, oopIdx, ipIdx, rng)

	default:
		return e.playerNodeCFR(node, traverser, oopIdx, ipIdx, rng)
	}
}

func (e *Engine) chanceNodeCFR(node *tree.Node, traverser, oopIdx, ipIdx int, rng *rand.Rand) float64 {
	outcomes := e.pool.ChanceOutcomes(node)
	children := e.pool.ChanceChildren(node)

	dead := cards.MaskOf(e.oopCombos[oopIdx].Card1, e.oopCombos[oopIdx].Card2, e.ipCombos[ipIdx].Card1, e.ipCombos[ipIdx].Card2)

	valid := make([]int, 0, len(outcomes))
	for i, c := range outcomes {
		if !dead.HasCard(c) {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 {
		return 0
	}
	chosen := valid[rng.Intn(len(valid))]
	return e.cfrTraverse(children[chosen], traverser, oopIdx, ipIdx, rng)
}

func (e *Engine) playerNodeCFR(node *tree.Node, traverser, oopIdx, ipIdx int, rng *rand.Rand) float64 {
	numActions := int(node.ActionCount)
	children := e.pool.Children(node)

	var comboIdx, numCombos int
	if node.Player == 0 {
		comboIdx, numCombos = oopIdx, len(e.oopCombos)
	} else {
		comboIdx, numCombos = ipIdx, len(e.ipCombos)
	}

	strategy := e.regrets.currentStrategy(node.ID, comboIdx, numCombos, numActions)

	if int(node.Player) != traverser {
		i := sampleActionIndex(strategy, rng)
		return e.cfrTraverse(children[i], traverser, oopIdx, ipIdx, rng)
	}

	actionUtils := make([]float64, numActions)
	nodeUtil := 0.0
	for i := 0; i < numActions; i++ {
		actionUtils[i] = e.cfrTraverse(children[i], traverser, oopIdx, ipIdx, rng)
		nodeUtil += strategy[i] * actionUtils[i]
	}

	e.regrets.update(node.ID, comboIdx, numCombos, numActions, actionUtils, nodeUtil, strategy)
	return nodeUtil
}

// terminalEV computes the traverser's payoff at a terminal node: a fold
// terminal pays the traverser's remaining stack minus what they started
// with, a showdown terminal pays equity*pot minus what the traverser has
// invested so far.
func (e *Engine) terminalEV(node *tree.Node, traverser, oopIdx, ipIdx int) float64 {
	initialStack := e.initialStacks[traverser]

	if node.IsFoldTerminal() {
		return node.Stacks[traverser] - initialStack
	}

	hero, villain := e.oopCombos[oopIdx], e.ipCombos[ipIdx]
	if traverser == 1 {
		hero, villain = villain, hero
	}

	board := node.Board[:node.BoardLen]
	var equity float64
	if node.BoardLen == 5 {
		heroCards := append(append([]cards.Card{}, hero.Card1, hero.Card2), board...)
		villainCards := append(append([]cards.Card{}, villain.Card1, villain.Card2), board...)
		hv, vv := cards.Evaluate(heroCards), cards.Evaluate(villainCards)
		switch {
		case hv > vv:
			equity = 1
		case hv < vv:
			equity = 0
		default:
			equity = 0.5
		}
	} else {
		equity = e.calc.CalculateEquity([2]cards.Card{hero.Card1, hero.Card2}, [2]cards.Card{villain.Card1, villain.Card2}, board, terminalMonteCarloTrials)
	}

	return equity*node.Pot - (initialStack - node.Stacks[traverser])
}
