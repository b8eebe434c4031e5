package cfr

import (
	"fmt"

	"github.com/behrlich/subgame-solver/pkg/cards"
	"github.com/behrlich/subgame-solver/pkg/tree"
)

// NodeData is the read-back projection of one tree node: resolved child
// ids and human-readable action strings alongside the raw fields, the
// shape a host binding actually wants rather than the packed pool
// layout.
type NodeData struct {
	ID       int32
	Player   int8
	Street   string
	Pot      float64
	Stacks   [2]float64
	ToCall   float64
	Type     string
	Actions  []string
	ChildIDs []int32
	Board    []cards.Card

	// Chance-node-only fields; empty slices for player/terminal nodes.
	ChanceCards    []cards.Card
	ChanceChildIDs []int32
}

func nodeTypeString(t tree.NodeType) string {
	switch t {
	case tree.NodeTypePlayer:
		return "player"
	case tree.NodeTypeChance:
		return "chance"
	case tree.NodeTypeTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// GetNodeData returns the read-back projection of one node.
func (e *Engine) GetNodeData(nodeID int32) (NodeData, error) {
	if e.pool == nil || int(nodeID) >= e.pool.NodeCount() {
		return NodeData{}, fmt.Errorf("get node data: node %d out of range", nodeID)
	}
	node := &e.pool.Nodes[nodeID]

	data := NodeData{
		ID:     node.ID,
		Player: node.Player,
		Street: node.Street.String(),
		Pot:    node.Pot,
		Stacks: node.Stacks,
		ToCall: node.ToCall,
		Type:   nodeTypeString(node.Type),
		Board:  append([]cards.Card{}, node.Board[:node.BoardLen]...),
	}

	switch node.Type {
	case tree.NodeTypePlayer:
		for _, a := range e.pool.NodeActions(node) {
			data.Actions = append(data.Actions, fmt.Sprintf("%s:%.2f", a.Kind, a.Size))
		}
		data.ChildIDs = append(data.ChildIDs, e.pool.Children(node)...)
	case tree.NodeTypeChance:
		data.ChanceCards = append(data.ChanceCards, e.pool.ChanceOutcomes(node)...)
		data.ChanceChildIDs = append(data.ChanceChildIDs, e.pool.ChanceChildren(node)...)
	}

	return data, nil
}

// GetNodeHandStrategies aggregates the time-averaged strategy at a
// player node across every combo sharing a hand label (e.g. the four
// suit combos of "AKs"), summing each combo's normalized average
// strategy. The raw cumulative-strategy rows are not summed directly:
// every visited combo contributes a vector summing to 1, whatever its
// accumulated mass. A combo that was never reached by any traversal
// contributes nothing to its label's sum, matching the original get_node_hand_strategies,
// which only sums entries present in its cumulative-strategy map.
// Callers must normalize the result themselves — different labels can
// carry a different number of visited combos, so the raw sums are not
// directly comparable probabilities.
func (e *Engine) GetNodeHandStrategies(nodeID int32) (map[string][]float64, error) {
	if e.pool == nil || int(nodeID) >= e.pool.NodeCount() {
		return nil, fmt.Errorf("get node hand strategies: node %d out of range", nodeID)
	}
	node := &e.pool.Nodes[nodeID]
	if node.Type != tree.NodeTypePlayer {
		return nil, fmt.Errorf("get node hand strategies: node %d is not a player node", nodeID)
	}
	numActions := int(node.ActionCount)

	combos := e.oopCombos
	if node.Player == 1 {
		combos = e.ipCombos
	}
	numCombos := len(combos)

	out := make(map[string][]float64)
	for idx, combo := range combos {
		acc, ok := out[combo.Label]
		if !ok {
			acc = make([]float64, numActions)
			out[combo.Label] = acc
		}
		strat, visited := e.regrets.visitedAverageStrategy(node.ID, idx, numCombos, numActions)
		if !visited {
			continue
		}
		for i, p := range strat {
			acc[i] += p
		}
	}
	return out, nil
}

// GetAverageRegret returns the most recently recorded convergence
// metric (the same time-averaged quantity GetRegretHistory traces), or
// 0 if no iteration has completed yet.
func (e *Engine) GetAverageRegret() float64 {
	if len(e.regretHistory) == 0 {
		return 0
	}
	return e.regretHistory[len(e.regretHistory)-1]
}
