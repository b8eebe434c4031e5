package tree

import "github.com/behrlich/subgame-solver/pkg/cards"

// Pool is the flat, append-only backing store for a built game tree.
// Every node, action, child id, and chance card lives in one of these
// four growable slices, addressed by integer offset rather than pointer.
//
// The upstream design this is grounded on backs each of these arrays
// with a huge memory-mapped file so a tree can exceed RAM; this module
// targets bounded in-RAM deployments and uses plain growable slices
// instead, which is a safe substitution as long as offsets stay stable
// and monotonic — they do here, since every append happens exactly once
// and nothing is ever removed or reordered.
type Pool struct {
	Nodes       []Node
	Actions     []Action
	ChildIDs    []int32
	ChanceCards []cards.Card
}

// NewPool returns an empty pool with capacity hints sized for a typical
// single-street subgame; all four grow unbounded past these hints.
func NewPool() *Pool {
	return &Pool{
		Nodes:       make([]Node, 0, 4096),
		Actions:     make([]Action, 0, 8192),
		ChildIDs:    make([]int32, 0, 8192),
		ChanceCards: make([]cards.Card, 0, 256),
	}
}

// NodeCount returns the number of nodes written so far.
func (p *Pool) NodeCount() int { return len(p.Nodes) }

// NodeActions returns the action slice for a player node.
func (p *Pool) NodeActions(n *Node) []Action {
	return p.Actions[n.ActionStart : int(n.ActionStart)+int(n.ActionCount)]
}

// Children returns the child ids for a player node, one per action, in
// the same order as NodeActions.
func (p *Pool) Children(n *Node) []int32 {
	return p.ChildIDs[n.ChildStart : int(n.ChildStart)+int(n.ActionCount)]
}

// ChanceOutcomes returns the representative cards for a chance node.
func (p *Pool) ChanceOutcomes(n *Node) []cards.Card {
	return p.ChanceCards[n.ChanceCardStart : int(n.ChanceCardStart)+int(n.ChanceCount)]
}

// ChanceChildren returns the child ids for a chance node, one per
// representative card, in the same order as ChanceOutcomes.
func (p *Pool) ChanceChildren(n *Node) []int32 {
	return p.ChildIDs[n.ChildStart : int(n.ChildStart)+int(n.ChanceCount)]
}
