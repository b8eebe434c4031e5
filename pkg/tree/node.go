// Package tree implements the flat, offset-indexed game-tree pool and the
// betting-tree builder that populates it with perfect transposition
// deduplication.
package tree

import "github.com/behrlich/subgame-solver/pkg/cards"

// Street identifies a post-flop betting round. Unlike some retrieved
// reference trees, Street here never includes preflop: this solver only
// ever builds post-flop subgames.
type Street uint8

const (
	Flop Street = iota
	Turn
	River
)

func (s Street) String() string {
	switch s {
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return "unknown"
	}
}

// NodeType distinguishes the three kinds of node the pool can hold.
type NodeType uint8

const (
	NodeTypePlayer NodeType = iota
	NodeTypeChance
	NodeTypeTerminal
)

// ActionType enumerates the actions a player node's Actions slice can
// hold. AllIn is always distinct from Bet/Raise so callers never need to
// infer all-in-ness from a size comparison against a stack.
type ActionType uint8

const (
	Fold ActionType = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a ActionType) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Bet:
		return "bet"
	case Raise:
		return "raise"
	case AllIn:
		return "allin"
	default:
		return "unknown"
	}
}

// Action is a single legal move at a player node: its kind, and the
// total chips the actor invests to take it (0 for fold/check).
type Action struct {
	Kind ActionType
	Size float64
}

// Node is the flat, POD record for one tree node. Player children are
// addressed through ChildStart/ActionCount into the pool's shared
// ChildIDs slice; chance nodes address
// ChanceCardStart/ChanceCount into ChanceCards, with a 1:1 correspondence
// between a chance card at index i and the child id at
// ChildStart+i (chance nodes reuse ChildStart for their own children,
// distinct from a player node's action-indexed children).
type Node struct {
	ID     int32
	Type   NodeType
	Player int8 // 0 = OOP, 1 = IP; meaningless for chance/terminal
	Street Street
	Pot    float64
	Stacks [2]float64
	ToCall float64

	ActionStart int32
	ActionCount uint8

	// ChildStart addresses the pool's shared ChildIDs slice. For a
	// player node it holds ActionCount children, one per action. For a
	// chance node it holds ChanceCount children, one per representative
	// card in ChanceCardStart, in the same order.
	ChildStart int32

	ChanceCardStart int32
	ChanceCount     uint16

	Board    [5]cards.Card
	BoardLen uint8
}

// IsTerminal reports whether the node ends the hand.
func (n *Node) IsTerminal() bool { return n.Type == NodeTypeTerminal }

// IsFoldTerminal reports whether a terminal node was reached by a fold,
// matching the pot<epsilon convention the payoff calculation relies on.
func (n *Node) IsFoldTerminal() bool { return n.IsTerminal() && n.Pot < epsilon }
