package tree

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/behrlich/subgame-solver/pkg/cards"
)

const epsilon = 0.01

// BettingConfig parameterizes the shape of the betting tree: starting
// stacks/pot and, per street, the bet- and raise-size lists (each
// expressed as a fraction of the relevant pot) plus a shared cap on the
// number of raises per street.
type BettingConfig struct {
	InitialPot float64
	OOPStack   float64
	IPStack    float64

	FlopBetSizes  []float64
	TurnBetSizes  []float64
	RiverBetSizes []float64

	FlopRaiseSizes  []float64
	TurnRaiseSizes  []float64
	RiverRaiseSizes []float64

	MaxRaises int
}

// DefaultMaxRaises matches the upstream builder's default raise cap.
const DefaultMaxRaises = 3

// Builder constructs a betting tree into a fresh Pool for a given board,
// deduplicating isomorphic states via a transposition table keyed on the
// full game-state (stacks, pot, player, street, to-call, raise count,
// all-in flag, board).
type Builder struct {
	Config BettingConfig
	Logger *log.Logger

	pool          *Pool
	transposition map[string]int32
}

// NewBuilder returns a Builder for the given betting configuration. If
// logger is nil, a default logger is used.
func NewBuilder(config BettingConfig, logger *log.Logger) *Builder {
	if config.MaxRaises == 0 {
		config.MaxRaises = DefaultMaxRaises
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{Config: config, Logger: logger}
}

// BuildTree builds a complete post-flop subgame tree rooted at the given
// board (3, 4, or 5 cards for flop/turn/river starts respectively). Node
// 0 in the returned pool always addresses the real root, regardless of
// what id the recursive build actually assigned it.
func (b *Builder) BuildTree(board []cards.Card) (*Pool, error) {
	var street Street
	switch len(board) {
	case 3:
		street = Flop
	case 4:
		street = Turn
	case 5:
		street = River
	default:
		return nil, fmt.Errorf("build tree: board must have 3, 4, or 5 cards, got %d", len(board))
	}

	b.pool = NewPool()
	b.transposition = make(map[string]int32)

	// Slot 0 is reserved before the real recursive build starts so
	// callers can always treat node id 0 as the entry point.
	b.pool.Nodes = append(b.pool.Nodes, Node{ID: 0})

	rootID, err := b.buildRecursive(b.Config.OOPStack, b.Config.IPStack, b.Config.InitialPot, 0, street, board, 0, 0, 0, false)
	if err != nil {
		return nil, err
	}

	if rootID != 0 {
		root := b.pool.Nodes[rootID]
		root.ID = 0
		b.pool.Nodes[0] = root
	}

	b.Logger.Debug("tree built", "nodes", len(b.pool.Nodes), "actions", len(b.pool.Actions))
	return b.pool, nil
}

func stateKey(oopS, ipS, pot float64, player int, street Street, board []cards.Card, currentBet, actorInvested float64, raiseCount int, isAllIn bool) string {
	toCall := currentBet - actorInvested
	allIn := 0
	if isAllIn {
		allIn = 1
	}
	key := fmt.Sprintf("%.2f|%.2f|%.2f|%d|%d|%.2f|%d|%d", oopS, ipS, pot, player, int(street), toCall, raiseCount, allIn)
	for _, c := range board {
		key += "," + strconv.Itoa(int(c))
	}
	return key
}

func (b *Builder) writeNode(key string, player int, street Street, pot, oopStack, ipStack, toCall float64, actions []Action, childIDs []int32, board []cards.Card) int32 {
	id := int32(len(b.pool.Nodes))
	n := Node{
		ID:     id,
		Player: int8(player),
		Street: street,
		Pot:    pot,
		Stacks: [2]float64{oopStack, ipStack},
		ToCall: math.Max(0, toCall),
	}
	if len(actions) == 0 {
		n.Type = NodeTypeTerminal
	} else {
		n.Type = NodeTypePlayer
	}
	n.BoardLen = uint8(len(board))
	copy(n.Board[:], board)

	n.ActionStart = int32(len(b.pool.Actions))
	n.ActionCount = uint8(len(actions))
	b.pool.Actions = append(b.pool.Actions, actions...)

	n.ChildStart = int32(len(b.pool.ChildIDs))
	b.pool.ChildIDs = append(b.pool.ChildIDs, childIDs...)

	b.pool.Nodes = append(b.pool.Nodes, n)
	b.transposition[key] = id
	return id
}

func (b *Builder) betAndRaiseSizes(street Street, isBet bool) []float64 {
	switch {
	case isBet && street == Flop:
		return b.Config.FlopBetSizes
	case isBet && street == Turn:
		return b.Config.TurnBetSizes
	case isBet && street == River:
		return b.Config.RiverBetSizes
	case !isBet && street == Flop:
		return b.Config.FlopRaiseSizes
	case !isBet && street == Turn:
		return b.Config.TurnRaiseSizes
	default:
		return b.Config.RiverRaiseSizes
	}
}

// buildRecursive constructs the subtree for one decision point and
// returns its node id. It is grounded exactly on the upstream betting
// recursion, including the placeholder all-in action and the raw
// (possibly negative) to_call used for legality checks.
func (b *Builder) buildRecursive(oopStack, ipStack, pot float64, player int, street Street, board []cards.Card, raiseCount int, currentBet, actorInvested float64, isAllIn bool) (int32, error) {
	key := stateKey(oopStack, ipStack, pot, player, street, board, currentBet, actorInvested, raiseCount, isAllIn)
	if id, ok := b.transposition[key]; ok {
		return id, nil
	}

	var actions []Action
	var childIDs []int32
	toCall := currentBet - actorInvested

	if isAllIn && toCall < epsilon {
		if street == River {
			return b.writeNode(key, player, street, pot, oopStack, ipStack, toCall, nil, nil, board), nil
		}
		chanceID, err := b.addChanceNode(oopStack, ipStack, pot, street+1, board)
		if err != nil {
			return -1, err
		}
		actions = append(actions, Action{Kind: Call, Size: 0})
		childIDs = append(childIDs, chanceID)
		return b.writeNode(key, player, street, pot, oopStack, ipStack, toCall, actions, childIDs, board), nil
	}

	actorStack := oopStack
	if player == 1 {
		actorStack = ipStack
	}

	// 1. Fold
	if toCall > epsilon {
		actions = append(actions, Action{Kind: Fold, Size: 0})
		foldKey := "TERM_FOLD_" + strconv.Itoa(len(b.pool.Nodes))
		foldID := b.writeNode(foldKey, player, street, 0, oopStack, ipStack, 0, nil, nil, board)
		childIDs = append(childIDs, foldID)
	}

	// 2. Check / Call
	if toCall < epsilon {
		actions = append(actions, Action{Kind: Check, Size: 0})
		if player == 1 {
			if street == River {
				sdKey := "TERM_SD_" + strconv.Itoa(len(b.pool.Nodes))
				sdID := b.writeNode(sdKey, player, street, pot, oopStack, ipStack, 0, nil, nil, board)
				childIDs = append(childIDs, sdID)
			} else {
				chanceID, err := b.addChanceNode(oopStack, ipStack, pot, street+1, board)
				if err != nil {
					return -1, err
				}
				childIDs = append(childIDs, chanceID)
			}
		} else {
			childID, err := b.buildRecursive(oopStack, ipStack, pot, 1, street, board, 0, 0, 0, false)
			if err != nil {
				return -1, err
			}
			childIDs = append(childIDs, childID)
		}
	} else {
		callAmt := math.Min(actorStack, toCall)
		actions = append(actions, Action{Kind: Call, Size: callAmt})
		nextOOP, nextIP := oopStack, ipStack
		if player == 0 {
			nextOOP -= callAmt
		} else {
			nextIP -= callAmt
		}
		nextPot := pot + callAmt

		if street == River {
			sdKey := "TERM_SD_" + strconv.Itoa(len(b.pool.Nodes))
			sdID := b.writeNode(sdKey, player, street, nextPot, nextOOP, nextIP, 0, nil, nil, board)
			childIDs = append(childIDs, sdID)
		} else {
			// Whether this call itself puts a player all-in or not, a
			// non-river call ends the street the same way: deal the
			// next card. The all-in-ness is captured by the stacks
			// (<=0) the chance subtree recurses with.
			chanceID, err := b.addChanceNode(nextOOP, nextIP, nextPot, street+1, board)
			if err != nil {
				return -1, err
			}
			childIDs = append(childIDs, chanceID)
		}
	}

	// 3. Bet / Raise
	if raiseCount < b.Config.MaxRaises && actorStack > toCall+epsilon {
		isBet := toCall < epsilon
		sizes := b.betAndRaiseSizes(street, isBet)

		for _, s := range sizes {
			var betVal float64
			if isBet {
				betVal = math.Floor(pot * s)
			} else {
				betVal = math.Floor((pot + toCall) * s)
			}
			if betVal < 1 {
				betVal = 1
			}
			invest := math.Min(actorStack, toCall+betVal)
			if invest <= toCall+epsilon {
				continue
			}
			kind := Bet
			if !isBet {
				kind = Raise
			}
			actions = append(actions, Action{Kind: kind, Size: invest})
			nOOP, nIP := oopStack, ipStack
			if player == 0 {
				nOOP -= invest
			} else {
				nIP -= invest
			}
			childID, err := b.buildRecursive(nOOP, nIP, pot+invest, 1-player, street, board, raiseCount+1, invest, currentBet, invest >= actorStack-epsilon)
			if err != nil {
				return -1, err
			}
			childIDs = append(childIDs, childID)
		}

		if actorStack > toCall+1.0 {
			actions = append(actions, Action{Kind: AllIn, Size: actorStack})
			nOOP, nIP := oopStack, ipStack
			if player == 0 {
				nOOP = 0
			} else {
				nIP = 0
			}
			childID, err := b.buildRecursive(nOOP, nIP, pot+actorStack, 1-player, street, board, raiseCount+1, actorStack, currentBet, true)
			if err != nil {
				return -1, err
			}
			childIDs = append(childIDs, childID)
		}
	}

	return b.writeNode(key, player, street, pot, oopStack, ipStack, toCall, actions, childIDs, board), nil
}

// addChanceNode builds all representative-card subtrees first (so their
// ids are lower than the chance node's own id), then writes the chance
// node itself with offsets captured at write time.
func (b *Builder) addChanceNode(oopStack, ipStack, pot float64, nextStreet Street, board []cards.Card) (int32, error) {
	mask := cards.MaskOf(board...)

	var chanceCards []cards.Card
	var chanceChildIDs []int32

	for r := 0; r < 13; r++ {
		for s := 0; s < 4; s++ {
			c := cards.NewCard(r, s)
			if mask.HasCard(c) {
				continue
			}
			nextBoard := make([]cards.Card, len(board), len(board)+1)
			copy(nextBoard, board)
			nextBoard = append(nextBoard, c)

			childID, err := b.buildRecursive(oopStack, ipStack, pot, 0, nextStreet, nextBoard, 0, 0, 0, oopStack < epsilon || ipStack < epsilon)
			if err != nil {
				return -1, err
			}
			chanceCards = append(chanceCards, c)
			chanceChildIDs = append(chanceChildIDs, childID)
			break
		}
	}

	id := int32(len(b.pool.Nodes))
	n := Node{
		ID:     id,
		Type:   NodeTypeChance,
		Pot:    pot,
		Stacks: [2]float64{oopStack, ipStack},
		Street: nextStreet,
	}
	n.BoardLen = uint8(len(board))
	copy(n.Board[:], board)

	n.ChanceCardStart = int32(len(b.pool.ChanceCards))
	n.ChanceCount = uint16(len(chanceCards))
	b.pool.ChanceCards = append(b.pool.ChanceCards, chanceCards...)

	n.ChildStart = int32(len(b.pool.ChildIDs))
	b.pool.ChildIDs = append(b.pool.ChildIDs, chanceChildIDs...)

	b.pool.Nodes = append(b.pool.Nodes, n)
	return id, nil
}
