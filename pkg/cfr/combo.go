package cfr

import "github.com/behrlich/subgame-solver/pkg/cards"

// Combo is a single weighted starting hand in a player's range, plus an
// optional display label ("AKs", "22", ...). Constructing a range from a
// range-string is an external collaborator's job — the engine only ever
// consumes an already-materialized slice of Combo.
type Combo struct {
	Card1, Card2 cards.Card
	Weight       float64
	Label        string
}

func (c Combo) mask() cards.Mask {
	return cards.MaskOf(c.Card1, c.Card2)
}

func (c Combo) conflictsWith(mask cards.Mask) bool {
	return c.Card1 == c.Card2 || mask.HasCard(c.Card1) || mask.HasCard(c.Card2)
}
