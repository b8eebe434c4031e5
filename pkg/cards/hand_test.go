package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCategory(t *testing.T) {
	tests := []struct {
		name         string
		cards        string
		wantCategory int
	}{
		{"Royal flush", "AhKhQhJhTh2d3c", CategoryStraightFlush},
		{"Straight flush", "9s8s7s6s5s2h3d", CategoryStraightFlush},
		{"Wheel straight flush", "5d4d3d2dAd7h8c", CategoryStraightFlush},
		{"Quad aces", "AsAhAdAcKs2d3c", CategoryQuads},
		{"Quad twos", "2s2h2d2cAhKsQd", CategoryQuads},
		{"Aces full of kings", "AsAhAdKsKh2d3c", CategoryFullHouse},
		{"Threes full of twos", "3s3h3d2s2hAcKd", CategoryFullHouse},
		{"Ace-high flush", "AhKh9h5h2h3dQc", CategoryFlush},
		{"King-high flush", "KsQs9s7s2s3h4d", CategoryFlush},
		{"Broadway straight", "AhKdQcJsTs2h3c", CategoryStraight},
		{"Wheel straight", "Ah2s3d4c5h7s9d", CategoryStraight},
		{"Seven-high straight", "7h6d5s4c3h2sAd", CategoryStraight},
		{"Trip aces", "AsAhAdKsQh2d3c", CategoryTrips},
		{"Aces and kings", "AsAhKdKsQh2d3c", CategoryTwoPair},
		{"Threes and twos", "3s3h2d2sAhKdQc", CategoryTwoPair},
		{"Pair of aces", "AsAhKdQsJh9d7c", CategoryPair},
		{"Pair of twos", "2s2hAhKd9cJs7d", CategoryPair},
		{"Ace high", "AhKd9s7c5h3d2s", CategoryHighCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := ParseCards(tt.cards)
			require.NoError(t, err)
			got := Evaluate(cards)
			assert.Equal(t, tt.wantCategory, got.Category())
		})
	}
}

func TestCompareHands(t *testing.T) {
	tests := []struct {
		name  string
		hand1 string
		hand2 string
		want  int
	}{
		{"Straight flush beats quads", "9s8s7s6s5s2h3d", "AsAhAdAcKs2d3c", 1},
		{"Quads beat full house", "2s2h2d2cAhKsQd", "AsAhAdKsKh2d3c", 1},
		{"Full house beats flush", "3s3h3d2s2hAcKd", "AhKh9h5h2h3dQc", 1},
		{"Flush beats straight", "AhKh9h5h2h3dQc", "AhKdQcJsTs2h3c", 1},
		{"Higher pair wins", "AsAhKdQsJh9d7c", "KsKhAdQsJh9d7c", 1},
		{"Same pair, higher kicker wins", "AsAhKdQsJh9d7c", "AdAcQh9s7d5c3h", 1},
		{"Identical hands tie", "AsAhKdQsJh9d7c", "AdAcKhQcJs9h7s", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards1, err := ParseCards(tt.hand1)
			require.NoError(t, err)
			cards2, err := ParseCards(tt.hand2)
			require.NoError(t, err)

			v1, v2 := Evaluate(cards1), Evaluate(cards2)
			switch {
			case tt.want > 0:
				assert.Greater(t, v1, v2)
			case tt.want < 0:
				assert.Less(t, v1, v2)
			default:
				assert.Equal(t, v1, v2)
			}
		})
	}
}

func TestCheckStraight(t *testing.T) {
	tests := []struct {
		name     string
		ranks    []int
		wantIs   bool
		wantHigh int
	}{
		{"Broadway", []int{12, 11, 10, 9, 8}, true, 12},
		{"Wheel (A-2-3-4-5)", []int{12, 0, 1, 2, 3}, true, 3},
		{"Seven high straight", []int{5, 4, 3, 2, 1}, true, 5},
		{"Not a straight (gap)", []int{12, 11, 10, 9, 7}, false, 0},
		{"Not a straight (pair)", []int{12, 12, 11, 10, 9}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rankCounts [numRanks]int
			for _, r := range tt.ranks {
				rankCounts[r]++
			}
			gotIs, gotHigh := checkStraight(rankCounts)
			assert.Equal(t, tt.wantIs, gotIs)
			if tt.wantIs {
				assert.Equal(t, tt.wantHigh, gotHigh)
			}
		})
	}
}

func TestEvaluateSevenMatchesFive(t *testing.T) {
	cards, err := ParseCards("AsAhAdAcKsQhJd")
	require.NoError(t, err)
	got := EvaluateSeven(cards)
	assert.Equal(t, CategoryQuads, got.Category())
	// The best five of these seven are the first five: AAAA with a K kicker.
	assert.Equal(t, EvaluateFive(cards[:5]), got)
}
