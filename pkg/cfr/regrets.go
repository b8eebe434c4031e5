package cfr

import (
	"math"
	"sync"
)

// shardCount fixes the mutex-shard array at exactly 2048 entries: O(1)
// memory regardless of tree size, trading a small amount of false
// sharing between unrelated nodes that happen to land in the same
// shard. A node's shard is simply node_id mod shardCount.
const shardCount = 2048

// nodeRegretState holds the regret-matching state for every (combo,
// action) pair at one public node, flattened row-major by combo index.
// It is created lazily, on first touch, since most of a large tree's
// nodes may never be sampled by a given solve.
type nodeRegretState struct {
	regretSum   []float64
	strategySum []float64
	numActions  int
}

// regretTable is the engine's per-node regret/cumulative-strategy store.
// It is sharded the way lox-pokerforbots/sdk/solver's RegretTable is:
// a fixed array of mutexes indexed by a hash (here, simply node_id mod
// shardCount) guards lazy creation and every read/write of the node's
// state, so two goroutines touching unrelated nodes in different shards
// never block each other.
type regretTable struct {
	entries []nodeRegretState
	shards  [shardCount]sync.Mutex
}

func newRegretTable(nodeCount int) *regretTable {
	return &regretTable{entries: make([]nodeRegretState, nodeCount)}
}

func shardFor(nodeID int32) int {
	return int(nodeID) % shardCount
}

func (t *regretTable) ensure(nodeID int32, numCombos, numActions int) {
	size := numCombos * numActions
	e := &t.entries[nodeID]
	if e.regretSum == nil {
		e.regretSum = make([]float64, size)
		e.strategySum = make([]float64, size)
		e.numActions = numActions
	}
}

// currentStrategy returns the regret-matching strategy for one combo at
// one node: positive regrets normalized to sum to 1, or a uniform
// distribution if no action has positive regret yet.
func (t *regretTable) currentStrategy(nodeID int32, comboIdx, numCombos, numActions int) []float64 {
	shard := shardFor(nodeID)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	t.ensure(nodeID, numCombos, numActions)
	e := &t.entries[nodeID]
	row := e.regretSum[comboIdx*numActions : comboIdx*numActions+numActions]

	strategy := make([]float64, numActions)
	sum := 0.0
	for _, r := range row {
		if r > 0 {
			sum += r
		}
	}
	if sum > 0 {
		for i, r := range row {
			if r > 0 {
				strategy[i] = r / sum
			}
		}
	} else {
		uniform := 1.0 / float64(numActions)
		for i := range strategy {
			strategy[i] = uniform
		}
	}
	return strategy
}

// update accumulates one traversal's regret and strategy contribution
// for one combo at one node.
func (t *regretTable) update(nodeID int32, comboIdx, numCombos, numActions int, actionUtils []float64, nodeUtil float64, strategy []float64) {
	shard := shardFor(nodeID)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	t.ensure(nodeID, numCombos, numActions)
	e := &t.entries[nodeID]
	base := comboIdx * numActions
	for i := 0; i < numActions; i++ {
		e.regretSum[base+i] += actionUtils[i] - nodeUtil
		e.strategySum[base+i] += strategy[i]
	}
}

// averageStrategy returns the time-averaged strategy for one combo at
// one node (the cumulative strategy, normalized), falling back to a
// uniform distribution if that combo was never visited. This fallback
// is only correct for a genuine single-combo query; aggregating across
// a whole range must use visitedAverageStrategy instead, so an
// unvisited combo contributes nothing rather than fabricated uniform
// mass.
func (t *regretTable) averageStrategy(nodeID int32, comboIdx, numCombos, numActions int) []float64 {
	if strategy, ok := t.visitedAverageStrategy(nodeID, comboIdx, numCombos, numActions); ok {
		return strategy
	}
	strategy := make([]float64, numActions)
	uniform := 1.0 / float64(numActions)
	for i := range strategy {
		strategy[i] = uniform
	}
	return strategy
}

// visitedAverageStrategy returns the time-averaged strategy for one
// combo at one node, and whether that combo was ever actually visited
// (its cumulative strategy row has positive mass). Read-back callers
// aggregating across a full range use this to exclude combos that were
// never sampled, matching the original get_node_hand_strategies, which
// only sums entries present in its cumulative-strategy map.
func (t *regretTable) visitedAverageStrategy(nodeID int32, comboIdx, numCombos, numActions int) ([]float64, bool) {
	shard := shardFor(nodeID)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	e := &t.entries[nodeID]
	if e.strategySum == nil {
		return nil, false
	}
	row := e.strategySum[comboIdx*numActions : comboIdx*numActions+numActions]
	sum := 0.0
	for _, s := range row {
		sum += s
	}
	if sum <= 0 {
		return nil, false
	}
	strategy := make([]float64, numActions)
	for i, s := range row {
		strategy[i] = s / sum
	}
	return strategy, true
}

// maxPositiveRegretVisited returns, for one combo at one node, the
// largest positive entry in its regret row, and whether that combo was
// ever visited (its regret row exists and has a nonzero entry). The
// time-averaged convergence metric excludes never-visited combos from
// its mean rather than counting them as a zero contribution.
func (t *regretTable) maxPositiveRegretVisited(nodeID int32, comboIdx, numActions int) (float64, bool) {
	shard := shardFor(nodeID)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	e := &t.entries[nodeID]
	if e.regretSum == nil {
		return 0, false
	}
	row := e.regretSum[comboIdx*numActions : comboIdx*numActions+numActions]
	visited := false
	max := 0.0
	for _, r := range row {
		if r != 0 {
			visited = true
		}
		if r > max {
			max = r
		}
	}
	return max, visited
}

// applyDiscount reweights every populated entry in the table: negative
// regrets are halved (CFR+-style damping), non-negative regrets are
// scaled by d = t^alpha/(t^alpha+1), and cumulative strategy is scaled
// by dc = t^gamma/(t^gamma+1). This runs globally across all node
// tables, between outer iterations, while no traversal is in flight —
// it needs no locking of its own.
func (t *regretTable) applyDiscount(iteration int, alpha, gamma float64) {
	ti := float64(iteration)
	d := math.Pow(ti, alpha) / (math.Pow(ti, alpha) + 1)
	dc := math.Pow(ti, gamma) / (math.Pow(ti, gamma) + 1)

	for i := range t.entries {
		e := &t.entries[i]
		if e.regretSum == nil {
			continue
		}
		for j, r := range e.regretSum {
			if r < 0 {
				e.regretSum[j] = r * 0.5
			} else {
				e.regretSum[j] = r * d
			}
		}
		for j, s := range e.strategySum {
			e.strategySum[j] = s * dc
		}
	}
}
