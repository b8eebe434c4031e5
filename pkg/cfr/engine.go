// Package cfr implements external-sampling Discounted-CFR over a flat
// betting tree, plus the driver surface a host binding consumes to
// build a subgame, assign ranges and a board, run a solve, and read the
// resulting strategy back out.
package cfr

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/behrlich/subgame-solver/pkg/cards"
	"github.com/behrlich/subgame-solver/pkg/tree"
)

// ProgressFunc is invoked after each outer iteration with the iteration
// number, the total requested, and the current convergence metric.
type ProgressFunc func(iteration, total int, convergence float64)

// Engine owns a built tree, both players' ranges, and all regret state
// for one subgame. It is not safe for concurrent Solve calls; Stop may
// be called from another goroutine at any time.
type Engine struct {
	config  Config
	logger  *log.Logger
	calc    cards.Calculator

	builder *tree.Builder
	pool    *tree.Pool

	oopCombos []Combo
	ipCombos  []Combo
	board     []cards.Card

	initialStacks [2]float64

	regrets *regretTable

	// oopRiverRanks/ipRiverRanks cache each range's HandRank against the
	// full board, indexed by combo index, when the board is already
	// complete. The terminal-payoff path deliberately never consults
	// this cache and instead re-evaluates directly; it is carried here
	// only because the engine this is grounded on does the same, as an
	// explicitly preserved quirk rather than a bug.
	oopRiverRanks []cards.HandRank
	ipRiverRanks  []cards.HandRank

	regretHistory []float64
	stopped       atomic.Bool
}

// NewEngine returns an Engine ready to build a tree and accept ranges.
func NewEngine(config Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{config: config, logger: logger, calc: cards.NewCalculator()}
}

// BuildTree constructs the betting tree for the given board and betting
// configuration. It must be called before Solve.
func (e *Engine) BuildTree(betting tree.BettingConfig, board []cards.Card) error {
	e.builder = tree.NewBuilder(betting, e.logger)
	pool, err := e.builder.BuildTree(board)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	e.pool = pool
	e.board = append([]cards.Card{}, board...)
	e.initialStacks = [2]float64{betting.OOPStack, betting.IPStack}
	e.regrets = newRegretTable(pool.NodeCount())
	e.regretHistory = e.regretHistory[:0]
	return nil
}

// SetOOPRange assigns the out-of-position player's weighted range.
func (e *Engine) SetOOPRange(combos []Combo) { e.oopCombos = combos }

// SetIPRange assigns the in-position player's weighted range.
func (e *Engine) SetIPRange(combos []Combo) { e.ipCombos = combos }

// SetBoard overrides the board that sampled combos are checked against
// for card conflicts and that PrecomputeRiverRanks evaluates against,
// and drops any cached river ranks. Showdown equity is not affected: it
// is computed from each terminal node's own board, fixed by BuildTree.
// It is a separate setter because a host binding may want to reuse a
// built tree across equivalent boards before re-solving (e.g.
// suit-isomorphic boards).
func (e *Engine) SetBoard(board []cards.Card) {
	e.board = append([]cards.Card{}, board...)
	e.oopRiverRanks = nil
	e.ipRiverRanks = nil
}

// PrecomputeRiverRanks builds, for every combo in each range, its
// HandRank against the full board, when the current board already has
// 5 cards. The terminal-payoff path intentionally never consults this
// cache; it is carried here only because the engine this is grounded
// on does the same, as an explicitly preserved quirk rather than a bug.
func (e *Engine) PrecomputeRiverRanks() {
	if len(e.board) != 5 {
		return
	}
	e.oopRiverRanks = make([]cards.HandRank, len(e.oopCombos))
	for i, combo := range e.oopCombos {
		hand := append([]cards.Card{combo.Card1, combo.Card2}, e.board...)
		e.oopRiverRanks[i] = cards.Evaluate(hand)
	}
	e.ipRiverRanks = make([]cards.HandRank, len(e.ipCombos))
	for i, combo := range e.ipCombos {
		hand := append([]cards.Card{combo.Card1, combo.Card2}, e.board...)
		e.ipRiverRanks[i] = cards.Evaluate(hand)
	}
}

// Stop requests cooperative cancellation of an in-progress Solve. It is
// safe to call concurrently and idempotently.
func (e *Engine) Stop() { e.stopped.Store(true) }

// GetNodeCount returns the number of nodes in the built tree.
func (e *Engine) GetNodeCount() int {
	if e.pool == nil {
		return 0
	}
	return e.pool.NodeCount()
}

// GetRegretHistory returns the convergence metric recorded after every
// completed outer iteration, in order.
func (e *Engine) GetRegretHistory() []float64 {
	return append([]float64{}, e.regretHistory...)
}

// Solve runs `iterations` outer iterations of external-sampling
// Discounted-CFR. Each outer iteration updates both players (OOP then
// IP), running config.BaseSampleSize independent traversals per player
// through a bounded-parallel errgroup. progress, if non-nil, is called
// once per completed outer iteration.
func (e *Engine) Solve(ctx context.Context, iterations int, progress ProgressFunc) error {
	if e.pool == nil {
		return fmt.Errorf("solve: no tree built")
	}
	if len(e.oopCombos) == 0 || len(e.ipCombos) == 0 {
		return fmt.Errorf("solve: both ranges must be set before solving")
	}
	e.PrecomputeRiverRanks()

	runID := uuid.New()
	logger := e.logger.With("run_id", runID.String())
	logger.Info("solve starting", "iterations", iterations, "nodes", e.pool.NodeCount())

	for iter := 1; iter <= iterations; iter++ {
		if e.stopped.Load() || ctx.Err() != nil {
			logger.Info("solve stopped early", "completed_iterations", iter-1)
			break
		}

		for _, traverser := range []int{0, 1} {
			if err := e.runIteration(ctx, traverser); err != nil {
				return fmt.Errorf("solve iteration %d (player %d): %w", iter, traverser, err)
			}
		}

		if iter%discountEvery == 0 {
			e.regrets.applyDiscount(iter, e.config.Alpha, e.config.Gamma)
		}

		convergence := e.convergence(iter)
		e.regretHistory = append(e.regretHistory, convergence)

		if progress != nil {
			progress(iter, iterations, convergence)
		}
	}

	logger.Info("solve finished", "iterations_completed", len(e.regretHistory))
	return nil
}

// runIteration fans out config.BaseSampleSize independent traversals for
// one traverser across a bounded-concurrency errgroup.
func (e *Engine) runIteration(ctx context.Context, traverser int) error {
	samples := e.config.BaseSampleSize
	if samples <= 0 {
		samples = 1
	}

	if !e.config.UseParallel {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for i := 0; i < samples; i++ {
			e.runSample(traverser, rng)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	limit := e.config.NumThreads
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i := 0; i < samples; i++ {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			rng := rand.New(rand.NewSource(rand.Int63()))
			e.runSample(traverser, rng)
			return nil
		})
	}
	return g.Wait()
}

// convergence is the time-averaged exploitability proxy: mean, over
// only the root combos actually reached by a traversal so far, of the
// max positive regret at the root, divided by the cumulative sample
// count seen so far — not the current iteration's sample count.
// Preserving this "time-averaged" denominator is a documented
// ambiguity carried forward unchanged rather than "fixed" to a
// per-iteration normalization; excluding never-reached combos from the
// mean (rather than letting them dilute it toward zero) matches the
// ground truth's own resolution of that same ambiguity.
func (e *Engine) convergence(iteration int) float64 {
	root := &e.pool.Nodes[0]
	if root.Type != tree.NodeTypePlayer {
		return 0
	}
	numActions := int(root.ActionCount)
	var combos []Combo
	if root.Player == 0 {
		combos = e.oopCombos
	} else {
		combos = e.ipCombos
	}

	total := 0.0
	handsCounted := 0
	for idx := range combos {
		regret, visited := e.regrets.maxPositiveRegretVisited(root.ID, idx, numActions)
		if !visited {
			continue
		}
		total += regret
		handsCounted++
	}
	if handsCounted == 0 {
		return 0
	}
	mean := total / float64(handsCounted)

	cumulativeSamples := float64(iteration * e.config.BaseSampleSize)
	if cumulativeSamples == 0 {
		return mean
	}
	return mean / cumulativeSamples
}
