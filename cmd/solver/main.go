// Command solver is a demo binary wiring the driver surface end to end:
// build a subgame tree for a board, assign both ranges, run a solve, and
// print the resulting strategy at the root. It renders its own progress
// bar and log output — the core library itself stays free of any
// progress-reporting UI, per its scope.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"

	"github.com/behrlich/subgame-solver/internal/config"
	"github.com/behrlich/subgame-solver/pkg/cards"
	"github.com/behrlich/subgame-solver/pkg/cfr"
	"github.com/behrlich/subgame-solver/pkg/tree"
)

type cli struct {
	Board      string  `arg:"" help:"board cards, e.g. AsKd7h"`
	OOP        string  `required:"" help:"OOP range as label:cards:weight pairs, e.g. JJ:JcJd:1,TT:ThTd:1"`
	IP         string  `required:"" help:"IP range, same format as --oop"`
	Pot        float64 `default:"20" help:"starting pot"`
	Stack      float64 `default:"100" help:"starting stack for both players"`
	Iterations int     `default:"0" help:"outer CFR iterations; 0 uses SOLVER_ITERATIONS"`
	Threads    int     `default:"0" help:"cap on parallel sample fan-out; 0 uses SOLVER_THREADS"`
	Verbose    bool    `short:"v" help:"enable debug logging"`
}

func parseRange(spec string) ([]cfr.Combo, error) {
	var combos []cfr.Combo
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid range entry %q: expected label:cards:weight", entry)
		}
		label, cardStr, weightStr := parts[0], parts[1], parts[2]
		cs, err := cards.ParseCards(cardStr)
		if err != nil || len(cs) != 2 {
			return nil, fmt.Errorf("invalid range entry %q: %w", entry, err)
		}
		weight, err := strconv.ParseFloat(weightStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range entry %q: bad weight: %w", entry, err)
		}
		combos = append(combos, cfr.Combo{Card1: cs[0], Card2: cs[1], Weight: weight, Label: label})
	}
	if len(combos) == 0 {
		return nil, fmt.Errorf("range %q has no combos", spec)
	}
	return combos, nil
}

func defaultBetting(pot, stack float64) tree.BettingConfig {
	sizes := []float64{0.5, 1.0}
	return tree.BettingConfig{
		InitialPot:      pot,
		OOPStack:        stack,
		IPStack:         stack,
		FlopBetSizes:    sizes,
		TurnBetSizes:    sizes,
		RiverBetSizes:   sizes,
		FlopRaiseSizes:  sizes,
		TurnRaiseSizes:  sizes,
		RiverRaiseSizes: sizes,
		MaxRaises:       tree.DefaultMaxRaises,
	}
}

func main() {
	var c cli
	kong.Parse(&c, kong.Description("solve a post-flop two-player subgame"))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr)
	if c.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	board, err := cards.ParseCards(c.Board)
	if err != nil {
		logger.Fatal("invalid board", "err", err)
	}
	oopRange, err := parseRange(c.OOP)
	if err != nil {
		logger.Fatal("invalid oop range", "err", err)
	}
	ipRange, err := parseRange(c.IP)
	if err != nil {
		logger.Fatal("invalid ip range", "err", err)
	}

	iterations := c.Iterations
	if iterations <= 0 {
		iterations = cfg.Iterations
	}

	engineConfig := cfr.DefaultConfig()
	threads := c.Threads
	if threads <= 0 {
		threads = cfg.NumThreads
	}
	engineConfig.NumThreads = threads

	engine := cfr.NewEngine(engineConfig, logger)
	if err := engine.BuildTree(defaultBetting(c.Pot, c.Stack), board); err != nil {
		logger.Fatal("build tree failed", "err", err)
	}
	engine.SetOOPRange(oopRange)
	engine.SetIPRange(ipRange)
	engine.PrecomputeRiverRanks()

	bar := progressbar.Default(int64(iterations))
	err = engine.Solve(context.Background(), iterations, func(iter, total int, convergence float64) {
		bar.Set(iter)
		logger.Debug("iteration complete", "iter", iter, "total", total, "convergence", convergence)
	})
	if err != nil {
		logger.Fatal("solve failed", "err", err)
	}

	fmt.Printf("\nnodes: %d\n", engine.GetNodeCount())
	fmt.Printf("final convergence metric: %g\n", engine.GetAverageRegret())

	strategies, err := engine.GetNodeHandStrategies(0)
	if err != nil {
		logger.Fatal("read strategies failed", "err", err)
	}
	for label, strat := range strategies {
		fmt.Printf("root strategy for %s: %v\n", label, strat)
	}
}
