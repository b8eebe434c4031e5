package cfr

// Config controls the Discounted-CFR reweighting schedule and the
// per-iteration external-sampling workload.
type Config struct {
	// Alpha/Beta/Gamma are the Discounted-CFR exponents: non-negative
	// regrets are scaled by t^Alpha/(t^Alpha+1), cumulative strategy by
	// t^Gamma/(t^Gamma+1). Beta is carried for parity with the upstream
	// config record; this engine's discount step does not use it
	// (negative regrets are always halved, not Beta-scaled), matching
	// the engine this is grounded on.
	Alpha float64
	Beta  float64
	Gamma float64

	// BaseSampleSize is the number of independent external-sampling
	// traversals run per player per outer iteration.
	BaseSampleSize int

	UseParallel bool
	// NumThreads caps fan-out concurrency; 0 means "use GOMAXPROCS".
	NumThreads int
}

// DefaultConfig matches the upstream engine's defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:          1.5,
		Beta:           0.0,
		Gamma:          2.0,
		BaseSampleSize: 64,
		UseParallel:    true,
		NumThreads:     0,
	}
}

// discountEvery is how many outer iterations pass between global
// Discounted-CFR reweighting passes.
const discountEvery = 2
