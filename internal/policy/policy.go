// Package policy provides scripted baseline policies so episodes can run
// without an external RL harness. Trained policies replace these through the
// same interfaces.
package policy

import (
	"math/rand"

	"github.com/talgya/marketsim/internal/engine"
	"github.com/talgya/marketsim/internal/stats"
)

// Trader decides one trading agent's action from its observation snapshot
// and legality mask.
type Trader interface {
	Act(obs map[string]float64, mask []int, rng *rand.Rand) int
}

// Planner decides the circuit-breaker action from the market-level view. On
// masked (non-decision) steps the returned action is ignored by the engine.
type Planner interface {
	Act(obs engine.PlannerObservation, mask []int, rng *rand.Rand) int
}

// RandomTrader samples uniformly over the action space. Useful as the
// exploration floor and for stressing the executor's constraints.
type RandomTrader struct{}

func (RandomTrader) Act(obs map[string]float64, mask []int, rng *rand.Rand) int {
	return rng.Intn(len(mask))
}

// MomentumTrader buys into rising prices and sells into falling ones,
// scaling order size with conviction.
type MomentumTrader struct {
	Buckets   int
	lastPrice float64
}

// NewMomentumTrader creates a momentum trader sized over K buckets.
func NewMomentumTrader(buckets int) *MomentumTrader {
	return &MomentumTrader{Buckets: buckets}
}

func (m *MomentumTrader) Act(obs map[string]float64, mask []int, rng *rand.Rand) int {
	price := obs["stock_price"]
	defer func() { m.lastPrice = price }()

	if m.lastPrice <= 0 || price <= 0 {
		return engine.ActionHold
	}

	change := (price - m.lastPrice) / m.lastPrice
	// Size with the magnitude of the move: 1 bucket per 0.5% change.
	size := stats.Clamp(int(change/0.005), -m.Buckets, m.Buckets)
	switch {
	case size > 0:
		return size // buy range 1..K
	case size < 0:
		return m.Buckets - size // sell range K+1..2K
	default:
		return engine.ActionHold
	}
}

// AlwaysOpen is the null planner: it never halts trading.
type AlwaysOpen struct{}

func (AlwaysOpen) Act(obs engine.PlannerObservation, mask []int, rng *rand.Rand) int {
	return engine.PlannerOpen
}

// VolatilityGuard halts trading when recent price volatility exceeds a
// threshold fraction of the current price, and reopens once it calms.
type VolatilityGuard struct {
	Window    int     // rolling window over the price history
	Threshold float64 // halt when rollingStd/price exceeds this
}

// NewVolatilityGuard creates a guard with the given window and threshold.
func NewVolatilityGuard(window int, threshold float64) *VolatilityGuard {
	if window < 2 {
		window = 2
	}
	return &VolatilityGuard{Window: window, Threshold: threshold}
}

func (g *VolatilityGuard) Act(obs engine.PlannerObservation, mask []int, rng *rand.Rand) int {
	prices := obs.PriceHistory
	if len(prices) < g.Window {
		return engine.PlannerOpen
	}
	window := prices[len(prices)-g.Window:]
	current := window[len(window)-1]
	if current <= 0 {
		return engine.PlannerOpen
	}
	if stats.PopStd(window)/current > g.Threshold {
		return engine.PlannerHalt
	}
	return engine.PlannerOpen
}
