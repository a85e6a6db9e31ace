package market

import (
	"fmt"
	"math/rand"
)

// Market is the single per-episode instance of the traded asset's state.
// It is owned by the simulation and passed by reference to whatever needs
// it; there is deliberately no package-level instance.
type Market struct {
	Price         float64
	PriceHistory  []float64 // index 0 is the episode's starting price
	VolumeHistory []float64 // per-step total demand+supply across all agents

	Pool    *Pool
	Crash   CrashState
	Process *PriceProcess

	horizon int
}

// New creates a market around a calibrated price process and a shared pool.
func New(proc *PriceProcess, pool *Pool, horizon int) *Market {
	return &Market{
		Process: proc,
		Pool:    pool,
		horizon: horizon,
	}
}

// Reset prepares the market for a new episode: the opening price is the last
// point of a freshly simulated warmup path, histories are cleared, the pool
// refilled, and crash parameters resampled.
func (m *Market) Reset(startPrice float64, warmupDays int, crashEnabled bool, rng *rand.Rand) {
	price := startPrice
	if warmupDays > 0 {
		path := m.Process.SimulatePath(startPrice, warmupDays, rng)
		price = path[len(path)-1]
	}
	m.Price = price
	m.PriceHistory = make([]float64, 1, m.horizon+1)
	m.PriceHistory[0] = price
	m.VolumeHistory = make([]float64, 0, m.horizon+1)
	m.Pool.Reset()
	m.Crash = SampleCrash(crashEnabled, m.horizon, rng)
}

// Advance moves the price one step from the aggregated order flow, applies
// any crash shock, and appends to the histories. The step's total traded
// volume (demand+supply) is recorded once here, market-scoped, rather than
// copied into each agent.
func (m *Market) Advance(step int, demand, supply float64, rng *rand.Rand) error {
	price := m.Process.Step(m.Price, demand, supply, rng)
	price = m.Crash.Apply(price, step, rng)
	if price <= 0 {
		return fmt.Errorf("%w: price %.6f not positive at step %d", ErrConstraintViolation, price, step)
	}
	m.Price = price
	m.PriceHistory = append(m.PriceHistory, price)
	m.VolumeHistory = append(m.VolumeHistory, demand+supply)
	return nil
}

// LastVolume returns the most recent step's traded volume, or 0 before any
// step has completed.
func (m *Market) LastVolume() float64 {
	if len(m.VolumeHistory) == 0 {
		return 0
	}
	return m.VolumeHistory[len(m.VolumeHistory)-1]
}
