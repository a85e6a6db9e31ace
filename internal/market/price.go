// Package market holds the traded asset's state: the stochastic price
// process, the crash sub-process, the shared inventory pool, and the
// episode-scoped price and volume histories.
package market

import (
	"errors"
	"math"
	"math/rand"

	"github.com/talgya/marketsim/internal/stats"
)

// ErrInsufficientHistory is returned when calibration is attempted on a
// reference series with fewer than two points.
var ErrInsufficientHistory = errors.New("reference series too short to calibrate")

// PriceProcess generates prices as a geometric random walk calibrated from a
// historical reference series, optionally blended with an order-flow
// imbalance signal.
type PriceProcess struct {
	Mu    float64 // mean of calibrated log-returns
	Sigma float64 // std of calibrated log-returns
}

// Calibrate derives (mu, sigma) from a historical price series: log-returns
// ln(1 + pct_change), then sample mean and standard deviation. A constant
// series degenerates sigma to 0, which is a valid (deterministic) process.
func Calibrate(ref []float64) (*PriceProcess, error) {
	if len(ref) < 2 {
		return nil, ErrInsufficientHistory
	}
	returns := make([]float64, 0, len(ref)-1)
	for i := 1; i < len(ref); i++ {
		pct := (ref[i] - ref[i-1]) / ref[i-1]
		returns = append(returns, math.Log(1+pct))
	}
	return &PriceProcess{
		Mu:    stats.Mean(returns),
		Sigma: stats.Std(returns),
	}, nil
}

// SimulatePath compounds days i.i.d. normal returns from start. Used only to
// seed an episode's opening price; the last element is the price the episode
// begins with.
func (p *PriceProcess) SimulatePath(start float64, days int, rng *rand.Rand) []float64 {
	path := make([]float64, 0, days)
	price := start
	for i := 0; i < days; i++ {
		r := rng.NormFloat64()*p.Sigma + p.Mu
		price *= 1 + r
		path = append(path, price)
	}
	return path
}

// Step advances price one step. It draws one normal return and blends it
// 50/50 with the order-flow imbalance (demand-supply)/(demand+supply).
// The weighting is a fixed design choice, not a tunable.
func (p *PriceProcess) Step(price, demand, supply float64, rng *rand.Rand) float64 {
	r := rng.NormFloat64()*p.Sigma + p.Mu
	imbalance := 0.0
	if total := demand + supply; total > 0 {
		imbalance = (demand - supply) / total
	}
	return price * (1 + 0.5*r + 0.5*imbalance)
}
