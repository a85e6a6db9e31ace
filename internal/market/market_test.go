package market

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMarket(t *testing.T, horizon int) *Market {
	t.Helper()
	proc, err := Calibrate([]float64{100, 100, 100}) // deterministic process
	require.NoError(t, err)
	return New(proc, NewPool(500), horizon)
}

func TestMarketResetSeedsHistory(t *testing.T) {
	m := newTestMarket(t, 10)
	rng := rand.New(rand.NewSource(11))

	m.Reset(100, 1, false, rng)

	require.Len(t, m.PriceHistory, 1)
	assert.Equal(t, m.Price, m.PriceHistory[0])
	assert.Greater(t, m.Price, 0.0)
	assert.Empty(t, m.VolumeHistory)
	assert.Equal(t, 500, m.Pool.StocksLeft)
	assert.Equal(t, 0.0, m.LastVolume())
}

func TestMarketAdvanceAppendsHistories(t *testing.T) {
	m := newTestMarket(t, 10)
	rng := rand.New(rand.NewSource(11))
	m.Reset(100, 0, false, rng)
	require.Equal(t, 100.0, m.Price)

	// Deterministic process: only imbalance moves the price.
	require.NoError(t, m.Advance(1, 30, 10, rng)) // p = 0.5 -> +25%
	assert.InDelta(t, 125.0, m.Price, 1e-9)
	assert.Equal(t, []float64{100, 125}, m.PriceHistory)
	assert.Equal(t, []float64{40}, m.VolumeHistory)
	assert.Equal(t, 40.0, m.LastVolume())

	require.NoError(t, m.Advance(2, 0, 0, rng))
	assert.InDelta(t, 125.0, m.Price, 1e-9)
	assert.Equal(t, []float64{40, 0}, m.VolumeHistory)
}

func TestMarketResetClearsPreviousEpisode(t *testing.T) {
	m := newTestMarket(t, 10)
	rng := rand.New(rand.NewSource(11))

	m.Reset(100, 0, false, rng)
	require.NoError(t, m.Advance(1, 10, 0, rng))
	m.Pool.Take(123)

	m.Reset(100, 0, false, rng)
	assert.Len(t, m.PriceHistory, 1)
	assert.Empty(t, m.VolumeHistory)
	assert.Equal(t, 500, m.Pool.StocksLeft)
}
