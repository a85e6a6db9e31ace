package refdata

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Synthetic generates a plausible daily price series for offline runs:
// layered smooth noise shaped into log-returns and compounded from start.
// The same seed always yields the same series.
func Synthetic(seed int64, days int, start, volatility float64) []float64 {
	noise := opensimplex.NewNormalized(seed)
	trendNoise := opensimplex.NewNormalized(seed + 1)

	prices := make([]float64, 0, days)
	price := start
	for i := 0; i < days; i++ {
		x := float64(i)
		// Fast component for day-to-day wiggle, slow component for regime
		// drift. NewNormalized yields [0,1]; recenter to [-1,1].
		fast := 2*octaveNoise(noise, x*0.35, 7, 3, 0.5) - 1
		slow := 2*trendNoise.Eval2(x*0.02, 3) - 1

		r := volatility * (0.8*fast + 0.2*slow)
		price *= math.Exp(r)
		prices = append(prices, price)
	}
	return prices
}

// octaveNoise layers multiple frequencies of 1D noise (evaluated along a
// fixed second axis) for a more natural texture than a single octave.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
