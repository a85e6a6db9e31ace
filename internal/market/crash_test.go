package market

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleCrashRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		c := SampleCrash(true, 100, rng)
		assert.True(t, c.Enabled)
		assert.GreaterOrEqual(t, c.StartStep, 1)
		assert.LessOrEqual(t, c.StartStep, 100)
		assert.GreaterOrEqual(t, c.Intensity, 0.3)
		assert.Less(t, c.Intensity, 0.9)
		assert.GreaterOrEqual(t, c.RemainingSteps, 1)
		assert.LessOrEqual(t, c.RemainingSteps, 10)
	}

	disabled := SampleCrash(false, 100, rng)
	assert.False(t, disabled.Enabled)
}

func TestCrashLifecycle(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	c := CrashState{
		Enabled:        true,
		StartStep:      3,
		Intensity:      0.5,
		RemainingSteps: 2,
	}

	// Before the start step nothing happens.
	assert.Equal(t, 100.0, c.Apply(100, 1, rng))
	assert.Equal(t, 100.0, c.Apply(100, 2, rng))
	assert.Equal(t, CrashNormal, c.Phase)

	// Start step: shock applied at the sampled intensity.
	price := c.Apply(100, 3, rng)
	assert.InDelta(t, 50.0, price, 1e-9)
	assert.Equal(t, CrashActive, c.Phase)
	assert.Equal(t, 1, c.RemainingSteps)

	// Ongoing step: intensity decayed by a uniform [0.3, 0.7) factor.
	price2 := c.Apply(price, 4, rng)
	assert.Greater(t, price2, 0.0)
	assert.Less(t, price2, price)
	ratio := price2 / price
	assert.GreaterOrEqual(t, ratio, 0.5*0.3-1e-9)
	assert.Less(t, ratio, 0.5*0.7)

	// Duration exhausted: crash over, no further shocks.
	require.Equal(t, 0, c.RemainingSteps)
	assert.False(t, c.Enabled)
	assert.Equal(t, CrashNormal, c.Phase)
	assert.Equal(t, price2, c.Apply(price2, 5, rng))
}

func TestCrashDisabledIsInert(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := CrashState{}
	for step := 0; step < 20; step++ {
		assert.Equal(t, 100.0, c.Apply(100, step, rng))
	}
}
