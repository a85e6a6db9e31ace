package market

import "math/rand"

// Crash phases. A crash activates once per episode at a sampled step,
// applies a multiplicative shock each step while active, then deactivates.
type CrashPhase uint8

const (
	CrashNormal CrashPhase = iota
	CrashActive
)

// CrashState is the exogenous shock sub-process. Parameters are drawn fresh
// at every episode reset.
type CrashState struct {
	Enabled        bool
	Phase          CrashPhase
	StartStep      int
	Intensity      float64 // multiplicative shock factor in (0,1)
	RemainingSteps int
}

// SampleCrash draws crash parameters for a new episode: a start step within
// the horizon, an initial intensity in [0.3, 0.9), and a duration of 1-10
// steps.
func SampleCrash(enabled bool, horizon int, rng *rand.Rand) CrashState {
	if !enabled || horizon < 1 {
		return CrashState{}
	}
	return CrashState{
		Enabled:        true,
		Phase:          CrashNormal,
		StartStep:      1 + rng.Intn(horizon),
		Intensity:      0.3 + rng.Float64()*0.6,
		RemainingSteps: 1 + rng.Intn(10),
	}
}

// Apply returns the price after any crash shock for this step and advances
// the crash state machine. The shock is multiplicative by a factor in (0,1),
// so the price can never be driven to or below zero.
func (c *CrashState) Apply(price float64, step int, rng *rand.Rand) float64 {
	if !c.Enabled {
		return price
	}

	switch c.Phase {
	case CrashNormal:
		if step != c.StartStep || c.RemainingSteps <= 0 {
			return price
		}
		c.Phase = CrashActive
	case CrashActive:
		// Each step of an ongoing crash decays the intensity by a fresh
		// uniform factor before the shock is reapplied.
		c.Intensity *= 0.3 + rng.Float64()*0.4
	}

	price *= c.Intensity
	c.RemainingSteps--
	if c.RemainingSteps <= 0 {
		c.Phase = CrashNormal
		c.Enabled = false
	}
	return price
}
