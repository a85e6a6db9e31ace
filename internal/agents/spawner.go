package agents

import "math/rand"

// ResetStates reinitializes every agent for a new episode. Starting funds
// are drawn from a normal distribution (negative draws are floored at zero:
// an agent cannot begin an episode in debt). Eligibility starts open; the
// circuit breaker takes over from the first decision step.
func (r *Roster) ResetStates(fundsMean, fundsStdDev float64, rng *rand.Rand) {
	for _, a := range r.agents {
		funds := rng.NormFloat64()*fundsStdDev + fundsMean
		if funds < 0 {
			funds = 0
		}
		a.State = EconomicState{
			AvailableFunds: funds,
			TotalBalance:   funds,
			AbleToBuy:      true,
			AbleToSell:     true,
		}
	}
	r.lastOrder = nil
}

// ClearFlow zeroes every agent's demand and supply at the start of a step,
// before any orders execute.
func (r *Roster) ClearFlow() {
	for _, a := range r.agents {
		a.State.Demand = 0
		a.State.Supply = 0
	}
}

// MaxBalance returns the largest total balance across agents this step.
func (r *Roster) MaxBalance() float64 {
	maxBalance := 0.0
	for _, a := range r.agents {
		if a.State.TotalBalance > maxBalance {
			maxBalance = a.State.TotalBalance
		}
	}
	return maxBalance
}

// TotalFlow sums demand and supply across all agents for this step.
func (r *Roster) TotalFlow() (demand, supply float64) {
	for _, a := range r.agents {
		demand += a.State.Demand
		supply += a.State.Supply
	}
	return demand, supply
}
