package engine

import (
	"fmt"

	"github.com/talgya/marketsim/internal/agents"
)

// Planner action ids. The halt/open assignment has flip-flopped historically,
// so it is pinned here as configuration constants rather than inferred:
// 0 halts trading, 1 opens it.
const (
	PlannerHalt = 0
	PlannerOpen = 1

	// NumPlannerActions is the size of the planner's action space.
	NumPlannerActions = 2
)

// Eligibility is the circuit-breaker state, uniform across all agents.
type Eligibility uint8

const (
	Open Eligibility = iota
	Halted
)

func (e Eligibility) String() string {
	if e == Halted {
		return "halted"
	}
	return "open"
}

// CircuitBreaker gates order execution. The planner gets a fresh decision
// only every Interval steps; on other steps its action is masked to a forced
// no-op and the previous state persists.
type CircuitBreaker struct {
	Interval int

	state        Eligibility
	lastDecision int
}

// NewCircuitBreaker creates a breaker deciding every interval steps.
func NewCircuitBreaker(interval int) *CircuitBreaker {
	if interval < 1 {
		interval = 1
	}
	return &CircuitBreaker{Interval: interval}
}

// Reset reopens trading at episode start.
func (b *CircuitBreaker) Reset(roster *agents.Roster) {
	b.state = Open
	b.lastDecision = PlannerOpen
	b.applyFlags(roster)
}

// State returns the current eligibility state.
func (b *CircuitBreaker) State() Eligibility { return b.state }

// LastDecision returns the planner action last applied on a decision step.
func (b *CircuitBreaker) LastDecision() int { return b.lastDecision }

// DecisionStep reports whether the planner may act on this step.
func (b *CircuitBreaker) DecisionStep(step int) bool {
	return step%b.Interval == 0
}

// Mask returns the planner's legality mask for this step: all slots open on
// decision steps, all-zero (forced no-op) otherwise.
func (b *CircuitBreaker) Mask(step int) []int {
	mask := make([]int, NumPlannerActions)
	if b.DecisionStep(step) {
		for i := range mask {
			mask[i] = 1
		}
	}
	return mask
}

// Apply evaluates the planner's action for this step and updates every
// agent's eligibility flags. Non-decision steps leave the prior state in
// force regardless of the action supplied.
func (b *CircuitBreaker) Apply(step, plannerAction int, roster *agents.Roster) error {
	if !b.DecisionStep(step) {
		return nil
	}
	if plannerAction < 0 || plannerAction >= NumPlannerActions {
		return fmt.Errorf("%w: planner action %d (valid 0..%d)",
			ErrInvalidAction, plannerAction, NumPlannerActions-1)
	}

	if plannerAction == PlannerHalt {
		b.state = Halted
	} else {
		b.state = Open
	}
	b.lastDecision = plannerAction
	b.applyFlags(roster)
	return nil
}

// applyFlags writes the uniform eligibility to every agent. There is no
// per-agent breaker state.
func (b *CircuitBreaker) applyFlags(roster *agents.Roster) {
	open := b.state == Open
	for _, a := range roster.All() {
		a.State.AbleToBuy = open
		a.State.AbleToSell = open
	}
}
