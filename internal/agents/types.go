// Package agents provides the trading-agent data model and the roster that
// owns agent identities and the per-step randomized processing order.
package agents

import "math/rand"

// AgentID is a unique identifier for a trading agent.
type AgentID uint64

// EconomicState holds an agent's endogenous economic fields. It is a fixed
// schema: a missing field is a compile error here, not a runtime lookup
// failure.
type EconomicState struct {
	AvailableFunds float64 `json:"available_funds"`
	NumStocks      int     `json:"num_stocks"`
	TotalBalance   float64 `json:"total_balance"`

	// This step's contribution to order flow. Reset to zero before the
	// agent acts each step.
	Demand float64 `json:"demand"`
	Supply float64 `json:"supply"`

	// Eligibility flags, written only by the circuit breaker.
	AbleToBuy  bool `json:"able_to_buy"`
	AbleToSell bool `json:"able_to_sell"`
}

// Agent is one trading participant.
type Agent struct {
	ID    AgentID       `json:"id"`
	State EconomicState `json:"state"`
}

// Roster owns the set of trading agents and produces the seeded random
// permutation they are processed in each step. Outcomes are order-dependent
// because all agents contend for one shared inventory pool, so the most
// recent permutation is retained for deterministic replay.
type Roster struct {
	agents []*Agent
	index  map[AgentID]*Agent

	lastOrder []AgentID
}

// NewRoster builds a roster of n agents with zeroed state.
func NewRoster(n int) *Roster {
	r := &Roster{
		agents: make([]*Agent, 0, n),
		index:  make(map[AgentID]*Agent, n),
	}
	for i := 0; i < n; i++ {
		a := &Agent{ID: AgentID(i)}
		r.agents = append(r.agents, a)
		r.index[a.ID] = a
	}
	return r
}

// Len returns the number of agents.
func (r *Roster) Len() int { return len(r.agents) }

// Get returns the agent with the given ID, or nil.
func (r *Roster) Get(id AgentID) *Agent { return r.index[id] }

// All returns the agents in stable ID order.
func (r *Roster) All() []*Agent { return r.agents }

// RandomOrder draws a fresh permutation of the agents from rng and records
// it as the step's processing order.
func (r *Roster) RandomOrder(rng *rand.Rand) []*Agent {
	perm := rng.Perm(len(r.agents))
	ordered := make([]*Agent, len(perm))
	ids := make([]AgentID, len(perm))
	for i, j := range perm {
		ordered[i] = r.agents[j]
		ids[i] = r.agents[j].ID
	}
	r.lastOrder = ids
	return ordered
}

// LastOrder returns the agent IDs of the most recent permutation.
func (r *Roster) LastOrder() []AgentID { return r.lastOrder }
