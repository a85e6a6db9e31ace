package agents

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomOrderIsSeededPermutation(t *testing.T) {
	r := NewRoster(8)

	order1 := r.RandomOrder(rand.New(rand.NewSource(42)))
	order2 := r.RandomOrder(rand.New(rand.NewSource(42)))
	require.Len(t, order1, 8)

	seen := make(map[AgentID]bool)
	for i, a := range order1 {
		assert.False(t, seen[a.ID], "duplicate agent in permutation")
		seen[a.ID] = true
		assert.Equal(t, a.ID, order2[i].ID, "same seed must replay the same order")
	}

	ids := r.LastOrder()
	require.Len(t, ids, 8)
	for i, a := range order2 {
		assert.Equal(t, a.ID, ids[i])
	}
}

func TestResetStatesDrawsFunds(t *testing.T) {
	r := NewRoster(100)
	rng := rand.New(rand.NewSource(9))
	r.ResetStates(20000, 5000, rng)

	for _, a := range r.All() {
		assert.GreaterOrEqual(t, a.State.AvailableFunds, 0.0)
		assert.Less(t, a.State.AvailableFunds, 20000+8*5000.0)
		assert.Equal(t, a.State.AvailableFunds, a.State.TotalBalance)
		assert.Equal(t, 0, a.State.NumStocks)
		assert.True(t, a.State.AbleToBuy)
		assert.True(t, a.State.AbleToSell)
	}

	// Draws must differ across agents.
	assert.NotEqual(t, r.All()[0].State.AvailableFunds, r.All()[1].State.AvailableFunds)
}

func TestClearFlowAndTotals(t *testing.T) {
	r := NewRoster(3)
	r.All()[0].State.Demand = 5
	r.All()[1].State.Supply = 3
	r.All()[2].State.Demand = 2

	demand, supply := r.TotalFlow()
	assert.Equal(t, 7.0, demand)
	assert.Equal(t, 3.0, supply)

	r.ClearFlow()
	demand, supply = r.TotalFlow()
	assert.Zero(t, demand)
	assert.Zero(t, supply)
}

func TestMaxBalance(t *testing.T) {
	r := NewRoster(3)
	r.All()[0].State.TotalBalance = 10
	r.All()[1].State.TotalBalance = 30
	r.All()[2].State.TotalBalance = 20
	assert.Equal(t, 30.0, r.MaxBalance())

	// All insolvent: max balance is zero, never negative.
	for _, a := range r.All() {
		a.State.TotalBalance = -5
	}
	assert.Equal(t, 0.0, r.MaxBalance())
}

func TestGet(t *testing.T) {
	r := NewRoster(2)
	require.NotNil(t, r.Get(1))
	assert.Nil(t, r.Get(99))
}
