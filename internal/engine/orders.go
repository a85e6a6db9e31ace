package engine

import (
	"fmt"
	"math"

	"github.com/talgya/marketsim/internal/agents"
	"github.com/talgya/marketsim/internal/market"
)

// Action space layout for trading agents. With K buckets per side the ids
// are: 0 = hold, 1..K = buy action/K of the maximum affordable quantity,
// K+1..2K = sell (action-K)/K of current holdings.
const (
	ActionHold = 0

	// DefaultBuckets is K: 10% sizing increments per side.
	DefaultBuckets = 10
)

// Side of an executed order.
type Side uint8

const (
	SideNone Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "hold"
	}
}

// Fill describes the realized outcome of one agent's action.
type Fill struct {
	Agent    agents.AgentID
	Side     Side
	Quantity int     // units transferred
	Cash     float64 // funds delta (negative for buys)
}

// OrderExecutor converts a discrete action into a funds/inventory transfer
// for one agent against the shared pool.
type OrderExecutor struct {
	TransactionCost float64
	Buckets         int // K
}

// NewOrderExecutor creates an executor with K sizing buckets per side.
func NewOrderExecutor(transactionCost float64, buckets int) *OrderExecutor {
	if buckets <= 0 {
		buckets = DefaultBuckets
	}
	return &OrderExecutor{TransactionCost: transactionCost, Buckets: buckets}
}

// NumActions returns the size of the trading action space (hold + K buys +
// K sells).
func (e *OrderExecutor) NumActions() int { return 2*e.Buckets + 1 }

// Execute applies one agent's action at the given price. The grant of a buy
// is bounded by the pool at the moment this agent is processed, which makes
// outcomes order-dependent across agents within a step.
func (e *OrderExecutor) Execute(a *agents.Agent, action int, price float64, pool *market.Pool) (Fill, error) {
	fill := Fill{Agent: a.ID}

	if action < 0 || action >= e.NumActions() {
		return fill, fmt.Errorf("%w: agent %d action %d (valid 0..%d)",
			ErrInvalidAction, a.ID, action, e.NumActions()-1)
	}

	st := &a.State
	st.Demand = 0
	st.Supply = 0

	switch {
	case action == ActionHold:
		// No transfer; flow already zeroed.

	case action <= e.Buckets:
		if !st.AbleToBuy {
			break
		}
		maxAffordable := int(math.Floor(st.AvailableFunds * (1 - e.TransactionCost) / price))
		fraction := float64(action) / float64(e.Buckets)
		requested := int(math.Floor(float64(maxAffordable) * fraction))
		granted := pool.Take(requested)
		cost := float64(granted) * price * (1 + e.TransactionCost)

		st.AvailableFunds -= cost
		st.NumStocks += granted
		st.Demand = float64(granted)

		fill.Side = SideBuy
		fill.Quantity = granted
		fill.Cash = -cost

	default: // sell range
		if !st.AbleToSell {
			break
		}
		fraction := float64(action-e.Buckets) / float64(e.Buckets)
		requested := int(math.Floor(float64(st.NumStocks) * fraction))
		proceeds := float64(requested) * price * (1 - e.TransactionCost)
		if err := pool.Return(requested); err != nil {
			return fill, err
		}

		st.AvailableFunds += proceeds
		st.NumStocks -= requested
		st.Supply = float64(requested)

		fill.Side = SideSell
		fill.Quantity = requested
		fill.Cash = proceeds
	}

	if fill.Side != SideNone {
		// Recomputed from scratch, never adjusted incrementally: the
		// balance invariant must not drift over an episode.
		st.TotalBalance = st.AvailableFunds + float64(st.NumStocks)*price*(1-e.TransactionCost)

		if st.NumStocks < 0 || st.AvailableFunds < 0 {
			return fill, fmt.Errorf("%w: agent %d funds %.4f stocks %d after %s",
				market.ErrConstraintViolation, a.ID, st.AvailableFunds, st.NumStocks, fill.Side)
		}
	}

	return fill, nil
}
