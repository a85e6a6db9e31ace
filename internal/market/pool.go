package market

import (
	"errors"
	"fmt"
)

// ErrConstraintViolation reports a broken internal invariant (negative
// inventory, over-capacity return). These are programming defects, never
// clamped away: clamping would silently distort rewards.
var ErrConstraintViolation = errors.New("constraint violation")

// Pool is the single shared counter of tradeable units. Every agent's buy
// and sell contends for it within a step, so mutations must be applied
// strictly sequentially in the step's agent order.
type Pool struct {
	StocksLeft int
	Capacity   int
}

// NewPool creates a pool holding quantity units.
func NewPool(quantity int) *Pool {
	return &Pool{StocksLeft: quantity, Capacity: quantity}
}

// Reset refills the pool to capacity at episode start.
func (p *Pool) Reset() {
	p.StocksLeft = p.Capacity
}

// Take grants up to n units, bounded by what remains. The grant may be
// smaller than requested; it is never negative and never overdraws the pool.
func (p *Pool) Take(n int) int {
	if n <= 0 {
		return 0
	}
	granted := n
	if granted > p.StocksLeft {
		granted = p.StocksLeft
	}
	p.StocksLeft -= granted
	return granted
}

// Return puts n units back into the pool after a sell.
func (p *Pool) Return(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: returning negative quantity %d", ErrConstraintViolation, n)
	}
	if p.StocksLeft+n > p.Capacity {
		return fmt.Errorf("%w: pool would exceed capacity (%d + %d > %d)",
			ErrConstraintViolation, p.StocksLeft, n, p.Capacity)
	}
	p.StocksLeft += n
	return nil
}
