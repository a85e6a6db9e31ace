package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolTakeBoundedByRemaining(t *testing.T) {
	p := NewPool(100)

	assert.Equal(t, 60, p.Take(60))
	assert.Equal(t, 40, p.StocksLeft)

	// Requests beyond the pool grant only what remains.
	assert.Equal(t, 40, p.Take(75))
	assert.Equal(t, 0, p.StocksLeft)

	assert.Equal(t, 0, p.Take(10))
	assert.Equal(t, 0, p.Take(0))
	assert.Equal(t, 0, p.Take(-5))
	assert.Equal(t, 0, p.StocksLeft)
}

func TestPoolReturn(t *testing.T) {
	p := NewPool(100)
	p.Take(80)

	require.NoError(t, p.Return(30))
	assert.Equal(t, 50, p.StocksLeft)

	// Over-capacity return is a constraint violation, not a clamp.
	err := p.Return(51)
	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.Equal(t, 50, p.StocksLeft)

	err = p.Return(-1)
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestPoolReset(t *testing.T) {
	p := NewPool(100)
	p.Take(100)
	p.Reset()
	assert.Equal(t, 100, p.StocksLeft)
	assert.Equal(t, 100, p.Capacity)
}
