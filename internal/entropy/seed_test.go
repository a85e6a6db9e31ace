package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedHonorsConfiguredValue(t *testing.T) {
	assert.Equal(t, int64(42), Seed(42))
	assert.Equal(t, int64(-7), Seed(-7))
}

func TestSeedZeroDrawsFreshEntropy(t *testing.T) {
	a := Seed(0)
	b := Seed(0)
	assert.NotZero(t, a)
	assert.NotZero(t, b)
	assert.NotEqual(t, a, b, "two fresh draws colliding is astronomically unlikely")
}

func TestEpisodeSeedIsStablePerEpisode(t *testing.T) {
	assert.Equal(t, EpisodeSeed(42, 0), EpisodeSeed(42, 0))
	assert.NotEqual(t, EpisodeSeed(42, 0), EpisodeSeed(42, 1))
	assert.NotEqual(t, EpisodeSeed(42, 0), EpisodeSeed(43, 0))
	assert.NotZero(t, EpisodeSeed(0, 0))
}
