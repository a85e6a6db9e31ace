package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/marketsim/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "trajectories.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEpisodeRoundTrip(t *testing.T) {
	db := openTestDB(t)

	rec, err := db.BeginEpisode(42, 200, 10)
	require.NoError(t, err)
	require.NotEmpty(t, rec.EpisodeID)

	require.NoError(t, rec.RecordStep(1, 101.5, 240, false, 0.25))
	require.NoError(t, rec.RecordStep(2, 99.0, 0, true, -0.1))
	require.NoError(t, rec.RecordFill(1, engine.Fill{
		Agent: 3, Side: engine.SideBuy, Quantity: 40, Cash: -4030,
	}))
	require.NoError(t, rec.RecordFill(1, engine.Fill{
		Agent: 7, Side: engine.SideSell, Quantity: 5, Cash: 496.25,
	}))

	steps, err := db.EpisodeSteps(rec.EpisodeID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].Step)
	assert.Equal(t, 101.5, steps[0].Price)
	assert.Equal(t, 240.0, steps[0].Volume)
	assert.Equal(t, 0, steps[0].Halted)
	assert.Equal(t, 0.25, steps[0].PlannerReward)
	assert.Equal(t, 1, steps[1].Halted)

	trades, err := db.EpisodeTrades(rec.EpisodeID)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "buy", trades[0].Side)
	assert.Equal(t, 40, trades[0].Quantity)
	assert.Equal(t, -4030.0, trades[0].Cash)
	assert.Equal(t, "sell", trades[1].Side)
	assert.EqualValues(t, 7, trades[1].AgentID)
}

func TestEpisodesAreIsolated(t *testing.T) {
	db := openTestDB(t)

	rec1, err := db.BeginEpisode(1, 100, 4)
	require.NoError(t, err)
	rec2, err := db.BeginEpisode(2, 100, 4)
	require.NoError(t, err)
	require.NotEqual(t, rec1.EpisodeID, rec2.EpisodeID)

	require.NoError(t, rec1.RecordStep(1, 100, 10, false, 0))
	require.NoError(t, rec2.RecordStep(1, 200, 20, false, 0))

	steps, err := db.EpisodeSteps(rec1.EpisodeID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, 100.0, steps[0].Price)

	n, err := db.EpisodeCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEmptyEpisodeQueries(t *testing.T) {
	db := openTestDB(t)

	steps, err := db.EpisodeSteps("no-such-episode")
	require.NoError(t, err)
	assert.Empty(t, steps)

	trades, err := db.EpisodeTrades("no-such-episode")
	require.NoError(t, err)
	assert.Empty(t, trades)

	n, err := db.EpisodeCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenIsIdempotentOnSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.db")

	db1, err := Open(path)
	require.NoError(t, err)
	_, err = db1.BeginEpisode(1, 10, 2)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	// Reopening migrates against the existing schema and keeps the data.
	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()

	n, err := db2.EpisodeCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
