// Package persistence provides SQLite-based trajectory storage: one row per
// episode, per step, and per executed trade.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/marketsim/internal/agents"
	"github.com/talgya/marketsim/internal/engine"
)

// DB wraps a SQLite connection for trajectory persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS episodes (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		horizon INTEGER NOT NULL,
		num_agents INTEGER NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		episode_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		price REAL NOT NULL,
		volume REAL NOT NULL,
		halted INTEGER NOT NULL,
		planner_reward REAL NOT NULL,
		PRIMARY KEY (episode_id, step)
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		episode_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		agent_id INTEGER NOT NULL,
		side TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		cash REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_steps_episode ON steps(episode_id);
	CREATE INDEX IF NOT EXISTS idx_trades_episode_step ON trades(episode_id, step);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// EpisodeRecorder writes one episode's trajectory. It implements
// engine.Recorder.
type EpisodeRecorder struct {
	db        *DB
	EpisodeID string
}

// BeginEpisode registers a new episode and returns its recorder.
func (db *DB) BeginEpisode(seed int64, horizon, numAgents int) (*EpisodeRecorder, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		`INSERT INTO episodes (id, seed, horizon, num_agents, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, seed, horizon, numAgents, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert episode: %w", err)
	}
	slog.Debug("episode registered", "episode_id", id, "seed", seed)
	return &EpisodeRecorder{db: db, EpisodeID: id}, nil
}

// RecordStep persists one step's market-level outcome.
func (r *EpisodeRecorder) RecordStep(step int, price, volume float64, halted bool, plannerReward float64) error {
	haltedInt := 0
	if halted {
		haltedInt = 1
	}
	_, err := r.db.conn.Exec(
		`INSERT INTO steps (episode_id, step, price, volume, halted, planner_reward) VALUES (?, ?, ?, ?, ?, ?)`,
		r.EpisodeID, step, price, volume, haltedInt, plannerReward,
	)
	return err
}

// RecordFill persists one executed trade.
func (r *EpisodeRecorder) RecordFill(step int, fill engine.Fill) error {
	_, err := r.db.conn.Exec(
		`INSERT INTO trades (episode_id, step, agent_id, side, quantity, cash) VALUES (?, ?, ?, ?, ?, ?)`,
		r.EpisodeID, step, fill.Agent, fill.Side.String(), fill.Quantity, fill.Cash,
	)
	return err
}

// StepRow is one persisted simulation step.
type StepRow struct {
	EpisodeID     string  `db:"episode_id"`
	Step          int     `db:"step"`
	Price         float64 `db:"price"`
	Volume        float64 `db:"volume"`
	Halted        int     `db:"halted"`
	PlannerReward float64 `db:"planner_reward"`
}

// TradeRow is one persisted trade.
type TradeRow struct {
	ID        int64          `db:"id"`
	EpisodeID string         `db:"episode_id"`
	Step      int            `db:"step"`
	AgentID   agents.AgentID `db:"agent_id"`
	Side      string         `db:"side"`
	Quantity  int            `db:"quantity"`
	Cash      float64        `db:"cash"`
}

// EpisodeSteps loads every persisted step of an episode in order.
func (db *DB) EpisodeSteps(episodeID string) ([]StepRow, error) {
	var rows []StepRow
	err := db.conn.Select(&rows,
		`SELECT episode_id, step, price, volume, halted, planner_reward
		 FROM steps WHERE episode_id = ? ORDER BY step`, episodeID)
	return rows, err
}

// EpisodeTrades loads every persisted trade of an episode in order.
func (db *DB) EpisodeTrades(episodeID string) ([]TradeRow, error) {
	var rows []TradeRow
	err := db.conn.Select(&rows,
		`SELECT id, episode_id, step, agent_id, side, quantity, cash
		 FROM trades WHERE episode_id = ? ORDER BY step, id`, episodeID)
	return rows, err
}

// EpisodeCount returns how many episodes have been recorded.
func (db *DB) EpisodeCount() (int, error) {
	var n int
	err := db.conn.Get(&n, `SELECT COUNT(*) FROM episodes`)
	return n, err
}
