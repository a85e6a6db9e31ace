// Command marketsim runs market-dynamics episodes with scripted baseline
// policies, recording trajectories to SQLite and serving observation and
// metrics endpoints.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/marketsim/internal/agents"
	"github.com/talgya/marketsim/internal/api"
	"github.com/talgya/marketsim/internal/config"
	"github.com/talgya/marketsim/internal/engine"
	"github.com/talgya/marketsim/internal/entropy"
	"github.com/talgya/marketsim/internal/obs"
	"github.com/talgya/marketsim/internal/persistence"
	"github.com/talgya/marketsim/internal/policy"
	"github.com/talgya/marketsim/internal/refdata"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	switch cfg.SlogLevel() {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	runSeed := entropy.Seed(cfg.Run.Seed)
	slog.Info("marketsim starting",
		"seed", runSeed,
		"episodes", cfg.Run.Episodes,
		"agents", cfg.Scenario.NumAgents,
		"horizon", cfg.Scenario.Horizon,
	)

	// ── Reference series ──────────────────────────────────────────────
	var ref []float64
	if cfg.Reference.URL != "" {
		ref, err = refdata.Fetch(context.Background(), cfg.Reference.URL)
		if err != nil {
			slog.Warn("reference fetch failed, falling back to synthetic", "error", err)
		}
	}
	if len(ref) < 2 {
		ref = refdata.Synthetic(runSeed, cfg.Reference.SyntheticDays,
			cfg.Reference.SyntheticStart, cfg.Reference.SyntheticVol)
		slog.Info("using synthetic reference series", "days", len(ref))
	} else {
		slog.Info("using fetched reference series", "points", len(ref))
	}

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.Storage.DBPath != "" {
		os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755)
		db, err = persistence.Open(cfg.Storage.DBPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.Storage.DBPath)
	}

	// ── API server ────────────────────────────────────────────────────
	var server *api.Server
	if cfg.API.Port > 0 {
		server = api.NewServer(cfg.API.Port, db)
		server.Start()
	}

	// ── Shutdown signal ───────────────────────────────────────────────
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// ── Episodes ──────────────────────────────────────────────────────
	planner := policy.NewVolatilityGuard(engine.StabilityWindow, 0.05)
	for ep := 0; ep < cfg.Run.Episodes; ep++ {
		select {
		case <-stop:
			slog.Info("shutdown requested")
			return
		default:
		}

		epSeed := entropy.EpisodeSeed(runSeed, ep)
		if err := runEpisode(cfg, ref, epSeed, planner, db, server); err != nil {
			slog.Error("episode failed", "episode", ep, "error", err)
			os.Exit(1)
		}
		obs.Episodes.Inc()
	}

	slog.Info("run complete", "episodes", cfg.Run.Episodes)
}

// instrumentedRecorder updates Prometheus counters alongside (optional)
// SQLite recording.
type instrumentedRecorder struct {
	inner *persistence.EpisodeRecorder
}

func (r instrumentedRecorder) RecordStep(step int, price, volume float64, halted bool, plannerReward float64) error {
	if halted {
		obs.Halts.Inc()
	}
	if r.inner == nil {
		return nil
	}
	return r.inner.RecordStep(step, price, volume, halted, plannerReward)
}

func (r instrumentedRecorder) RecordFill(step int, fill engine.Fill) error {
	obs.Trades.WithLabelValues(fill.Side.String()).Inc()
	if r.inner == nil {
		return nil
	}
	return r.inner.RecordFill(step, fill)
}

// runEpisode builds a fresh simulation for one episode and steps it to the
// horizon with the baseline policies.
func runEpisode(cfg *config.Config, ref []float64, seed int64, planner policy.Planner, db *persistence.DB, server *api.Server) error {
	sim, err := engine.New(cfg.Engine(), ref, seed)
	if err != nil {
		return err
	}

	if db != nil {
		recorder, err := db.BeginEpisode(seed, cfg.Scenario.Horizon, cfg.Scenario.NumAgents)
		if err != nil {
			return err
		}
		sim.Recorder = instrumentedRecorder{recorder}
	} else {
		sim.Recorder = instrumentedRecorder{}
	}
	if server != nil {
		server.Attach(sim)
	}

	// Policies get their own stream so simulation draws replay exactly
	// regardless of policy internals.
	policyRng := rand.New(rand.NewSource(seed + 1))
	traders := make(map[agents.AgentID]policy.Trader, sim.Roster.Len())
	for _, a := range sim.Roster.All() {
		if int(a.ID)%2 == 0 {
			traders[a.ID] = policy.NewMomentumTrader(cfg.Scenario.ActionBuckets)
		} else {
			traders[a.ID] = policy.RandomTrader{}
		}
	}

	totalVolume := 0.0
	halts := 0
	for !sim.Done() {
		actions := make(map[agents.AgentID]int, sim.Roster.Len())
		for _, a := range sim.Roster.All() {
			actions[a.ID] = traders[a.ID].Act(sim.Observe(a.ID), sim.ActionMask(a.ID), policyRng)
		}
		plannerAction := planner.Act(sim.ObservePlanner(), sim.PlannerMask(), policyRng)

		if server != nil {
			server.Lock()
		}
		err := sim.Step(actions, plannerAction)
		if server != nil {
			server.Unlock()
		}
		if err != nil {
			return err
		}

		obs.Steps.Inc()
		obs.Price.Set(sim.Market.Price)
		obs.PoolStocksLeft.Set(float64(sim.Market.Pool.StocksLeft))
		obs.PlannerReward.Set(sim.PlannerReward())
		if sim.Breaker.State() == engine.Halted {
			halts++
		}
		totalVolume += sim.Market.LastVolume()
	}

	slog.Info("episode complete",
		"seed", seed,
		"final_price", humanize.CommafWithDigits(sim.Market.Price, 2),
		"total_volume", humanize.Commaf(totalVolume),
		"halted_steps", halts,
		"pool_left", sim.Market.Pool.StocksLeft,
	)
	return nil
}
