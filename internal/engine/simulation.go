// Package engine runs the market-dynamics core: one simulation couples the
// circuit breaker, per-agent order execution against the shared pool, the
// price process, and the reward engine, advancing them step-synchronously.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/marketsim/internal/agents"
	"github.com/talgya/marketsim/internal/market"
)

// Config holds the core simulation parameters for one scenario.
type Config struct {
	NumAgents       int
	Horizon         int // steps per episode
	PolicyInterval  int // circuit-breaker decision cadence
	StockQuantity   int // shared pool capacity
	TransactionCost float64
	Buckets         int // K sizing buckets per side

	WarmupDays  int // simulated days seeding the episode start price
	FundsMean   float64
	FundsStdDev float64

	BaseVolume          float64
	BaseStd             float64
	LiquidityImportance float64

	CrashEnabled bool
}

// Recorder receives per-step trajectory data. A nil recorder disables
// recording.
type Recorder interface {
	RecordStep(step int, price, volume float64, halted bool, plannerReward float64) error
	RecordFill(step int, fill Fill) error
}

// Simulation owns all episode state. It is single-threaded and
// step-synchronous: a step fully completes (breaker, every agent's order,
// price update, rewards) before the next begins, and pool mutations apply
// strictly sequentially in the step's agent permutation.
type Simulation struct {
	Config Config

	Market   *market.Market
	Roster   *agents.Roster
	Breaker  *CircuitBreaker
	Executor *OrderExecutor
	Rewards  *RewardEngine

	Recorder Recorder

	rng        *rand.Rand
	refPrice   float64 // last reference-series price, seeds each episode
	step       int
	lastAgent  map[agents.AgentID]float64
	lastPlnr   float64
	lastDemand float64
	lastSupply float64
}

// New builds a simulation from a scenario config and a historical reference
// price series. The series is used once, here, to calibrate the price
// process; a too-short series fails construction with ErrInsufficientHistory.
func New(cfg Config, ref []float64, seed int64) (*Simulation, error) {
	proc, err := market.Calibrate(ref)
	if err != nil {
		return nil, fmt.Errorf("calibrate price process: %w", err)
	}

	s := &Simulation{
		Config:   cfg,
		Market:   market.New(proc, market.NewPool(cfg.StockQuantity), cfg.Horizon),
		Roster:   agents.NewRoster(cfg.NumAgents),
		Breaker:  NewCircuitBreaker(cfg.PolicyInterval),
		Executor: NewOrderExecutor(cfg.TransactionCost, cfg.Buckets),
		Rewards:  NewRewardEngine(cfg.BaseVolume, cfg.BaseStd, cfg.LiquidityImportance),
		rng:      rand.New(rand.NewSource(seed)),
		refPrice: ref[len(ref)-1],
	}
	s.Reset()
	return s, nil
}

// Reset reinitializes all state for a new episode: market price reseeded
// from a fresh warmup path, pool refilled, agent funds redrawn, breaker
// open, crash parameters resampled, reward accumulator primed.
func (s *Simulation) Reset() {
	s.step = 0
	s.Market.Reset(s.refPrice, s.Config.WarmupDays, s.Config.CrashEnabled, s.rng)
	s.Roster.ResetStates(s.Config.FundsMean, s.Config.FundsStdDev, s.rng)
	s.Breaker.Reset(s.Roster)
	s.Rewards.Reset(s.Roster, s.Market.PriceHistory, s.Market.VolumeHistory)
	s.lastAgent = nil
	s.lastPlnr = 0
	s.lastDemand = 0
	s.lastSupply = 0

	slog.Debug("episode reset",
		"start_price", s.Market.Price,
		"pool", s.Market.Pool.StocksLeft,
		"agents", s.Roster.Len(),
	)
}

// CurrentStep returns the number of completed steps this episode.
func (s *Simulation) CurrentStep() int { return s.step }

// Done reports whether the episode horizon has been reached.
func (s *Simulation) Done() bool { return s.step >= s.Config.Horizon }

// Step executes one full simulation step: circuit breaker, then every
// agent's order in a fresh random permutation, then the price update, then
// rewards. An agent id missing from actions holds. An out-of-range action
// aborts the step with ErrInvalidAction; the caller decides whether that
// terminates the episode.
func (s *Simulation) Step(actions map[agents.AgentID]int, plannerAction int) error {
	s.step++

	if err := s.Breaker.Apply(s.step, plannerAction, s.Roster); err != nil {
		return err
	}

	s.Roster.ClearFlow()
	for _, a := range s.Roster.RandomOrder(s.rng) {
		action := actions[a.ID] // zero value holds
		fill, err := s.Executor.Execute(a, action, s.Market.Price, s.Market.Pool)
		if err != nil {
			return err
		}
		if fill.Side != SideNone && s.Recorder != nil {
			if err := s.Recorder.RecordFill(s.step, fill); err != nil {
				return fmt.Errorf("record fill: %w", err)
			}
		}
	}

	demand, supply := s.Roster.TotalFlow()
	if err := s.Market.Advance(s.step, demand, supply, s.rng); err != nil {
		return err
	}
	s.lastDemand = demand
	s.lastSupply = supply

	s.lastAgent, s.lastPlnr = s.Rewards.Compute(s.Roster, s.Market.PriceHistory, s.Market.VolumeHistory)

	if s.Recorder != nil {
		halted := s.Breaker.State() == Halted
		if err := s.Recorder.RecordStep(s.step, s.Market.Price, s.Market.LastVolume(), halted, s.lastPlnr); err != nil {
			return fmt.Errorf("record step: %w", err)
		}
	}
	return nil
}

// Observe returns a read-only snapshot of one agent's economic fields plus
// the fields of the market it is allowed to see. Internal bookkeeping (the
// raw volume buffer) is not included.
func (s *Simulation) Observe(id agents.AgentID) map[string]float64 {
	a := s.Roster.Get(id)
	if a == nil {
		return nil
	}
	obs := map[string]float64{
		"available_funds": a.State.AvailableFunds,
		"num_stocks":      float64(a.State.NumStocks),
		"total_balance":   a.State.TotalBalance,
		"demand":          a.State.Demand,
		"supply":          a.State.Supply,
		"stock_price":     s.Market.Price,
		"able_to_buy":     0,
		"able_to_sell":    0,
	}
	if a.State.AbleToBuy {
		obs["able_to_buy"] = 1
	}
	if a.State.AbleToSell {
		obs["able_to_sell"] = 1
	}
	return obs
}

// PlannerObservation is the planner's market-level view.
type PlannerObservation struct {
	PriceHistory  []float64
	VolumeHistory []float64
	TotalDemand   float64
	TotalSupply   float64
	Halted        bool
	DecisionStep  bool
}

// ObservePlanner snapshots the market-level state the planner policy sees.
func (s *Simulation) ObservePlanner() PlannerObservation {
	return PlannerObservation{
		PriceHistory:  s.Market.PriceHistory,
		VolumeHistory: s.Market.VolumeHistory,
		TotalDemand:   s.lastDemand,
		TotalSupply:   s.lastSupply,
		Halted:        s.Breaker.State() == Halted,
		DecisionStep:  s.Breaker.DecisionStep(s.step + 1),
	}
}

// AgentRewards returns each agent's reward for the just-completed step.
func (s *Simulation) AgentRewards() map[agents.AgentID]float64 { return s.lastAgent }

// PlannerReward returns the planner's reward for the just-completed step.
func (s *Simulation) PlannerReward() float64 { return s.lastPlnr }

// ActionMask returns the legality mask over an agent's action slots. Every
// trade action stays legal even while halted: ineligible orders execute as
// no-ops rather than being rejected, so halting never invalidates a policy's
// sampled action.
func (s *Simulation) ActionMask(id agents.AgentID) []int {
	mask := make([]int, s.Executor.NumActions())
	for i := range mask {
		mask[i] = 1
	}
	return mask
}

// PlannerMask returns the planner's mask for the upcoming step, encoding the
// policy-interval gating: all-zero on non-decision steps.
func (s *Simulation) PlannerMask() []int {
	return s.Breaker.Mask(s.step + 1)
}
