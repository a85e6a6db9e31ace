package engine

import (
	"github.com/talgya/marketsim/internal/agents"
	"github.com/talgya/marketsim/internal/stats"
)

// StabilityWindow is the rolling window (in steps) for price volatility.
const StabilityWindow = 2

// RewardEngine turns simulation state into bounded scalar signals. The
// convention used throughout is MARGINAL: each step's reward is the delta of
// an optimization metric in [0,1] against the previous step, so per-step
// rewards lie in [-1,1] and maximizing their (undiscounted) sum maximizes
// the terminal metric.
type RewardEngine struct {
	BaseVolume float64 // floor for the liquidity normalizer
	BaseStd    float64 // floor for the stability normalizer
	Importance float64 // liquidity weight in the planner blend, [0,1]

	priorAgent   map[agents.AgentID]float64
	priorPlanner float64
}

// NewRewardEngine creates a reward engine with the given normalization
// floors and liquidity importance.
func NewRewardEngine(baseVolume, baseStd, importance float64) *RewardEngine {
	return &RewardEngine{
		BaseVolume: baseVolume,
		BaseStd:    baseStd,
		Importance: stats.Clamp(importance, 0.0, 1.0),
		priorAgent: make(map[agents.AgentID]float64),
	}
}

// Reset primes the prior-metric accumulator from the post-reset state so the
// first step's marginal reward is measured against the episode start, not
// against a stale episode.
func (r *RewardEngine) Reset(roster *agents.Roster, prices, volumes []float64) {
	r.priorAgent = make(map[agents.AgentID]float64, roster.Len())
	maxBalance := roster.MaxBalance()
	for _, a := range roster.All() {
		r.priorAgent[a.ID] = AgentMetric(a.State.TotalBalance, maxBalance)
	}
	r.priorPlanner = r.PlannerMetric(prices, volumes)
}

// AgentMetric is the per-agent optimization metric: total balance relative
// to the best balance among all agents this step, in [0,1]. When every agent
// is insolvent the metric is 0.
func AgentMetric(balance, maxBalance float64) float64 {
	if maxBalance <= 0 {
		return 0
	}
	return stats.Clamp(balance/maxBalance, 0.0, 1.0)
}

// LiquidityScore rates recent traded volume against the episode's maximum:
// the trailing mean of the last ≤2 step volumes over max(peak volume,
// baseVolume), in [0,1]. Zero recent volume scores 0.
func LiquidityScore(volumes []float64, baseVolume float64) float64 {
	if len(volumes) == 0 {
		return 0
	}
	current := stats.TrailingMean(volumes, len(volumes)-1, 2)
	if current == 0 {
		return 0
	}
	peak := stats.Max(volumes)
	if baseVolume > peak {
		peak = baseVolume
	}
	if peak <= 0 {
		return 0
	}
	return stats.Clamp(current/peak, 0.0, 1.0)
}

// StabilityScore rates current price volatility against the episode's
// maximum: the latest rolling std over max(peak rolling std, baseStd), in
// [0,1]. Higher means MORE volatile; callers wanting to reward calm invert
// it. Before the window fills the score is 0.
func StabilityScore(prices []float64, baseStd float64) float64 {
	rolling := stats.RollingStd(prices, StabilityWindow)
	if len(rolling) == 0 {
		return 0
	}
	current := rolling[len(rolling)-1]
	peak := stats.Max(rolling)
	if peak < baseStd {
		peak = baseStd
	}
	if peak <= 0 {
		return 0
	}
	return stats.Clamp(current/peak, 0.0, 1.0)
}

// PlannerMetric blends liquidity against inverted volatility:
// importance*liquidity + (1-importance)*(1-volatility), in [0,1].
func (r *RewardEngine) PlannerMetric(prices, volumes []float64) float64 {
	liq := LiquidityScore(volumes, r.BaseVolume)
	stab := StabilityScore(prices, r.BaseStd)
	return stats.Clamp(r.Importance*liq+(1-r.Importance)*(1-stab), 0.0, 1.0)
}

// Compute returns this step's marginal rewards for every agent and the
// planner, and rolls the accumulator forward.
func (r *RewardEngine) Compute(roster *agents.Roster, prices, volumes []float64) (map[agents.AgentID]float64, float64) {
	rewards := make(map[agents.AgentID]float64, roster.Len())
	maxBalance := roster.MaxBalance()
	for _, a := range roster.All() {
		metric := AgentMetric(a.State.TotalBalance, maxBalance)
		rewards[a.ID] = metric - r.priorAgent[a.ID]
		r.priorAgent[a.ID] = metric
	}

	plannerMetric := r.PlannerMetric(prices, volumes)
	plannerReward := plannerMetric - r.priorPlanner
	r.priorPlanner = plannerMetric

	return rewards, plannerReward
}
