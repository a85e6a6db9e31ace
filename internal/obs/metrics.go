// Package obs exposes simulation metrics in Prometheus exposition format,
// served at /metrics by the API server.
package obs

import "github.com/prometheus/client_golang/prometheus"

var (
	// Price is the current simulated stock price.
	Price = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketsim_price",
		Help: "Current simulated stock price",
	})

	// PoolStocksLeft is the shared inventory pool's remaining units.
	PoolStocksLeft = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketsim_pool_stocks_left",
		Help: "Remaining tradeable units in the shared pool",
	})

	// Steps counts completed simulation steps across all episodes.
	Steps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketsim_steps_total",
		Help: "Completed simulation steps",
	})

	// Episodes counts completed episodes.
	Episodes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketsim_episodes_total",
		Help: "Completed episodes",
	})

	// Trades counts executed trades by side.
	Trades = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketsim_trades_total",
		Help: "Executed trades by side",
	}, []string{"side"})

	// Halts counts steps executed while trading was halted.
	Halts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketsim_halted_steps_total",
		Help: "Steps executed while the circuit breaker was halted",
	})

	// PlannerReward is the planner's reward for the last completed step.
	PlannerReward = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketsim_planner_reward",
		Help: "Planner reward for the last completed step",
	})
)

func init() {
	prometheus.MustRegister(
		Price,
		PoolStocksLeft,
		Steps,
		Episodes,
		Trades,
		Halts,
		PlannerReward,
	)
}
