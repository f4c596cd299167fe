// Package metrics exposes Prometheus collectors for the exchange.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the exchange collectors on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	Operations    *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	SwapVolume    *prometheus.CounterVec
	SwapFees      *prometheus.CounterVec
	PoolReserves  *prometheus.GaugeVec
	PoolLpSupply  *prometheus.GaugeVec
	OrderOutcomes *prometheus.CounterVec
	RewardsPaid   prometheus.Counter
	SweepDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amm",
			Name:      "operations_total",
			Help:      "Operations handled, by op and result.",
		}, []string{"op", "result"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amm",
			Name:      "rejections_total",
			Help:      "Business rejections by error code.",
		}, []string{"code", "name"}),
		SwapVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amm",
			Subsystem: "swap",
			Name:      "volume_base_units_total",
			Help:      "Input volume swapped, in base units of the sell mint.",
		}, []string{"pool", "sell_mint"}),
		SwapFees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amm",
			Subsystem: "swap",
			Name:      "fees_base_units_total",
			Help:      "Fees retained by the pool, in base units of the sell mint.",
		}, []string{"pool", "sell_mint"}),
		PoolReserves: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "amm",
			Subsystem: "pool",
			Name:      "reserve_base_units",
			Help:      "Current pool reserve per side.",
		}, []string{"pool", "side"}),
		PoolLpSupply: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "amm",
			Subsystem: "pool",
			Name:      "lp_supply",
			Help:      "Outstanding LP shares.",
		}, []string{"pool"}),
		OrderOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amm",
			Subsystem: "limit_order",
			Name:      "transitions_total",
			Help:      "Limit order transitions by resulting status.",
		}, []string{"status"}),
		RewardsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "amm",
			Subsystem: "rewards",
			Name:      "paid_base_units_total",
			Help:      "Rewards paid out.",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "amm",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of an expiry and execution sweep.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.Registry.MustRegister(
		m.Operations, m.Rejections, m.SwapVolume, m.SwapFees,
		m.PoolReserves, m.PoolLpSupply, m.OrderOutcomes, m.RewardsPaid, m.SweepDuration,
	)
	return m
}

// ObservePool records a committed pool snapshot.
func (m *Metrics) ObservePool(pool string, reserveA, reserveB, lpSupply uint64) {
	m.PoolReserves.WithLabelValues(pool, "a").Set(float64(reserveA))
	m.PoolReserves.WithLabelValues(pool, "b").Set(float64(reserveB))
	m.PoolLpSupply.WithLabelValues(pool).Set(float64(lpSupply))
}

// ObserveResult counts one operation. code is 0 for success or
// infrastructure failures.
func (m *Metrics) ObserveResult(op string, code uint32, name string, err error) {
	switch {
	case err == nil:
		m.Operations.WithLabelValues(op, "ok").Inc()
	case code != 0:
		m.Operations.WithLabelValues(op, "rejected").Inc()
		m.Rejections.WithLabelValues(strconv.FormatUint(uint64(code), 10), name).Inc()
	default:
		m.Operations.WithLabelValues(op, "error").Inc()
	}
}
