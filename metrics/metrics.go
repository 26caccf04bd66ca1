// Package metrics declares the prometheus collectors of cfo.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PriceRequests tracks calls to the price API per endpoint and outcome
	PriceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptofolio_price_requests_total",
			Help: "Total number of price API requests",
		},
		[]string{"endpoint", "status"},
	)

	// PriceRetries tracks retried price API requests
	PriceRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptofolio_price_retries_total",
			Help: "Total number of retried price API requests",
		},
		[]string{"endpoint"},
	)

	// PriceLatency tracks the price API latency, retries included
	PriceLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cryptofolio_price_latency_seconds",
			Help:    "Price API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// AnalysisRuns tracks analysis runs per outcome
	AnalysisRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptofolio_analysis_runs_total",
			Help: "Total number of portfolio analysis runs",
		},
		[]string{"status"},
	)

	// AlertsRaised tracks take-profit and stop-loss alerts
	AlertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptofolio_alerts_total",
			Help: "Total number of alerts raised",
		},
		[]string{"kind", "symbol"},
	)

	// PortfolioValue is the net value of the last analysis
	PortfolioValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cryptofolio_portfolio_value",
			Help: "Net value of the portfolio at the last analysis",
		},
		[]string{"currency"},
	)

	// PortfolioInvested is the invested value at the last analysis
	PortfolioInvested = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cryptofolio_portfolio_invested",
			Help: "Invested value of the portfolio at the last analysis",
		},
		[]string{"currency"},
	)

	// AutoUpdateRuns tracks the ticks of the auto-update loop
	AutoUpdateRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptofolio_autoupdate_runs_total",
			Help: "Total number of auto-update runs",
		},
		[]string{"status"},
	)
)
