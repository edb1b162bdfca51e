// Package metrics exposes Prometheus counters for game play and HTTP
// traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	moves         *prometheus.CounterVec
	undos         *prometheus.CounterVec
	wins          *prometheus.CounterVec
	winMoves      prometheus.Histogram
	activeGames   prometheus.Gauge
	requests      *prometheus.CounterVec
	requestTiming *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		moves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sokodle_moves_total",
				Help: "Total number of move requests by result",
			},
			[]string{"result"},
		),
		undos: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sokodle_undos_total",
				Help: "Total number of undo requests by result",
			},
			[]string{"result"},
		),
		wins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sokodle_wins_total",
				Help: "Total number of solved levels by level kind",
			},
			[]string{"kind"},
		),
		winMoves: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sokodle_win_moves",
				Help:    "Move count of solved levels",
				Buckets: prometheus.ExponentialBuckets(4, 2, 8),
			},
		),
		activeGames: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sokodle_active_games",
				Help: "Number of games started and not yet won or deleted",
			},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sokodle_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestTiming: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sokodle_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.moves, m.undos, m.wins, m.winMoves, m.activeGames,
		m.requests, m.requestTiming,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Move counts a move request.
func (m *Metrics) Move(accepted bool) {
	m.moves.WithLabelValues(result(accepted)).Inc()
}

// Undo counts an undo request.
func (m *Metrics) Undo(applied bool) {
	m.undos.WithLabelValues(result(applied)).Inc()
}

// GameStarted marks a game as active.
func (m *Metrics) GameStarted() {
	m.activeGames.Inc()
}

// GameEnded marks an active game as finished or abandoned.
func (m *Metrics) GameEnded() {
	m.activeGames.Dec()
}

// Win counts a solved level of the given kind ("daily", "user" or
// "custom").
func (m *Metrics) Win(kind string, moves int) {
	m.wins.WithLabelValues(kind).Inc()
	m.winMoves.Observe(float64(moves))
}

// Request records a finished HTTP request.
func (m *Metrics) Request(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.requestTiming.WithLabelValues(method, route).Observe(d.Seconds())
}

func result(ok bool) string {
	if ok {
		return "accepted"
	}
	return "rejected"
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
