// Package metrics exposes bracket engine activity as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tournament_generator"

// Recorder is what the services report to.
type Recorder interface {
	GamesGenerated(n int)
	ResultsRecorded()
	TeamsProgressed(n int)
	SimulationCompleted(games int, estimated time.Duration, took time.Duration)
}

type Metrics struct {
	registry *prometheus.Registry

	gamesGenerated   prometheus.Counter
	resultsRecorded  prometheus.Counter
	teamsProgressed  prometheus.Counter
	simulations      prometheus.Counter
	simulatedGames   prometheus.Histogram
	estimatedMinutes prometheus.Histogram
	simulationTime   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gamesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_generated_total",
			Help:      "Games created by the generators.",
		}),
		resultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_recorded_total",
			Help:      "Game results set through the API.",
		}),
		teamsProgressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "teams_progressed_total",
			Help:      "Teams moved between groups by progressions.",
		}),
		simulations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Completed tournament simulations.",
		}),
		simulatedGames: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_games",
			Help:      "Games played in a simulated tournament.",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 10),
		}),
		estimatedMinutes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_estimated_minutes",
			Help:      "Estimated length of simulated tournaments.",
			Buckets:   prometheus.ExponentialBuckets(30, 2, 8),
		}),
		simulationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_seconds",
			Help:      "Wall time spent running one simulation.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.gamesGenerated,
		m.resultsRecorded,
		m.teamsProgressed,
		m.simulations,
		m.simulatedGames,
		m.estimatedMinutes,
		m.simulationTime,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) GamesGenerated(n int) {
	m.gamesGenerated.Add(float64(n))
}

func (m *Metrics) ResultsRecorded() {
	m.resultsRecorded.Inc()
}

func (m *Metrics) TeamsProgressed(n int) {
	m.teamsProgressed.Add(float64(n))
}

func (m *Metrics) SimulationCompleted(games int, estimated time.Duration, took time.Duration) {
	m.simulations.Inc()
	m.simulatedGames.Observe(float64(games))
	m.estimatedMinutes.Observe(estimated.Minutes())
	m.simulationTime.Observe(took.Seconds())
}

// Registry is exposed for tests and for callers adding their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Noop discards everything. Used by the CLI and by tests that don't look at metrics.
type Noop struct{}

func (Noop) GamesGenerated(int)                                    {}
func (Noop) ResultsRecorded()                                      {}
func (Noop) TeamsProgressed(int)                                   {}
func (Noop) SimulationCompleted(int, time.Duration, time.Duration) {}
