// Package metrics — счётчики Prometheus бота и HTTP-эндпоинты /metrics, /healthz.
package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gamepicker"

// Metrics можно использовать через nil-указатель: все методы тогда no-op.
type Metrics struct {
	registry *prometheus.Registry
	commands *prometheus.CounterVec
	saves    *prometheus.CounterVec
	games    prometheus.Gauge

	health func() error // nil — всегда здоров
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Chat commands handled, by command and outcome.",
		}, []string{"command", "outcome"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "State file writes, by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		games: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "games",
			Help:      "Games currently on the list.",
		}),
	}
	m.registry.MustRegister(
		m.commands, m.saves, m.games,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) ObserveSave(trigger string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.saves.WithLabelValues(trigger, outcome).Inc()
}

func (m *Metrics) SetGames(n int) {
	if m == nil {
		return
	}
	m.games.Set(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// SetHealthCheck задаёт проверку для /healthz. Вызывать до Handler.
func (m *Metrics) SetHealthCheck(fn func() error) { m.health = fn }

// Handler — роутер с /metrics и /healthz.
func (m *Metrics) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	health := m.health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return r
}
