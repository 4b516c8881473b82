package arena

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts gameplay events for the /metrics endpoint.
type Metrics struct {
	Connections prometheus.Gauge
	Answers     *prometheus.CounterVec
	Gambles     *prometheus.CounterVec
	Duels       *prometheus.CounterVec
	PowerUps    *prometheus.CounterVec
	GamesOver   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Connections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "arena_active_connections",
			Help: "Currently connected players.",
		}),
		Answers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_answers_total",
			Help: "Answers submitted, by result.",
		}, []string{"result"}),
		Gambles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_gambles_total",
			Help: "Gambles placed, by kind and result.",
		}, []string{"kind", "result"}),
		Duels: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_duels_total",
			Help: "Duels completed, by winner.",
		}, []string{"winner"}),
		PowerUps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_powerups_used_total",
			Help: "Power-ups used, by kind.",
		}, []string{"kind"}),
		GamesOver: factory.NewCounter(prometheus.CounterOpts{
			Name: "arena_games_completed_total",
			Help: "Games that reached the game over phase.",
		}),
	}
}
