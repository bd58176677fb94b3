package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values are bounded: actor is "human" or "computer".
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "billiards_tick_duration_seconds",
		Help:    "Time spent in one table tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.02, 0.033, 0.05},
	})

	shotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billiards_shots_total",
		Help: "Shots accepted by the rule engine",
	}, []string{"actor"})

	foulsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billiards_fouls_total",
		Help: "Fouls called",
	})

	aiCandidatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billiards_ai_candidates_total",
		Help: "Candidate shots rated by the computer",
	})

	gamesFinishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billiards_games_finished_total",
		Help: "Games that reached a win or loss",
	})

	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "billiards_rooms_active",
		Help: "Tables currently running",
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "billiards_websocket_connections_active",
		Help: "Currently open table connections",
	})

	wsMessagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billiards_websocket_messages_dropped_total",
		Help: "Inbound messages dropped",
	}, []string{"reason"}) // "rate_limit", "invalid"
)

// RecordTick records tick timing.
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// RecordShot counts an accepted shot.
func RecordShot(computer bool) {
	actor := "human"
	if computer {
		actor = "computer"
	}
	shotsTotal.WithLabelValues(actor).Inc()
}

func RecordFoul() {
	foulsTotal.Inc()
}

// AddCandidates counts candidates rated since the last call.
func AddCandidates(n int) {
	if n > 0 {
		aiCandidatesTotal.Add(float64(n))
	}
}

func RecordGameFinished() {
	gamesFinishedTotal.Inc()
}

func RoomOpened() {
	roomsActive.Inc()
}

func RoomClosed() {
	roomsActive.Dec()
}

func WSConnected() {
	wsConnectionsActive.Inc()
}

func WSDisconnected() {
	wsConnectionsActive.Dec()
}

// RecordDropped counts an inbound message that was discarded.
// reason must be "rate_limit" or "invalid".
func RecordDropped(reason string) {
	wsMessagesDropped.WithLabelValues(reason).Inc()
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
