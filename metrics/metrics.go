// Package metrics provides Prometheus metrics for the live scoring service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "livescore"

var (
	// Core business metrics
	scoresSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scores_submitted_total",
		Help:      "Number of judge score submissions accepted.",
	})
	duplicateSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_submissions_total",
		Help:      "Number of score submissions rejected by the idempotency gate.",
	})
	participantsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "participants_finalized_total",
		Help:      "Number of participants whose result has been finalized.",
	})

	// Broadcast metrics
	notificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
		Help:      "Number of broadcast messages delivered to subscribers, by event kind.",
	}, []string{"kind"})
	notificationsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Number of broadcast messages dropped for slow subscribers, by event kind.",
	}, []string{"kind"})
	subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "subscribers",
		Help:      "Number of currently connected broadcast subscribers.",
	})
)

// RecordScoreSubmitted increments the accepted submission counter.
func RecordScoreSubmitted() { scoresSubmitted.Inc() }

// RecordDuplicateSubmission increments the rejected duplicate counter.
func RecordDuplicateSubmission() { duplicateSubmissions.Inc() }

// RecordParticipantFinalized increments the finalize counter.
func RecordParticipantFinalized() { participantsFinalized.Inc() }

// RecordNotificationPublished increments the delivery counter for an event kind.
func RecordNotificationPublished(kind string) { notificationsPublished.WithLabelValues(kind).Inc() }

// RecordNotificationDropped increments the drop counter for an event kind.
func RecordNotificationDropped(kind string) { notificationsDropped.WithLabelValues(kind).Inc() }

// SubscriberConnected / SubscriberDisconnected track the live subscriber gauge.
func SubscriberConnected()    { subscribers.Inc() }
func SubscriberDisconnected() { subscribers.Dec() }

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
