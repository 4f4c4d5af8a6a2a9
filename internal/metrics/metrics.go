package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dosewatch",
			Name:      "notifications_sent_total",
			Help:      "Count of notification deliveries by channel and status.",
		},
		[]string{"channel", "status"},
	)

	sendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dosewatch",
			Name:      "notification_send_duration_seconds",
			Help:      "Time to deliver one notification across all channels.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2, 5},
		},
	)

	timersArmed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dosewatch",
			Name:      "timers_armed",
			Help:      "Currently armed notification timers.",
		},
	)

	remindersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dosewatch",
			Name:      "reminders_active",
			Help:      "Active reminders in the collection.",
		},
	)

	storeSaves = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dosewatch",
			Name:      "store_saves_total",
			Help:      "Count of whole-collection rewrites.",
		},
	)

	storeLoadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dosewatch",
			Name:      "store_load_failures_total",
			Help:      "Count of store loads that found unparsable content.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			notificationsSent,
			sendDuration,
			timersArmed,
			remindersActive,
			storeSaves,
			storeLoadFailures,
		)
	})
}

func IncNotificationSent(channel, status string) {
	notificationsSent.WithLabelValues(channel, status).Inc()
}

func ObserveSendDuration(seconds float64) {
	sendDuration.Observe(seconds)
}

func SetTimersArmed(n int) {
	timersArmed.Set(float64(n))
}

func SetRemindersActive(n int) {
	remindersActive.Set(float64(n))
}

func IncStoreSave() {
	storeSaves.Inc()
}

func IncStoreLoadFailure() {
	storeLoadFailures.Inc()
}
