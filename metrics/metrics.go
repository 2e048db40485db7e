package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CheckIns        *prometheus.CounterVec
	Resets          *prometheus.CounterVec
	ResetsDenied    prometheus.Counter
	PersistFailures prometheus.Counter
	Sessions        prometheus.GaugeFunc
	SessionsFailed  *prometheus.CounterVec
}

// New registers the attendance metrics on reg. liveSessions is sampled on
// every scrape.
func New(reg prometheus.Registerer, liveSessions func() int) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CheckIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rya_attendance_checkins_total",
			Help: "Check-ins applied, by trip day",
		}, []string{"day"}),
		Resets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rya_attendance_resets_total",
			Help: "Day resets applied, by trip day",
		}, []string{"day"}),
		ResetsDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "rya_attendance_resets_denied_total",
			Help: "Day resets refused by the authorization gate",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rya_attendance_persist_failures_total",
			Help: "Roster write-backs that failed",
		}),
		Sessions: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "rya_attendance_sessions",
			Help: "Live sessions",
		}, func() float64 {
			return float64(liveSessions())
		}),
		SessionsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rya_attendance_session_open_failures_total",
			Help: "Sessions that could not load the roster, by reason",
		}, []string{"reason"}),
	}
}
