package daemon

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the daemon's gauges on a private registry so tests can
// build several services without colliding on the default one.
type metrics struct {
	reg *prometheus.Registry

	nights            *prometheus.GaugeVec
	benefitsPosted    *prometheus.GaugeVec
	benefitsPotential *prometheus.GaugeVec
	polls             prometheus.Counter
	pollErrors        prometheus.Counter
	pollDuration      prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		reg: prometheus.NewRegistry(),
		nights: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: "cardperks", Name: "elite_nights", Help: "Elite nights by state."},
			[]string{"state"}, // posted|total|cc_pending
		),
		benefitsPosted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: "cardperks", Name: "benefits_posted_dollars", Help: "Benefit value posted in the current card year."},
			[]string{"card"},
		),
		benefitsPotential: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: "cardperks", Name: "benefits_potential_dollars", Help: "Benefit value available in the current card year."},
			[]string{"card"},
		),
		polls: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: "cardperks", Name: "daemon_polls_total", Help: "Successful snapshot reloads."},
		),
		pollErrors: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: "cardperks", Name: "daemon_poll_errors_total", Help: "Failed snapshot reloads."},
		),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cardperks", Name: "daemon_poll_duration_seconds",
			Help:    "Snapshot reload duration seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.reg.MustRegister(m.nights, m.benefitsPosted, m.benefitsPotential, m.polls, m.pollErrors, m.pollDuration)
	return m
}

func (m *metrics) observe(snap Snapshot, dur time.Duration) {
	m.polls.Inc()
	m.pollDuration.Observe(dur.Seconds())

	m.nights.WithLabelValues("posted").Set(float64(snap.NightsPosted))
	m.nights.WithLabelValues("total").Set(float64(snap.NightsTotal))
	m.nights.WithLabelValues("cc_pending").Set(float64(snap.CCNightsPending))

	// Cards can disappear from the benefits file between polls.
	m.benefitsPosted.Reset()
	m.benefitsPotential.Reset()
	for _, c := range snap.Cards {
		m.benefitsPosted.WithLabelValues(c.CardKey).Set(c.Posted)
		m.benefitsPotential.WithLabelValues(c.CardKey).Set(c.Potential)
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
