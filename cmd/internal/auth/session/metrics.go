package session

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Tier names the source that satisfied a resolve call.
type Tier string

const (
	TierMemory Tier = "memory"
	TierStore  Tier = "store"
	TierLogin  Tier = "login"
)

// Metrics records resolver activity. A nil *Metrics records nothing.
type Metrics struct {
	resolves *prometheus.CounterVec
	logins   *prometheus.CounterVec
	storeOps *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the resolver collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keeper",
			Name:      "resolve_total",
			Help:      "Resolve calls by satisfying tier and result.",
		}, []string{"tier", "result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keeper",
			Name:      "login_total",
			Help:      "Login procedure invocations by result.",
		}, []string{"result"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keeper",
			Name:      "store_ops_total",
			Help:      "Session store reads and writes by result.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "keeper",
			Name:      "resolve_duration_seconds",
			Help:      "Wall time of resolve calls.",
			Buckets:   []float64{.001, .01, .1, .5, 1, 2.5, 5, 10, 30},
		}),
	}

	for _, c := range []prometheus.Collector{m.resolves, m.logins, m.storeOps, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeResolve(tier Tier, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.resolves.WithLabelValues(string(tier), resultLabel(err)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) observeStore(op string, err error) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
