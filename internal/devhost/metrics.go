package devhost

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts probe cache behaviour and injections. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	probes     *prometheus.CounterVec
	injections prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wphmr_probe_total",
				Help: "Dev server reachability checks by cache result",
			},
			[]string{"result"},
		),
		injections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wphmr_injections_total",
				Help: "HTML responses the Vite client was injected into",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.probes, m.injections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) probe(result string) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(result).Inc()
}

func (m *Metrics) injected() {
	if m == nil {
		return
	}
	m.injections.Inc()
}
