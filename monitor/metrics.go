package monitor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the latest sample of a process as Prometheus gauges
type Metrics struct {
	cpu     prometheus.Gauge
	vms     prometheus.Gauge
	rss     prometheus.Gauge
	samples prometheus.Counter
}

// NewMetrics registers the gauges of pid with reg
func NewMetrics(reg prometheus.Registerer, pid int) *Metrics {

	labels := prometheus.Labels{"pid": strconv.Itoa(pid)}
	factory := promauto.With(reg)

	return &Metrics{
		cpu: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "morphbench",
			Subsystem:   "process",
			Name:        "cpu_percent",
			Help:        "CPU usage of the monitored process over the last interval",
			ConstLabels: labels,
		}),
		vms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "morphbench",
			Subsystem:   "process",
			Name:        "virtual_memory_bytes",
			Help:        "Virtual memory size of the monitored process",
			ConstLabels: labels,
		}),
		rss: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "morphbench",
			Subsystem:   "process",
			Name:        "resident_memory_bytes",
			Help:        "Resident memory size of the monitored process",
			ConstLabels: labels,
		}),
		samples: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "morphbench",
			Subsystem:   "process",
			Name:        "samples_total",
			Help:        "Number of samples taken",
			ConstLabels: labels,
		}),
	}
}

// Observe records a sample
func (m *Metrics) Observe(s Sample) {
	m.cpu.Set(s.CPU)
	m.vms.Set(float64(s.VMS * 1024))
	m.rss.Set(float64(s.RSS * 1024))
	m.samples.Inc()
}
