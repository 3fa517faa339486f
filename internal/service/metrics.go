package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "electionmap"

var computeBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics records recompute latency and dataset reloads
type Metrics struct {
	computeDuration *prometheus.HistogramVec
	reloads         *prometheus.CounterVec
	features        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered. Collectors that are already
// registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		computeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "compute_duration_seconds",
			Help:      "Time spent computing a map response by operation and mode.",
			Buckets:   computeBuckets,
		}, []string{"operation", "mode"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset reloads by result.",
		}, []string{"result"}),
		features: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_municipalities",
			Help:      "Municipality records in the loaded dataset.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.computeDuration, err = register(reg, m.computeDuration)
	if err != nil {
		return nil, err
	}
	m.reloads, err = register(reg, m.reloads)
	if err != nil {
		return nil, err
	}
	m.features, err = register(reg, m.features)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(operation, mode string, start time.Time) {
	m.computeDuration.WithLabelValues(operation, mode).Observe(time.Since(start).Seconds())
}

func (m *Metrics) reloaded(err error, municipalities int) {
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	m.features.Set(float64(municipalities))
}
