package metrics

import "github.com/prometheus/client_golang/prometheus"

// BreakerStates exports the circuit breaker state of each outbound
// dependency: 0 closed, 1 half-open, 2 open.
type BreakerStates struct {
	service string
	gauge   *prometheus.GaugeVec
}

func newBreakerStates(registry *prometheus.Registry, service string) *BreakerStates {
	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "huson",
			Subsystem: "dependency",
			Name:      "circuit_state",
			Help:      "Circuit breaker state per outbound operation (0 closed, 1 half-open, 2 open).",
		},
		[]string{"service", "operation"},
	)
	registry.MustRegister(gauge)
	return &BreakerStates{service: service, gauge: gauge}
}

// Set has the resilience.StateListener signature.
func (b *BreakerStates) Set(operation, state string) {
	value := 0.0
	switch state {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	b.gauge.WithLabelValues(b.service, operation).Set(value)
}
