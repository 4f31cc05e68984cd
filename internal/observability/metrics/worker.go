package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huson-app/huson/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal   *prometheus.CounterVec
	eventsByType  *prometheus.CounterVec
	queueLag      *prometheus.HistogramVec
	sweepRuns     *prometheus.CounterVec
	sweepObjects  *prometheus.CounterVec
	sweepDuration prometheus.Histogram
	sweepInFlight prometheus.Gauge

	Breakers *BreakerStates
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "huson",
			Subsystem: "worker",
			Name:      "donation_events_total",
			Help:      "Processed donation events by status.",
		},
		[]string{"service", "status"},
	)
	eventsByType := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "huson",
			Subsystem: "worker",
			Name:      "donations_by_item_type_total",
			Help:      "Submitted donations by item type and whether a photo was attached.",
		},
		[]string{"service", "item_type", "has_image"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "huson",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between donation creation and event handling.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	sweepRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "huson",
			Subsystem: "sweeper",
			Name:      "runs_total",
			Help:      "Orphan upload sweeps by status.",
		},
		[]string{"service", "status"},
	)
	sweepObjects := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "huson",
			Subsystem: "sweeper",
			Name:      "objects_total",
			Help:      "Stored objects visited by the sweeper, by result.",
		},
		[]string{"service", "result"},
	)
	sweepDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "huson",
			Subsystem:   "sweeper",
			Name:        "duration_seconds",
			Help:        "Orphan upload sweep duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	sweepInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "huson",
			Subsystem:   "sweeper",
			Name:        "in_flight",
			Help:        "1 while a sweep is running.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(eventsTotal, eventsByType, queueLag, sweepRuns, sweepObjects, sweepDuration, sweepInFlight)

	return &WorkerMetrics{
		registry:      registry,
		eventsTotal:   eventsTotal,
		eventsByType:  eventsByType,
		queueLag:      queueLag,
		sweepRuns:     sweepRuns,
		sweepObjects:  sweepObjects,
		sweepDuration: sweepDuration,
		sweepInFlight: sweepInFlight,
		Breakers:      newBreakerStates(registry, service),
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) RecordEvent(service string, event domain.DonationSubmittedEvent, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.eventsTotal.WithLabelValues(service, status).Inc()
	if err != nil {
		return
	}

	hasImage := "false"
	if event.HasImage {
		hasImage = "true"
	}
	itemType := string(event.ItemType)
	if !event.ItemType.Valid() {
		itemType = "unknown"
	}
	m.eventsByType.WithLabelValues(service, itemType, hasImage).Inc()
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) StartSweep() {
	m.sweepInFlight.Inc()
}

func (m *WorkerMetrics) FinishSweep(service string, duration time.Duration, report domain.OrphanSweepReport, err error) {
	m.sweepInFlight.Dec()
	m.sweepDuration.Observe(duration.Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	m.sweepRuns.WithLabelValues(service, status).Inc()
	m.sweepObjects.WithLabelValues(service, "deleted").Add(float64(report.Deleted))
	m.sweepObjects.WithLabelValues(service, "kept").Add(float64(report.Kept))
	m.sweepObjects.WithLabelValues(service, "failed").Add(float64(report.Failed))
}
