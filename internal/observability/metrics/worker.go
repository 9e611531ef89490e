package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/byroteam/byro/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	pipelineTotal    *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	pipelineInFlight prometheus.Gauge
	queueLag         *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	pipelineTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "byro",
			Subsystem: "worker",
			Name:      "intake_pipeline_total",
			Help:      "Total intake pipeline runs by terminal status.",
		},
		[]string{"service", "status"},
	)
	pipelineDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "byro",
			Subsystem: "worker",
			Name:      "intake_pipeline_duration_seconds",
			Help:      "Intake pipeline run duration in seconds by terminal status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	pipelineInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "byro",
			Subsystem: "worker",
			Name:      "intake_pipeline_in_flight",
			Help:      "Number of in-flight intake pipeline runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "byro",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between intake upload and pipeline start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(pipelineTotal, pipelineDuration, pipelineInFlight, queueLag)

	return &WorkerMetrics{
		registry:         registry,
		pipelineTotal:    pipelineTotal,
		pipelineDuration: pipelineDuration,
		pipelineInFlight: pipelineInFlight,
		queueLag:         queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartPipeline() {
	m.pipelineInFlight.Inc()
}

func (m *WorkerMetrics) FinishPipeline(service string, duration time.Duration, status domain.IntakeStatus) {
	m.pipelineInFlight.Dec()
	m.pipelineTotal.WithLabelValues(service, string(status)).Inc()
	m.pipelineDuration.WithLabelValues(service, string(status)).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
