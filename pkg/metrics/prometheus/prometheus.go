package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mcclellann/fredLedger/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements metrics.Collector for Prometheus.
type PrometheusCollector struct {
	namespace string

	transfers      *prometheus.CounterVec
	schedules      *prometheus.CounterVec
	scheduleMonths *prometheus.HistogramVec
	accruals       *prometheus.CounterVec
	rateLookups    *prometheus.CounterVec
	rateLatency    *prometheus.HistogramVec
	circuitState   *prometheus.GaugeVec
	circuitOpens   *prometheus.CounterVec
}

var _ metrics.Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates a new Prometheus metrics collector.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		namespace: namespace,
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of transfer allocations per outcome and fee bearer",
			},
			[]string{"outcome", "bearer"},
		),
		schedules: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "installment_schedules_total",
				Help:      "Total number of installment schedules generated per recompute mode",
			},
			[]string{"mode"},
		),
		scheduleMonths: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "installment_schedule_months",
				Help:      "Length of generated installment schedules",
				Buckets:   []float64{1, 3, 6, 12, 24, 36, 60, 120},
			},
			[]string{"mode"},
		),
		accruals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "accruals_total",
				Help:      "Total number of accrual calculations",
			},
			[]string{"matured"},
		),
		rateLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_lookups_total",
				Help:      "Total number of exchange rate lookups per source",
			},
			[]string{"source", "status"},
		),
		rateLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rate_lookup_duration_seconds",
				Help:      "Exchange rate lookup latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to ~3s
			},
			[]string{"source"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Current circuit breaker state per rate source (0=closed, 1=open, 2=half-open)",
			},
			[]string{"source"},
		),
		circuitOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_opens_total",
				Help:      "Total number of circuit breaker opens per rate source",
			},
			[]string{"source"},
		),
	}
}

// Register registers all metrics with the given Prometheus registry.
func (pc *PrometheusCollector) Register(registry *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		pc.transfers,
		pc.schedules,
		pc.scheduleMonths,
		pc.accruals,
		pc.rateLookups,
		pc.rateLatency,
		pc.circuitState,
		pc.circuitOpens,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// Handler returns an HTTP handler serving the metrics of registry.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// RecordTransfer counts a transfer allocation.
func (pc *PrometheusCollector) RecordTransfer(outcome, bearer string) {
	pc.transfers.WithLabelValues(outcome, bearer).Inc()
}

// RecordSchedule counts a generated installment schedule.
func (pc *PrometheusCollector) RecordSchedule(mode string, months int) {
	pc.schedules.WithLabelValues(mode).Inc()
	pc.scheduleMonths.WithLabelValues(mode).Observe(float64(months))
}

// RecordAccrual counts an accrual calculation.
func (pc *PrometheusCollector) RecordAccrual(matured bool) {
	pc.accruals.WithLabelValues(strconv.FormatBool(matured)).Inc()
}

// RecordRateLookup records an exchange rate lookup.
func (pc *PrometheusCollector) RecordRateLookup(source string, ok bool, duration time.Duration) {
	status := "success"
	if !ok {
		status = "error"
	}
	pc.rateLookups.WithLabelValues(source, status).Inc()
	pc.rateLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCircuitState records the circuit breaker state of a rate source.
func (pc *PrometheusCollector) RecordCircuitState(source string, state metrics.CircuitState) {
	pc.circuitState.WithLabelValues(source).Set(float64(state))
	if state == metrics.CircuitOpen {
		pc.circuitOpens.WithLabelValues(source).Inc()
	}
}
