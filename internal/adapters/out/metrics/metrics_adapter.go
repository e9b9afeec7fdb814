package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clinic"

// MetricsAdapter счетчики движка записи и HTTP-запросов
type MetricsAdapter struct {
	bookingsTotal   *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	storeRetries    *prometheus.CounterVec
	slotsGenerated  prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

func NewMetricsAdapter(reg prometheus.Registerer) *MetricsAdapter {
	m := &MetricsAdapter{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		rejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "rejections_total",
			Help:      "Validation rejections by operation and reason",
		}, []string{"operation", "reason"}),
		storeRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "store_conflict_retries_total",
			Help:      "Retries after the store refused a conditional insert",
		}, []string{"operation"}),
		slotsGenerated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "slots_per_day",
			Help:      "Number of slots generated for a doctor and date",
			Buckets:   []float64{0, 4, 8, 16, 32, 64, 128},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.rejectionsTotal, m.storeRetries, m.slotsGenerated, m.httpRequests, m.httpLatency)
	return m
}

func (m *MetricsAdapter) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsAdapter) ObserveRejection(operation string, reason string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(operation, reason).Inc()
}

func (m *MetricsAdapter) ObserveSlotsGenerated(count int) {
	if m == nil {
		return
	}
	m.slotsGenerated.Observe(float64(count))
}

func (m *MetricsAdapter) ObserveStoreRetry(operation string) {
	if m == nil {
		return
	}
	m.storeRetries.WithLabelValues(operation).Inc()
}

func (m *MetricsAdapter) ObserveHTTPRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(seconds)
}
