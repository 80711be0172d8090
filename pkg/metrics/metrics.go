package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 应用指标集合
// 每个 Collector 持有独立的 Registry，多次创建（如测试中）不会重复注册
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	// BookingOperationsTotal 预约流程操作计数，operation: book/reschedule/cancel/complete/delete
	BookingOperationsTotal *prometheus.CounterVec
	SchedulesCreatedTotal  prometheus.Counter
}

// 预约操作结果标签
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// NewCollector 创建指标集合，namespace 中的 "-" 需提前替换
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		BookingOperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "operations_total",
			Help:      "Booking workflow operations by operation and result.",
		}, []string{"operation", "result"}),

		SchedulesCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "schedules_created_total",
			Help:      "Total schedule slots created.",
		}),
	}
}

// ObserveBooking 记录一次预约操作；c 为 nil 时忽略
func (c *Collector) ObserveBooking(operation, result string) {
	if c == nil {
		return
	}
	c.BookingOperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveScheduleCreated 记录新建时段；c 为 nil 时忽略
func (c *Collector) ObserveScheduleCreated() {
	if c == nil {
		return
	}
	c.SchedulesCreatedTotal.Inc()
}

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
