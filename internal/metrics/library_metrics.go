// Package metrics содержит Prometheus-метрики операций каталога.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы операций.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// LibraryMetrics содержит метрики сервиса каталога.
type LibraryMetrics struct {
	operations         *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	rejections         *prometheus.CounterVec
	catalogBooks       prometheus.Gauge
	activeReservations prometheus.Gauge
	eventsPublished    *prometheus.CounterVec
}

// NewLibraryMetrics регистрирует метрики в глобальном регистре.
func NewLibraryMetrics() *LibraryMetrics {
	return NewLibraryMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewLibraryMetricsWithRegisterer регистрирует метрики в переданном регистре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewLibraryMetricsWithRegisterer(registerer prometheus.Registerer) *LibraryMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &LibraryMetrics{
		operations: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_operations_total",
			Help: "Total number of catalog operations by outcome",
		}, []string{"operation", "outcome"})),
		operationDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "library_operation_duration_seconds",
			Help:    "Duration of catalog operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"})),
		rejections: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_reservation_rejections_total",
			Help: "Total number of rejected reservations by reason",
		}, []string{"reason"})),
		catalogBooks: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "library_catalog_books",
			Help: "Number of books in the catalog after the last write",
		})),
		activeReservations: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "library_active_reservations",
			Help: "Number of stored reservations after the last write",
		})),
		eventsPublished: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_events_published_total",
			Help: "Total number of catalog events sent to the broker by result",
		}, []string{"type", "result"})),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// ObserveOperation учитывает завершение операции и её длительность.
func (m *LibraryMetrics) ObserveOperation(operation, outcome string, duration time.Duration) {
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordReservationRejected увеличивает счётчик отказов в брони.
func (m *LibraryMetrics) RecordReservationRejected(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

// SetCatalogSize выставляет размер каталога.
func (m *LibraryMetrics) SetCatalogSize(books int) {
	m.catalogBooks.Set(float64(books))
}

// SetActiveReservations выставляет число броней.
func (m *LibraryMetrics) SetActiveReservations(reservations int) {
	m.activeReservations.Set(float64(reservations))
}

// RecordEventPublished учитывает попытку публикации события.
func (m *LibraryMetrics) RecordEventPublished(eventType string, ok bool) {
	result := OutcomeSuccess
	if !ok {
		result = OutcomeError
	}
	m.eventsPublished.WithLabelValues(eventType, result).Inc()
}
