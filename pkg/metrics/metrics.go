// Package metrics prometheus-метрики сервиса: HTTP, база данных и доменные счетчики.
package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор коллекторов сервиса
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	dbQueries       *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	dbOpenConns     *prometheus.GaugeVec
	dbInUseConns    *prometheus.GaugeVec
	dbWaitCount     *prometheus.GaugeVec

	reservations       *prometheus.CounterVec
	queueTransitions   *prometheus.CounterVec
	queueGraceExpired  *prometheus.CounterVec
	notificationErrors *prometheus.CounterVec
}

// New создает метрики и регистрирует их в глобальном реестре prometheus
func New(namespace string) *Metrics {
	return NewWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики в указанном реестре
func NewWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Количество HTTP запросов.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность обработки HTTP запросов.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Количество SQL запросов по типу операции и результату.",
		}, []string{"service", "operation", "result"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Длительность SQL запросов.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),
		dbOpenConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_open_connections",
			Help:      "Открытые соединения пула.",
		}, []string{"service"}),
		dbInUseConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_in_use_connections",
			Help:      "Занятые соединения пула.",
		}, []string{"service"}),
		dbWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_wait_count",
			Help:      "Сколько раз запросы ждали свободное соединение.",
		}, []string{"service"}),
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_total",
			Help:      "Операции с бронированиями по типу и источнику.",
		}, []string{"operation", "source"}),
		queueTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_transitions_total",
			Help:      "Переходы элементов очереди по действию.",
		}, []string{"action"}),
		queueGraceExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_grace_expired_total",
			Help:      "Элементы очереди, у которых истек период ожидания после вызова.",
		}, []string{"status"}),
		notificationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_publish_errors_total",
			Help:      "Ошибки публикации событий уведомлений.",
		}, []string{"event"}),
	}

	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.dbQueries, m.dbQueryDuration, m.dbOpenConns, m.dbInUseConns, m.dbWaitCount,
		m.reservations, m.queueTransitions, m.queueGraceExpired, m.notificationErrors,
	)

	return m
}

// Методы безопасны для nil: при выключенных метриках передается nil *Metrics.

// ObserveHTTPRequest учитывает обработанный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery учитывает SQL запрос (реализует dbmetrics.Collector)
func (m *Metrics) ObserveDBQuery(service, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil && err != sql.ErrNoRows {
		result = "error"
	}
	m.dbQueries.WithLabelValues(service, operation, result).Inc()
	m.dbQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет статистику пула соединений (реализует dbmetrics.Collector)
func (m *Metrics) SetDBPoolStats(service string, stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbOpenConns.WithLabelValues(service).Set(float64(stats.OpenConnections))
	m.dbInUseConns.WithLabelValues(service).Set(float64(stats.InUse))
	m.dbWaitCount.WithLabelValues(service).Set(float64(stats.WaitCount))
}

// IncReservation учитывает операцию с бронированием (created, rescheduled, cancelled)
func (m *Metrics) IncReservation(operation, source string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(operation, source).Inc()
}

// IncQueueTransition учитывает переход элемента очереди
func (m *Metrics) IncQueueTransition(action string) {
	if m == nil {
		return
	}
	m.queueTransitions.WithLabelValues(action).Inc()
}

// IncQueueGraceExpired учитывает истечение периода ожидания
func (m *Metrics) IncQueueGraceExpired(status string) {
	if m == nil {
		return
	}
	m.queueGraceExpired.WithLabelValues(status).Inc()
}

// IncNotificationError учитывает неудачную публикацию события
func (m *Metrics) IncNotificationError(event string) {
	if m == nil {
		return
	}
	m.notificationErrors.WithLabelValues(event).Inc()
}
