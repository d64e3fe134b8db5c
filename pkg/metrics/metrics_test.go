package metrics

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())

	m.IncReservation("created", "client")
	m.IncReservation("created", "client")
	m.IncQueueTransition("call")
	m.IncQueueGraceExpired("skipped")
	m.IncNotificationError("queue_called")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservations.WithLabelValues("created", "client")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueTransitions.WithLabelValues("call")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueGraceExpired.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationErrors.WithLabelValues("queue_called")))
}

func TestMetrics_DBQueryResult(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())

	m.ObserveDBQuery("svc", "select", time.Millisecond, nil)
	m.ObserveDBQuery("svc", "select", time.Millisecond, sql.ErrNoRows)
	m.ObserveDBQuery("svc", "update", time.Millisecond, errors.New("deadlock"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dbQueries.WithLabelValues("svc", "select", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dbQueries.WithLabelValues("svc", "update", "error")))

	m.SetDBPoolStats("svc", sql.DBStats{OpenConnections: 7, InUse: 3})
	assert.Equal(t, 7.0, testutil.ToFloat64(m.dbOpenConns.WithLabelValues("svc")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.dbInUseConns.WithLabelValues("svc")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.IncReservation("create", "staff")
		m.IncQueueTransition("call")
		m.IncNotificationError("reservation.created")
	})
}
