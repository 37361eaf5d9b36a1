package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/metrics"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.Generated("t1")
		m.StepSuppressed("commit")
		m.Archived(3)
		m.SetOnline(true)
	})
}

func TestMetrics_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.Generated("low")
	m.Generated("low")
	m.Archived(2)
	m.SetRooms(1, 4)

	series, err := testutil.GatherAndCount(reg, "billroom_transactions_generated_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `billroom_transactions_generated_total{tier="low"} 2`)
	assert.Contains(t, body, "billroom_transactions_archived_total 2")
	assert.Contains(t, body, "billroom_rooms_queued_transactions 4")
}
