package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcclellann/fredLedger/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_Register(t *testing.T) {
	pc := NewPrometheusCollector("test")
	registry := prometheus.NewRegistry()

	require.NoError(t, pc.Register(registry))
	assert.Error(t, pc.Register(registry), "registering twice should fail")
}

func TestPrometheusCollector_RecordTransfer(t *testing.T) {
	pc := NewPrometheusCollector("test")

	pc.RecordTransfer("ok", "sender")
	pc.RecordTransfer("ok", "sender")
	pc.RecordTransfer("insufficient_balance", "receiver")

	assert.Equal(t, 2.0, testutil.ToFloat64(pc.transfers.WithLabelValues("ok", "sender")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.transfers.WithLabelValues("insufficient_balance", "receiver")))
}

func TestPrometheusCollector_RecordAccrual(t *testing.T) {
	pc := NewPrometheusCollector("test")

	pc.RecordAccrual(true)
	pc.RecordAccrual(false)
	pc.RecordAccrual(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(pc.accruals.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pc.accruals.WithLabelValues("false")))
}

func TestPrometheusCollector_RecordRateLookup(t *testing.T) {
	pc := NewPrometheusCollector("test")

	pc.RecordRateLookup("redis", true, time.Millisecond)
	pc.RecordRateLookup("redis", false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(pc.rateLookups.WithLabelValues("redis", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.rateLookups.WithLabelValues("redis", "error")))
}

func TestPrometheusCollector_RecordCircuitState(t *testing.T) {
	pc := NewPrometheusCollector("test")

	pc.RecordCircuitState("redis", metrics.CircuitOpen)
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.circuitState.WithLabelValues("redis")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.circuitOpens.WithLabelValues("redis")))

	pc.RecordCircuitState("redis", metrics.CircuitClosed)
	assert.Equal(t, 0.0, testutil.ToFloat64(pc.circuitState.WithLabelValues("redis")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.circuitOpens.WithLabelValues("redis")))
}

func TestHandler(t *testing.T) {
	pc := NewPrometheusCollector("fredledger")
	registry := prometheus.NewRegistry()
	require.NoError(t, pc.Register(registry))
	pc.RecordSchedule("full", 12)

	rr := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `fredledger_installment_schedules_total{mode="full"} 1`))
}
