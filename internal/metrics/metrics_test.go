package metrics

import (
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCountersIncrement(t *testing.T) {
	fallbacks := StorageFallbacks.WithLabelValues(FallbackBadRecord)
	before := counterValue(t, fallbacks)
	fallbacks.Inc()
	assert.Equal(t, before+1, counterValue(t, fallbacks))

	gate := GateEvaluations.WithLabelValues("RED")
	before = counterValue(t, gate)
	gate.Inc()
	gate.Inc()
	assert.Equal(t, before+2, counterValue(t, gate))
}

func TestHandlerServesRegisteredSeries(t *testing.T) {
	WriteErrors.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "deskd_storage_write_errors_total")
}
