package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/serroba/sentinel/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Run("counts decisions per label set", func(t *testing.T) {
		m := metrics.New()

		m.Decision("/ping", "default", "allowed")
		m.Decision("/ping", "default", "allowed")
		m.Decision("/ping", "default", "rejected")

		assert.InDelta(t, 2, testutil.ToFloat64(m.Decisions.WithLabelValues("/ping", "default", "allowed")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Decisions.WithLabelValues("/ping", "default", "rejected")), 0)
	})

	t.Run("counts store errors", func(t *testing.T) {
		m := metrics.New()

		m.StoreError("/ping", "default")

		assert.InDelta(t, 1, testutil.ToFloat64(m.StoreErrors.WithLabelValues("/ping", "default")), 0)
	})

	t.Run("serves exposition format", func(t *testing.T) {
		m := metrics.New()
		m.Decision("/ping", "default", "allowed")

		w := httptest.NewRecorder()
		m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "sentinel_admission_decisions_total")
	})

	t.Run("registers both families on its own registry", func(t *testing.T) {
		m := metrics.New()
		m.Decision("/ping", "default", "allowed")
		m.StoreError("/ping", "default")

		families, err := m.Registry().Gather()
		require.NoError(t, err)

		names := make([]string, 0, len(families))
		for _, f := range families {
			names = append(names, f.GetName())
		}

		assert.ElementsMatch(t, []string{"sentinel_admission_decisions_total", "sentinel_store_errors_total"}, names)
	})
}
