package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestConversionCounters(t *testing.T) {
	m := New()

	m.Conversion("mp3", OutcomeSuccess, 2*time.Second)
	m.Conversion("mp3", OutcomeSuccess, time.Second)
	m.Conversion("exe", OutcomeUnsupported, 0)

	require.Equal(t, 2.0, testutil.ToFloat64(m.conversions.WithLabelValues("mp3", OutcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues("exe", OutcomeUnsupported)))
}

func TestObserveHTTP_StatusClasses(t *testing.T) {
	m := New()

	m.ObserveHTTP("GET /history", http.MethodGet, 200, time.Millisecond)
	m.ObserveHTTP("GET /history", http.MethodGet, 403, time.Millisecond)
	m.ObserveHTTP("GET /history", http.MethodGet, 404, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /history", http.MethodGet, "4xx")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.AuthEvent("login", "ok")
	m.Conversion("mp3", OutcomeSuccess, time.Second)
	m.HistoryWriteFailed()
	m.ObserveHTTP("/", http.MethodGet, 200, time.Second)
}

func TestHandler(t *testing.T) {
	m := New()
	m.AuthEvent("login", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `filetool_auth_events_total{event="login",result="ok"} 1`))
}
