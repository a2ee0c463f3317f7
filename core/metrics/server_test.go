package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	cases := map[string]struct {
		health HealthFunc
		want   int
	}{
		"no check": {nil, http.StatusOK},
		"healthy":  {func(context.Context) error { return nil }, http.StatusOK},
		"db down":  {func(context.Context) error { return errors.New("dial tcp: refused") }, http.StatusServiceUnavailable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Handler(tc.health).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestMetricsEndpointExposesCollectors(t *testing.T) {
	HandlerTotal.WithLabelValues("view_scores", "ok").Inc()

	rec := httptest.NewRecorder()
	Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `scorebot_telegram_handled_total{handler="view_scores",status="ok"}`)
}
