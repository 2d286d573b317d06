package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/health"
)

func TestCheckerRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()

		report := health.New(nil).Run(context.Background())
		assert.True(t, report.Healthy())
		assert.Empty(t, report.Checks)
	})

	t.Run("one failure marks the report unhealthy", func(t *testing.T) {
		t.Parallel()

		c := health.New(health.Checks{
			"db": func(context.Context) error { return nil },
		})
		c.Register("redis", func(context.Context) error { return errors.New("refused") })

		report := c.Run(context.Background())
		assert.False(t, report.Healthy())
		assert.Equal(t, health.StatusHealthy, report.Checks["db"].Status)
		assert.Equal(t, health.Result{Status: health.StatusUnhealthy, Error: "refused"}, report.Checks["redis"])
	})

	t.Run("slow checks time out", func(t *testing.T) {
		t.Parallel()

		block := make(chan struct{})
		t.Cleanup(func() { close(block) })

		c := health.New(health.Checks{
			"slow": func(context.Context) error { <-block; return nil },
		}, health.WithTimeout(20*time.Millisecond))

		report := c.Run(context.Background())
		assert.False(t, report.Healthy())
		assert.Equal(t, health.ErrTimeout.Error(), report.Checks["slow"].Error)
	})
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		health.LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})

	t.Run("readiness json", func(t *testing.T) {
		t.Parallel()

		c := health.New(health.Checks{"db": func(context.Context) error { return errors.New("down") }})
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil)
		c.ReadinessHandler()(w, r)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var report health.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, health.StatusUnhealthy, report.Status)
		assert.Equal(t, "down", report.Checks["db"].Error)
	})
}
