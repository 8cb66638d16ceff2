package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func TestHealth(t *testing.T) {
	handler := &Handler{health: &MockHealthChecker{}}

	rr := httptest.NewRecorder()
	handler.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("store reachable", func(t *testing.T) {
		var hadDeadline bool
		handler := &Handler{health: &MockHealthChecker{
			PingFunc: func(ctx context.Context) error {
				_, hadDeadline = ctx.Deadline()
				return nil
			},
		}}

		rr := httptest.NewRecorder()
		handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
		assert.True(t, hadDeadline, "ping should run with a timeout")
	})

	for name, pingErr := range map[string]error{
		"store down":   errors.New("connection refused"),
		"ping timeout": context.DeadlineExceeded,
	} {
		t.Run(name, func(t *testing.T) {
			handler := &Handler{health: &MockHealthChecker{
				PingFunc: func(context.Context) error { return pingErr },
			}}

			rr := httptest.NewRecorder()
			handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
			assert.Equal(t, "storage unavailable", rr.Body.String())
		})
	}
}
