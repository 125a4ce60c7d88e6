package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func passing(_ context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func serve(t *testing.T, endpoint http.HandlerFunc) (int, statusBody) {
	t.Helper()
	w := httptest.NewRecorder()
	endpoint(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body statusBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestLiveEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		checks []Check
		runs   int
		code   int
		failed []string
	}{
		{
			name: "no checks",
			code: http.StatusOK,
		},
		{
			name:   "all passing",
			checks: []Check{{Name: "a", Func: passing}, {Name: "b", Func: passing}},
			runs:   3,
			code:   http.StatusOK,
		},
		{
			name:   "failing below threshold",
			checks: []Check{{Name: "flaky", Func: failing("temporary")}},
			runs:   2,
			code:   http.StatusOK,
		},
		{
			name:   "failing at threshold",
			checks: []Check{{Name: "db", Func: failing("connection refused")}},
			runs:   3,
			code:   http.StatusServiceUnavailable,
			failed: []string{"db"},
		},
		{
			name:   "custom threshold",
			checks: []Check{{Name: "db", Func: failing("down"), FailureThreshold: 1}},
			runs:   1,
			code:   http.StatusServiceUnavailable,
			failed: []string{"db"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			for _, c := range tt.checks {
				h.AddLivenessCheck(c)
			}
			for range tt.runs {
				for _, p := range h.liveness {
					p.run(context.Background())
				}
			}

			code, body := serve(t, h.LiveEndpoint)

			assert.Equal(t, tt.code, code)
			if len(tt.failed) == 0 {
				assert.Equal(t, "ok", body.Status)
				assert.Empty(t, body.Checks)
				return
			}
			assert.Equal(t, "unhealthy", body.Status)
			for _, name := range tt.failed {
				assert.Contains(t, body.Checks, name)
			}
		})
	}
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.AddReadinessCheck(Check{Name: "db", Func: passing})
	h.AddReadinessCheck(Check{Name: "menu", Func: failing("menu unavailable")})

	code, body := serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "service is not ready", body.Checks["_readiness"])

	h.SetReady(true)
	code, _ = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)

	for range 3 {
		h.readiness[1].run(context.Background())
	}
	code, body = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "menu unavailable", body.Checks["menu"])
	assert.NotContains(t, body.Checks, "db")
	assert.NotContains(t, body.Checks, "_readiness")
}

func TestIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck(Check{Name: "db", Func: passing})

	assert.False(t, h.IsReady())
	h.SetReady(true)
	assert.True(t, h.IsReady())
	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestProbeRecovers(t *testing.T) {
	down := true
	p := newProbe(Check{Name: "flaky", Func: func(context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	}, SuccessThreshold: 2})
	ctx := context.Background()

	for range 3 {
		p.run(ctx)
	}
	msg, failed := p.failure()
	require.True(t, failed)
	assert.Equal(t, "down", msg)

	down = false
	p.run(ctx)
	_, failed = p.failure()
	assert.True(t, failed, "one success is below the threshold")

	p.run(ctx)
	_, failed = p.failure()
	assert.False(t, failed)
}

func TestProbeTimeout(t *testing.T) {
	p := newProbe(Check{
		Name:             "slow",
		Timeout:          10 * time.Millisecond,
		FailureThreshold: 1,
		Func: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	p.run(context.Background())

	msg, failed := p.failure()
	require.True(t, failed)
	assert.Contains(t, msg, "deadline exceeded")
}

func TestRun_ConcurrentAccess(t *testing.T) {
	h := New()
	h.AddLivenessCheck(Check{Name: "live", Func: failing("err")})
	h.AddReadinessCheck(Check{Name: "ready", Func: passing})
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, 5*time.Millisecond) }()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				h.IsReady()
				h.LiveEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/livez", nil))
				h.ReadyEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestCheckers(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, PingCheck(stubPinger{})(ctx))
	require.ErrorContains(t, PingCheck(stubPinger{err: errors.New("refused")})(ctx), "refused")

	require.NoError(t, GoroutineCountCheck(100000)(ctx))
	require.ErrorContains(t, GoroutineCountCheck(0)(ctx), "exceeds threshold")

	require.NoError(t, GCMaxPauseCheck(time.Hour)(ctx))
}
