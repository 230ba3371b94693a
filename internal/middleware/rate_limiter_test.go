package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func resetLimiterState(rps, burst int) {
	mu.Lock()
	visitors = make(map[string]*visitor)
	requestsPerSecond = rps
	burstSize = burst
	mu.Unlock()
}

func fireRequest(e *echo.Echo, handler echo.HandlerFunc, remoteAddr string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	return rec, handler(e.NewContext(req, rec))
}

func TestRateLimiterAllowsBurstThenThrottles(t *testing.T) {
	resetLimiterState(2, 4)

	e := echo.New()
	handler := RateLimiterWithConfig(2, 4)(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	for i := 0; i < 4; i++ {
		rec, err := fireRequest(e, handler, "10.0.0.7:40001")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i)
	}

	// The throttled response goes through SendError, so the handler error is
	// nil and the outcome shows up in the status code and error envelope.
	rec, err := fireRequest(e, handler, "10.0.0.7:40001")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "SYSTEM_005")
}

func TestRateLimiterThrottlesSustainedTraffic(t *testing.T) {
	resetLimiterState(5, 10)

	e := echo.New()
	handler := RateLimiter()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	throttled := false
	for i := 0; i < 25; i++ {
		rec, err := fireRequest(e, handler, "10.0.0.8:40002")
		assert.NoError(t, err)
		if rec.Code == http.StatusTooManyRequests {
			throttled = true
			break
		}
	}
	assert.True(t, throttled, "sustained traffic past the burst must be throttled")
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	resetLimiterState(5, 10)

	e := echo.New()
	handler := RateLimiter()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// One guest hammering the summary endpoint must not throttle other
	// clients behind different addresses.
	for client := 0; client < 3; client++ {
		addr := fmt.Sprintf("10.0.1.%d:40003", client+1)
		for i := 0; i < 5; i++ {
			rec, err := fireRequest(e, handler, addr)
			assert.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code, "client %s request %d", addr, i)
		}
	}
}

func TestClientIPResolution(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded header from the edge proxy",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.10"},
			remoteAddr: "127.0.0.1:55000",
			want:       "203.0.113.10",
		},
		{
			name:       "real-ip header",
			headers:    map[string]string{"X-Real-IP": "203.0.113.11"},
			remoteAddr: "127.0.0.1:55000",
			want:       "203.0.113.11",
		},
		{
			name: "forwarded-for wins over real-ip",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.10",
				"X-Real-IP":       "203.0.113.11",
			},
			remoteAddr: "127.0.0.1:55000",
			want:       "203.0.113.10",
		},
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.12:55000",
			want:       "203.0.113.12",
		},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			req.RemoteAddr = tt.remoteAddr

			c := e.NewContext(req, httptest.NewRecorder())
			assert.Equal(t, tt.want, getIP(c))
		})
	}
}

func TestStaleVisitorsExpire(t *testing.T) {
	mu.Lock()
	visitors = map[string]*visitor{
		"stale": {lastSeen: time.Now().Add(-10 * time.Minute)},
		"live":  {lastSeen: time.Now()},
	}
	for ip, v := range visitors {
		if time.Since(v.lastSeen) > 3*time.Minute {
			delete(visitors, ip)
		}
	}
	_, staleKept := visitors["stale"]
	_, liveKept := visitors["live"]
	mu.Unlock()

	assert.False(t, staleKept, "visitor idle past the window is dropped")
	assert.True(t, liveKept, "recently seen visitor is retained")
}

func TestRateLimiterUnderConcurrentLoad(t *testing.T) {
	resetLimiterState(5, 10)

	e := echo.New()
	handler := RateLimiter()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	var wg sync.WaitGroup
	var tally sync.Mutex
	allowed, throttled := 0, 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rec, err := fireRequest(e, handler, "10.0.0.9:40004")
			tally.Lock()
			defer tally.Unlock()
			if err != nil {
				return
			}
			switch rec.Code {
			case http.StatusOK:
				allowed++
			case http.StatusTooManyRequests:
				throttled++
			}
		}()
	}
	wg.Wait()

	assert.Greater(t, allowed, 0)
	assert.Greater(t, throttled, 0)
	assert.Equal(t, 20, allowed+throttled)
}
