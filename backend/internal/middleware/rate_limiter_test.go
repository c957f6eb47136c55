package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func newLimitedRouter(limiter gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limiter)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	r := newLimitedRouter(RateLimiter(rate.Limit(1), 5))

	for i := 0; i < 5; i++ {
		if code := hit(r, "10.0.0.1"); code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i, code)
		}
	}
}

func TestRateLimiterBlocksBeyondBurst(t *testing.T) {
	r := newLimitedRouter(RateLimiter(rate.Limit(1), 2))

	hit(r, "10.0.0.1")
	hit(r, "10.0.0.1")
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after burst, got %d", code)
	}
}

func TestRateLimiterIsPerClient(t *testing.T) {
	r := newLimitedRouter(RateLimiter(rate.Limit(1), 1))

	if code := hit(r, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", code)
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("first client: expected 429, got %d", code)
	}

	// A different address carries its own bucket.
	if code := hit(r, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("second client: expected 200, got %d", code)
	}
}

func TestSlidingWindowLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewSlidingWindowLimiter(client)

	r := newLimitedRouter(limiter.Limit("login", 3, time.Minute, IPKeyFunc))

	for i := 0; i < 3; i++ {
		if code := hit(r, "10.0.0.1"); code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i, code)
		}
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after window filled, got %d", code)
	}

	// Other addresses are counted separately.
	if code := hit(r, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("Expected 200 for fresh address, got %d", code)
	}
}

func TestSlidingWindowLimiterRecoversAfterWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewSlidingWindowLimiter(client)

	r := newLimitedRouter(limiter.Limit("login", 1, 50*time.Millisecond, IPKeyFunc))

	hit(r, "10.0.0.1")
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 inside window, got %d", code)
	}

	time.Sleep(60 * time.Millisecond)

	if code := hit(r, "10.0.0.1"); code != http.StatusOK {
		t.Errorf("Expected 200 after window passed, got %d", code)
	}
}

func TestSlidingWindowLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewSlidingWindowLimiter(client)

	r := newLimitedRouter(limiter.Limit("login", 1, time.Minute, IPKeyFunc))

	// With Redis down the endpoint stays reachable.
	mr.Close()

	if code := hit(r, "10.0.0.1"); code != http.StatusOK {
		t.Errorf("Expected 200 with Redis down, got %d", code)
	}
}

func TestUserKeyFuncFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	c.Request.RemoteAddr = "10.0.0.9:12345"

	if key := UserKeyFunc(c); key != "10.0.0.9" {
		t.Errorf("Expected IP fallback, got %q", key)
	}

	c.Set("user_id", "abc-123")
	if key := UserKeyFunc(c); key != "user:abc-123" {
		t.Errorf("Expected user key, got %q", key)
	}
}
