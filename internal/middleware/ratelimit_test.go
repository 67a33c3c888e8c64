package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRateLimitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func doLogin(router *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_AllowsNormalRequests(t *testing.T) {
	router := newRateLimitedRouter(NewRateLimiter(10, 10))

	if code := doLogin(router, "192.168.1.1:12345"); code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
}

func TestRateLimit_BlocksExcessiveRequests(t *testing.T) {
	router := newRateLimitedRouter(NewRateLimiter(1, 2))

	var lastCode int
	for i := 0; i < 5; i++ {
		lastCode = doLogin(router, "10.0.0.1:12345")
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected status %d after burst exceeded, got %d", http.StatusTooManyRequests, lastCode)
	}
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	router := newRateLimitedRouter(NewRateLimiter(1, 1))

	if code := doLogin(router, "10.0.0.1:12345"); code != http.StatusOK {
		t.Errorf("first IP: expected %d, got %d", http.StatusOK, code)
	}
	if code := doLogin(router, "10.0.0.2:12345"); code != http.StatusOK {
		t.Errorf("second IP: expected %d, got %d", http.StatusOK, code)
	}
}
