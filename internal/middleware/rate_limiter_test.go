package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRateLimiter_BlocksSecondBurstRequest(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(rate.Limit(1), 1))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req1, _ := http.NewRequest("GET", "/test", nil)
	req1.RemoteAddr = "10.0.0.1:5000"
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, req1)
	if w1.Code != http.StatusOK {
		t.Errorf("first request status = %d, want 200", w1.Code)
	}

	req2, _ := http.NewRequest("GET", "/test", nil)
	req2.RemoteAddr = "10.0.0.1:5000"
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)
	if w2.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", w2.Code)
	}
}

func TestRateLimiter_TracksIPsIndependently(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(rate.Limit(1), 1))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	for _, addr := range []string{"10.0.0.1:5000", "10.0.0.2:5000"} {
		req, _ := http.NewRequest("GET", "/test", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("request from %s status = %d, want 200", addr, w.Code)
		}
	}
}

func TestRecoveryWithLog_ConvertsPanicTo500(t *testing.T) {
	router := setupTestGin()
	router.Use(RecoveryWithLog())
	router.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
