package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	resetGlobalMetrics()

	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/ok", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	m := GetMetrics()
	if m.RequestCount != 1 {
		t.Errorf("RequestCount = %d, want 1", m.RequestCount)
	}
	if m.ActiveRequests != 0 {
		t.Errorf("ActiveRequests = %d, want 0 after completion", m.ActiveRequests)
	}
	if m.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", m.ErrorCount)
	}
	if m.StatusCodes["200"] != 1 {
		t.Errorf("StatusCodes[200] = %d, want 1", m.StatusCodes["200"])
	}
}

func TestMetricsMiddleware_CountsServerErrors(t *testing.T) {
	resetGlobalMetrics()

	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	req, _ := http.NewRequest("GET", "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	m := GetMetrics()
	if m.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", m.ErrorCount)
	}
}

func TestMetricsHandler_ServesJSON(t *testing.T) {
	resetGlobalMetrics()

	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/metrics", MetricsHandler())

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := body["request_count"]; !ok {
		t.Error("response missing request_count")
	}
	if _, ok := body["uptime_seconds"]; !ok {
		t.Error("response missing uptime_seconds")
	}
}
