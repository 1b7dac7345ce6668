package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareIncrementsCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()

	r := gin.New()
	r.Use(Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	count := testutil.ToFloat64(httpRequests.WithLabelValues("/test", http.MethodGet, "200"))
	if count < 1 {
		t.Fatalf("expected request counter to be incremented, got %v", count)
	}
}

func TestDomainCounters(t *testing.T) {
	InitMetrics()

	before := testutil.ToFloat64(uploads.WithLabelValues("audio"))
	RecordUpload("audio", 10)
	if got := testutil.ToFloat64(uploads.WithLabelValues("audio")); got != before+1 {
		t.Fatalf("expected upload counter %v, got %v", before+1, got)
	}

	failures := testutil.ToFloat64(decryptFailures)
	RecordDecryptFailure()
	if got := testutil.ToFloat64(decryptFailures); got != failures+1 {
		t.Fatalf("expected decrypt failure counter %v, got %v", failures+1, got)
	}
}

func TestRegisterExposesMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()

	r := gin.New()
	Register(r, "/metrics")

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "filecrypt_uploaded_bytes_total") {
		t.Fatalf("expected filecrypt collectors in /metrics output")
	}
}
