package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "filecrypt_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filecrypt_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "filecrypt_uploads_total",
		Help: "Files ingested by category.",
	}, []string{"category"})

	uploadedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "filecrypt_uploaded_bytes_total",
		Help: "Plaintext bytes ingested.",
	})

	previews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "filecrypt_previews_total",
		Help: "Previews served by rendered type.",
	}, []string{"type"})

	decryptFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "filecrypt_decrypt_failures_total",
		Help: "Reads aborted because the ciphertext failed authentication.",
	})

	deletes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "filecrypt_deletes_total",
		Help: "Files removed from the store.",
	})

	registerOnce sync.Once
)

// InitMetrics registers the collectors with the default registry. Safe to call repeatedly.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, uploads, uploadedBytes, previews, decryptFailures, deletes)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// RecordUpload counts an ingested file.
func RecordUpload(category string, size int64) {
	uploads.WithLabelValues(category).Inc()
	uploadedBytes.Add(float64(size))
}

// RecordPreview counts a served preview.
func RecordPreview(kind string) {
	previews.WithLabelValues(kind).Inc()
}

// RecordDecryptFailure counts a read rejected by authentication.
func RecordDecryptFailure() {
	decryptFailures.Inc()
}

// RecordDelete counts a removed file.
func RecordDelete() {
	deletes.Inc()
}
