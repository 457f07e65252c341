package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// Each instance owns its registry so tests can build several.
type Metrics struct {
	Registry *prometheus.Registry

	Registrations      prometheus.Counter
	VerificationEmails *prometheus.CounterVec
	Verifications      *prometheus.CounterVec
	EligibilityChanges *prometheus.CounterVec
	SerialsIssued      *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "autodocs_registrations_total",
			Help: "Total number of accounts registered",
		}),
		VerificationEmails: f.NewCounterVec(prometheus.CounterOpts{
			Name: "autodocs_verification_emails_total",
			Help: "Verification emails dispatched, by method and result",
		}, []string{"method", "result"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "autodocs_verifications_total",
			Help: "Verification redemption attempts, by method and outcome",
		}, []string{"method", "outcome"}),
		EligibilityChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "autodocs_eligibility_changes_total",
			Help: "Admin eligibility decisions, by decision",
		}, []string{"decision"}),
		SerialsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "autodocs_serials_issued_total",
			Help: "Serial numbers generated, by document type",
		}, []string{"doc_type"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "autodocs_http_requests_total",
			Help: "HTTP requests, by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autodocs_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Middleware — счётчики по шаблону маршрута (c.FullPath), не по сырому URL.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
