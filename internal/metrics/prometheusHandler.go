package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var rateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rate_limit_rejections_total",
	Help: "Requests rejected by the fixed-window rate limiter",
})

var janitorDeletions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "janitor_deleted_chunks_total",
	Help: "Expired chunks removed by the janitor",
})

var repairedReplies = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "coach_reply_normalizations_total",
	Help: "Structured reply normalization outcomes",
}, []string{"outcome"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementRateLimitRejections() {
	rateLimitRejections.Inc()
}

func AddJanitorDeletions(n int) {
	janitorDeletions.Add(float64(n))
}

func CountReplyOutcome(outcome string) {
	repairedReplies.WithLabelValues(outcome).Inc()
}

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
