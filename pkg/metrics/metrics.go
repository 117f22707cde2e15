package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "api_http_requests_total", Help: "HTTP requests"},
		[]string{"method", "path", "status"},
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WorkflowTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "workflow_transitions_total", Help: "Accepted workflow transitions"},
		[]string{"from", "to"},
	)
	WorkflowValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "workflow_validation_failures_total", Help: "Refused transitions due to validation"},
		[]string{"state"},
	)
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_requests_total", Help: "Ad platform gateway calls"},
		[]string{"op", "outcome"},
	)
	GuidanceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "guidance_requests_total", Help: "Guidance service calls"},
		[]string{"outcome"},
	)
	MediaUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "media_uploads_total", Help: "Media upload attempts"},
		[]string{"platform", "outcome"},
	)
	PublishedEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "api_published_events_total", Help: "Publish events sent to queue"},
	)

	WorkerEventsConsumed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "worker_events_consumed_total", Help: "Events consumed"},
	)
	WorkerEventsApplied = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "worker_events_applied_total", Help: "Events applied to the store"},
	)
	WorkerEventsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "worker_events_failed_total", Help: "Events that failed processing"},
	)
	WorkerEventRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "worker_event_retries_total", Help: "Retries performed"},
	)
	WorkerProcessDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "worker_event_process_duration_seconds",
			Help:    "Time spent processing an event",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequestsTotal, APIRequestDuration,
		WorkflowTransitionsTotal, WorkflowValidationFailures,
		GatewayRequestsTotal, GuidanceRequestsTotal, MediaUploadsTotal, PublishedEventsTotal,
		WorkerEventsConsumed, WorkerEventsApplied, WorkerEventsFailed, WorkerEventRetries, WorkerProcessDuration,
	)
}

func Handler() http.Handler { return promhttp.Handler() }
