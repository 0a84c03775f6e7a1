package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API endpoint metrics
	APIEndpointRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailgateway_api_requests_total",
		Help: "Total number of API requests by endpoint",
	}, []string{"endpoint"})
	APIEndpointErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailgateway_api_errors_total",
		Help: "Total number of API responses with status >= 400 by endpoint and status code",
	}, []string{"endpoint", "status_code"})
	APIEndpointDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mailgateway_api_request_duration_seconds",
		Help:    "API request latency by endpoint",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	APIRecoveredPanics = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailgateway_api_recovered_panics_total",
		Help: "Total number of handler panics recovered into a fallback response",
	}, []string{"endpoint"})

	// gt command metrics
	GTCommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailgateway_gt_command_runs_total",
		Help: "Total number of gt invocations by subcommand",
	}, []string{"subcommand"})
	GTCommandFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailgateway_gt_command_failures_total",
		Help: "Total number of failed gt invocations by subcommand and reason (timeout, exit, spawn, decode)",
	}, []string{"subcommand", "reason"})
	GTCommandDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mailgateway_gt_command_duration_seconds",
		Help:    "Wall time of gt invocations by subcommand",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"subcommand"})

	// Mail metrics
	MailFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailgateway_mail_fetched_total",
		Help: "Total number of messages returned from inbox fetches",
	})
	MailSendSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailgateway_mail_send_success_total",
		Help: "Total number of successful mail sends",
	})
	MailSendFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailgateway_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	})

	// Rate limiting
	RateLimitRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailgateway_ratelimit_rejected_total",
		Help: "Total number of requests rejected by the rate limiter",
	})

	// Config reloads
	ConfigReloads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailgateway_config_reloads_total",
		Help: "Total number of applied config file reloads",
	})
)

func init() {
	prometheus.MustRegister(APIEndpointRequests)
	prometheus.MustRegister(APIEndpointErrors)
	prometheus.MustRegister(APIEndpointDuration)
	prometheus.MustRegister(APIRecoveredPanics)
	prometheus.MustRegister(GTCommandRuns)
	prometheus.MustRegister(GTCommandFailures)
	prometheus.MustRegister(GTCommandDuration)
	prometheus.MustRegister(MailFetched)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(RateLimitRejected)
	prometheus.MustRegister(ConfigReloads)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
