// Package api implements the gateway's HTTP server (Gin-based): controller
// registration under /api, request ids, rate limiting, health/readiness
// probes, the Prometheus endpoint and build info.
package api
