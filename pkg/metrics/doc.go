// Package metrics defines Prometheus metrics for the mail gateway, covering
// API endpoints, gt command invocations, mail traffic, rate limiting and
// config reloads.
package metrics
