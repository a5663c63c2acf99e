// Package monitoring provides Prometheus metrics for the API and the bridge.
//
// Metrics are registered on a private registry so test instances never
// collide; the API server exposes them at /metrics via Handler.
package monitoring
