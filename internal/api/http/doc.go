// Package http provides the request/response API for session control.
//
// Endpoints:
//   - GET  /health                 liveness and component stats
//   - GET  /api/sessions           rediscover and list sessions
//   - POST /api/sessions           launch a new session
//   - POST /api/sessions/:id/stop  stop and untrack a session
//   - POST /api/sessions/cleanup   drop entries for stopped containers
//   - GET  /metrics                Prometheus exposition
//
// The listing endpoint deliberately replaces the registry with freshly
// discovered state instead of merging: containers stopped out of band
// make cached ports stale, and fresh truth wins over stale cache.
//
// Internal failures surface as a JSON diagnostic with status 500; raw
// launcher output is never returned as a success.
package http
