// Package main is the entry point for the agent-viewer daemon.
//
// The daemon fronts Docker containers that run a graphical desktop with a
// VNC server, and lets browsers view and control them.
//
// Architecture:
//
//	Browser (noVNC) → WebSocket bridge → container VNC port (TCP)
//	Browser (UI)    → REST API         → docker CLI / launch script
//
// The server provides:
//   - REST API for starting, stopping, and listing sessions
//   - WebSocket bridge at /vnc/{sessionId} on a dedicated listener
//   - Startup discovery of already-running containers
//   - Prometheus metrics at /metrics
//
// Configuration is taken from environment variables (12-factor); see
// internal/infrastructure/config for the full list.
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown
package main
