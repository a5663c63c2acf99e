// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// Long-lived components scope the shared logger with Named so bridge,
// discovery, and API lines are distinguishable in aggregate output.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Bridge listener starting", zap.String("addr", addr))
package logging
