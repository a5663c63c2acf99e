// Package server wires the application together: config, logging,
// metrics, the docker runtime, the session manager, and the two
// listeners (request/response API and websocket bridge).
package server
