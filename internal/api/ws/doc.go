// Package ws exposes the websocket bridge listener.
//
// It serves exactly one route, GET /vnc/:id, on its own gin engine and
// listener so the data plane never shares a connection queue with the
// request/response API. Each upgraded connection runs one independent
// relay; net/http's per-connection goroutines keep acceptance unblocked
// by slow or stuck relays.
//
// Connections whose path does not match the /vnc/{sessionID} shape are
// rejected by the router before the registry is consulted.
package ws
