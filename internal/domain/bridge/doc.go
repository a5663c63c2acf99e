// Package bridge relays bytes between a websocket connection and a
// session's VNC TCP port.
//
// Each relay owns exactly two connections and two goroutines, one per
// direction. Either direction ending (normally or via error) closes the
// opposite side's connection, which unblocks the other goroutine; the
// relay returns once both have finished. Errors are contained to the
// relay that saw them: they never touch the registry, the listener, or
// other relays.
//
// The VNC protocol itself is opaque payload here; no framing is imposed
// beyond websocket binary messages on the browser side.
package bridge
