// Package netutil provides local TCP port allocation for container launches.
//
// Ports are probed by binding a listening socket with address reuse enabled
// and closing it immediately; the actual bind is performed later by the
// launched container. The gap between probe and use is an accepted TOCTOU
// limitation; callers mitigate it by retrying the launch, not by holding
// the socket.
//
// Example Usage:
//
//	port, err := netutil.FreePort(5900, 0)
package netutil
