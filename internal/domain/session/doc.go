// Package session tracks desktop containers and the VNC port each exposes.
//
// Components:
//   - Registry: authoritative in-memory map from container ID to VNC port
//   - Discoverer: rebuilds that map from the container runtime's live state
//   - Manager: launch, stop, and cleanup flows around the registry
//
// The registry is the single source of truth for which sessions are
// routable. Ports become stale the moment a container is stopped out of
// band, so nothing outside this package keeps a long-lived copy; the
// bridge resolves a port per connection and the listing endpoint replaces
// the whole map with freshly discovered truth.
//
// The container runtime and the launcher are consumed through interfaces
// defined here, so tests run against fakes and the docker CLI details
// never leak into the registry or the bridge.
//
// Example Usage:
//
//	registry := session.NewRegistry()
//	disc := session.NewDiscoverer(runtime, "chrome-gui", logger)
//	registry.ReplaceAll(disc.Discover(ctx))
package session
