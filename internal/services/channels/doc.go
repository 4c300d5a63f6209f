// Package channelsvc implements channel and post operations on top of the
// runtime's channel registry and post logs, and publishes accepted posts to
// live subscribers.
//
// Transports (HTTP, WebSocket, gRPC) are thin adapters over Service. The
// request path reports every failure to its caller; the live path
// (HandleLiveMessage) logs and drops them.
package channelsvc
