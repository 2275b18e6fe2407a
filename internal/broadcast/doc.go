// Package broadcast fans serialized events out to WebSocket subscribers.
// Each subscriber has a dedicated writer goroutine and a bounded send buffer;
// frames that cannot be queued are dropped for that subscriber only.
package broadcast
