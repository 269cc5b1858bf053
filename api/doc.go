// Package api provides a small local HTTP server that exposes the state of
// a running client session for debugging and observability. It never
// mutates the session; everything it serves is a read-only view of the
// last server pushes and the recorded frame traffic.
//
// Endpoints:
//
//   - GET /api/session - connection status, profile, current room
//   - GET /api/rooms   - lobby room list as last pushed
//   - GET /api/users   - current room membership as last pushed
//   - GET /api/game    - raw snapshot of the active game module
//   - GET /api/chat    - the active module's chat log
//   - GET /api/traffic - recorded inbound/outbound frames
//
// All endpoints return JSON. Errors are returned as JSON with appropriate
// HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
