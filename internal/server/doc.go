// Package server provides a stub player: an in-memory [Player] served over the same HTTP API the client speaks.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first). [LoggingMiddleware] logs each request;
// [BasicAuthMiddleware] enforces the configured credentials.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally. Handle registers method patterns; Handler
// registers every route of a [Handler] for all methods and leaves method checks to it.
//
// # Endpoints
//
// [PlayerHandler] serves:
//   - GET  /api/playlists
//   - GET  /api/playlists/{id}/items/{offset:count}?columns=a,b
//   - POST /api/playlists/add {"title"}
//   - POST /api/playlists/remove/{id}
//   - POST /api/playlists/{id} {"title"}
//   - POST /api/playlists/{id}/clear
//   - POST /api/playlists/{id}/items/add {"items"}
//   - POST /api/player/play/{id}/{index}
//
// Errors use the player's body shape {"error":{"message":...}}.
//
// # Update Stream
//
// [UpdatesHandler] serves GET /api/query/updates as server-sent events. Player mutations publish on a [Broker];
// each open stream rebuilds its event from current state and sends it when it differs from the last one.
//
// # Usage
//
// plctl serve runs the stub player for local development; tests use it as a realistic endpoint for the client.
package server
