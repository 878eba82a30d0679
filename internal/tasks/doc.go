// Package tasks runs long-running playlist operations against the player with real-time progress reporting.
//
// # Bulk Export
//
// [ExportEngine.BulkExport] writes the items of many playlists to files:
//
//   - Fetches the playlists snapshot once and selects playlists by id or title
//   - Fetches each playlist's items under a rate limiter, requesting the chosen column preset
//   - Hands the pages to a bounded pool of writers that render through the formatter package
//   - Records per-playlist failures without stopping the export
//   - Writes a JSON manifest summarizing the results
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, so a nil or unread channel never stalls an export.
package tasks
