// Package repositories implements SQLite persistence for the snapshot journal.
//
// Key Implementations:
//   - [SnapshotRepository] : append-only journal of observed playlists and item snapshots with soft deletes
//   - [Recorder] : model observer that writes a journal entry after every change notification
//
// The journal is write-only from the model's point of view: nothing restores model state from it. It backs
// plctl watch --record and plctl history.
//
// Sequence numbers provide a stable arrival order independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
