// Package models defines the domain entities shared by the plctl client, the playlist model and the snapshot journal.
//
// The package contains two categories of types:
//
// 1. Wire types: Lightweight structs pushed by or sent to the player server
//   - [Playlist] : Playlist metadata from a playlists snapshot
//   - [PlaylistItem] : Opaque item record, one value per active column expression
//   - [Snapshot] : A full replacement push for a [Topic]
//   - [ItemsRequest] : The subscription request for the playlistItems topic
//
// 2. Client-side state: Types owned by the playlist model
//   - [ColumnPreset] : Enumerated tag for the two fixed column presets
//   - [SnapshotRecord] : A journaled snapshot with sequence and timestamps
//
// The [Repository] interface defines the storage operations used by the snapshot journal.
package models
