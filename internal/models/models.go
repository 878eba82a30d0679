// package models defines the data model for the plctl player client
package models

import (
	"fmt"
	"time"
)

// ItemsRange is the fixed item window requested for the playlistItems topic.
const ItemsRange = "0:1000"

// Topic names a push topic on the player's update stream.
type Topic string

const (
	TopicPlaylists     Topic = "playlists"
	TopicPlaylistItems Topic = "playlistItems"
)

// Playlist represents a playlist from a playlists snapshot.
//
// Only ID, Title and IsCurrent are interpreted by the playlist model.
type Playlist struct {
	ID        string  `json:"id"`
	Index     int     `json:"index"`
	Title     string  `json:"title"`
	IsCurrent bool    `json:"isCurrent"`
	ItemCount int     `json:"itemCount"`
	TotalTime float64 `json:"totalTime"`
}

// PlaylistItem is an item record keyed by the active column expressions.
type PlaylistItem struct {
	Columns []string `json:"columns"`
}

// Field returns the value for column i, or an empty string when the record is shorter.
func (p PlaylistItem) Field(i int) string {
	if i < 0 || i >= len(p.Columns) {
		return ""
	}
	return p.Columns[i]
}

// Snapshot is a full replacement push for a single topic.
type Snapshot struct {
	Topic     Topic
	Playlists []Playlist
	Items     []PlaylistItem
}

// ItemsRequest is the subscription request issued for the playlistItems topic.
type ItemsRequest struct {
	FetchItems  bool     `json:"fetchItems"`
	PlaylistRef string   `json:"playlistRef"`
	Range       string   `json:"range"`
	Columns     []string `json:"columns"`
}

// SnapshotRecord is a journaled snapshot.
type SnapshotRecord struct {
	id          string
	Sequence    int
	Topic       Topic
	PlaylistRef string
	Columns     []string
	ItemCount   int
	Payload     []byte
	ReceivedAt  time.Time
	createdAt   time.Time
}

// NewSnapshotRecord builds an unsaved record for topic with the given JSON payload.
func NewSnapshotRecord(topic Topic, playlistRef string, columns []string, count int, payload []byte) *SnapshotRecord {
	now := time.Now().UTC()
	return &SnapshotRecord{
		Topic:       topic,
		PlaylistRef: playlistRef,
		Columns:     columns,
		ItemCount:   count,
		Payload:     payload,
		ReceivedAt:  now,
		createdAt:   now,
	}
}

func (r *SnapshotRecord) ID() string           { return r.id }
func (r *SnapshotRecord) SetID(id string)      { r.id = id }
func (r *SnapshotRecord) CreatedAt() time.Time { return r.createdAt }
func (r *SnapshotRecord) UpdatedAt() time.Time { return r.createdAt }

func (r *SnapshotRecord) SetCreatedAt(t time.Time) { r.createdAt = t }

// Validate checks that the record names a known topic and carries a payload.
func (r *SnapshotRecord) Validate() error {
	switch r.Topic {
	case TopicPlaylists, TopicPlaylistItems:
	default:
		return fmt.Errorf("unknown topic %q", r.Topic)
	}
	if len(r.Payload) == 0 {
		return fmt.Errorf("empty payload")
	}
	return nil
}

// Model defines the base interface for journaled entities.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Journal entries are append-only, so there is no Update.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}
