package playlist

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
)

// DataSource is the push subscription service the model reads snapshots from.
type DataSource interface {
	// On registers handler for every snapshot pushed on topic.
	On(topic models.Topic, handler func(models.Snapshot))

	// Watch (re)issues the subscription for topic, replacing any previous one.
	// req is nil for the playlists topic. Watch must not call back into the model synchronously.
	Watch(topic models.Topic, req *models.ItemsRequest) error
}

// Client is the command sink for playlist mutation RPCs.
type Client interface {
	AddPlaylistItems(ctx context.Context, playlistID string, items []string) error
	Play(ctx context.Context, playlistID string, index int) error
	AddPlaylist(ctx context.Context, title string) error
	RemovePlaylist(ctx context.Context, playlistID string) error
	RenamePlaylist(ctx context.Context, playlistID, title string) error
	ClearPlaylist(ctx context.Context, playlistID string) error
}

// ModelOpts contains the collaborators for a [Model].
type ModelOpts struct {
	Client Client
	Source DataSource
	Logger *log.Logger
}

// Model owns the playlist selection state and drives item re-subscription.
//
// Safe for concurrent use; snapshot handlers and intents are serialized on an internal mutex.
type Model struct {
	client    Client
	source    DataSource
	logger    *log.Logger
	observers *registry

	mu     sync.Mutex
	state  State
	closed bool
}

// NewModel creates an empty model using the standard column preset.
func NewModel(opts ModelOpts) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}

	return &Model{
		client:    opts.Client,
		source:    opts.Source,
		logger:    shared.WithLogger(opts.Logger, "component", "playlist"),
		observers: newRegistry(),
		state:     State{Columns: models.Standard},
	}
}

// Start registers the snapshot handlers and watches the playlists topic.
func (m *Model) Start() error {
	m.source.On(models.TopicPlaylists, func(s models.Snapshot) { m.SetPlaylists(s.Playlists) })
	m.source.On(models.TopicPlaylistItems, func(s models.Snapshot) { m.SetPlaylistItems(s.Items) })

	if err := m.source.Watch(models.TopicPlaylists, nil); err != nil {
		return fmt.Errorf("failed to watch %s: %w", models.TopicPlaylists, err)
	}
	return nil
}

// Close drops every observer registration. Snapshots arriving afterwards are ignored.
func (m *Model) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.observers.close()
}

// Observe registers fn for sig and returns its registration id.
// It returns 0 and registers nothing once the model is closed.
func (m *Model) Observe(sig Signal, fn func()) ObserverID {
	return m.observers.add(sig, fn)
}

// Unobserve removes a registration, reporting whether it existed.
func (m *Model) Unobserve(id ObserverID) bool {
	return m.observers.remove(id)
}

// SetPlaylists ingests a playlists snapshot.
func (m *Model) SetPlaylists(playlists []models.Playlist) {
	m.apply("playlists snapshot", func(s State) Transition { return ApplyPlaylists(s, playlists) })
}

// SetPlaylistItems ingests an items snapshot.
func (m *Model) SetPlaylistItems(items []models.PlaylistItem) {
	m.apply("items snapshot", func(s State) Transition { return ApplyItems(s, items) })
}

// SetCurrentPlaylistID selects a playlist. Selecting the current playlist does nothing.
func (m *Model) SetCurrentPlaylistID(id string) {
	m.apply("select playlist", func(s State) Transition { return SelectPlaylist(s, id) })
}

// SetCompactMode switches between the compact and standard column presets.
func (m *Model) SetCompactMode(enabled bool) {
	m.apply("set compact mode", func(s State) Transition { return SelectColumns(s, enabled) })
}

// apply runs fn against the current state. The item watch is issued under the lock so requests reach the data
// source in state order; observers are notified after the lock is released.
func (m *Model) apply(op string, fn func(State) Transition) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	t := fn(m.state)
	m.state = t.State

	if t.Resubscribe {
		if req, ok := ItemsRequestFor(t.State); ok {
			m.watchItems(req)
		}
	}
	m.mu.Unlock()

	for _, finding := range t.Ambiguous {
		m.logger.Warn("undefined playlists snapshot", "finding", finding)
	}

	if !t.Changed() {
		m.logger.Debug("no-op", "op", op)
		return
	}
	m.logger.Debug("applied", "op", op, "current", t.State.CurrentID, "columns", t.State.Columns)

	if t.NotifyPlaylists {
		m.observers.notify(PlaylistsChange)
	}
	if t.NotifyItems {
		m.observers.notify(ItemsChange)
	}
}

func (m *Model) watchItems(req models.ItemsRequest) {
	if err := m.source.Watch(models.TopicPlaylistItems, &req); err != nil {
		m.logger.Warn("failed to watch playlist items", "playlist", req.PlaylistRef, "error", err)
	}
}

// State returns a copy of the current state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Playlists returns a copy of the last playlists snapshot.
func (m *Model) Playlists() []models.Playlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.Playlists)
}

// PlaylistItems returns a copy of the last items snapshot.
func (m *Model) PlaylistItems() []models.PlaylistItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.Items)
}

// CurrentPlaylistID returns the selected playlist id, empty when nothing is selected.
func (m *Model) CurrentPlaylistID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CurrentID
}

// CurrentPlaylist returns the selected playlist, or nil when it is absent from the last snapshot.
func (m *Model) CurrentPlaylist() *models.Playlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CurrentPlaylist()
}

// Columns returns the active column preset.
func (m *Model) Columns() models.ColumnPreset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Columns
}

// IsCompact reports whether the compact preset is active.
func (m *Model) IsCompact() bool {
	return m.Columns() == models.Compact
}

// NewPlaylistTitle returns a title not used by any known playlist.
func (m *Model) NewPlaylistTitle() string {
	return NewPlaylistTitle(m.Playlists())
}
