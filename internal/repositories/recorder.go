package repositories

import (
	"encoding/json"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/playlist"
)

// Recorder journals the model's state after every change notification.
//
// Playlists changes store the playlists snapshot; item changes store the items together with the selection and the
// column expressions they were requested with. Write failures are logged and counted, never raised.
type Recorder struct {
	repo     models.Repository[*models.SnapshotRecord]
	model    *playlist.Model
	logger   *log.Logger
	ids      []playlist.ObserverID
	recorded atomic.Int64
	failed   atomic.Int64
}

// NewRecorder creates a recorder writing to repo.
func NewRecorder(repo models.Repository[*models.SnapshotRecord], logger *log.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Attach registers the recorder as an observer of m.
func (r *Recorder) Attach(m *playlist.Model) {
	r.model = m
	r.ids = append(r.ids,
		m.Observe(playlist.PlaylistsChange, r.recordPlaylists),
		m.Observe(playlist.ItemsChange, r.recordItems),
	)
}

// Detach removes the recorder's registrations.
func (r *Recorder) Detach() {
	if r.model == nil {
		return
	}
	for _, id := range r.ids {
		r.model.Unobserve(id)
	}
	r.ids = nil
}

// Recorded returns the number of records written.
func (r *Recorder) Recorded() int64 { return r.recorded.Load() }

// Failed returns the number of records that could not be written.
func (r *Recorder) Failed() int64 { return r.failed.Load() }

func (r *Recorder) recordPlaylists() {
	playlists := r.model.Playlists()
	r.write(models.TopicPlaylists, r.model.CurrentPlaylistID(), nil, len(playlists), playlists)
}

func (r *Recorder) recordItems() {
	items := r.model.PlaylistItems()
	r.write(models.TopicPlaylistItems, r.model.CurrentPlaylistID(), r.model.Columns().Expressions(), len(items), items)
}

func (r *Recorder) write(topic models.Topic, ref string, columns []string, count int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to encode snapshot", "topic", topic, "error", err)
		return
	}

	record := models.NewSnapshotRecord(topic, ref, columns, count, payload)
	if err := r.repo.Create(record); err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to record snapshot", "topic", topic, "error", err)
		return
	}

	r.recorded.Add(1)
	r.logger.Debug("recorded snapshot", "topic", topic, "sequence", record.Sequence, "items", count)
}
