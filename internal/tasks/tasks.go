package tasks

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/formatter"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/services"
	"github.com/desertthunder/plctl/internal/shared"
)

// PlaylistExportJob is a playlist whose items have been fetched and are waiting to be written.
type PlaylistExportJob struct {
	Export *formatter.Export
	Base   string // file name without extension
}

// PlaylistExportResult is the outcome of exporting a single playlist.
type PlaylistExportResult struct {
	PlaylistID    string   `json:"playlistId"`
	PlaylistTitle string   `json:"playlistTitle"`
	ItemCount     int      `json:"itemCount"`
	Success       bool     `json:"success"`
	Files         []string `json:"files,omitempty"`
	Error         error    `json:"-"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"totalPlaylists"`
	SuccessfulExports int                    `json:"successfulExports"`
	FailedExports     int                    `json:"failedExports"`
	OutputDirectory   string                 `json:"outputDirectory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

// manifest is the JSON document written next to the exported files.
type manifest struct {
	ExportedAt time.Time `json:"exportedAt"`
	Format     string    `json:"format"`
	Columns    []string  `json:"columns"`
	*BulkExportResult
	Errors map[string]string `json:"errors,omitempty"`
}

// ExportEngine runs exports against the player's read API.
type ExportEngine struct {
	service services.Service
	logger  *log.Logger
}

// NewExportEngine creates an engine reading from srv.
func NewExportEngine(srv services.Service, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &ExportEngine{service: srv, logger: shared.WithLogger(logger, "component", "export")}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// selectPlaylists returns the playlists matching refs by id or title, in player order. An empty refs selects all.
func selectPlaylists(all []models.Playlist, refs []string) ([]models.Playlist, error) {
	if len(refs) == 0 {
		return all, nil
	}

	selected := make([]models.Playlist, 0, len(refs))
	for _, ref := range refs {
		found := false
		for _, p := range all {
			if p.ID == ref || p.Title == ref {
				selected = append(selected, p)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, ref)
		}
	}
	return selected, nil
}

// exportBase returns a file name for p that stays unique across one export.
func exportBase(p models.Playlist) string {
	slug := formatter.Slug(p.Title)
	if slug == "" {
		slug = formatter.Slug(p.ID)
	}
	return fmt.Sprintf("%02d_%s", p.Index+1, slug)
}

// itemRange returns the "offset:count" range covering every item of p.
func itemRange(p models.Playlist) string {
	if p.ItemCount <= 0 {
		return models.ItemsRange
	}
	return fmt.Sprintf("0:%d", p.ItemCount)
}
