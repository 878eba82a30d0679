package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/plctl/internal/formatter"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
	"golang.org/x/time/rate"
)

// ManifestFile is the name of the manifest written into the output directory.
const ManifestFile = "export_manifest.json"

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format    // Export format (default: text)
	Preset     models.ColumnPreset // Columns requested for every playlist
	OutputDir  string              // Base output directory (default: playlist_export_{epoch})
	NumWorkers int                 // Concurrent writers (default: 5, max: 10)
	RateLimit  float64             // Player requests per second (default: 5)
}

func (o BulkExportOpts) withDefaults() BulkExportOpts {
	if o.Format == "" {
		o.Format = formatter.FormatText
	}
	if o.OutputDir == "" {
		o.OutputDir = fmt.Sprintf("playlist_export_%d", time.Now().Unix())
	}
	if o.NumWorkers <= 0 {
		o.NumWorkers = 5
	}
	if o.NumWorkers > 10 {
		o.NumWorkers = 10
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 5.0
	}
	return o
}

// BulkExport exports the playlists named by refs (ids or titles) concurrently.
// An empty refs exports every playlist.
//
// Items are fetched one playlist at a time under the rate limiter and handed to a pool of writers.
// A failed playlist is recorded in the result and does not stop the others.
// The manifest is written once every playlist has been handled.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	refs []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	opts = opts.withDefaults()

	e.sendProgress(prog, fetchingPlaylistsUpdate())
	all, err := e.service.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}
	playlists, err := selectPlaylists(all, refs)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(playlists)
	result := &BulkExportResult{
		TotalPlaylists:  total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan PlaylistExportJob, total)
	results := make(chan PlaylistExportResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, p := range playlists {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, fetchingItemsUpdate(i+1, total, p.Title))
			page, err := e.service.PlaylistItems(ctx, p.ID, itemRange(p), opts.Preset.Expressions())
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID:    p.ID,
					PlaylistTitle: p.Title,
					Error:         fmt.Errorf("failed to fetch items: %w", err),
				}
				continue
			}

			jobs <- PlaylistExportJob{
				Base: exportBase(p),
				Export: &formatter.Export{
					Playlist:   p,
					Preset:     opts.Preset,
					Items:      page.Items,
					ExportedAt: time.Now(),
				},
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, total, res))
		} else {
			result.FailedExports++
			e.logger.Warn("playlist export failed", "playlist", res.PlaylistID, "error", res.Error)
			e.sendProgress(prog, exportFailedUpdate(completed, total, res))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestFile)
	e.sendProgress(prog, writingManifestUpdate(manifestPath))
	if err := writeManifest(result, opts, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes the exports received on jobs until the channel closes.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSinglePlaylist(job, opts)
	}
}

func (e *ExportEngine) exportSinglePlaylist(j PlaylistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:    j.Export.Playlist.ID,
		PlaylistTitle: j.Export.Playlist.Title,
		ItemCount:     len(j.Export.Items),
	}

	path, err := formatter.WriteExport(j.Export, opts.Format, opts.OutputDir, j.Base)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	result.Files = []string{path}
	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, opts BulkExportOpts, path string) error {
	m := manifest{
		ExportedAt:       time.Now(),
		Format:           string(opts.Format),
		Columns:          opts.Preset.Expressions(),
		BulkExportResult: result,
	}
	for _, r := range result.Results {
		if r.Error != nil {
			if m.Errors == nil {
				m.Errors = make(map[string]string)
			}
			m.Errors[r.PlaylistID] = r.Error.Error()
		}
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
