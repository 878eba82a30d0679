package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
)

// PlayerClient issues playlist commands and one-shot reads against the player's HTTP API.
//
// It implements [Service] and the model's command sink.
type PlayerClient struct {
	opts   Opts
	logger *log.Logger
}

// NewPlayerClient creates a client for the player at opts.BaseURL.
func NewPlayerClient(opts Opts) *PlayerClient {
	opts = opts.withDefaults()
	return &PlayerClient{opts: opts, logger: shared.WithLogger(opts.Logger, "component", "player")}
}

// BaseURL returns the player address requests are sent to.
func (p *PlayerClient) BaseURL() string {
	return p.opts.BaseURL
}

func (p *PlayerClient) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	req, err := newRequest(ctx, p.opts, method, endpoint, body)
	if err != nil {
		return err
	}

	resp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	p.logger.Debug("request", "method", method, "endpoint", endpoint, "status", resp.StatusCode)

	if err := checkStatus(resp); err != nil {
		return err
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Playlists retrieves every playlist.
//
// Calls GET /api/playlists.
func (p *PlayerClient) Playlists(ctx context.Context) ([]models.Playlist, error) {
	var body struct {
		Playlists []models.Playlist `json:"playlists"`
	}
	if err := p.doRequest(ctx, http.MethodGet, "/api/playlists", nil, &body); err != nil {
		return nil, err
	}
	return body.Playlists, nil
}

// PlaylistItems retrieves a window of items from a playlist.
//
// Calls GET /api/playlists/{id}/items/{range}?columns=...
func (p *PlayerClient) PlaylistItems(ctx context.Context, playlistID, rng string, columns []string) (*ItemsPage, error) {
	if playlistID == "" {
		return nil, shared.ErrNoPlaylist
	}
	if rng == "" {
		rng = models.ItemsRange
	}

	query := url.Values{}
	query.Set("columns", strings.Join(columns, ","))
	endpoint := playlistPath(playlistID, "items", rng) + "?" + query.Encode()

	var body struct {
		PlaylistItems ItemsPage `json:"playlistItems"`
	}
	if err := p.doRequest(ctx, http.MethodGet, endpoint, nil, &body); err != nil {
		return nil, err
	}
	return &body.PlaylistItems, nil
}

// AddPlaylistItems appends items (paths or URLs) to a playlist.
//
// Calls POST /api/playlists/{id}/items/add.
func (p *PlayerClient) AddPlaylistItems(ctx context.Context, playlistID string, items []string) error {
	if playlistID == "" {
		return shared.ErrNoPlaylist
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: no items to add", shared.ErrInvalidInput)
	}

	body := map[string][]string{"items": items}
	return p.doRequest(ctx, http.MethodPost, playlistPath(playlistID, "items", "add"), body, nil)
}

// Play starts playback of the item at index.
//
// Calls POST /api/player/play/{id}/{index}.
func (p *PlayerClient) Play(ctx context.Context, playlistID string, index int) error {
	if playlistID == "" {
		return shared.ErrNoPlaylist
	}
	if index < 0 {
		return fmt.Errorf("%w: negative item index %d", shared.ErrInvalidInput, index)
	}

	endpoint := "/api/player/play/" + url.PathEscape(playlistID) + "/" + strconv.Itoa(index)
	return p.doRequest(ctx, http.MethodPost, endpoint, nil, nil)
}

// AddPlaylist creates a playlist with title.
//
// Calls POST /api/playlists/add.
func (p *PlayerClient) AddPlaylist(ctx context.Context, title string) error {
	body := map[string]string{"title": title}
	return p.doRequest(ctx, http.MethodPost, "/api/playlists/add", body, nil)
}

// RemovePlaylist deletes a playlist.
//
// Calls POST /api/playlists/remove/{id}.
func (p *PlayerClient) RemovePlaylist(ctx context.Context, playlistID string) error {
	if playlistID == "" {
		return shared.ErrNoPlaylist
	}
	return p.doRequest(ctx, http.MethodPost, "/api/playlists/remove/"+url.PathEscape(playlistID), nil, nil)
}

// RenamePlaylist changes a playlist's title.
//
// Calls POST /api/playlists/{id}.
func (p *PlayerClient) RenamePlaylist(ctx context.Context, playlistID, title string) error {
	if playlistID == "" {
		return shared.ErrNoPlaylist
	}
	body := map[string]string{"title": title}
	return p.doRequest(ctx, http.MethodPost, playlistPath(playlistID), body, nil)
}

// ClearPlaylist removes every item from a playlist.
//
// Calls POST /api/playlists/{id}/clear.
func (p *PlayerClient) ClearPlaylist(ctx context.Context, playlistID string) error {
	if playlistID == "" {
		return shared.ErrNoPlaylist
	}
	return p.doRequest(ctx, http.MethodPost, playlistPath(playlistID, "clear"), nil, nil)
}
