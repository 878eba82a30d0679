// package services implements HTTP clients for the player API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
)

const defaultBaseURL string = "http://127.0.0.1:8880"

// Service defines the read side of the player API used by one-shot commands and exports.
type Service interface {
	// Playlists retrieves every playlist in player order.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// PlaylistItems retrieves the items of playlistID within rng ("offset:count"),
	// one column value per expression.
	PlaylistItems(ctx context.Context, playlistID, rng string, columns []string) (*ItemsPage, error)
}

// Opts configures the player clients.
type Opts struct {
	BaseURL    string
	Username   string // optional basic auth
	Password   string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// OptsFromConfig builds [Opts] from the [player] section of the configuration.
func OptsFromConfig(cfg shared.PlayerConfig, client *http.Client, logger *log.Logger) Opts {
	return Opts{
		BaseURL:    cfg.URL,
		Username:   cfg.Username,
		Password:   cfg.Password,
		HTTPClient: client,
		Logger:     logger,
	}
}

func (o Opts) withDefaults() Opts {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	if o.Logger == nil {
		o.Logger = shared.NewDiscardLogger()
	}
	return o
}

// transportError classifies a failed round trip. Deadlines and client timeouts map to [shared.ErrTimeout],
// anything else to [shared.ErrServiceUnavailable].
func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", shared.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
}

// ItemsPage is a window of playlist items as returned by the player.
type ItemsPage struct {
	Offset     int                   `json:"offset"`
	TotalCount int                   `json:"totalCount"`
	Items      []models.PlaylistItem `json:"items"`
}

// errorResponse is the body the player sends with non-2xx statuses.
type errorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Parameter string `json:"parameter,omitempty"`
	} `json:"error"`
}

// newRequest builds a request against base, JSON encoding body when it is not nil.
func newRequest(ctx context.Context, o Opts, method, endpoint string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.BaseURL+endpoint, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if o.Username != "" {
		req.SetBasicAuth(o.Username, o.Password)
	}
	return req, nil
}

// checkStatus maps a non-2xx response to [shared.ErrAPIRequest], adding [shared.ErrPlaylistNotFound] for 404s.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := http.StatusText(resp.StatusCode)
	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w: %s", shared.ErrAPIRequest, shared.ErrPlaylistNotFound, msg)
	}
	return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
}

// playlistPath returns /api/playlists/{id} followed by the optional suffix segments.
func playlistPath(id string, suffix ...string) string {
	parts := append([]string{"/api/playlists", url.PathEscape(id)}, suffix...)
	return strings.Join(parts, "/")
}
