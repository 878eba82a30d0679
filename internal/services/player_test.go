package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/plctl/internal/shared"
	tu "github.com/desertthunder/plctl/internal/testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// newRecordingServer answers every request with status and body, recording what it received.
func newRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var reqs []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&rec.Body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
		}
		reqs = append(reqs, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != "" {
			w.Write([]byte(body))
		}
	}))
	t.Cleanup(server.Close)
	return server, &reqs
}

func TestPlayerClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Commands", func(t *testing.T) {
		tests := []struct {
			name string
			call func(*PlayerClient) error
			path string
			body map[string]any
		}{
			{
				name: "AddPlaylistItems",
				call: func(p *PlayerClient) error { return p.AddPlaylistItems(ctx, "p1", []string{"/music/a.flac"}) },
				path: "/api/playlists/p1/items/add",
				body: map[string]any{"items": []any{"/music/a.flac"}},
			},
			{
				name: "Play",
				call: func(p *PlayerClient) error { return p.Play(ctx, "p1", 4) },
				path: "/api/player/play/p1/4",
			},
			{
				name: "AddPlaylist",
				call: func(p *PlayerClient) error { return p.AddPlaylist(ctx, "New Playlist (1)") },
				path: "/api/playlists/add",
				body: map[string]any{"title": "New Playlist (1)"},
			},
			{
				name: "RemovePlaylist",
				call: func(p *PlayerClient) error { return p.RemovePlaylist(ctx, "p1") },
				path: "/api/playlists/remove/p1",
			},
			{
				name: "RenamePlaylist",
				call: func(p *PlayerClient) error { return p.RenamePlaylist(ctx, "p1", "Mix") },
				path: "/api/playlists/p1",
				body: map[string]any{"title": "Mix"},
			},
			{
				name: "ClearPlaylist",
				call: func(p *PlayerClient) error { return p.ClearPlaylist(ctx, "p1") },
				path: "/api/playlists/p1/clear",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server, reqs := newRecordingServer(t, http.StatusNoContent, "")
				client := NewPlayerClient(Opts{BaseURL: server.URL})

				if err := tt.call(client); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(*reqs) != 1 {
					t.Fatalf("expected 1 request, got %d", len(*reqs))
				}

				got := (*reqs)[0]
				if got.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", got.Method)
				}
				if got.Path != tt.path {
					t.Errorf("expected path %s, got %s", tt.path, got.Path)
				}
				if tt.body != nil {
					gotJSON, _ := json.Marshal(got.Body)
					wantJSON, _ := json.Marshal(tt.body)
					if string(gotJSON) != string(wantJSON) {
						t.Errorf("expected body %s, got %s", wantJSON, gotJSON)
					}
				}
			})
		}
	})

	t.Run("Escapes playlist ids", func(t *testing.T) {
		server, reqs := newRecordingServer(t, http.StatusNoContent, "")
		client := NewPlayerClient(Opts{BaseURL: server.URL})

		if err := client.ClearPlaylist(ctx, "a/b c"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := (*reqs)[0].Path; got != "/api/playlists/a%2Fb%20c/clear" {
			t.Errorf("expected escaped path, got %s", got)
		}
	})

	t.Run("Missing playlist id", func(t *testing.T) {
		client := NewPlayerClient(Opts{BaseURL: "http://example.com"})

		for name, err := range map[string]error{
			"AddPlaylistItems": client.AddPlaylistItems(ctx, "", []string{"a"}),
			"Play":             client.Play(ctx, "", 0),
			"RemovePlaylist":   client.RemovePlaylist(ctx, ""),
			"RenamePlaylist":   client.RenamePlaylist(ctx, "", "x"),
			"ClearPlaylist":    client.ClearPlaylist(ctx, ""),
		} {
			if !errors.Is(err, shared.ErrNoPlaylist) {
				t.Errorf("%s: expected ErrNoPlaylist, got %v", name, err)
			}
		}
		if _, err := client.PlaylistItems(ctx, "", "", nil); !errors.Is(err, shared.ErrNoPlaylist) {
			t.Errorf("PlaylistItems: expected ErrNoPlaylist, got %v", err)
		}
	})

	t.Run("Invalid input", func(t *testing.T) {
		client := NewPlayerClient(Opts{BaseURL: "http://example.com"})

		if err := client.AddPlaylistItems(ctx, "p1", nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty items, got %v", err)
		}
		if err := client.Play(ctx, "p1", -1); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for negative index, got %v", err)
		}
	})

	t.Run("Error statuses", func(t *testing.T) {
		t.Run("Maps to ErrAPIRequest with the player message", func(t *testing.T) {
			server, _ := newRecordingServer(t, http.StatusBadRequest, `{"error":{"message":"invalid title"}}`)
			err := NewPlayerClient(Opts{BaseURL: server.URL}).AddPlaylist(ctx, "")

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "invalid title") {
				t.Errorf("expected player message in error, got %v", err)
			}
		})

		t.Run("404 maps to ErrPlaylistNotFound", func(t *testing.T) {
			server, _ := newRecordingServer(t, http.StatusNotFound, "")
			err := NewPlayerClient(Opts{BaseURL: server.URL}).ClearPlaylist(ctx, "gone")

			if !errors.Is(err, shared.ErrAPIRequest) || !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrAPIRequest and ErrPlaylistNotFound, got %v", err)
			}
		})

		t.Run("Transport failures map to ErrServiceUnavailable", func(t *testing.T) {
			client := NewPlayerClient(Opts{
				BaseURL:    "http://example.com",
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
			})

			if err := client.AddPlaylist(ctx, "x"); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("Client timeouts map to ErrTimeout", func(t *testing.T) {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			t.Cleanup(server.Close)
			t.Cleanup(func() { close(release) })

			client := NewPlayerClient(Opts{
				BaseURL:    server.URL,
				HTTPClient: &http.Client{Timeout: 20 * time.Millisecond},
			})

			_, err := client.Playlists(ctx)
			if !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
			if errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("timeout should not report ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("Expired contexts map to ErrTimeout", func(t *testing.T) {
			server, _ := newRecordingServer(t, http.StatusOK, "[]")
			dctx, cancel := context.WithTimeout(ctx, -time.Second)
			defer cancel()

			err := NewPlayerClient(Opts{BaseURL: server.URL}).RemovePlaylist(dctx, "p1")
			if !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
		})
	})

	t.Run("Playlists", func(t *testing.T) {
		server, reqs := newRecordingServer(t, http.StatusOK,
			`{"playlists":[{"id":"p1","index":0,"title":"Default","isCurrent":true,"itemCount":3,"totalTime":612.5}]}`)

		playlists, err := NewPlayerClient(Opts{BaseURL: server.URL}).Playlists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if (*reqs)[0].Method != http.MethodGet || (*reqs)[0].Path != "/api/playlists" {
			t.Errorf("unexpected request %+v", (*reqs)[0])
		}
		if len(playlists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(playlists))
		}
		p := playlists[0]
		if p.ID != "p1" || p.Title != "Default" || !p.IsCurrent || p.ItemCount != 3 || p.TotalTime != 612.5 {
			t.Errorf("unexpected playlist %+v", p)
		}
	})

	t.Run("PlaylistItems", func(t *testing.T) {
		server, reqs := newRecordingServer(t, http.StatusOK,
			`{"playlistItems":{"offset":0,"totalCount":2,"items":[{"columns":["A","B"]},{"columns":["C","D"]}]}}`)

		page, err := NewPlayerClient(Opts{BaseURL: server.URL}).PlaylistItems(ctx, "p1", "", []string{"%artist%", "%title%"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := (*reqs)[0]
		if got.Path != "/api/playlists/p1/items/0:1000" {
			t.Errorf("expected default range in path, got %s", got.Path)
		}
		if got.Query != "columns=%25artist%25%2C%25title%25" {
			t.Errorf("unexpected query %s", got.Query)
		}
		if page.TotalCount != 2 || len(page.Items) != 2 || !slices.Equal(page.Items[1].Columns, []string{"C", "D"}) {
			t.Errorf("unexpected page %+v", page)
		}
	})

	t.Run("Invalid JSON response", func(t *testing.T) {
		server, _ := newRecordingServer(t, http.StatusOK, `{invalid`)

		_, err := NewPlayerClient(Opts{BaseURL: server.URL}).Playlists(ctx)
		if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
			t.Errorf("expected decode error, got %v", err)
		}
	})

	t.Run("OptsFromConfig", func(t *testing.T) {
		cfg := shared.PlayerConfig{URL: "http://player:8880", Username: "u", Password: "p"}
		opts := OptsFromConfig(cfg, nil, nil)

		if opts.BaseURL != cfg.URL || opts.Username != "u" || opts.Password != "p" {
			t.Errorf("unexpected opts %+v", opts)
		}
		if NewPlayerClient(opts).BaseURL() != "http://player:8880" {
			t.Error("expected client to use configured url")
		}
	})
}
