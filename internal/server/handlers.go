package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
)

type itemsPage struct {
	Offset     int                   `json:"offset"`
	TotalCount int                   `json:"totalCount"`
	Items      []models.PlaylistItem `json:"items"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// PlayerHandler serves the playlist and playback endpoints of a [Player].
// Implements the [Handler] interface for registration with a [Router].
type PlayerHandler struct {
	player *Player
	logger *log.Logger
}

// NewPlayerHandler creates a handler for player.
func NewPlayerHandler(player *Player, logger *log.Logger) *PlayerHandler {
	return &PlayerHandler{player: player, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlayerHandler) Routes() []string {
	return []string{"/api/playlists", "/api/playlists/", "/api/player/"}
}

// ServeHTTP dispatches on the unescaped path segments below /api.
func (h *PlayerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	segs, err := pathSegments(r.URL.EscapedPath())
	if err != nil || len(segs) < 2 || segs[0] != "api" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	get, post := r.Method == http.MethodGet, r.Method == http.MethodPost
	switch s := segs[1:]; {
	case len(s) == 1 && s[0] == "playlists" && get:
		writeJSON(w, http.StatusOK, map[string]any{"playlists": h.player.Playlists()})
	case len(s) == 2 && s[0] == "playlists" && s[1] == "add" && post:
		h.addPlaylist(w, r)
	case len(s) == 3 && s[0] == "playlists" && s[1] == "remove" && post:
		writeResult(w, h.logger, h.player.RemovePlaylist(s[2]))
	case len(s) == 4 && s[0] == "playlists" && s[2] == "items" && get:
		h.items(w, r, s[1], s[3])
	case len(s) == 4 && s[0] == "playlists" && s[2] == "items" && s[3] == "add" && post:
		h.addItems(w, r, s[1])
	case len(s) == 3 && s[0] == "playlists" && s[2] == "clear" && post:
		writeResult(w, h.logger, h.player.ClearPlaylist(s[1]))
	case len(s) == 2 && s[0] == "playlists" && post:
		h.renamePlaylist(w, r, s[1])
	case len(s) == 4 && s[0] == "player" && s[1] == "play" && post:
		index, err := strconv.Atoi(s[3])
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid item index %q", s[3]))
			return
		}
		writeResult(w, h.logger, h.player.Play(s[2], index))
	case get || post:
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *PlayerHandler) addPlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := h.player.AddPlaylist(body.Title)
	h.logger.Debug("playlist added", "id", id, "title", body.Title)
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *PlayerHandler) renamePlaylist(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Title *string `json:"title"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Title == nil {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	writeResult(w, h.logger, h.player.RenamePlaylist(id, *body.Title))
}

func (h *PlayerHandler) addItems(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Items []string `json:"items"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tracks := make([]Track, len(body.Items))
	for i, item := range body.Items {
		tracks[i] = TrackFromPath(item)
	}
	writeResult(w, h.logger, h.player.AddTracks(id, tracks...))
}

func (h *PlayerHandler) items(w http.ResponseWriter, r *http.Request, id, rng string) {
	offset, total, items, err := h.player.Items(id, rng, splitColumns(r.URL.Query().Get("columns")))
	if err != nil {
		writeResult(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playlistItems": itemsPage{Offset: offset, TotalCount: total, Items: items},
	})
}

// writeResult maps err to a status: 204 on success, 404 for unknown playlists, 400 for invalid arguments.
func writeResult(w http.ResponseWriter, logger *log.Logger, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, shared.ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// UpdatesHandler streams player state as server-sent events on /api/query/updates.
//
// The first event carries the full state of every requested topic. After each change the state is rebuilt and
// sent again unless it is identical to the previous event.
type UpdatesHandler struct {
	player *Player
	logger *log.Logger
}

// NewUpdatesHandler creates an update stream handler for player.
func NewUpdatesHandler(player *Player, logger *log.Logger) *UpdatesHandler {
	return &UpdatesHandler{player: player, logger: logger}
}

type updatesQuery struct {
	playlists bool
	items     bool
	ref       string
	rng       string
	columns   []string
}

func parseUpdatesQuery(q url.Values) updatesQuery {
	uq := updatesQuery{
		playlists: q.Get("playlists") == "true",
		items:     q.Get("playlistItems") == "true",
		ref:       q.Get("plref"),
		rng:       q.Get("plrange"),
		columns:   splitColumns(q.Get("plcolumns")),
	}
	if uq.rng == "" {
		uq.rng = models.ItemsRange
	}
	return uq
}

func (h *UpdatesHandler) event(q updatesQuery) ([]byte, error) {
	ev := map[string]any{}
	if q.playlists {
		ev["playlists"] = h.player.Playlists()
	}
	if q.items {
		offset, total, items, err := h.player.Items(q.ref, q.rng, q.columns)
		if err != nil {
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				return nil, err
			}
			items = []models.PlaylistItem{}
		}
		ev["playlistItems"] = itemsPage{Offset: offset, TotalCount: total, Items: items}
	}
	return json.Marshal(ev)
}

func (h *UpdatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := parseUpdatesQuery(r.URL.Query())
	if !q.playlists && !q.items {
		writeError(w, http.StatusBadRequest, "no topics requested")
		return
	}
	if q.items {
		if _, _, _, err := h.player.Items(q.ref, q.rng, q.columns); err != nil {
			writeResult(w, h.logger, err)
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.player.Broker().Subscribe()
	defer h.player.Broker().Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	logger := h.logger.With("playlists", q.playlists, "items", q.items, "plref", q.ref)
	logger.Debug("update stream opened")

	var last []byte
	for {
		data, err := h.event(q)
		if err != nil {
			logger.Error("failed to build update event", "error", err)
			return
		}
		if !bytes.Equal(data, last) {
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				logger.Debug("update stream write failed", "error", err)
				return
			}
			flusher.Flush()
			last = data
		}

		select {
		case <-r.Context().Done():
			logger.Debug("update stream closed")
			return
		case <-sub:
		}
	}
}

func pathSegments(escaped string) ([]string, error) {
	raw := strings.Split(strings.Trim(escaped, "/"), "/")
	segs := make([]string, len(raw))
	for i, s := range raw {
		u, err := url.PathUnescape(s)
		if err != nil {
			return nil, err
		}
		segs[i] = u
	}
	return segs, nil
}

func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	var body errorBody
	body.Error.Message = msg
	writeJSON(w, status, body)
}
