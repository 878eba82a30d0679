package playlist

import (
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/plctl/internal/models"
	tu "github.com/desertthunder/plctl/internal/testing"
)

func TestApplyPlaylists(t *testing.T) {
	t.Run("keeps a selection still present", func(t *testing.T) {
		s := State{CurrentID: "p2", Playlists: tu.Playlists("*p1", "p2")}
		tr := ApplyPlaylists(s, tu.Playlists("*p1", "p2", "p3"))

		if tr.State.CurrentID != "p2" {
			t.Errorf("expected selection p2, got %q", tr.State.CurrentID)
		}
		if tr.Resubscribe {
			t.Error("expected no re-subscription")
		}
		if !tr.NotifyPlaylists {
			t.Error("expected playlists notification")
		}
		if len(tr.State.Playlists) != 3 {
			t.Errorf("expected 3 playlists, got %d", len(tr.State.Playlists))
		}
	})

	t.Run("falls back to the current entry", func(t *testing.T) {
		s := State{CurrentID: "gone"}
		tr := ApplyPlaylists(s, tu.Playlists("p1", "*p2"))

		if tr.State.CurrentID != "p2" {
			t.Errorf("expected selection p2, got %q", tr.State.CurrentID)
		}
		if !tr.Resubscribe {
			t.Error("expected re-subscription")
		}
	})

	t.Run("clears the selection without a current entry", func(t *testing.T) {
		s := State{CurrentID: "gone"}
		tr := ApplyPlaylists(s, tu.Playlists("p1", "p2"))

		if tr.State.CurrentID != "" {
			t.Errorf("expected no selection, got %q", tr.State.CurrentID)
		}
		if tr.State.CurrentPlaylist() != nil {
			t.Error("expected no current playlist")
		}
		if !tr.Resubscribe {
			t.Error("expected re-subscription flag")
		}
		if _, ok := ItemsRequestFor(tr.State); ok {
			t.Error("expected no request without a selection")
		}
	})

	t.Run("adopts the current entry from an empty state", func(t *testing.T) {
		tr := ApplyPlaylists(State{}, tu.Playlists("p1", "*p2"))
		if tr.State.CurrentID != "p2" || !tr.Resubscribe {
			t.Errorf("expected p2 with re-subscription, got %q (%v)", tr.State.CurrentID, tr.Resubscribe)
		}
	})

	t.Run("does not mutate the input state", func(t *testing.T) {
		s := State{CurrentID: "gone", Playlists: tu.Playlists("gone")}
		_ = ApplyPlaylists(s, tu.Playlists("*p1"))

		if s.CurrentID != "gone" || len(s.Playlists) != 1 {
			t.Errorf("input state was modified: %+v", s)
		}
	})

	t.Run("reports duplicate ids and several current entries", func(t *testing.T) {
		snapshot := []models.Playlist{
			{ID: "p1", IsCurrent: true},
			{ID: "p1", IsCurrent: true},
			{ID: "p2"},
		}
		tr := ApplyPlaylists(State{}, snapshot)

		if len(tr.Ambiguous) != 2 {
			t.Fatalf("expected 2 findings, got %v", tr.Ambiguous)
		}
		if !strings.Contains(tr.Ambiguous[0], `"p1"`) {
			t.Errorf("expected duplicate id finding, got %q", tr.Ambiguous[0])
		}
		if tr.State.CurrentID != "p1" {
			t.Errorf("expected first current entry, got %q", tr.State.CurrentID)
		}
	})

	t.Run("well-formed snapshot has no findings", func(t *testing.T) {
		if tr := ApplyPlaylists(State{}, tu.Playlists("*p1", "p2")); len(tr.Ambiguous) != 0 {
			t.Errorf("expected no findings, got %v", tr.Ambiguous)
		}
	})
}

func TestSelectPlaylist(t *testing.T) {
	t.Run("same id is a no-op", func(t *testing.T) {
		s := State{CurrentID: "p1", Playlists: tu.Playlists("p1")}
		tr := SelectPlaylist(s, "p1")

		if tr.Changed() {
			t.Errorf("expected no-op, got %+v", tr)
		}
	})

	t.Run("new id notifies and re-subscribes", func(t *testing.T) {
		s := State{CurrentID: "p1", Playlists: tu.Playlists("p1", "p2")}
		tr := SelectPlaylist(s, "p2")

		if tr.State.CurrentID != "p2" || !tr.NotifyPlaylists || !tr.Resubscribe {
			t.Errorf("unexpected transition: %+v", tr)
		}
		if cp := tr.State.CurrentPlaylist(); cp == nil || cp.ID != "p2" {
			t.Errorf("expected current playlist p2, got %+v", cp)
		}
	})

	t.Run("unknown id leaves the current playlist absent", func(t *testing.T) {
		tr := SelectPlaylist(State{Playlists: tu.Playlists("p1")}, "p9")

		if tr.State.CurrentID != "p9" {
			t.Errorf("expected stale id p9, got %q", tr.State.CurrentID)
		}
		if tr.State.CurrentPlaylist() != nil {
			t.Error("expected current playlist to be absent")
		}
	})
}

func TestSelectColumns(t *testing.T) {
	t.Run("switching presets re-subscribes without notifying", func(t *testing.T) {
		tr := SelectColumns(State{Columns: models.Standard}, true)

		if tr.State.Columns != models.Compact {
			t.Errorf("expected compact, got %v", tr.State.Columns)
		}
		if !tr.Resubscribe || tr.NotifyPlaylists || tr.NotifyItems {
			t.Errorf("unexpected flags: %+v", tr)
		}
	})

	t.Run("requesting the active preset is a no-op", func(t *testing.T) {
		if tr := SelectColumns(State{Columns: models.Compact}, true); tr.Changed() {
			t.Errorf("expected no-op, got %+v", tr)
		}
		if tr := SelectColumns(State{Columns: models.Standard}, false); tr.Changed() {
			t.Errorf("expected no-op, got %+v", tr)
		}
	})
}

func TestApplyItems(t *testing.T) {
	items := []models.PlaylistItem{{Columns: []string{"a", "b"}}}
	tr := ApplyItems(State{CurrentID: "p1"}, items)

	if !tr.NotifyItems || tr.NotifyPlaylists || tr.Resubscribe {
		t.Errorf("unexpected flags: %+v", tr)
	}
	if len(tr.State.Items) != 1 || tr.State.Items[0].Field(1) != "b" {
		t.Errorf("expected items to be replaced, got %+v", tr.State.Items)
	}

	t.Run("items are accepted without a selection", func(t *testing.T) {
		tr := ApplyItems(State{}, items)
		if len(tr.State.Items) != 1 {
			t.Errorf("expected items to be stored, got %+v", tr.State.Items)
		}
	})
}

func TestItemsRequestFor(t *testing.T) {
	t.Run("standard preset", func(t *testing.T) {
		req, ok := ItemsRequestFor(State{CurrentID: "42", Columns: models.Standard})
		if !ok {
			t.Fatal("expected a request")
		}

		want := models.ItemsRequest{
			FetchItems:  true,
			PlaylistRef: "42",
			Range:       "0:1000",
			Columns:     []string{"%artist%", "%album%", "%track%", "%title%", "%length%"},
		}
		if req.FetchItems != want.FetchItems || req.PlaylistRef != want.PlaylistRef || req.Range != want.Range {
			t.Errorf("expected %+v, got %+v", want, req)
		}
		if !slices.Equal(req.Columns, want.Columns) {
			t.Errorf("expected columns %v, got %v", want.Columns, req.Columns)
		}
	})

	t.Run("compact preset", func(t *testing.T) {
		req, _ := ItemsRequestFor(State{CurrentID: "42", Columns: models.Compact})
		if !slices.Equal(req.Columns, []string{"%artist%", "%title%"}) {
			t.Errorf("unexpected compact columns %v", req.Columns)
		}
	})

	t.Run("no selection", func(t *testing.T) {
		if _, ok := ItemsRequestFor(State{}); ok {
			t.Error("expected no request")
		}
	})
}

func TestNewPlaylistTitle(t *testing.T) {
	titled := func(titles ...string) []models.Playlist {
		out := make([]models.Playlist, len(titles))
		for i, title := range titles {
			out[i] = models.Playlist{ID: title, Title: title}
		}
		return out
	}

	tc := []struct {
		name      string
		playlists []models.Playlist
		want      string
	}{
		{name: "no playlists", playlists: nil, want: "New Playlist"},
		{name: "base title free", playlists: titled("Default", "New Playlist (1)"), want: "New Playlist"},
		{name: "base title taken", playlists: titled("New Playlist"), want: "New Playlist (1)"},
		{name: "first two taken", playlists: titled("New Playlist", "New Playlist (1)"), want: "New Playlist (2)"},
		{name: "gap is reused", playlists: titled("New Playlist", "New Playlist (2)"), want: "New Playlist (1)"},
		{name: "exact match only", playlists: titled("new playlist", "New Playlist "), want: "New Playlist"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPlaylistTitle(tt.playlists); got != tt.want {
				t.Errorf("NewPlaylistTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
