package playlist

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
	tu "github.com/desertthunder/plctl/internal/testing"
)

type counter struct {
	playlists int
	items     int
}

// newStartedModel returns a started model with counters attached to both signals.
func newStartedModel(t *testing.T) (*Model, *tu.MockSource, *tu.MockClient, *counter) {
	t.Helper()

	source := tu.NewMockSource()
	client := &tu.MockClient{}
	m := NewModel(ModelOpts{Client: client, Source: source})
	if err := m.Start(); err != nil {
		t.Fatalf("failed to start model: %v", err)
	}

	c := &counter{}
	m.Observe(PlaylistsChange, func() { c.playlists++ })
	m.Observe(ItemsChange, func() { c.items++ })
	return m, source, client, c
}

func TestModel(t *testing.T) {
	t.Run("Start", func(t *testing.T) {
		t.Run("registers handlers and watches playlists", func(t *testing.T) {
			_, source, _, _ := newStartedModel(t)

			if source.Handlers(models.TopicPlaylists) != 1 || source.Handlers(models.TopicPlaylistItems) != 1 {
				t.Error("expected one handler per topic")
			}

			watches := source.Watches()
			if len(watches) != 1 || watches[0].Topic != models.TopicPlaylists || watches[0].Request != nil {
				t.Errorf("expected a bare playlists watch, got %+v", watches)
			}
		})

		t.Run("wraps watch errors", func(t *testing.T) {
			source := tu.NewMockSource()
			source.Err = shared.ErrStreamClosed
			m := NewModel(ModelOpts{Client: &tu.MockClient{}, Source: source})

			if err := m.Start(); !errors.Is(err, shared.ErrStreamClosed) {
				t.Errorf("expected ErrStreamClosed, got %v", err)
			}
		})

		t.Run("starts empty with the standard preset", func(t *testing.T) {
			m, _, _, _ := newStartedModel(t)

			if m.CurrentPlaylistID() != "" || m.CurrentPlaylist() != nil {
				t.Error("expected no selection")
			}
			if m.Columns() != models.Standard || m.IsCompact() {
				t.Error("expected standard preset")
			}
			if len(m.Playlists()) != 0 || len(m.PlaylistItems()) != 0 {
				t.Error("expected empty lists")
			}
		})
	})

	t.Run("selection stability", func(t *testing.T) {
		m, source, _, c := newStartedModel(t)

		source.PushPlaylists(tu.Playlists("*x", "y")...)
		before := len(source.ItemWatches())

		source.PushPlaylists(tu.Playlists("y", "x", "*z")...)

		if m.CurrentPlaylistID() != "x" {
			t.Errorf("expected selection x, got %q", m.CurrentPlaylistID())
		}
		if got := len(source.ItemWatches()); got != before {
			t.Errorf("expected no re-subscription, got %d new watches", got-before)
		}
		if c.playlists != 2 {
			t.Errorf("expected 2 playlists notifications, got %d", c.playlists)
		}
		if cp := m.CurrentPlaylist(); cp == nil || cp.Index != 1 {
			t.Errorf("expected current playlist from the latest snapshot, got %+v", cp)
		}
	})

	t.Run("fallback on disappearance", func(t *testing.T) {
		m, source, _, _ := newStartedModel(t)

		source.PushPlaylists(tu.Playlists("*x")...)
		source.PushPlaylists(tu.Playlists("*y")...)

		if m.CurrentPlaylistID() != "y" {
			t.Errorf("expected selection y, got %q", m.CurrentPlaylistID())
		}
		watches := source.ItemWatches()
		if len(watches) != 2 || watches[1].PlaylistRef != "y" {
			t.Errorf("expected re-subscription to y, got %+v", watches)
		}
	})

	t.Run("full fallback", func(t *testing.T) {
		m, source, _, _ := newStartedModel(t)

		source.PushPlaylists(tu.Playlists("*x")...)
		source.PushPlaylists(tu.Playlists("a", "b")...)

		if m.CurrentPlaylistID() != "" || m.CurrentPlaylist() != nil {
			t.Errorf("expected no selection, got %q", m.CurrentPlaylistID())
		}
		if got := len(source.ItemWatches()); got != 1 {
			t.Errorf("expected issuance to be skipped without a selection, got %d watches", got)
		}
	})

	t.Run("idempotent selection", func(t *testing.T) {
		m, source, _, c := newStartedModel(t)
		source.PushPlaylists(tu.Playlists("*x", "y")...)

		notified, watched := c.playlists, len(source.ItemWatches())
		m.SetCurrentPlaylistID("x")

		if c.playlists != notified {
			t.Error("expected no notification")
		}
		if len(source.ItemWatches()) != watched {
			t.Error("expected no re-subscription")
		}
	})

	t.Run("explicit selection", func(t *testing.T) {
		m, source, _, c := newStartedModel(t)
		source.PushPlaylists(tu.Playlists("*x", "y")...)

		m.SetCurrentPlaylistID("y")

		if m.CurrentPlaylistID() != "y" || m.CurrentPlaylist().ID != "y" {
			t.Errorf("expected selection y, got %q", m.CurrentPlaylistID())
		}
		if c.playlists != 2 {
			t.Errorf("expected 2 notifications, got %d", c.playlists)
		}
		watches := source.ItemWatches()
		if watches[len(watches)-1].PlaylistRef != "y" {
			t.Errorf("expected last watch for y, got %+v", watches[len(watches)-1])
		}
	})

	t.Run("selection of an unknown id is kept until the next snapshot", func(t *testing.T) {
		m, source, _, _ := newStartedModel(t)
		source.PushPlaylists(tu.Playlists("*x")...)

		m.SetCurrentPlaylistID("new")
		if m.CurrentPlaylistID() != "new" || m.CurrentPlaylist() != nil {
			t.Errorf("expected stale selection, got %q / %+v", m.CurrentPlaylistID(), m.CurrentPlaylist())
		}

		source.PushPlaylists(tu.Playlists("*x", "new")...)
		if cp := m.CurrentPlaylist(); cp == nil || cp.ID != "new" {
			t.Errorf("expected selection to resolve to new, got %+v", cp)
		}
	})

	t.Run("subscription shape", func(t *testing.T) {
		m, source, _, _ := newStartedModel(t)
		source.PushPlaylists(models.Playlist{ID: "1", IsCurrent: true}, models.Playlist{ID: "42"})

		m.SetCurrentPlaylistID("42")

		watches := source.ItemWatches()
		got := watches[len(watches)-1]
		if !got.FetchItems || got.PlaylistRef != "42" || got.Range != "0:1000" {
			t.Errorf("unexpected request %+v", got)
		}
		want := []string{"%artist%", "%album%", "%track%", "%title%", "%length%"}
		if !slices.Equal(got.Columns, want) {
			t.Errorf("expected columns %v, got %v", want, got.Columns)
		}
	})

	t.Run("preset toggle idempotence", func(t *testing.T) {
		m, source, _, _ := newStartedModel(t)
		source.PushPlaylists(tu.Playlists("*x")...)
		before := len(source.ItemWatches())

		m.SetCompactMode(true)
		m.SetCompactMode(true)

		watches := source.ItemWatches()
		if len(watches)-before != 1 {
			t.Fatalf("expected exactly one re-subscription, got %d", len(watches)-before)
		}
		if !slices.Equal(watches[len(watches)-1].Columns, []string{"%artist%", "%title%"}) {
			t.Errorf("expected compact columns, got %v", watches[len(watches)-1].Columns)
		}
		if !m.IsCompact() {
			t.Error("expected compact mode")
		}

		m.SetCompactMode(false)
		if got := len(source.ItemWatches()) - before; got != 2 {
			t.Errorf("expected switching back to re-subscribe, got %d", got)
		}
	})

	t.Run("preset toggle without selection does not watch", func(t *testing.T) {
		m, source, _, _ := newStartedModel(t)

		m.SetCompactMode(true)

		if m.Columns() != models.Compact {
			t.Error("expected compact preset to be stored")
		}
		if len(source.ItemWatches()) != 0 {
			t.Error("expected no watch without a selection")
		}
	})

	t.Run("item snapshots replace items and notify", func(t *testing.T) {
		m, source, _, c := newStartedModel(t)

		source.PushItems(models.PlaylistItem{Columns: []string{"a"}}, models.PlaylistItem{Columns: []string{"b"}})
		source.PushItems(models.PlaylistItem{Columns: []string{"c"}})

		items := m.PlaylistItems()
		if len(items) != 1 || items[0].Field(0) != "c" {
			t.Errorf("expected the latest items, got %+v", items)
		}
		if c.items != 2 || c.playlists != 0 {
			t.Errorf("expected 2 item notifications only, got %+v", c)
		}
	})

	t.Run("accessors return copies", func(t *testing.T) {
		m, source, _, _ := newStartedModel(t)
		source.PushPlaylists(tu.Playlists("*x")...)

		pls := m.Playlists()
		pls[0].Title = "changed"

		if m.Playlists()[0].Title == "changed" {
			t.Error("expected Playlists to return a copy")
		}
	})

	t.Run("watch failures are logged, not raised", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		source := tu.NewMockSource()
		m := NewModel(ModelOpts{Client: &tu.MockClient{}, Source: source, Logger: logger})
		if err := m.Start(); err != nil {
			t.Fatalf("failed to start: %v", err)
		}

		source.Err = errors.New("boom")
		source.PushPlaylists(tu.Playlists("*x")...)

		if m.CurrentPlaylistID() != "x" {
			t.Errorf("expected selection despite the failed watch, got %q", m.CurrentPlaylistID())
		}
		if !strings.Contains(buf.String(), "failed to watch playlist items") {
			t.Errorf("expected a warning, got %q", buf.String())
		}
	})

	t.Run("ambiguous snapshots are logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		shared.SetLogLevel(logger, log.WarnLevel)
		source := tu.NewMockSource()
		m := NewModel(ModelOpts{Client: &tu.MockClient{}, Source: source, Logger: logger})
		_ = m.Start()

		source.PushPlaylists(models.Playlist{ID: "x"}, models.Playlist{ID: "x"})

		if !strings.Contains(buf.String(), "duplicate playlist id") {
			t.Errorf("expected duplicate id warning, got %q", buf.String())
		}
	})
}

func TestModelObservers(t *testing.T) {
	t.Run("observers can read state during notification", func(t *testing.T) {
		source := tu.NewMockSource()
		m := NewModel(ModelOpts{Client: &tu.MockClient{}, Source: source})
		_ = m.Start()

		var seen []string
		m.Observe(PlaylistsChange, func() {
			seen = append(seen, m.CurrentPlaylistID())
			if len(m.Playlists()) != 2 {
				t.Error("expected observer to see the complete snapshot")
			}
		})

		source.PushPlaylists(tu.Playlists("a", "*b")...)

		if !slices.Equal(seen, []string{"b"}) {
			t.Errorf("expected observer to see selection b, got %v", seen)
		}
	})

	t.Run("re-entrant selection keeps watches in order", func(t *testing.T) {
		source := tu.NewMockSource()
		m := NewModel(ModelOpts{Client: &tu.MockClient{}, Source: source})
		_ = m.Start()

		m.Observe(PlaylistsChange, func() {
			if m.CurrentPlaylistID() == "b" {
				m.SetCurrentPlaylistID("a")
			}
		})

		source.PushPlaylists(tu.Playlists("a", "*b")...)

		watches := source.ItemWatches()
		if len(watches) != 2 || watches[0].PlaylistRef != "b" || watches[1].PlaylistRef != "a" {
			t.Errorf("expected watches b then a, got %+v", watches)
		}
	})

	t.Run("callbacks run in registration order", func(t *testing.T) {
		m := NewModel(ModelOpts{Client: &tu.MockClient{}, Source: tu.NewMockSource()})

		var order []int
		for i := 1; i <= 3; i++ {
			m.Observe(ItemsChange, func() { order = append(order, i) })
		}
		m.SetPlaylistItems(nil)

		if !slices.Equal(order, []int{1, 2, 3}) {
			t.Errorf("expected registration order, got %v", order)
		}
	})

	t.Run("Unobserve stops notifications", func(t *testing.T) {
		m := NewModel(ModelOpts{Client: &tu.MockClient{}, Source: tu.NewMockSource()})

		calls := 0
		id := m.Observe(ItemsChange, func() { calls++ })
		if id == 0 {
			t.Fatal("expected a non-zero registration id")
		}

		m.SetPlaylistItems(nil)
		if !m.Unobserve(id) {
			t.Error("expected Unobserve to report the registration")
		}
		if m.Unobserve(id) {
			t.Error("expected second Unobserve to report nothing")
		}
		m.SetPlaylistItems(nil)

		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("signals are independent", func(t *testing.T) {
		m := NewModel(ModelOpts{Client: &tu.MockClient{}, Source: tu.NewMockSource()})

		calls := 0
		m.Observe(PlaylistsChange, func() { calls++ })
		m.SetPlaylistItems(nil)

		if calls != 0 {
			t.Errorf("expected no playlists notification for items, got %d", calls)
		}
	})

	t.Run("Close clears registrations and ignores later snapshots", func(t *testing.T) {
		m, source, _, c := newStartedModel(t)
		source.PushPlaylists(tu.Playlists("*x")...)

		m.Close()
		source.PushPlaylists(tu.Playlists("*y")...)
		source.PushItems(models.PlaylistItem{})

		if c.playlists != 1 || c.items != 0 {
			t.Errorf("expected no notifications after Close, got %+v", c)
		}
		if m.CurrentPlaylistID() != "x" {
			t.Errorf("expected state to stay frozen, got %q", m.CurrentPlaylistID())
		}
		if id := m.Observe(PlaylistsChange, func() {}); id != 0 {
			t.Errorf("expected no registration after Close, got %d", id)
		}
	})

	t.Run("signal names", func(t *testing.T) {
		if PlaylistsChange.String() != "playlistsChange" || ItemsChange.String() != "itemsChange" {
			t.Error("unexpected signal names")
		}
	})
}

func TestModelIntents(t *testing.T) {
	ctx := context.Background()

	t.Run("forward the current selection", func(t *testing.T) {
		m, source, client, c := newStartedModel(t)
		source.PushPlaylists(tu.Playlists("*x")...)
		notified := c.playlists

		_ = m.AddItems(ctx, []string{"/music/a.flac"})
		_ = m.ActivateItem(ctx, 3)
		_ = m.RemovePlaylist(ctx)
		_ = m.RenamePlaylist(ctx, "Renamed")
		_ = m.ClearPlaylist(ctx)

		want := []tu.Call{
			{Command: "addPlaylistItems", PlaylistID: "x", Items: []string{"/music/a.flac"}},
			{Command: "play", PlaylistID: "x", Index: 3},
			{Command: "removePlaylist", PlaylistID: "x"},
			{Command: "renamePlaylist", PlaylistID: "x", Title: "Renamed"},
			{Command: "clearPlaylist", PlaylistID: "x"},
		}
		calls := client.Calls()
		if len(calls) != len(want) {
			t.Fatalf("expected %d calls, got %+v", len(want), calls)
		}
		for i := range want {
			if calls[i].Command != want[i].Command || calls[i].PlaylistID != want[i].PlaylistID ||
				calls[i].Index != want[i].Index || calls[i].Title != want[i].Title ||
				!slices.Equal(calls[i].Items, want[i].Items) {
				t.Errorf("call %d: expected %+v, got %+v", i, want[i], calls[i])
			}
		}

		if c.playlists != notified || len(m.Playlists()) != 1 {
			t.Error("expected intents to leave local state untouched")
		}
	})

	t.Run("AddPlaylist uses a unique title", func(t *testing.T) {
		m, source, client, _ := newStartedModel(t)
		source.PushPlaylists(
			models.Playlist{ID: "a", Title: "New Playlist", IsCurrent: true},
			models.Playlist{ID: "b", Title: "New Playlist (1)"},
		)

		if err := m.AddPlaylist(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		calls := client.Calls()
		if len(calls) != 1 || calls[0].Title != "New Playlist (2)" {
			t.Errorf("expected title New Playlist (2), got %+v", calls)
		}
		if m.NewPlaylistTitle() != "New Playlist (2)" {
			t.Error("expected NewPlaylistTitle to match")
		}
	})

	t.Run("client errors are returned unchanged", func(t *testing.T) {
		m, _, client, _ := newStartedModel(t)
		client.Err = shared.ErrAPIRequest

		if err := m.ClearPlaylist(ctx); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}
