package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/playlist"
	tu "github.com/desertthunder/plctl/internal/testing"
)

func newTestUI(t *testing.T) (*Model, *tu.MockSource, *tu.MockClient) {
	t.Helper()
	src := tu.NewMockSource()
	client := &tu.MockClient{}
	pm := playlist.NewModel(playlist.ModelOpts{Client: client, Source: src})
	if err := pm.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	m := NewModel(context.Background(), pm)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	t.Cleanup(m.Close)
	return m, src, client
}

// drain delivers every pending change notification to Update.
func drain(m *Model) {
	for {
		select {
		case sig := <-m.changes:
			m.Update(modelChangedMsg(sig))
		default:
			return
		}
	}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
		drain(m)
	}
	return cmd
}

func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func items(n int) []models.PlaylistItem {
	out := make([]models.PlaylistItem, n)
	for i := range out {
		out[i] = models.PlaylistItem{Columns: []string{"Artist", "Title " + string(rune('A'+i))}}
	}
	return out
}

func TestModel(t *testing.T) {
	t.Run("Refreshes On Change", func(t *testing.T) {
		m, src, _ := newTestUI(t)
		src.PushPlaylists(tu.Playlists("a", "*b")...)
		drain(m)

		if m.state.CurrentID != "b" {
			t.Errorf("CurrentID = %q, want b", m.state.CurrentID)
		}
		view := m.View()
		for _, want := range []string{"Playlist a", "Playlist b", "Playlist b is empty."} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("Cycles Playlists", func(t *testing.T) {
		m, src, _ := newTestUI(t)
		src.PushPlaylists(tu.Playlists("a", "b", "c")...)
		drain(m)

		press(m, "tab")
		if m.state.CurrentID != "b" {
			t.Errorf("after tab CurrentID = %q, want b", m.state.CurrentID)
		}
		press(m, "shift+tab", "shift+tab")
		if m.state.CurrentID != "c" {
			t.Errorf("after wrapping CurrentID = %q, want c", m.state.CurrentID)
		}

		watches := src.ItemWatches()
		if last := watches[len(watches)-1]; last.PlaylistRef != "c" {
			t.Errorf("last item watch = %q, want c", last.PlaylistRef)
		}
	})

	t.Run("Toggles Compact Columns", func(t *testing.T) {
		m, src, _ := newTestUI(t)
		src.PushPlaylists(tu.Playlists("*a")...)
		src.PushItems(items(2)...)
		drain(m)

		press(m, "c")
		if m.state.Columns != models.Compact {
			t.Errorf("Columns = %s, want compact", m.state.Columns)
		}
		watches := src.ItemWatches()
		if got := watches[len(watches)-1].Columns; len(got) != 2 {
			t.Errorf("compact watch columns = %v", got)
		}
		if !strings.Contains(m.View(), "compact columns") {
			t.Error("view should name the active preset")
		}
	})

	t.Run("Toggles Compact Columns Without Selection", func(t *testing.T) {
		m, src, _ := newTestUI(t)
		src.PushPlaylists(tu.Playlists("a", "b")...)
		drain(m)

		press(m, "c")
		if m.state.Columns != models.Compact {
			t.Errorf("Columns = %s, want compact", m.state.Columns)
		}
		if n := len(src.ItemWatches()); n != 0 {
			t.Errorf("item watches = %d, want 0 with no selection", n)
		}

		press(m, "c")
		if m.state.Columns != models.Standard {
			t.Errorf("Columns = %s, want standard after second toggle", m.state.Columns)
		}
	})

	t.Run("Plays Item Under Cursor", func(t *testing.T) {
		m, src, client := newTestUI(t)
		src.PushPlaylists(tu.Playlists("a")...)
		src.PushItems(items(3)...)
		drain(m)

		run(t, m, press(m, "down", "enter"))
		calls := client.Calls()
		if len(calls) != 1 || calls[0].Command != "play" || calls[0].PlaylistID != "a" || calls[0].Index != 1 {
			t.Errorf("calls = %+v, want play a 1", calls)
		}
		if !strings.Contains(m.View(), "Playing item 2") {
			t.Error("view should report the intent outcome")
		}
	})

	t.Run("Cursor Resets On Selection", func(t *testing.T) {
		m, src, _ := newTestUI(t)
		src.PushPlaylists(tu.Playlists("a", "b")...)
		src.PushItems(items(3)...)
		drain(m)

		press(m, "down", "down")
		if m.cursor != 2 {
			t.Fatalf("cursor = %d, want 2", m.cursor)
		}
		press(m, "down")
		if m.cursor != 2 {
			t.Errorf("cursor moved past the last item: %d", m.cursor)
		}
		press(m, "tab")
		if m.cursor != 0 {
			t.Errorf("cursor = %d after selection change, want 0", m.cursor)
		}
	})

	t.Run("Adds Playlist", func(t *testing.T) {
		m, src, client := newTestUI(t)
		src.PushPlaylists(tu.Playlists("a")...)
		drain(m)

		run(t, m, press(m, "n"))
		if calls := client.Calls(); len(calls) != 1 || calls[0].Title != "New Playlist" {
			t.Errorf("calls = %+v", calls)
		}
	})

	t.Run("Confirms Removal", func(t *testing.T) {
		m, src, client := newTestUI(t)
		src.PushPlaylists(tu.Playlists("a")...)
		drain(m)

		press(m, "d")
		if m.view != ConfirmView || !strings.Contains(m.View(), `Remove playlist "Playlist a"?`) {
			t.Fatalf("view = %d, want confirm", m.view)
		}
		press(m, "n")
		if m.view != ItemsView || len(client.Calls()) != 0 {
			t.Errorf("declining should not remove, calls = %+v", client.Calls())
		}

		press(m, "x")
		run(t, m, press(m, "y"))
		if calls := client.Calls(); len(calls) != 1 || calls[0].Command != "clearPlaylist" {
			t.Errorf("calls = %+v, want clearPlaylist", calls)
		}
	})

	t.Run("Renames Playlist", func(t *testing.T) {
		m, src, client := newTestUI(t)
		src.PushPlaylists(tu.Playlists("a")...)
		drain(m)

		press(m, "r")
		if m.view != RenameView || m.input.Value() != "Playlist a" {
			t.Fatalf("view = %d, input = %q", m.view, m.input.Value())
		}
		m.input.SetValue("  Road Trip ")
		run(t, m, press(m, "enter"))
		if calls := client.Calls(); len(calls) != 1 || calls[0].Title != "Road Trip" {
			t.Errorf("calls = %+v", calls)
		}

		press(m, "r", "esc")
		if m.view != ItemsView {
			t.Errorf("esc should leave rename, view = %d", m.view)
		}
	})

	t.Run("Reports Intent Errors", func(t *testing.T) {
		m, src, client := newTestUI(t)
		client.Err = errors.New("player offline")
		src.PushPlaylists(tu.Playlists("a")...)
		drain(m)

		run(t, m, press(m, "n"))
		if !strings.Contains(m.View(), "Error: player offline") {
			t.Errorf("view missing error:\n%s", m.View())
		}
	})

	t.Run("Picker Selects Playlist", func(t *testing.T) {
		m, src, _ := newTestUI(t)
		src.PushPlaylists(tu.Playlists("a", "b")...)
		drain(m)

		press(m, "p")
		if m.view != PickerView {
			t.Fatalf("view = %d, want picker", m.view)
		}
		press(m, "down", "enter")
		if m.view != ItemsView || m.state.CurrentID != "b" {
			t.Errorf("view = %d, CurrentID = %q; want items view with b", m.view, m.state.CurrentID)
		}
	})

	t.Run("Close Stops Observing", func(t *testing.T) {
		m, src, _ := newTestUI(t)
		m.Close()
		src.PushPlaylists(tu.Playlists("a")...)
		if len(m.changes) != 0 {
			t.Errorf("closed UI received %d notifications", len(m.changes))
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m, _, _ := newTestUI(t)
		cmd := press(m, "q")
		if cmd == nil {
			t.Fatal("q should quit")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("q should return tea.Quit")
		}
	})
}
