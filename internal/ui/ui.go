package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/playlist"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ItemsView ViewState = iota
	PickerView
	RenameView
	ConfirmView
)

// confirmation is a destructive intent waiting for y/n.
type confirmation struct {
	prompt string
	op     string
	run    func(context.Context) error
}

// Model represents the TUI application state.
//
// Playlist state is owned by the [playlist.Model]; the TUI keeps a copy refreshed on every change notification.
type Model struct {
	ctx       context.Context
	playlists *playlist.Model
	changes   chan playlist.Signal
	observers []playlist.ObserverID

	view    ViewState
	state   playlist.State
	cursor  int
	width   int
	height  int
	picker  list.Model
	input   textinput.Model
	pending *confirmation
	status  string
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates a TUI over pm and starts observing it. Call [Model.Close] once the program exits.
func NewModel(ctx context.Context, pm *playlist.Model) *Model {
	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "Playlists"

	input := textinput.New()
	input.Placeholder = "Playlist title"
	input.CharLimit = 120

	m := &Model{
		ctx:       ctx,
		playlists: pm,
		changes:   make(chan playlist.Signal, 16),
		view:      ItemsView,
		state:     pm.State(),
		picker:    picker,
		input:     input,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	for _, sig := range []playlist.Signal{playlist.PlaylistsChange, playlist.ItemsChange} {
		m.observers = append(m.observers, pm.Observe(sig, m.notify(sig)))
	}
	return m
}

// notify forwards a change signal to the program without blocking the model.
// A dropped signal is harmless because the next refresh reads the latest state.
func (m *Model) notify(sig playlist.Signal) func() {
	return func() {
		select {
		case m.changes <- sig:
		default:
		}
	}
}

// Close stops observing the playlist model.
func (m *Model) Close() {
	for _, id := range m.observers {
		m.playlists.Unobserve(id)
	}
	m.observers = nil
}

// Init starts listening for model changes.
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker.SetSize(msg.Width-4, msg.Height-6)
		m.help.Width = msg.Width
		return m, nil

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		switch m.view {
		case ItemsView:
			return m.handleItemsKeys(msg)
		case PickerView:
			return m.handlePickerKeys(msg)
		case RenameView:
			return m.handleRenameKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgModelChanged:
		m.refresh()
		return m, m.waitForChange()
	case MsgIntentDone:
		res := msg.data.(intentResult)
		m.err = res.err
		m.status = ""
		if res.err == nil {
			m.status = res.op
		}
	}
	return m, nil
}

// refresh copies the model state and keeps the cursor in range.
func (m *Model) refresh() {
	prev := m.state.CurrentID
	m.state = m.playlists.State()
	if m.state.CurrentID != prev {
		m.cursor = 0
	}
	if m.cursor >= len(m.state.Items) {
		m.cursor = max(len(m.state.Items)-1, 0)
	}
	if m.view == PickerView {
		m.picker.SetItems(playlistItems(m.state.Playlists))
	}
}

func (m *Model) handleItemsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current := m.state.CurrentPlaylist()

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.cycle(1)
	case key.Matches(msg, m.keys.prev):
		m.cycle(-1)
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.state.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.compact):
		m.playlists.SetCompactMode(!m.playlists.IsCompact())
		m.state = m.playlists.State()
	case key.Matches(msg, m.keys.play):
		if len(m.state.Items) == 0 {
			return m, nil
		}
		index := m.cursor
		return m, m.intent(fmt.Sprintf("Playing item %d", index+1), func(ctx context.Context) error {
			return m.playlists.ActivateItem(ctx, index)
		})
	case key.Matches(msg, m.keys.add):
		return m, m.intent("Playlist added", m.playlists.AddPlaylist)
	case key.Matches(msg, m.keys.remove):
		if current != nil {
			m.confirm(fmt.Sprintf("Remove playlist %q?", current.Title), "Playlist removed", m.playlists.RemovePlaylist)
		}
	case key.Matches(msg, m.keys.clear):
		if current != nil {
			m.confirm(fmt.Sprintf("Clear every item from %q?", current.Title), "Playlist cleared", m.playlists.ClearPlaylist)
		}
	case key.Matches(msg, m.keys.rename):
		if current != nil {
			m.input.SetValue(current.Title)
			m.input.CursorEnd()
			m.view = RenameView
			return m, m.input.Focus()
		}
	case key.Matches(msg, m.keys.pick):
		m.picker.SetItems(playlistItems(m.state.Playlists))
		m.picker.SetSize(m.width-4, m.height-6)
		m.view = PickerView
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.back):
			m.view = ItemsView
			return m, nil
		case key.Matches(msg, m.keys.play):
			if item, ok := m.picker.SelectedItem().(playlistItem); ok {
				m.playlists.SetCurrentPlaylistID(item.playlist.ID)
			}
			m.view = ItemsView
			return m, nil
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) handleRenameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.view = ItemsView
		return m, nil
	case "enter":
		m.input.Blur()
		m.view = ItemsView
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			return m, nil
		}
		return m, m.intent("Playlist renamed", func(ctx context.Context) error {
			return m.playlists.RenamePlaylist(ctx, title)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.pending
	switch {
	case key.Matches(msg, m.keys.yes):
		m.pending = nil
		m.view = ItemsView
		if pending != nil {
			return m, m.intent(pending.op, pending.run)
		}
	case key.Matches(msg, m.keys.no), msg.String() == "q":
		m.pending = nil
		m.view = ItemsView
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PickerView:
		m.picker, cmd = m.picker.Update(msg)
	case RenameView:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// cycle selects the playlist delta positions away from the current one, wrapping around.
func (m *Model) cycle(delta int) {
	pls := m.state.Playlists
	if len(pls) == 0 {
		return
	}

	next := 0
	for i, p := range pls {
		if p.ID == m.state.CurrentID {
			next = (i + delta + len(pls)) % len(pls)
			break
		}
	}
	m.playlists.SetCurrentPlaylistID(pls[next].ID)
}

func (m *Model) confirm(prompt, op string, run func(context.Context) error) {
	m.pending = &confirmation{prompt: prompt, op: op, run: run}
	m.view = ConfirmView
}

// intent runs fn off the update loop and reports its outcome as a [MsgIntentDone].
func (m *Model) intent(op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return intentDoneMsg(op, fn(m.ctx))
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case sig := <-m.changes:
			return modelChangedMsg(sig)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PickerView:
		return fmt.Sprintf("%s\n\n%s", m.picker.View(), m.help.ShortHelpView([]key.Binding{m.keys.play, m.keys.back}))
	case RenameView:
		title := styles.title.Render("Rename Playlist")
		helpView := m.help.ShortHelpView([]key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			m.keys.back,
		})
		return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
	case ConfirmView:
		prompt := ""
		if m.pending != nil {
			prompt = m.pending.prompt
		}
		return fmt.Sprintf("%s\n\n%s", styles.warn.Render(prompt), m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
	default:
		return m.renderItems()
	}
}

func (m *Model) renderItems() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Playlists"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch current := m.state.CurrentPlaylist(); {
	case current == nil:
		b.WriteString(styles.help.Render("No playlist selected."))
	case len(m.state.Items) == 0:
		b.WriteString(styles.help.Render(fmt.Sprintf("%s is empty.", current.Title)))
	default:
		b.WriteString(styles.help.Render(fmt.Sprintf("%d items • %s columns", len(m.state.Items), m.state.Columns)))
		b.WriteString("\n")
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n\n")
	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(styles.ok.Render("✓ " + m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(m.state.Playlists))
	for i, p := range m.state.Playlists {
		if p.ID == m.state.CurrentID {
			tabs[i] = styles.active.Render(p.Title)
		} else {
			tabs[i] = styles.tab.Render(p.Title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderTable draws the window of items around the cursor with the preset's names as headers.
func (m *Model) renderTable() string {
	items := m.state.Items
	visible := max(m.height-12, 5)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(items))

	names := m.state.Columns.Names()
	rows := make([][]string, 0, end-start)
	for _, item := range items[start:end] {
		rows = append(rows, rowFor(item, len(names)))
	}

	cursor := m.cursor - start
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.help).
		Headers(names...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return styles.header
			case cursor:
				return styles.selected
			default:
				return styles.cell
			}
		})
	return t.Render()
}

func rowFor(item models.PlaylistItem, width int) []string {
	row := make([]string, width)
	for i := range row {
		row[i] = item.Field(i)
	}
	return row
}
