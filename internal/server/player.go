package server

import (
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
)

// Track is an item held by the stub [Player].
type Track struct {
	Path   string
	Artist string
	Album  string
	Number int
	Title  string
	Length float64 // seconds
}

// TrackFromPath derives a track from a file path or URL. Base names shaped "Artist - Title" fill both fields.
func TrackFromPath(p string) Track {
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))

	t := Track{Path: p, Title: base}
	if artist, title, ok := strings.Cut(base, " - "); ok {
		t.Artist, t.Title = strings.TrimSpace(artist), strings.TrimSpace(title)
	}
	return t
}

// field returns the value of a title formatting field, or "?" when the field is unknown.
func (t Track) field(name string) string {
	switch name {
	case "artist":
		return t.Artist
	case "album":
		return t.Album
	case "track", "tracknumber":
		if t.Number == 0 {
			return ""
		}
		return fmt.Sprintf("%02d", t.Number)
	case "title":
		return t.Title
	case "length":
		return shared.FormatDuration(t.Length)
	case "length_seconds":
		return strconv.Itoa(int(t.Length))
	case "path":
		return t.Path
	default:
		return "?"
	}
}

// Evaluate expands every %field% in expr. Text outside fields is copied; an unterminated % is kept literally.
func (t Track) Evaluate(expr string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(expr, '%')
		if start < 0 {
			b.WriteString(expr)
			return b.String()
		}
		end := strings.IndexByte(expr[start+1:], '%')
		if end < 0 {
			b.WriteString(expr)
			return b.String()
		}

		b.WriteString(expr[:start])
		b.WriteString(t.field(expr[start+1 : start+1+end]))
		expr = expr[start+2+end:]
	}
}

type stubPlaylist struct {
	id     string
	title  string
	tracks []Track
}

// Player is an in-memory player holding playlists and the current playlist flag.
//
// Every mutation publishes on the player's [Broker].
type Player struct {
	mu        sync.Mutex
	playlists []*stubPlaylist
	currentID string
	active    struct {
		playlistID string
		index      int
	}
	broker *Broker
}

// NewPlayer creates a player with a single empty "Default" playlist flagged current.
func NewPlayer() *Player {
	p := &Player{broker: NewBroker()}
	p.active.index = -1

	def := &stubPlaylist{id: shared.GenerateID(), title: "Default"}
	p.playlists = []*stubPlaylist{def}
	p.currentID = def.id
	return p
}

// Broker returns the change broker.
func (p *Player) Broker() *Broker {
	return p.broker
}

func (p *Player) find(id string) (int, *stubPlaylist) {
	for i, pl := range p.playlists {
		if pl.id == id {
			return i, pl
		}
	}
	return -1, nil
}

// Playlists returns the playlists in order.
func (p *Player) Playlists() []models.Playlist {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.Playlist, len(p.playlists))
	for i, pl := range p.playlists {
		total := 0.0
		for _, t := range pl.tracks {
			total += t.Length
		}
		out[i] = models.Playlist{
			ID:        pl.id,
			Index:     i,
			Title:     pl.title,
			IsCurrent: pl.id == p.currentID,
			ItemCount: len(pl.tracks),
			TotalTime: total,
		}
	}
	return out
}

// Items evaluates columns for the tracks of playlist id within rng ("offset:count").
func (p *Player) Items(id, rng string, columns []string) (offset, total int, items []models.PlaylistItem, err error) {
	offset, count, err := ParseRange(rng)
	if err != nil {
		return 0, 0, nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, pl := p.find(id)
	if pl == nil {
		return 0, 0, nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	total = len(pl.tracks)
	items = []models.PlaylistItem{}
	for i := offset; i < total && i < offset+count; i++ {
		values := make([]string, len(columns))
		for j, c := range columns {
			values[j] = pl.tracks[i].Evaluate(c)
		}
		items = append(items, models.PlaylistItem{Columns: values})
	}
	return offset, total, items, nil
}

// AddPlaylist appends a playlist and returns its id.
func (p *Player) AddPlaylist(title string) string {
	p.mu.Lock()
	pl := &stubPlaylist{id: shared.GenerateID(), title: title}
	p.playlists = append(p.playlists, pl)
	if p.currentID == "" {
		p.currentID = pl.id
	}
	p.mu.Unlock()

	p.broker.Publish()
	return pl.id
}

// RemovePlaylist deletes a playlist. Removing the current playlist moves the flag to its neighbour.
func (p *Player) RemovePlaylist(id string) error {
	p.mu.Lock()
	i, pl := p.find(id)
	if pl == nil {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	p.playlists = append(p.playlists[:i], p.playlists[i+1:]...)
	if p.currentID == id {
		p.currentID = ""
		if len(p.playlists) > 0 {
			p.currentID = p.playlists[min(i, len(p.playlists)-1)].id
		}
	}
	if p.active.playlistID == id {
		p.active.playlistID, p.active.index = "", -1
	}
	p.mu.Unlock()

	p.broker.Publish()
	return nil
}

// RenamePlaylist sets a playlist's title.
func (p *Player) RenamePlaylist(id, title string) error {
	return p.mutate(id, func(pl *stubPlaylist) error {
		pl.title = title
		return nil
	})
}

// ClearPlaylist removes every track from a playlist.
func (p *Player) ClearPlaylist(id string) error {
	return p.mutate(id, func(pl *stubPlaylist) error {
		pl.tracks = nil
		return nil
	})
}

// AddTracks appends tracks to a playlist.
func (p *Player) AddTracks(id string, tracks ...Track) error {
	return p.mutate(id, func(pl *stubPlaylist) error {
		pl.tracks = append(pl.tracks, tracks...)
		return nil
	})
}

// Play marks the item at index as active and flags its playlist current.
func (p *Player) Play(id string, index int) error {
	return p.mutate(id, func(pl *stubPlaylist) error {
		if index < 0 || index >= len(pl.tracks) {
			return fmt.Errorf("%w: item index %d out of range", shared.ErrInvalidArgument, index)
		}
		p.active.playlistID, p.active.index = id, index
		p.currentID = id
		return nil
	})
}

// Active returns the playing playlist id and item index, or "" and -1 when stopped.
func (p *Player) Active() (string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active.playlistID, p.active.index
}

func (p *Player) mutate(id string, fn func(*stubPlaylist) error) error {
	p.mu.Lock()
	_, pl := p.find(id)
	if pl == nil {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	err := fn(pl)
	p.mu.Unlock()

	if err != nil {
		return err
	}
	p.broker.Publish()
	return nil
}

// ParseRange parses an "offset:count" item range.
func ParseRange(rng string) (offset, count int, err error) {
	o, c, ok := strings.Cut(rng, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: range %q", shared.ErrInvalidArgument, rng)
	}

	offset, err = strconv.Atoi(o)
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("%w: range offset %q", shared.ErrInvalidArgument, o)
	}
	count, err = strconv.Atoi(c)
	if err != nil || count < 0 {
		return 0, 0, fmt.Errorf("%w: range count %q", shared.ErrInvalidArgument, c)
	}
	return offset, count, nil
}

// DemoTracks returns a small library used to seed playlists for local development.
func DemoTracks() map[string][]Track {
	return map[string][]Track{
		"Ambient": {
			{Path: "/music/eno/01.flac", Artist: "Brian Eno", Album: "Music for Airports", Number: 1, Title: "1/1", Length: 1044},
			{Path: "/music/eno/02.flac", Artist: "Brian Eno", Album: "Music for Airports", Number: 2, Title: "2/1", Length: 533},
		},
		"Jazz": {
			{Path: "/music/davis/01.flac", Artist: "Miles Davis", Album: "Kind of Blue", Number: 1, Title: "So What", Length: 562},
			{Path: "/music/davis/02.flac", Artist: "Miles Davis", Album: "Kind of Blue", Number: 2, Title: "Freddie Freeloader", Length: 589},
			{Path: "/music/davis/03.flac", Artist: "Miles Davis", Album: "Kind of Blue", Number: 3, Title: "Blue in Green", Length: 337},
		},
	}
}

// Seed adds one playlist per entry of library, in title order.
func (p *Player) Seed(library map[string][]Track) error {
	titles := make([]string, 0, len(library))
	for title := range library {
		titles = append(titles, title)
	}
	slices.Sort(titles)

	for _, title := range titles {
		if err := p.AddTracks(p.AddPlaylist(title), library[title]...); err != nil {
			return err
		}
	}
	return nil
}
