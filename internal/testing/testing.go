// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/plctl/internal/models"
)

// Watch is a subscription request recorded by [MockSource].
type Watch struct {
	Topic   models.Topic
	Request *models.ItemsRequest
}

// MockSource is a test double for playlist.DataSource that records watches and pushes snapshots on demand.
type MockSource struct {
	mu       sync.Mutex
	handlers map[models.Topic][]func(models.Snapshot)
	watches  []Watch
	Err      error // returned by Watch when set
}

func NewMockSource() *MockSource {
	return &MockSource{handlers: make(map[models.Topic][]func(models.Snapshot))}
}

func (s *MockSource) On(topic models.Topic, handler func(models.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[topic] = append(s.handlers[topic], handler)
}

func (s *MockSource) Watch(topic models.Topic, req *models.ItemsRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recorded *models.ItemsRequest
	if req != nil {
		c := *req
		c.Columns = slices.Clone(req.Columns)
		recorded = &c
	}
	s.watches = append(s.watches, Watch{Topic: topic, Request: recorded})
	return s.Err
}

// Push delivers snapshot to every handler registered for its topic.
func (s *MockSource) Push(snapshot models.Snapshot) {
	s.mu.Lock()
	handlers := slices.Clone(s.handlers[snapshot.Topic])
	s.mu.Unlock()

	for _, h := range handlers {
		h(snapshot)
	}
}

func (s *MockSource) PushPlaylists(playlists ...models.Playlist) {
	s.Push(models.Snapshot{Topic: models.TopicPlaylists, Playlists: playlists})
}

func (s *MockSource) PushItems(items ...models.PlaylistItem) {
	s.Push(models.Snapshot{Topic: models.TopicPlaylistItems, Items: items})
}

// Watches returns every recorded watch in call order.
func (s *MockSource) Watches() []Watch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.watches)
}

// ItemWatches returns the recorded playlistItems requests in call order.
func (s *MockSource) ItemWatches() []models.ItemsRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reqs []models.ItemsRequest
	for _, w := range s.watches {
		if w.Topic == models.TopicPlaylistItems && w.Request != nil {
			reqs = append(reqs, *w.Request)
		}
	}
	return reqs
}

// Handlers returns the number of handlers registered for topic.
func (s *MockSource) Handlers(topic models.Topic) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers[topic])
}

// Call is a command recorded by [MockClient].
type Call struct {
	Command    string
	PlaylistID string
	Title      string
	Index      int
	Items      []string
}

// MockClient is a test double for playlist.Client that records every command.
type MockClient struct {
	mu    sync.Mutex
	calls []Call
	Err   error // returned by every command when set
}

func (c *MockClient) record(call Call) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.Err
}

func (c *MockClient) AddPlaylistItems(ctx context.Context, playlistID string, items []string) error {
	return c.record(Call{Command: "addPlaylistItems", PlaylistID: playlistID, Items: slices.Clone(items)})
}

func (c *MockClient) Play(ctx context.Context, playlistID string, index int) error {
	return c.record(Call{Command: "play", PlaylistID: playlistID, Index: index})
}

func (c *MockClient) AddPlaylist(ctx context.Context, title string) error {
	return c.record(Call{Command: "addPlaylist", Title: title})
}

func (c *MockClient) RemovePlaylist(ctx context.Context, playlistID string) error {
	return c.record(Call{Command: "removePlaylist", PlaylistID: playlistID})
}

func (c *MockClient) RenamePlaylist(ctx context.Context, playlistID, title string) error {
	return c.record(Call{Command: "renamePlaylist", PlaylistID: playlistID, Title: title})
}

func (c *MockClient) ClearPlaylist(ctx context.Context, playlistID string) error {
	return c.record(Call{Command: "clearPlaylist", PlaylistID: playlistID})
}

// Calls returns every recorded command in call order.
func (c *MockClient) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter passes the first n writes through to w and fails every write after that.
type LimitedWriter struct {
	n int
	w io.Writer
}

func NewLimitedWriter(n int, w io.Writer) LimitedWriter {
	return LimitedWriter{n: n, w: w}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return 0, errors.New("write limit reached")
	}
	l.n--
	return l.w.Write(p)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Playlists builds playlists with the given ids, titled after them. The first id prefixed with "*" is flagged current.
func Playlists(ids ...string) []models.Playlist {
	out := make([]models.Playlist, 0, len(ids))
	for i, id := range ids {
		current := false
		if len(id) > 0 && id[0] == '*' {
			id, current = id[1:], true
		}
		out = append(out, models.Playlist{ID: id, Index: i, Title: "Playlist " + id, IsCurrent: current})
	}
	return out
}
