package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
)

// maxEventSize bounds a single update event; an items window of 1000 rows fits comfortably.
const maxEventSize = 8 << 20

// updateEvent is the JSON payload of one server-sent event on /api/query/updates.
type updateEvent struct {
	Playlists     *[]models.Playlist `json:"playlists"`
	PlaylistItems *ItemsPage         `json:"playlistItems"`
}

type delivery struct {
	topic    models.Topic
	gen      uint64
	snapshot models.Snapshot
}

// UpdatesSource is a push data source backed by the player's server-sent event stream.
//
// Each topic has at most one live stream; [UpdatesSource.Watch] cancels the previous one. Snapshots from every
// stream are delivered to handlers serially from a single goroutine, and events from a replaced stream are dropped.
type UpdatesSource struct {
	opts   Opts
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan delivery
	wg     sync.WaitGroup

	mu       sync.Mutex
	handlers map[models.Topic][]func(models.Snapshot)
	streams  map[models.Topic]context.CancelFunc
	gens     map[models.Topic]uint64
	closed   bool
}

// NewUpdatesSource creates a source for the player at opts.BaseURL and starts its dispatch loop.
func NewUpdatesSource(opts Opts) *UpdatesSource {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	s := &UpdatesSource{
		opts:     opts,
		logger:   shared.WithLogger(opts.Logger, "component", "updates", "client", shared.GenerateID()),
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(chan delivery, 16),
		handlers: make(map[models.Topic][]func(models.Snapshot)),
		streams:  make(map[models.Topic]context.CancelFunc),
		gens:     make(map[models.Topic]uint64),
	}

	s.wg.Add(1)
	go s.dispatch()
	return s
}

// On registers handler for every snapshot pushed on topic.
func (s *UpdatesSource) On(topic models.Topic, handler func(models.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[topic] = append(s.handlers[topic], handler)
}

// Watch opens a stream for topic, replacing the previous one. req is required for the playlistItems topic.
//
// The connection is made in the background; stream failures are logged and the stream is not retried.
func (s *UpdatesSource) Watch(topic models.Topic, req *models.ItemsRequest) error {
	query, err := updatesQuery(topic, req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return shared.ErrStreamClosed
	}

	if cancel, ok := s.streams[topic]; ok {
		cancel()
	}
	s.gens[topic]++
	gen := s.gens[topic]

	ctx, cancel := context.WithCancel(s.ctx)
	s.streams[topic] = cancel

	s.wg.Add(1)
	go s.stream(ctx, topic, gen, query)

	s.logger.Debug("watch", "topic", topic, "gen", gen, "query", query.Encode())
	return nil
}

// Close cancels every stream and stops the dispatch loop. It blocks until all goroutines have exited.
func (s *UpdatesSource) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *UpdatesSource) dispatch() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case d := <-s.queue:
			s.mu.Lock()
			current := s.gens[d.topic] == d.gen
			handlers := slices.Clone(s.handlers[d.topic])
			s.mu.Unlock()

			if !current {
				s.logger.Debug("dropped stale snapshot", "topic", d.topic, "gen", d.gen)
				continue
			}
			for _, h := range handlers {
				h(d.snapshot)
			}
		}
	}
}

func (s *UpdatesSource) stream(ctx context.Context, topic models.Topic, gen uint64, query url.Values) {
	defer s.wg.Done()

	logger := s.logger.With("topic", topic, "gen", gen)
	err := s.readStream(ctx, query, func(ev updateEvent) bool {
		snapshot, ok := ev.snapshot(topic)
		if !ok {
			return true
		}

		select {
		case s.queue <- delivery{topic: topic, gen: gen, snapshot: snapshot}:
			return true
		case <-ctx.Done():
			return false
		}
	})

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Debug("stream ended")
	default:
		logger.Warn("update stream failed", "error", err)
	}
}

// readStream connects to the update endpoint and calls fn with every decoded event until the stream ends, ctx is
// cancelled, or fn returns false.
func (s *UpdatesSource) readStream(ctx context.Context, query url.Values, fn func(updateEvent) bool) error {
	req, err := newRequest(ctx, s.opts, http.MethodGet, "/api/query/updates?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	err = scanEvents(resp.Body, func(data []byte) bool {
		var ev updateEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Warn("invalid update event", "error", err)
			return true
		}
		return fn(ev)
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return shared.ErrStreamClosed
}

// scanEvents splits a server-sent event stream into event payloads. Multiple data lines of one event are joined
// with newlines; comments and other fields are ignored.
func scanEvents(r io.Reader, fn func(data []byte) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if data.Len() > 0 {
				if !fn(bytes.Clone(data.Bytes())) {
					return nil
				}
				data.Reset()
			}
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		if field != "data" {
			continue
		}
		if data.Len() > 0 {
			data.WriteByte('\n')
		}
		data.WriteString(strings.TrimPrefix(value, " "))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read update stream: %w", err)
	}
	return nil
}

// snapshot extracts the part of ev belonging to topic.
func (ev updateEvent) snapshot(topic models.Topic) (models.Snapshot, bool) {
	switch topic {
	case models.TopicPlaylists:
		if ev.Playlists == nil {
			return models.Snapshot{}, false
		}
		return models.Snapshot{Topic: topic, Playlists: *ev.Playlists}, true
	case models.TopicPlaylistItems:
		if ev.PlaylistItems == nil {
			return models.Snapshot{}, false
		}
		return models.Snapshot{Topic: topic, Items: ev.PlaylistItems.Items}, true
	default:
		return models.Snapshot{}, false
	}
}

// updatesQuery maps a subscription to the update endpoint's query parameters.
func updatesQuery(topic models.Topic, req *models.ItemsRequest) (url.Values, error) {
	query := url.Values{}

	switch topic {
	case models.TopicPlaylists:
		query.Set("playlists", "true")
	case models.TopicPlaylistItems:
		if req == nil || req.PlaylistRef == "" {
			return nil, fmt.Errorf("%w: playlistItems watch needs a playlist reference", shared.ErrInvalidInput)
		}
		rng := req.Range
		if rng == "" {
			rng = models.ItemsRange
		}
		query.Set("playlistItems", "true")
		query.Set("plref", req.PlaylistRef)
		query.Set("plrange", rng)
		query.Set("plcolumns", strings.Join(req.Columns, ","))
	default:
		return nil, fmt.Errorf("%w: unknown topic %q", shared.ErrInvalidInput, topic)
	}

	return query, nil
}
