package playlist

import "sync"

// Signal names a change notification emitted by the [Model].
type Signal int

const (
	PlaylistsChange Signal = iota
	ItemsChange
)

func (s Signal) String() string {
	switch s {
	case PlaylistsChange:
		return "playlistsChange"
	case ItemsChange:
		return "itemsChange"
	default:
		return ""
	}
}

// ObserverID identifies a registration returned by [Model.Observe]. The zero value is never issued.
type ObserverID uint64

type observer struct {
	id ObserverID
	fn func()
}

// registry holds per-signal callbacks in registration order.
type registry struct {
	mu      sync.Mutex
	next    ObserverID
	entries map[Signal][]observer
	closed  bool
}

func newRegistry() *registry {
	return &registry{entries: make(map[Signal][]observer)}
}

func (r *registry) add(sig Signal, fn func()) ObserverID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || fn == nil {
		return 0
	}

	r.next++
	r.entries[sig] = append(r.entries[sig], observer{id: r.next, fn: fn})
	return r.next
}

func (r *registry) remove(id ObserverID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sig, list := range r.entries {
		for i, o := range list {
			if o.id == id {
				r.entries[sig] = append(list[:i:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (r *registry) count(sig Signal) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries[sig])
}

// notify calls every callback for sig outside the registry lock, so callbacks may register or unregister.
func (r *registry) notify(sig Signal) {
	r.mu.Lock()
	list := append([]observer(nil), r.entries[sig]...)
	r.mu.Unlock()

	for _, o := range list {
		o.fn()
	}
}

func (r *registry) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.entries = make(map[Signal][]observer)
}
