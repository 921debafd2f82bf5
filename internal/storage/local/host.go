package local

import (
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/itchan-dev/askanon/shared/logger"
)

// ChangeEvent is broadcast after a context writes a key. Like the browser
// storage event it is only delivered to the other contexts on the same host.
type ChangeEvent struct {
	Key    string
	Origin uint64
}

type listener struct {
	context uint64
	fn      func(ChangeEvent)
}

// Host is the shared local store that several contexts (browser tabs, in the
// original deployment) attach to. All writes to the document are serialized by
// one lock, which stands in for the single-threaded event loop.
type Host struct {
	kv KV

	// mu guards kv and closed
	mu     sync.Mutex
	closed bool

	lmu         sync.RWMutex
	listeners   map[uint64]listener
	nextContext uint64
	nextHandle  uint64
}

func NewHost(kv KV) *Host {
	return &Host{
		kv:        kv,
		listeners: make(map[uint64]listener),
	}
}

func (h *Host) newContextID() uint64 {
	h.lmu.Lock()
	defer h.lmu.Unlock()
	h.nextContext++
	return h.nextContext
}

// view runs fn with the raw value of key while holding the host lock.
func (h *Host) view(key string, fn func([]byte) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return pebble.ErrClosed
	}
	data, err := h.kv.Get(key)
	if err != nil {
		return err
	}
	return fn(data)
}

// update performs a read-modify-write of key under the host lock. If fn returns
// nil data nothing is written. On a write the other contexts are signalled.
func (h *Host) update(origin uint64, key string, fn func([]byte) ([]byte, error)) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return pebble.ErrClosed
	}
	data, err := h.kv.Get(key)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	next, err := fn(data)
	if err != nil || next == nil {
		h.mu.Unlock()
		return err
	}
	if err := h.kv.Set(key, next); err != nil {
		h.mu.Unlock()
		return err
	}
	h.mu.Unlock()

	h.broadcast(ChangeEvent{Key: key, Origin: origin})
	return nil
}

// Listen registers fn for change events caused by contexts other than ctxID.
// The returned func removes the listener.
func (h *Host) Listen(ctxID uint64, fn func(ChangeEvent)) func() {
	h.lmu.Lock()
	h.nextHandle++
	handle := h.nextHandle
	h.listeners[handle] = listener{context: ctxID, fn: fn}
	h.lmu.Unlock()

	return func() {
		h.lmu.Lock()
		delete(h.listeners, handle)
		h.lmu.Unlock()
	}
}

// broadcast queues the event for every listener of another context. Each
// listener runs on its own goroutine, after the writer has released the lock.
func (h *Host) broadcast(ev ChangeEvent) {
	h.lmu.RLock()
	defer h.lmu.RUnlock()
	for _, l := range h.listeners {
		if l.context == ev.Origin {
			continue
		}
		go l.fn(ev)
	}
	logger.Log.Debug("local change broadcast", "component", "local_store", "key", ev.Key, "origin", ev.Origin)
}

// Close closes the store. Later reads and writes from any context fail with
// pebble.ErrClosed. Closing twice is a no-op.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.kv.Close()
}
