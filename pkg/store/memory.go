package store

import (
	"errors"
	"sync"
)

// Shared is an in-process backend standing in for one durable store that
// several execution contexts open. Each Handle is one context.
//
// Like the file watcher, a handle delivers change notifications on its
// own goroutine, never on the writer's. Pending notifications for the
// same key coalesce. Settle waits until all of them have run.
type Shared struct {
	mu      sync.Mutex
	data    map[string][]byte
	handles map[*memoryStore]struct{}

	flight   sync.Mutex
	idle     *sync.Cond
	inflight int
}

// NewShared returns an empty shared backend.
func NewShared() *Shared {
	s := &Shared{
		data:    make(map[string][]byte),
		handles: make(map[*memoryStore]struct{}),
	}
	s.idle = sync.NewCond(&s.flight)
	return s
}

// Handle opens a new execution context on s.
func (s *Shared) Handle() Store {
	h := &memoryStore{
		shared:  s,
		pending: make(map[string]struct{}),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.mu.Lock()
	s.handles[h] = struct{}{}
	s.mu.Unlock()
	go h.deliver()
	return h
}

// Raw returns a copy of the stored bytes, for tests and diagnostics.
func (s *Shared) Raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Put writes raw directly, as if from a context with no handle here.
// Every handle's subscribers for key are notified.
func (s *Shared) Put(key string, raw []byte) {
	s.mu.Lock()
	s.data[key] = append([]byte(nil), raw...)
	others := s.snapshotHandles(nil)
	s.mu.Unlock()
	for _, h := range others {
		h.enqueue(key)
	}
}

// Settle blocks until every notification queued so far, and any queued by
// the callbacks it runs, has been delivered.
func (s *Shared) Settle() {
	s.flight.Lock()
	for s.inflight > 0 {
		s.idle.Wait()
	}
	s.flight.Unlock()
}

func (s *Shared) begin() {
	s.flight.Lock()
	s.inflight++
	s.flight.Unlock()
}

func (s *Shared) end(n int) {
	if n == 0 {
		return
	}
	s.flight.Lock()
	s.inflight -= n
	if s.inflight <= 0 {
		s.inflight = 0
		s.idle.Broadcast()
	}
	s.flight.Unlock()
}

func (s *Shared) snapshotHandles(except *memoryStore) []*memoryStore {
	out := make([]*memoryStore, 0, len(s.handles))
	for h := range s.handles {
		if h != except {
			out = append(out, h)
		}
	}
	return out
}

// NewMemory returns a single-context in-memory Store.
func NewMemory() Store {
	return NewShared().Handle()
}

type memoryStore struct {
	shared *Shared
	subs   subscribers

	qmu     sync.Mutex
	pending map[string]struct{}
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

var errClosed = errors.New("store: closed")

func (m *memoryStore) Read(key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	if _, ok := m.shared.handles[m]; !ok {
		return nil, errClosed
	}
	v, ok := m.shared.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Write stores raw and queues a notification on every other handle.
func (m *memoryStore) Write(key string, raw []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.shared.mu.Lock()
	if _, ok := m.shared.handles[m]; !ok {
		m.shared.mu.Unlock()
		return errClosed
	}
	m.shared.data[key] = append([]byte(nil), raw...)
	others := m.shared.snapshotHandles(m)
	m.shared.mu.Unlock()

	for _, h := range others {
		h.enqueue(key)
	}
	return nil
}

func (m *memoryStore) OnExternalChange(key string, fn func()) func() {
	return m.subs.add(key, fn)
}

func (m *memoryStore) Close() error {
	m.shared.mu.Lock()
	delete(m.shared.handles, m)
	m.shared.mu.Unlock()

	m.qmu.Lock()
	if m.closed {
		m.qmu.Unlock()
		return nil
	}
	m.closed = true
	dropped := len(m.pending)
	m.pending = nil
	m.qmu.Unlock()

	close(m.done)
	m.subs.clear()
	m.shared.end(dropped)
	return nil
}

func (m *memoryStore) enqueue(key string) {
	m.qmu.Lock()
	if m.closed {
		m.qmu.Unlock()
		return
	}
	if _, ok := m.pending[key]; !ok {
		m.pending[key] = struct{}{}
		m.shared.begin()
	}
	m.qmu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *memoryStore) deliver() {
	for {
		select {
		case <-m.done:
			return
		case <-m.wake:
		}

		m.qmu.Lock()
		keys := make([]string, 0, len(m.pending))
		for k := range m.pending {
			keys = append(keys, k)
		}
		if !m.closed {
			m.pending = make(map[string]struct{})
		}
		m.qmu.Unlock()

		for _, k := range keys {
			m.subs.notify(k)
			m.shared.end(1)
		}
	}
}
