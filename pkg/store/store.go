// Package store is the durable key/value layer shared by every execution
// context of one installation.
package store

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned by Read when no value is stored under a key.
var ErrNotFound = errors.New("store: not found")

// Store persists one raw value per key.
//
// OnExternalChange registers fn to run whenever the value under key is
// changed by another execution context sharing the same store. Writes made
// through this Store never trigger its own subscribers. fn may be called
// from a background goroutine. The returned func cancels the subscription.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, raw []byte) error
	OnExternalChange(key string, fn func()) (cancel func())
	Close() error
}

// Backend names accepted by Options.
const (
	BackendDiskv  = "diskv"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Path    string
	// Poll is how often the sqlite backend checks for foreign writes.
	Poll time.Duration
}

// Open returns the Store described by opts.
func Open(opts Options, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = DefaultLogger()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendDiskv:
		return OpenDiskv(opts.Path, logger)
	case BackendSQLite:
		path := opts.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "lifelog.db")
		}
		return OpenSQLite(path, opts.Poll, logger)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
	}
}

// DefaultLogger writes non-fatal store conditions to stderr.
func DefaultLogger() *log.Logger {
	return log.New(os.Stderr, "lifelog: ", log.LstdFlags)
}

// DiscardLogger drops everything; handy in tests.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func validKey(key string) error {
	switch {
	case key == "":
		return errors.New("store: empty key")
	case strings.HasPrefix(key, "."):
		return fmt.Errorf("store: key %q must not start with a dot", key)
	case strings.ContainsAny(key, `/\`):
		return fmt.Errorf("store: key %q must not contain a path separator", key)
	}
	return nil
}

func digest(raw []byte) [sha256.Size]byte {
	return sha256.Sum256(raw)
}

// subscribers is the per-handle registry of external change callbacks.
type subscribers struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func (s *subscribers) add(key string, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[string]map[int]func())
	}
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func())
	}
	id := s.next
	s.next++
	s.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[key], id)
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
		})
	}
}

func (s *subscribers) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[key]) > 0
}

// notify runs the callbacks for key outside the registry lock.
func (s *subscribers) notify(key string) {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *subscribers) clear() {
	s.mu.Lock()
	s.subs = nil
	s.mu.Unlock()
}
