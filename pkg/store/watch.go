package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDelay = 50 * time.Millisecond

// watch follows the base directory until Close. Keys live directly under
// basePath, so a single non-recursive watch covers all of them.
func (p *persistence) watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store: create watcher: %w", err)
	}
	if err := watcher.Add(p.basePath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("store: watch %s: %w", p.basePath, err)
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		defer func() {
			if err := watcher.Close(); err != nil {
				p.logger.Printf("store: watcher close: %v", err)
			}
		}()

		throttle := newKeyThrottle(watchDelay)
		defer throttle.Stop()

		for {
			select {
			case <-p.stop:
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.logger.Printf("store: watcher: %v", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				key := p.keyForPath(evt.Name)
				if key == "" {
					continue
				}
				throttle.Enqueue(key, p.changed)
			}
		}
	}()

	return nil
}

// keyForPath maps a file under basePath back to its key. Temp files and
// anything nested are ignored.
func (p *persistence) keyForPath(path string) string {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return ""
	}
	if strings.ContainsRune(rel, filepath.Separator) || strings.HasPrefix(rel, ".") {
		return ""
	}
	return rel
}

// keyThrottle coalesces rapid notifications per key so one rewrite, which
// the filesystem reports as several events, is handled once.
type keyThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
	stopped bool
}

func newKeyThrottle(delay time.Duration) *keyThrottle {
	return &keyThrottle{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

func (t *keyThrottle) Enqueue(key string, send func(string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending[key] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *keyThrottle) flush(send func(string)) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	for key := range pending {
		send(key)
	}
}

func (t *keyThrottle) Stop() {
	t.mu.Lock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
