package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

const tempDirName = ".tmp"

// OpenDiskv returns a Store keeping one file per key under basePath. Other
// processes opening the same basePath are other execution contexts: their
// writes reach this handle's subscribers through a filesystem watcher.
func OpenDiskv(basePath string, logger *log.Logger) (Store, error) {
	if basePath == "" {
		return nil, errors.New("store: base path required")
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	tempDir := filepath.Join(basePath, tempDirName)
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	p := &persistence{
		d: diskv.New(diskv.Options{
			BasePath: basePath,
			TempDir:  tempDir,
			// No read cache: another process may rewrite a key at any time.
			CacheSizeMax: 0,
		}),
		basePath: basePath,
		logger:   logger,
		seen:     make(map[string][32]byte),
	}
	if err := p.watch(); err != nil {
		return nil, err
	}
	return p, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	logger   *log.Logger
	subs     subscribers

	mu sync.Mutex
	// seen is the digest of the last value this handle wrote or read per
	// key. A watcher event whose content matches it is not foreign.
	seen map[string][32]byte

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func (p *persistence) Read(key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.mu.Lock()
	p.seen[key] = digest(val)
	p.mu.Unlock()
	return val, nil
}

func (p *persistence) Write(key string, raw []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	// Record before writing so the watcher sees our own event as known.
	p.mu.Lock()
	p.seen[key] = digest(raw)
	p.mu.Unlock()
	return p.d.Write(key, raw)
}

func (p *persistence) OnExternalChange(key string, fn func()) func() {
	return p.subs.add(key, fn)
}

func (p *persistence) Close() error {
	p.closeOnce.Do(func() {
		close(p.stop)
		<-p.done
		p.subs.clear()
	})
	return nil
}

// changed is called by the watcher once per burst of events on key.
func (p *persistence) changed(key string) {
	if !p.subs.has(key) {
		return
	}
	raw, err := os.ReadFile(filepath.Join(p.basePath, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		p.logger.Printf("store: read %s after change: %v", key, err)
		return
	}
	sum := digest(raw)

	p.mu.Lock()
	prev, known := p.seen[key]
	if known && prev == sum {
		p.mu.Unlock()
		return
	}
	p.seen[key] = sum
	p.mu.Unlock()

	p.subs.notify(key)
}
