package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultPoll is how often the sqlite backend looks for foreign writes.
const DefaultPoll = 500 * time.Millisecond

type sqliteStore struct {
	db     *sql.DB
	path   string
	writer string
	logger *log.Logger
	subs   subscribers

	mu      sync.Mutex
	lastRev int64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// OpenSQLite returns a Store backed by a SQLite file. Every handle gets its
// own writer id; rows written under another id are foreign and are
// reported to subscribers by a poller running every poll interval.
func OpenSQLite(path string, poll time.Duration, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = DefaultLogger()
	}
	if poll <= 0 {
		poll = DefaultPoll
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// One connection keeps pragmas and :memory: databases consistent.
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	s := &sqliteStore{
		db:     db,
		path:   path,
		writer: uuid.NewString(),
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if err := db.QueryRow("SELECT COALESCE(MAX(revision), 0) FROM kv").Scan(&s.lastRev); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: read revision: %w", err)
	}

	go s.pollLoop(poll)
	return s, nil
}

func (s *sqliteStore) Read(key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	var val []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return val, nil
}

func (s *sqliteStore) Write(key string, raw []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if raw == nil {
		raw = []byte{}
	}
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, revision, writer, updated_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(revision), 0) + 1 FROM kv), ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = excluded.revision,
			writer = excluded.writer,
			updated_at = excluded.updated_at
	`, key, raw, s.writer, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) OnExternalChange(key string, fn func()) func() {
	return s.subs.add(key, fn)
}

func (s *sqliteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		s.subs.clear()
		err = s.db.Close()
	})
	return err
}

func (s *sqliteStore) pollLoop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			keys, err := s.foreignChanges()
			if err != nil {
				s.logger.Printf("store: poll %s: %v", s.path, err)
				continue
			}
			for _, key := range keys {
				s.subs.notify(key)
			}
		case <-s.stop:
			return
		}
	}
}

// foreignChanges returns keys rewritten by other writers since the last
// poll. Our own rows only advance the cursor.
func (s *sqliteStore) foreignChanges() ([]string, error) {
	s.mu.Lock()
	since := s.lastRev
	s.mu.Unlock()

	rows, err := s.db.Query(
		"SELECT key, revision, writer FROM kv WHERE revision > ? ORDER BY revision", since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	seen := make(map[string]bool)
	maxRev := since
	for rows.Next() {
		var (
			key    string
			rev    int64
			writer string
		)
		if err := rows.Scan(&key, &rev, &writer); err != nil {
			return nil, err
		}
		if rev > maxRev {
			maxRev = rev
		}
		if writer != s.writer && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if maxRev > s.lastRev {
		s.lastRev = maxRev
	}
	s.mu.Unlock()
	return keys, nil
}
