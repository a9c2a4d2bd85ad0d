package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteReadWrite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "lifelog.db"), 20*time.Millisecond, DiscardLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := s.Read("k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	for _, v := range []string{"one", "two"} {
		if err := s.Write("k", []byte(v)); err != nil {
			t.Fatalf("write %s: %v", v, err)
		}
	}
	got, err := s.Read("k")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "two" {
		t.Errorf("Read = %q, want two", got)
	}
}

func TestSQLiteMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifelog.db")
	for i := 0; i < 2; i++ {
		s, err := OpenSQLite(path, time.Second, DiscardLogger())
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		v, err := schemaVersion(s.(*sqliteStore).db)
		if err != nil {
			t.Fatalf("schema version: %v", err)
		}
		if v != len(migrations) {
			t.Errorf("schema version = %d, want %d", v, len(migrations))
		}
		s.Close()
	}
}

func TestSQLiteNotifiesForeignWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifelog.db")
	a, err := OpenSQLite(path, 20*time.Millisecond, DiscardLogger())
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()
	b, err := OpenSQLite(path, 20*time.Millisecond, DiscardLogger())
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	aCh, aFn := signal()
	bCh, bFn := signal()
	a.OnExternalChange("archives", aFn)
	b.OnExternalChange("archives", bFn)

	if err := a.Write("archives", []byte("[]")); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, bCh, "notification on b")
	expectQuiet(t, aCh, "self notification on a")
}
