package store

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSharedHandlesSeeEachOther(t *testing.T) {
	shared := NewShared()
	a := shared.Handle()
	b := shared.Handle()
	defer a.Close()
	defer b.Close()

	var aCalls, bCalls int
	a.OnExternalChange("k", func() { aCalls++ })
	b.OnExternalChange("k", func() { bCalls++ })

	if err := a.Write("k", []byte("v1")); err != nil {
		t.Fatalf("write: %v", err)
	}
	shared.Settle()
	if aCalls != 0 {
		t.Errorf("writer notified %d times, want 0", aCalls)
	}
	if bCalls != 1 {
		t.Errorf("other handle notified %d times, want 1", bCalls)
	}

	got, err := b.Read("k")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Read = %q, want v1", got)
	}

	shared.Put("k", []byte("v2"))
	shared.Settle()
	if aCalls != 1 || bCalls != 2 {
		t.Errorf("after Put: a=%d b=%d, want 1 and 2", aCalls, bCalls)
	}
}

func TestMemoryCancelAndClose(t *testing.T) {
	shared := NewShared()
	a := shared.Handle()
	b := shared.Handle()

	calls := 0
	cancel := b.OnExternalChange("k", func() { calls++ })
	cancel()
	cancel()
	_ = a.Write("k", []byte("x"))
	shared.Settle()
	if calls != 0 {
		t.Fatalf("cancelled subscriber called %d times", calls)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := b.Read("k"); err == nil {
		t.Fatal("read on closed handle should fail")
	}
	if err := a.Write("k", []byte("y")); err != nil {
		t.Fatalf("write after peer close: %v", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	s := NewMemory()
	raw := []byte("abc")
	_ = s.Write("k", raw)
	raw[0] = 'z'

	got, _ := s.Read("k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
	got[0] = 'q'
	again, _ := s.Read("k")
	if string(again) != "abc" {
		t.Fatalf("read value aliased store: %q", again)
	}
	if _, err := s.Read("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSharedDeliversOffTheWriter(t *testing.T) {
	shared := NewShared()
	a := shared.Handle()
	b := shared.Handle()
	defer a.Close()
	defer b.Close()

	// A callback that blocks until its own writer returns would hang a
	// synchronous delivery.
	var mu sync.Mutex
	written := make(chan struct{})
	got := 0
	b.OnExternalChange("k", func() {
		<-written
		mu.Lock()
		got++
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		_ = a.Write("k", []byte("v"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Write waited for a subscriber")
	}
	close(written)
	shared.Settle()

	mu.Lock()
	defer mu.Unlock()
	if got != 1 {
		t.Fatalf("notified %d times, want 1", got)
	}
}

func TestSettleCoversChainedWrites(t *testing.T) {
	shared := NewShared()
	a := shared.Handle()
	b := shared.Handle()
	defer a.Close()
	defer b.Close()

	var mu sync.Mutex
	echoed := false
	b.OnExternalChange("ping", func() { _ = b.Write("pong", []byte("1")) })
	a.OnExternalChange("pong", func() {
		mu.Lock()
		echoed = true
		mu.Unlock()
	})

	_ = a.Write("ping", []byte("1"))
	shared.Settle()

	mu.Lock()
	defer mu.Unlock()
	if !echoed {
		t.Fatal("Settle returned before the chained notification ran")
	}
}
