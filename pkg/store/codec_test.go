package store

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestLoadAbsentIsZero(t *testing.T) {
	var buf bytes.Buffer
	got := Load[sample](NewMemory(), "missing", log.New(&buf, "", 0))
	if got.Name != "" || got.Items != nil {
		t.Fatalf("Load = %+v, want zero", got)
	}
	if buf.Len() != 0 {
		t.Errorf("absent key should not log, got %q", buf.String())
	}
}

func TestLoadMalformedLogsAndRecovers(t *testing.T) {
	s := NewMemory()
	_ = s.Write("bad", []byte("{not json"))

	var buf bytes.Buffer
	got := Load[map[string][]string](s, "bad", log.New(&buf, "", 0))
	if got != nil {
		t.Fatalf("Load = %v, want nil map", got)
	}
	if !strings.Contains(buf.String(), "decode bad") {
		t.Errorf("expected decode warning, got %q", buf.String())
	}
}

func TestSaveThenLoad(t *testing.T) {
	s := NewMemory()
	in := sample{Name: "x", Items: []string{}}
	if err := Save(s, "k", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := s.Read("k")
	if string(raw) != `{"name":"x","items":[]}` {
		t.Errorf("raw = %s", raw)
	}
	out := Load[sample](s, "k", DiscardLogger())
	if out.Items == nil || len(out.Items) != 0 {
		t.Errorf("empty slice not preserved: %#v", out.Items)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	s, err := Open(Options{Backend: "memory"}, DiscardLogger())
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	s.Close()

	if _, err := Open(Options{Backend: "etcd"}, DiscardLogger()); err == nil {
		t.Fatal("unknown backend should fail")
	}

	s, err = Open(Options{Path: t.TempDir()}, DiscardLogger())
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if _, ok := s.(*persistence); !ok {
		t.Errorf("default backend = %T, want diskv persistence", s)
	}
	s.Close()
}
