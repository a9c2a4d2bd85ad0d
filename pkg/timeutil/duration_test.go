package timeutil

import (
	"testing"
	"time"
)

func TestParseWindowFallback(t *testing.T) {
	dur, label, err := ParseWindow("  ", 48*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dur != 48*time.Hour || label != "2d" {
		t.Fatalf("got %v %q, want 48h \"2d\"", dur, label)
	}
	if _, _, err := ParseWindow("", 0); err == nil {
		t.Fatal("expected error without a fallback")
	}
}

func TestParseWindowComposite(t *testing.T) {
	dur, label, err := ParseWindow("1w 2d6h30m", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (7*24+2*24+6)*time.Hour + 30*time.Minute
	if dur != want {
		t.Fatalf("expected %v, got %v", want, dur)
	}
	if label != "1w2d6h30m" {
		t.Fatalf("unexpected label: %s", label)
	}
}

func TestParseWindowInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3y", "0d", "d2"} {
		if _, _, err := ParseWindow(in, time.Hour); err == nil {
			t.Errorf("ParseWindow(%q) should fail", in)
		}
	}
}

func TestFormatWindow(t *testing.T) {
	cases := map[time.Duration]string{
		0:                  "0m",
		90 * time.Minute:   "1h30m",
		8 * 24 * time.Hour: "1w1d",
	}
	for in, want := range cases {
		if got := FormatWindow(in); got != want {
			t.Errorf("FormatWindow(%v) = %q, want %q", in, got, want)
		}
	}
}
