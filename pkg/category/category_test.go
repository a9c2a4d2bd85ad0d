package category

import "testing"

func TestAllHasEightUniqueKeys(t *testing.T) {
	all := All()
	if len(all) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(all))
	}
	seen := map[Key]bool{}
	for _, c := range all {
		if seen[c.Key] {
			t.Fatalf("duplicate key %q", c.Key)
		}
		seen[c.Key] = true
		if string(c.Key) == c.Label {
			t.Fatalf("key %q should differ from its label", c.Key)
		}
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Key{
		"health":    Health,
		" Finance ": Finance,
		"karir":     Career,
		"WORK":      Career,
		"Hobby":     Hobby,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := Parse("gardening"); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if _, err := Parse("   "); err == nil {
		t.Fatal("expected error for empty category")
	}
}

func TestValid(t *testing.T) {
	if !Valid(Spiritual) {
		t.Error("spiritual should be valid")
	}
	if Valid(Key("garden")) {
		t.Error("garden should not be valid")
	}
}

func TestTintMovesTowardWhite(t *testing.T) {
	c, _ := Lookup(Career)
	base := c.RGB()
	tinted := c.Tint(0.8)
	bl, _, _ := base.Lab()
	tl, _, _ := tinted.Lab()
	if tl <= bl {
		t.Fatalf("tint should lighten: base %v tinted %v", base, tinted)
	}
	if got := c.Tint(0).Hex(); got != base.Hex() {
		t.Errorf("Tint(0) = %s, want %s", got, base.Hex())
	}
}
