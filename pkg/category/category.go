// Package category defines the fixed set of life categories entries and
// alerts are filed under.
package category

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Key is the stable identifier of a category. It is what gets persisted.
type Key string

const (
	Health    Key = "health"
	Finance   Key = "finance"
	Career    Key = "career"
	Education Key = "education"
	Emotion   Key = "emotion"
	Family    Key = "family"
	Spiritual Key = "spiritual"
	Hobby     Key = "hobby"
)

// Category carries the presentation attributes of a Key.
type Category struct {
	Key     Key
	Label   string
	Color   string
	Aliases []string
}

func (k Key) String() string {
	return string(k)
}

// All returns the categories in display order.
func All() []Category {
	c := make([]Category, 0, 8)

	c = append(c, Category{
		Key:     Health,
		Label:   "Health",
		Color:   "#e57373",
		Aliases: []string{"kesehatan", "h"},
	}, Category{
		Key:     Finance,
		Label:   "Finance",
		Color:   "#43a047",
		Aliases: []string{"keuangan", "money", "f"},
	}, Category{
		Key:     Career,
		Label:   "Career",
		Color:   "#1976d2",
		Aliases: []string{"karir", "work", "c"},
	}, Category{
		Key:     Education,
		Label:   "Education",
		Color:   "#ffd54f",
		Aliases: []string{"pendidikan", "study", "e"},
	}, Category{
		Key:     Emotion,
		Label:   "Emotion",
		Color:   "#ffb74d",
		Aliases: []string{"emosi", "mood"},
	}, Category{
		Key:     Family,
		Label:   "Family",
		Color:   "#ba68c8",
		Aliases: []string{"keluarga"},
	}, Category{
		Key:     Spiritual,
		Label:   "Spiritual",
		Color:   "#90caf9",
		Aliases: []string{"s"},
	}, Category{
		Key:     Hobby,
		Label:   "Hobby",
		Color:   "#4db6ac",
		Aliases: []string{"hobi", "fun"},
	})

	return c
}

// Keys returns every Key in display order.
func Keys() []Key {
	all := All()
	keys := make([]Key, len(all))
	for i, c := range all {
		keys[i] = c.Key
	}
	return keys
}

// Valid reports whether k is one of the fixed categories.
func Valid(k Key) bool {
	_, ok := Lookup(k)
	return ok
}

// Lookup returns the Category for k.
func Lookup(k Key) (Category, bool) {
	for _, c := range All() {
		if c.Key == k {
			return c, true
		}
	}
	return Category{}, false
}

// Parse resolves a key, label or alias, case-insensitively.
func Parse(raw string) (Key, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("category: empty name")
	}
	for _, c := range All() {
		if string(c.Key) == s || strings.ToLower(c.Label) == s {
			return c.Key, nil
		}
		for _, a := range c.Aliases {
			if a == s {
				return c.Key, nil
			}
		}
	}
	return "", fmt.Errorf("category: unknown category %q", raw)
}

// Label returns the display label, or the raw key for unknown keys.
func (k Key) Label() string {
	if c, ok := Lookup(k); ok {
		return c.Label
	}
	return string(k)
}

// RGB parses the category color. Unknown keys and bad colors are gray.
func (c Category) RGB() colorful.Color {
	col, err := colorful.Hex(c.Color)
	if err != nil {
		return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	return col
}

// Tint blends the category color toward white; amount 0 is the
// category color, 1 is white.
func (c Category) Tint(amount float64) colorful.Color {
	white := colorful.Color{R: 1, G: 1, B: 1}
	return c.RGB().BlendLab(white, amount).Clamped()
}
