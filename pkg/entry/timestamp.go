package entry

import (
	"strings"
	"time"
)

// Layout is the canonical form for generated timestamps. It sorts
// lexicographically in UTC.
const Layout = "2006-01-02T15:04:05.000Z07:00"

// DateLayout is the date-only form Normalize accepts.
const DateLayout = "2006-01-02"

// ParseTime accepts RFC 3339 timestamps with or without fractional seconds.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatTime renders v in the canonical UTC layout.
func FormatTime(v time.Time) string {
	return v.UTC().Format(Layout)
}

// Normalize returns v ready to store. RFC 3339 values pass through
// unchanged; a bare YYYY-MM-DD day becomes midnight of that day in loc.
func Normalize(v string, loc *time.Location) (string, bool) {
	v = strings.TrimSpace(v)
	if ValidTime(v) {
		return v, true
	}
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, v, loc)
	if err != nil {
		return "", false
	}
	return FormatTime(d), true
}

// ValidTime reports whether v parses as a timestamp.
func ValidTime(v string) bool {
	_, err := ParseTime(v)
	return err == nil
}
