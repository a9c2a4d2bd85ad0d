package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// Load decodes the JSON value under key. An absent key yields the zero
// value of T. Unreadable or malformed values are logged and also yield the
// zero value; they are never returned to the caller.
func Load[T any](s Store, key string, logger *log.Logger) T {
	var zero T
	raw, err := s.Read(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && logger != nil {
			logger.Printf("store: read %s: %v (using empty value)", key, err)
		}
		return zero
	}
	if len(raw) == 0 {
		return zero
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		if logger != nil {
			logger.Printf("store: decode %s: %v (using empty value)", key, err)
		}
		return zero
	}
	return v
}

// Save encodes v as JSON and writes it under key.
func Save(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := s.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}
