// Package repository keeps the in-memory copy of each persisted aggregate
// and writes the full value back to the store after every mutation.
package repository

import (
	"log"
	"time"

	"tableflip.dev/lifelog/pkg/store"
)

// base is shared by the three repositories.
type base struct {
	store  store.Store
	key    string
	logger *log.Logger
	now    func() time.Time
}

func newBase(s store.Store, key string, logger *log.Logger) base {
	if logger == nil {
		logger = store.DiscardLogger()
	}
	return base{store: s, key: key, logger: logger, now: time.Now}
}
