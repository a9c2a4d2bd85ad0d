package repository

import (
	"fmt"
	"log"
	"sync"

	"tableflip.dev/lifelog/pkg/archive"
	"tableflip.dev/lifelog/pkg/entry"
	"tableflip.dev/lifelog/pkg/store"
)

// Archives owns the newest-first list of snapshots.
type Archives struct {
	base

	mu   sync.Mutex
	list archive.List
}

// NewArchives loads the archive list stored under key.
func NewArchives(s store.Store, key string, logger *log.Logger) *Archives {
	r := &Archives{base: newBase(s, key, logger)}
	r.Reload()
	return r
}

// Reload discards the in-memory list and reads it again from the store.
func (r *Archives) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := store.Load[archive.List](r.store, r.key, r.logger)
	if list == nil {
		list = archive.List{}
	}
	r.list = list
}

// Create snapshots logs and puts the snapshot first.
func (r *Archives) Create(logs entry.Logs) (archive.Item, error) {
	it := archive.New(logs, r.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(archive.List, 0, len(r.list)+1)
	next = append(next, it)
	next = append(next, r.list...)
	if err := store.Save(r.store, r.key, next); err != nil {
		return archive.Item{}, err
	}
	r.list = next
	return it.Clone(), nil
}

// Restore returns a copy of the logs held by archive id. The archive
// stays in the list.
func (r *Archives) Restore(id string) (entry.Logs, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.list.Find(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", archive.ErrNotFound, id)
	}
	return r.list[i].Logs.Clone(), nil
}

// Get returns a copy of archive id.
func (r *Archives) Get(id string) (archive.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.list.Find(id)
	if i < 0 {
		return archive.Item{}, false
	}
	return r.list[i].Clone(), true
}

// Delete removes archive id. It reports false, and writes nothing, when
// there is no such archive.
func (r *Archives) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.list.Find(id)
	if i < 0 {
		return false, nil
	}
	next := make(archive.List, 0, len(r.list)-1)
	next = append(next, r.list[:i]...)
	next = append(next, r.list[i+1:]...)
	if err := store.Save(r.store, r.key, next); err != nil {
		return false, err
	}
	r.list = next
	return true, nil
}

// List returns a copy of every archive, newest first.
func (r *Archives) List() archive.List {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list.Clone()
}
