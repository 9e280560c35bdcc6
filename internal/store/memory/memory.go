// Package memory provides an in-memory command store, used by tests and by
// the --store memory option.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redock-cli/redock/internal/store"
)

// Store keeps command records in process memory. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]map[int64]store.Record
	lastID  map[string]int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records: make(map[string]map[int64]store.Record),
		lastID:  make(map[string]int64),
	}
}

// Insert allocates the category's next id and stores a copy of the record.
func (s *Store) Insert(ctx context.Context, rec store.Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID[rec.Category]++
	id := s.lastID[rec.Category]

	rec.ID = id
	rec.CreatedAt = time.Now().UTC()
	rec.Values = rec.Values.Clone()
	rec.FallbackTokens = append([]string(nil), rec.FallbackTokens...)

	if s.records[rec.Category] == nil {
		s.records[rec.Category] = make(map[int64]store.Record)
	}
	s.records[rec.Category][id] = rec
	return id, nil
}

// Get returns a copy of one record, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, category string, id int64) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[category][id]
	if !ok {
		return store.Record{}, fmt.Errorf("category %s, id %d: %w", category, id, store.ErrNotFound)
	}
	return copyRecord(rec), nil
}

// List returns copies of all records of a category in ascending id order.
func (s *Store) List(ctx context.Context, category string) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Record
	for _, rec := range s.records[category] {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes one record. The id counter is untouched so the freed id is
// never reused.
func (s *Store) Delete(ctx context.Context, category string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[category][id]; !ok {
		return fmt.Errorf("category %s, id %d: %w", category, id, store.ErrNotFound)
	}
	delete(s.records[category], id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func copyRecord(rec store.Record) store.Record {
	rec.Values = rec.Values.Clone()
	rec.FallbackTokens = append([]string(nil), rec.FallbackTokens...)
	return rec
}

var _ store.Store = (*Store)(nil)
