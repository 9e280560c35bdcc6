// Package store defines the persistence contract for captured commands:
// per-category, strictly increasing identifiers over immutable records.
// Backends live in the sqlite and memory subpackages.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redock-cli/redock/internal/parse"
)

// ErrNotFound is returned when no record exists for a (category, id) pair.
var ErrNotFound = errors.New("command not found")

// Record is one stored command. Records are append-only: an update allocates
// a new record under a new id and never touches the original. Freed ids are
// not recycled after deletion.
type Record struct {
	Category       string
	ID             int64
	Values         parse.Values
	Fallback       bool
	FallbackTokens []string
	CreatedAt      time.Time
}

// Store is the transactional keyed table backing the command history.
//
// Insert must allocate max(id)+1 for the category and write the record as a
// single atomic unit; concurrent inserts for the same category must never
// produce duplicate ids.
type Store interface {
	// Insert persists a new record and returns its allocated id. The ID and
	// CreatedAt fields of the argument are ignored.
	Insert(ctx context.Context, rec Record) (int64, error)
	// Get returns one record, or ErrNotFound.
	Get(ctx context.Context, category string, id int64) (Record, error)
	// List returns all records of a category in ascending id order.
	List(ctx context.Context, category string) ([]Record, error)
	// Delete removes one record permanently, or returns ErrNotFound.
	Delete(ctx context.Context, category string, id int64) error
	// Close releases the backing resources.
	Close() error
}

// payload is the serialized form of a record's value set. The verbatim
// fallback flag and tokens travel with the values so a record round-trips
// exactly.
type payload struct {
	Values         parse.Values `json:"values"`
	Fallback       bool         `json:"fallback,omitempty"`
	FallbackTokens []string     `json:"fallback_tokens,omitempty"`
}

// EncodePayload serializes a record's value set for storage.
func EncodePayload(rec Record) ([]byte, error) {
	data, err := json.Marshal(payload{
		Values:         rec.Values,
		Fallback:       rec.Fallback,
		FallbackTokens: rec.FallbackTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode command payload: %w", err)
	}
	return data, nil
}

// DecodePayload restores a record's value set from its stored form.
func DecodePayload(data []byte, rec *Record) error {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode command payload: %w", err)
	}
	rec.Values = p.Values
	rec.Fallback = p.Fallback
	rec.FallbackTokens = p.FallbackTokens
	return nil
}
