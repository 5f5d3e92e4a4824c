// Package memory provides an in-memory implementation of
// filestore.Repository, used primarily for testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stashbin/filestore/pkg/filestore"
)

// Repository is an in-memory implementation of the filestore.Repository interface
type Repository struct {
	mu      sync.RWMutex
	records map[int64]*filestore.FileRecord
	keys    map[string]int64
	nextID  int64
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		records: make(map[int64]*filestore.FileRecord),
		keys:    make(map[string]int64),
	}
}

func (r *Repository) Init(ctx context.Context) error {
	return nil
}

func (r *Repository) Insert(ctx context.Context, record *filestore.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keys[record.ObjectKey]; exists {
		return filestore.ErrDuplicateKey
	}

	// IDs are never reused, even after deletes.
	r.nextID++
	record.ID = r.nextID
	record.CreatedAt = time.Now().UTC()

	stored := *record
	r.records[record.ID] = &stored
	r.keys[record.ObjectKey] = record.ID

	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*filestore.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, filestore.ErrFileNotFound
	}

	result := *record
	return &result, nil
}

func (r *Repository) List(ctx context.Context) ([]*filestore.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*filestore.FileRecord, 0, len(r.records))
	for _, record := range r.records {
		result := *record
		records = append(records, &result)
	}

	// Newest first; id breaks ties within the same timestamp.
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return false, nil
	}

	delete(r.records, id)
	delete(r.keys, record.ObjectKey)

	return true, nil
}
