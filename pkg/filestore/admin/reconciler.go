// Package admin provides out-of-band maintenance operations that are not
// part of the request-serving lifecycle.
package admin

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/stashbin/filestore/pkg/filestore"
)

// Reconciler finds blobs in the object store that no metadata row
// references. Such orphans are left behind when an upload's metadata insert
// fails after the blob write succeeded.
type Reconciler struct {
	repo  filestore.Repository
	store filestore.BlobStore
}

// NewReconciler creates a new reconciler over the given stores.
func NewReconciler(repo filestore.Repository, store filestore.BlobStore) *Reconciler {
	return &Reconciler{repo: repo, store: store}
}

// Orphans returns the object keys present in the store but absent from the
// metadata table, sorted for stable output.
//
// The scan lists metadata after blobs, so a file uploaded mid-sweep is seen
// in the metadata and never falsely flagged; the reverse race only hides an
// orphan until the next sweep.
func (r *Reconciler) Orphans(ctx context.Context) ([]string, error) {
	keys, err := r.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	records, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(records))
	for _, record := range records {
		referenced[record.ObjectKey] = true
	}

	var orphans []string
	for _, key := range keys {
		if !referenced[key] {
			orphans = append(orphans, key)
		}
	}
	sort.Strings(orphans)

	return orphans, nil
}

// OrphanInfo describes one orphaned blob.
type OrphanInfo struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

// Describe stats every orphaned blob so a report can show how much data is
// stranded. An orphan that disappears between the sweep and the stat is
// skipped rather than failing the whole report.
func (r *Reconciler) Describe(ctx context.Context) ([]OrphanInfo, error) {
	orphans, err := r.Orphans(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]OrphanInfo, 0, len(orphans))
	for _, key := range orphans {
		meta, err := r.store.GetObjectMeta(ctx, key)
		if err != nil {
			if errors.Is(err, filestore.ErrObjectNotFound) {
				continue
			}
			return nil, err
		}
		infos = append(infos, OrphanInfo{Key: key, Size: meta.Size, UpdatedAt: meta.UpdatedAt})
	}

	return infos, nil
}

// Purge deletes every orphaned blob and returns the keys it removed.
func (r *Reconciler) Purge(ctx context.Context) ([]string, error) {
	orphans, err := r.Orphans(ctx)
	if err != nil {
		return nil, err
	}

	var purged []string
	for _, key := range orphans {
		if err := r.store.Delete(ctx, key); err != nil {
			return purged, err
		}
		purged = append(purged, key)
	}

	return purged, nil
}
