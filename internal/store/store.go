// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps the client's history records and the active
// recommendation tile set consistent with the server. The server is
// authoritative: Refresh replaces local state wholesale, while Delete
// and Feedback mutate locally first and roll back to the captured
// snapshot when the remote call fails. Mutations land in the order
// callers issued them; a slow refresh never resurrects a record whose
// optimistic delete is still in flight.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/mosaic/pkg/types"
)

// Client is the backend surface the store needs. *api.Client satisfies it.
type Client interface {
	Records(ctx context.Context, page, pageSize int) ([]types.Record, int, error)
	DeleteRecord(ctx context.Context, id string) error
	Recommendations(ctx context.Context, analysisID string) ([]types.Tile, error)
	Feedback(ctx context.Context, tileID string, action types.TileAction) ([]types.Tile, error)
}

const defaultPageSize = 20

// Store is the authoritative-in-client collection. One instance per
// process; safe for concurrent use.
type Store struct {
	client Client
	logger *logrus.Logger

	pageSize int

	mu      sync.Mutex
	records []types.Record
	total   int

	tiles      []types.Tile
	analysisID string

	// pendingDeletes holds record ids whose optimistic removal has not
	// been confirmed by the server yet. A refresh snapshot fetched before
	// such a delete was issued must not re-add these records.
	pendingDeletes map[string]struct{}
}

// New builds an empty store around client. logger may be nil; background
// refresh then logs nowhere.
func New(client Client, cfg types.StoreConfig, logger *logrus.Logger) *Store {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &Store{
		client:         client,
		logger:         logger,
		pageSize:       pageSize,
		pendingDeletes: make(map[string]struct{}),
	}
}

// Records returns a copy of the current history collection.
func (s *Store) Records() []types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Total returns the server-reported total record count from the last
// refresh.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Tiles returns a copy of the loaded recommendation tiles.
func (s *Store) Tiles() []types.Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Tile, len(s.tiles))
	copy(out, s.tiles)
	return out
}

// Refresh replaces the history collection with the server's first page.
// Records deleted optimistically after this refresh was issued stay
// deleted: the fetched snapshot is older than the local mutation, and
// mutations win in issue order.
func (s *Store) Refresh(ctx context.Context) error {
	items, total, err := s.client.Records(ctx, 1, s.pageSize)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := items[:0]
	for _, rec := range items {
		if _, deleting := s.pendingDeletes[rec.ID]; deleting {
			total--
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	s.total = total
	return nil
}

// Delete removes the record locally at once, then confirms with the
// server. On remote failure the exact pre-mutation snapshot is restored
// and the error is returned to the caller; local and remote views never
// diverge permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	snapshot := make([]types.Record, len(s.records))
	copy(snapshot, s.records)
	snapshotTotal := s.total

	found := false
	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	if found {
		s.total--
	}
	s.pendingDeletes[id] = struct{}{}
	s.mu.Unlock()

	err := s.client.DeleteRecord(ctx, id)

	s.mu.Lock()
	delete(s.pendingDeletes, id)
	if err != nil {
		s.records = snapshot
		s.total = snapshotTotal
	}
	s.mu.Unlock()
	return err
}

// LoadTiles fetches the recommendation set for one analysis and makes it
// the active tile collection.
func (s *Store) LoadTiles(ctx context.Context, analysisID string) ([]types.Tile, error) {
	tiles, err := s.client.Recommendations(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tiles = tiles
	s.analysisID = analysisID
	s.mu.Unlock()
	return s.Tiles(), nil
}

// Feedback records a keep/discard verdict for a tile. Resubmitting the
// action a tile already carries is a no-op reported as success, without
// a remote call. A different action overwrites, optimistically: the
// local tile is patched first and restored from snapshot if the server
// rejects the call. When the server replies with a rescored list, that
// list replaces local state verbatim.
func (s *Store) Feedback(ctx context.Context, tileID string, action types.TileAction) error {
	s.mu.Lock()
	idx := -1
	for i := range s.tiles {
		if s.tiles[i].ID == tileID {
			idx = i
			break
		}
	}
	if idx >= 0 && s.tiles[idx].UserAction == action {
		s.mu.Unlock()
		return nil
	}

	snapshot := make([]types.Tile, len(s.tiles))
	copy(snapshot, s.tiles)
	if idx >= 0 {
		s.tiles[idx].UserAction = action
	}
	s.mu.Unlock()

	updated, err := s.client.Feedback(ctx, tileID, action)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.tiles = snapshot
		return err
	}
	if updated != nil {
		s.tiles = updated
	}
	return nil
}

// StartBackgroundRefresh refreshes the history collection every interval
// until ctx is cancelled. Transport hiccups are logged and retried on
// the next scheduled tick; they never interrupt the user.
func (s *Store) StartBackgroundRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					s.logger.WithError(err).Warn("background history refresh failed; retrying next tick")
				}
			}
		}
	}()
}
