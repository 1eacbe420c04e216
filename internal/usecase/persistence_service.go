package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/stocklens/backend/internal/digest"
	"github.com/stocklens/backend/internal/domain"
)

// Defaults for the recent-search store
const (
	DefaultSchemaVersion = "v0"
	DefaultMaxRecent     = 100
	DefaultFeedLimit     = 8
)

// PersistenceServiceConfig holds configuration for the recent-search store
type PersistenceServiceConfig struct {
	SchemaVersion string
	MaxRecent     int
	FeedLimit     int
}

// PersistenceService keeps a bounded, most-recent-first list of searches per
// retailer. Each retailer's store is loaded from the blob store on first use,
// cached in memory, and written back whole on every change.
type PersistenceService struct {
	blobs         domain.BlobStore
	schemaVersion string
	maxRecent     int
	feedLimit     int

	mu     sync.Mutex
	stores map[domain.Retailer]*retailerStore
}

// retailerStore serializes access to one retailer's store
type retailerStore struct {
	mu   sync.Mutex
	data *domain.PersistedStore
}

// NewPersistenceService creates a recent-search store backed by blobs
func NewPersistenceService(blobs domain.BlobStore, config PersistenceServiceConfig) *PersistenceService {
	schemaVersion := config.SchemaVersion
	if schemaVersion == "" {
		schemaVersion = DefaultSchemaVersion
	}
	maxRecent := config.MaxRecent
	if maxRecent <= 0 {
		maxRecent = DefaultMaxRecent
	}
	feedLimit := config.FeedLimit
	if feedLimit <= 0 {
		feedLimit = DefaultFeedLimit
	}

	return &PersistenceService{
		blobs:         blobs,
		schemaVersion: schemaVersion,
		maxRecent:     maxRecent,
		feedLimit:     feedLimit,
		stores:        make(map[domain.Retailer]*retailerStore),
	}
}

// StorageKey is the blob key of a retailer's store.
// Format: "persisted-search--{retailer}--{version}"
func StorageKey(retailer domain.Retailer, version string) string {
	return fmt.Sprintf("persisted-search--%s--%s", retailer, version)
}

// Load returns a copy of the retailer's store. A store that is missing or
// cannot be decoded starts out empty.
func (s *PersistenceService) Load(ctx context.Context, retailer domain.Retailer) *domain.PersistedStore {
	slot := s.slot(retailer)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	store, err := s.loadLocked(ctx, retailer, slot)
	if err != nil {
		log.Printf("[Persist] %v", err)
		return domain.NewPersistedStore()
	}
	return store.Clone()
}

// Persist records a search as the most recent one for the retailer. Known
// searches move to the front, the list is cut to the configured maximum and
// evicted searches are dropped. Storage failures are logged, never returned.
func (s *PersistenceService) Persist(ctx context.Context, retailer domain.Retailer, identity domain.SearchIdentity) {
	slot := s.slot(retailer)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	store, err := s.loadLocked(ctx, retailer, slot)
	if err != nil {
		log.Printf("[Persist] skipping write: %v", err)
		return
	}

	id := digest.Identity(identity)
	touched := false

	if _, ok := store.Searches[id]; !ok {
		store.Searches[id] = identity
		touched = true
	}
	if len(store.Recent) == 0 || store.Recent[0] != id {
		store.Recent = moveToFront(store.Recent, id)
		touched = true
	}
	if len(store.Recent) > s.maxRecent {
		for _, evicted := range store.Recent[s.maxRecent:] {
			delete(store.Searches, evicted)
		}
		store.Recent = store.Recent[:s.maxRecent]
		touched = true
	}

	if !touched {
		return
	}

	key := StorageKey(retailer, s.schemaVersion)
	data, err := json.Marshal(store)
	if err != nil {
		log.Printf("[Persist] %v: encode %s: %v", domain.ErrPersistence, key, err)
		return
	}
	if err := s.blobs.Put(ctx, key, data); err != nil {
		log.Printf("[Persist] %v: write %s: %v", domain.ErrPersistence, key, err)
	}
}

// RecentFeed returns the newest searches for the retailer. It looks at the
// first limit digests of the recent list and skips any that no longer
// resolve. A non-positive limit uses the configured feed size.
func (s *PersistenceService) RecentFeed(ctx context.Context, retailer domain.Retailer, limit int) []domain.RecentSearch {
	if limit <= 0 {
		limit = s.feedLimit
	}

	store := s.Load(ctx, retailer)
	recent := store.Recent
	if len(recent) > limit {
		recent = recent[:limit]
	}

	feed := make([]domain.RecentSearch, 0, len(recent))
	for _, id := range recent {
		identity, ok := store.Searches[id]
		if !ok {
			continue
		}
		feed = append(feed, domain.RecentSearch{
			SearchIdentity: identity,
			Digest:         id,
			LookupPath:     LookupPath(retailer, identity),
		})
	}
	return feed
}

func (s *PersistenceService) slot(retailer domain.Retailer) *retailerStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.stores[retailer]
	if !ok {
		slot = &retailerStore{}
		s.stores[retailer] = slot
	}
	return slot
}

// loadLocked fills the slot from the blob store on first use. The caller
// holds slot.mu. A read failure other than a missing blob is not cached, so
// the next call retries and nothing overwrites the durable copy meanwhile.
func (s *PersistenceService) loadLocked(ctx context.Context, retailer domain.Retailer, slot *retailerStore) (*domain.PersistedStore, error) {
	if slot.data != nil {
		return slot.data, nil
	}

	key := StorageKey(retailer, s.schemaVersion)
	raw, err := s.blobs.Get(ctx, key)
	switch {
	case errors.Is(err, domain.ErrBlobNotFound):
		slot.data = domain.NewPersistedStore()
	case err != nil:
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrPersistence, key, err)
	default:
		slot.data = decodeStore(key, raw)
	}
	return slot.data, nil
}

// decodeStore parses a stored blob, repairing what it can. Duplicate digests
// keep their first position. Unreadable blobs start over empty.
func decodeStore(key string, raw []byte) *domain.PersistedStore {
	var decoded domain.PersistedStore
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.Printf("[Persist] discarding unreadable %s: %v", key, err)
		return domain.NewPersistedStore()
	}

	store := domain.NewPersistedStore()
	for id, identity := range decoded.Searches {
		store.Searches[id] = identity
	}
	seen := make(map[string]bool, len(decoded.Recent))
	for _, id := range decoded.Recent {
		if seen[id] {
			continue
		}
		seen[id] = true
		store.Recent = append(store.Recent, id)
	}
	return store
}

func moveToFront(list []string, id string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, id)
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
