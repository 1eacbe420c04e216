package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/stocklens/backend/internal/domain"
)

// Result sources reported on a LookupResult
const (
	SourceStockAPI = "StockAPI"
	SourceCache    = "Cache"
)

// StockServiceConfig holds configuration for the stock service
type StockServiceConfig struct {
	// LookupCacheTTL is how long adapted results are reused. Zero disables
	// the lookup cache.
	LookupCacheTTL time.Duration
}

// StockService handles stock lookups and the searches they leave behind
type StockService struct {
	client         domain.StockClient
	adapter        domain.ResultAdapter
	persistence    *PersistenceService
	sessions       *SessionService
	cache          domain.CacheRepository
	lookupCacheTTL time.Duration
}

// NewStockService creates a new stock service with dependencies.
// cache may be nil, which disables the lookup cache.
func NewStockService(
	client domain.StockClient,
	adapter domain.ResultAdapter,
	persistence *PersistenceService,
	sessions *SessionService,
	cache domain.CacheRepository,
	config StockServiceConfig,
) *StockService {
	return &StockService{
		client:         client,
		adapter:        adapter,
		persistence:    persistence,
		sessions:       sessions,
		cache:          cache,
		lookupCacheTTL: config.LookupCacheTTL,
	}
}

// Lookup finds store availability for a SKU near a zipcode.
// Flow: validate -> resolve zipcode -> remember zipcode -> persist search ->
// cache or fetch -> adapt -> reconcile
func (s *StockService) Lookup(ctx context.Context, request *domain.LookupRequest) (*domain.LookupResult, error) {
	req, err := NormalizeLookupParams(request)
	if err != nil {
		return nil, err
	}

	if req.Zipcode == "" {
		if zip, ok := s.sessions.LastZip(ctx, req.SessionID); ok {
			req.Zipcode = zip
		}
	}
	if !IsValidZipcode(req.Zipcode) {
		return nil, fmt.Errorf("%w: a five digit zipcode is required", domain.ErrInvalidZipcode)
	}

	if err := s.sessions.RememberZip(ctx, req.SessionID, req.Zipcode); err != nil {
		log.Printf("[Session] failed to remember zipcode: %v", err)
	}

	// The search is recorded even if the fetch below fails.
	s.persistence.Persist(ctx, req.Retailer, req.Identity())

	results, source, err := s.fetchResults(ctx, req)
	if err != nil {
		return nil, err
	}

	reconciliation := Reconcile(results)

	return &domain.LookupResult{
		Retailer:   req.Retailer,
		SKU:        req.SKU,
		Zipcode:    req.Zipcode,
		ProductURL: ProductURL(req.Retailer, req.SKU),
		Source:     source,
		Results:    results,
		Rows:       reconciliation.Rows,
		NoResults:  reconciliation.NoResults,
		Warnings:   reconciliation.Warnings,
	}, nil
}

// CreateSearch validates and records a search without fetching stock, and
// returns the path that performs its lookup.
func (s *StockService) CreateSearch(ctx context.Context, retailer domain.Retailer, identity domain.SearchIdentity) (string, error) {
	req, err := NormalizeLookupParams(&domain.LookupRequest{
		Retailer: retailer,
		SKU:      identity.SKU,
		Title:    identity.Title,
		Image:    identity.Image,
	})
	if err != nil {
		return "", err
	}

	s.persistence.Persist(ctx, req.Retailer, req.Identity())
	return LookupPath(req.Retailer, req.Identity()), nil
}

// RecentSearches returns the retailer's recent-search feed
func (s *StockService) RecentSearches(ctx context.Context, retailer domain.Retailer, limit int) ([]domain.RecentSearch, error) {
	parsed, err := domain.ParseRetailer(string(retailer))
	if err != nil {
		return nil, err
	}
	return s.persistence.RecentFeed(ctx, parsed, limit), nil
}

// LastZip returns the session's last zipcode, if any
func (s *StockService) LastZip(ctx context.Context, sessionID string) (string, bool) {
	return s.sessions.LastZip(ctx, sessionID)
}

// ForgetZip clears the session's last zipcode
func (s *StockService) ForgetZip(ctx context.Context, sessionID string) error {
	if err := s.sessions.ForgetZip(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: forget zipcode: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (s *StockService) fetchResults(ctx context.Context, req *domain.LookupRequest) (*domain.SearchResults, string, error) {
	cacheKey := generateLookupCacheKey(req)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, SourceCache, nil
	}

	raw, err := s.client.FetchStock(ctx, req.Retailer, req.SKU, req.Zipcode)
	if err != nil {
		if errors.Is(err, domain.ErrStockNotFound) || errors.Is(err, domain.ErrStockAPIFailure) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", domain.ErrStockAPIFailure, err)
	}

	results, err := s.adapter.Adapt(req.Retailer, raw)
	if err != nil {
		log.Printf("[Adapter] %s sku=%s: %v", req.Retailer, req.SKU, err)
		return nil, "", err
	}

	if err := s.setInCache(ctx, cacheKey, results); err != nil {
		log.Printf("[Cache] failed to store lookup %s: %v", cacheKey, err)
	}

	return results, SourceStockAPI, nil
}

// generateLookupCacheKey creates the lookup cache key.
// Format: "stock:{retailer}:{sku}:{zipcode}"
func generateLookupCacheKey(req *domain.LookupRequest) string {
	return fmt.Sprintf("stock:%s:%s:%s", req.Retailer, strings.ToLower(req.SKU), req.Zipcode)
}

func (s *StockService) getFromCache(ctx context.Context, key string) (*domain.SearchResults, error) {
	if s.cache == nil || s.lookupCacheTTL <= 0 {
		return nil, domain.ErrCacheMiss
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var results domain.SearchResults
	if err := json.Unmarshal(value, &results); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &results, nil
}

func (s *StockService) setInCache(ctx context.Context, key string, results *domain.SearchResults) error {
	if s.cache == nil || s.lookupCacheTTL <= 0 {
		return nil
	}

	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.lookupCacheTTL)
}
