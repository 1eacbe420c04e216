// Package retailer adapts retailer-specific stock payloads into the canonical
// SearchResults shape.
package retailer

import (
	"fmt"

	"github.com/stocklens/backend/internal/domain"
)

// Adapter converts one retailer's raw payload into canonical results
type Adapter interface {
	Retailer() domain.Retailer
	Transform(raw []byte) (*domain.SearchResults, error)
}

// Registry dispatches payloads to the adapter registered for a retailer
type Registry struct {
	adapters map[domain.Retailer]Adapter
}

// NewRegistry creates a registry holding the given adapters
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.Retailer]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Retailer()] = a
	}
	return r
}

// DefaultRegistry holds an adapter for every supported retailer
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewTargetAdapter(),
		NewBestBuyAdapter(),
		NewWalmartAdapter(),
		NewGameStopAdapter(),
	)
}

// Supports reports whether an adapter is registered for the retailer
func (r *Registry) Supports(retailer domain.Retailer) bool {
	_, ok := r.adapters[retailer]
	return ok
}

// Adapt transforms raw with the retailer's adapter
func (r *Registry) Adapt(retailer domain.Retailer, raw []byte) (*domain.SearchResults, error) {
	adapter, ok := r.adapters[retailer]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRetailer, retailer)
	}
	return adapter.Transform(raw)
}
