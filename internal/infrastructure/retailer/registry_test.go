package retailer

import (
	"errors"
	"testing"

	"github.com/stocklens/backend/internal/domain"
)

func TestDefaultRegistry_SupportsEveryRetailer(t *testing.T) {
	registry := DefaultRegistry()

	for _, r := range domain.Retailers() {
		if !registry.Supports(r) {
			t.Errorf("Supports(%q) = false, want true", r)
		}
	}
	if registry.Supports(domain.Retailer("costco")) {
		t.Error("Supports(costco) = true, want false")
	}
}

func TestRegistry_Adapt(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("dispatches to the retailer adapter", func(t *testing.T) {
		results, err := registry.Adapt(domain.RetailerWalmart, []byte(`{"stores": [{"storeId": "1"}]}`))
		if err != nil {
			t.Fatalf("Adapt() error = %v", err)
		}
		if len(results.Locations) != 1 || results.Locations[0].ID != "1" {
			t.Errorf("Adapt() locations = %+v, want one store with id 1", results.Locations)
		}
	})

	t.Run("unknown retailer", func(t *testing.T) {
		_, err := registry.Adapt(domain.Retailer("costco"), []byte(`{}`))
		if err == nil {
			t.Fatal("Adapt() error = nil, want ErrUnknownRetailer")
		}
		if !errors.Is(err, domain.ErrUnknownRetailer) {
			t.Errorf("Adapt() error = %v, want ErrUnknownRetailer", err)
		}
	})
}
