package retailer

import (
	"fmt"

	"github.com/stocklens/backend/internal/domain"
)

// walmartPayload lists nearby stores and per-store eligibility flags
type walmartPayload struct {
	Origin *searchOrigin  `json:"origin"`
	Stores []walmartStore `json:"stores"`
	Item   *walmartItem   `json:"item"`
}

type walmartStore struct {
	StoreID     string         `json:"storeId"`
	DisplayName string         `json:"displayName"`
	Address     walmartAddress `json:"address"`
	Phone       string         `json:"phone"`
	GeoPoint    struct {
		Latitude  coordinate `json:"latitude"`
		Longitude coordinate `json:"longitude"`
	} `json:"geoPoint"`
	TimeZone string `json:"timeZone"`
}

type walmartAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type walmartItem struct {
	UsItemID string             `json:"usItemId"`
	Stores   []walmartItemStore `json:"stores"`
}

type walmartItemStore struct {
	StoreID          string `json:"storeId"`
	PickupEligible   *bool  `json:"pickupEligible"`
	InStoreAvailable *bool  `json:"inStoreAvailable"`
	OnShelfDisplay   *bool  `json:"onShelfDisplay"`
}

// WalmartAdapter maps walmart's eligibility flags to boolean quantities
type WalmartAdapter struct{}

// NewWalmartAdapter creates the walmart adapter
func NewWalmartAdapter() *WalmartAdapter {
	return &WalmartAdapter{}
}

// Retailer returns domain.RetailerWalmart
func (a *WalmartAdapter) Retailer() domain.Retailer { return domain.RetailerWalmart }

// Transform maps a walmart payload to SearchResults. A payload without an
// item yields no items.
func (a *WalmartAdapter) Transform(raw []byte) (*domain.SearchResults, error) {
	var payload walmartPayload
	if err := decodePayload(a.Retailer(), raw, &payload); err != nil {
		return nil, err
	}

	locations := make([]domain.Location, 0, len(payload.Stores))
	for i, store := range payload.Stores {
		if store.StoreID == "" {
			return nil, domain.NewAdapterError(a.Retailer(), fmt.Sprintf("stores[%d].storeId", i), fmt.Errorf("missing store id"))
		}
		locations = append(locations, domain.Location{
			ID:         store.StoreID,
			Name:       store.DisplayName,
			Address:    store.Address.Street,
			City:       store.Address.City,
			State:      store.Address.State,
			ZipCode:    store.Address.PostalCode,
			Phone:      store.Phone,
			Latitude:   store.GeoPoint.Latitude.ptr(),
			Longitude:  store.GeoPoint.Longitude.ptr(),
			TimeZoneID: store.TimeZone,
		})
	}
	applyDistances(payload.Origin, locations)

	results := &domain.SearchResults{Locations: locations, Items: []domain.Item{}}
	if payload.Item == nil {
		return results, nil
	}

	itemLocations := make([]domain.ItemLocation, 0, len(payload.Item.Stores))
	pickupEligible := false
	for i, s := range payload.Item.Stores {
		if s.StoreID == "" {
			return nil, domain.NewAdapterError(a.Retailer(), fmt.Sprintf("item.stores[%d].storeId", i), fmt.Errorf("missing store id"))
		}
		loc := domain.ItemLocation{LocationID: s.StoreID, OnShelfDisplay: s.OnShelfDisplay}
		if s.PickupEligible != nil {
			loc.Availability.AvailablePickupQuantity = domain.Flag(*s.PickupEligible)
			pickupEligible = pickupEligible || *s.PickupEligible
		}
		if s.InStoreAvailable != nil {
			loc.InStoreAvailability.AvailableInStoreQuantity = domain.Flag(*s.InStoreAvailable)
		}
		itemLocations = append(itemLocations, loc)
	}

	results.Items = append(results.Items, domain.Item{
		SKU:              payload.Item.UsItemID,
		InStoreAvailable: anyInStock(itemLocations),
		PickupEligible:   domain.BoolPtr(pickupEligible),
		ISPUEligible:     domain.BoolPtr(pickupEligible),
		Locations:        itemLocations,
	})
	return results, nil
}
