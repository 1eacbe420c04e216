package retailer

import (
	"fmt"

	"github.com/stocklens/backend/internal/domain"
)

// bestBuyPayload already matches the canonical shape, plus an upstream
// distance that is ignored
type bestBuyPayload struct {
	Origin    *searchOrigin     `json:"origin"`
	Locations []bestBuyLocation `json:"locations"`
	Items     []domain.Item     `json:"items"`
}

type bestBuyLocation struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Address       string             `json:"address"`
	City          string             `json:"city"`
	State         string             `json:"state"`
	ZipCode       string             `json:"zipCode"`
	Phone         string             `json:"phone"`
	Latitude      coordinate         `json:"latitude"`
	Longitude     coordinate         `json:"longitude"`
	TimeZoneID    string             `json:"timeZoneId"`
	OpenTimesMap  *domain.DayTimeMap `json:"openTimesMap"`
	CloseTimesMap *domain.DayTimeMap `json:"closeTimesMap"`
}

// BestBuyAdapter passes through the canonical payload, recomputing distances
type BestBuyAdapter struct{}

// NewBestBuyAdapter creates the bestbuy adapter
func NewBestBuyAdapter() *BestBuyAdapter {
	return &BestBuyAdapter{}
}

// Retailer returns domain.RetailerBestBuy
func (a *BestBuyAdapter) Retailer() domain.Retailer { return domain.RetailerBestBuy }

// Transform maps a bestbuy payload to SearchResults
func (a *BestBuyAdapter) Transform(raw []byte) (*domain.SearchResults, error) {
	var payload bestBuyPayload
	if err := decodePayload(a.Retailer(), raw, &payload); err != nil {
		return nil, err
	}

	locations := make([]domain.Location, 0, len(payload.Locations))
	for i, loc := range payload.Locations {
		if loc.ID == "" {
			return nil, domain.NewAdapterError(a.Retailer(), fmt.Sprintf("locations[%d].id", i), fmt.Errorf("missing store id"))
		}
		locations = append(locations, domain.Location{
			ID:            loc.ID,
			Name:          loc.Name,
			Address:       loc.Address,
			City:          loc.City,
			State:         loc.State,
			ZipCode:       loc.ZipCode,
			Phone:         loc.Phone,
			Latitude:      loc.Latitude.ptr(),
			Longitude:     loc.Longitude.ptr(),
			TimeZoneID:    loc.TimeZoneID,
			OpenTimesMap:  loc.OpenTimesMap,
			CloseTimesMap: loc.CloseTimesMap,
		})
	}
	applyDistances(payload.Origin, locations)

	items := make([]domain.Item, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.Locations == nil {
			item.Locations = []domain.ItemLocation{}
		}
		items = append(items, item)
	}

	return &domain.SearchResults{Locations: locations, Items: items}, nil
}
