package retailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"github.com/stocklens/backend/internal/domain"
)

const defaultStoreMode = "ACTIVE"

// gameStopPayload is a scraped store-locator response. Locations is itself a
// JSON-encoded array whose records embed store markup, and StoresResultsHTML
// is the rendered results list carrying per-store counts.
type gameStopPayload struct {
	SKU               string             `json:"sku"`
	SearchKey         *gameStopSearchKey `json:"searchKey"`
	Locations         *string            `json:"locations"`
	Stores            []gameStopStore    `json:"stores"`
	StoresResultsHTML *string            `json:"storesResultsHtml"`
}

type gameStopSearchKey struct {
	Lat  coordinate `json:"lat"`
	Long coordinate `json:"long"`
	SKU  string     `json:"sku"`
}

type gameStopRawLocation struct {
	InfoWindowHTML string     `json:"infoWindowHtml"`
	Name           string     `json:"name"`
	Latitude       coordinate `json:"latitude"`
	Longitude      coordinate `json:"longitude"`
}

type gameStopStore struct {
	ID                    string          `json:"ID"`
	EligiblePickupCount   json.RawMessage `json:"eligibleStorePickupProductCount"`
	StoreMiddleDayClosure *bool           `json:"storeMiddleDayClosure"`
	StoreMode             string          `json:"storeMode"`
}

// GameStopAdapter parses scraped store-locator markup into canonical results
type GameStopAdapter struct{}

// NewGameStopAdapter creates the gamestop adapter
func NewGameStopAdapter() *GameStopAdapter {
	return &GameStopAdapter{}
}

// Retailer returns domain.RetailerGameStop
func (a *GameStopAdapter) Retailer() domain.Retailer { return domain.RetailerGameStop }

// Transform maps a scraped payload to SearchResults with a single item.
// Broken store markup or a missing search origin fails the whole call. An
// unreadable store coordinate or count only affects that store.
func (a *GameStopAdapter) Transform(raw []byte) (*domain.SearchResults, error) {
	var payload gameStopPayload
	if err := decodePayload(a.Retailer(), raw, &payload); err != nil {
		return nil, err
	}

	if payload.SearchKey == nil || !payload.SearchKey.Lat.set || !payload.SearchKey.Long.set {
		return nil, domain.NewAdapterError(a.Retailer(), "searchKey", fmt.Errorf("missing or non-numeric search coordinate"))
	}
	if payload.Locations == nil {
		return nil, domain.NewAdapterError(a.Retailer(), "locations", fmt.Errorf("missing locations"))
	}
	if payload.StoresResultsHTML == nil {
		return nil, domain.NewAdapterError(a.Retailer(), "storesResultsHtml", fmt.Errorf("missing results markup"))
	}

	locations, err := a.parseLocations(*payload.Locations)
	if err != nil {
		return nil, err
	}
	origin := &searchOrigin{Lat: payload.SearchKey.Lat, Long: payload.SearchKey.Long}
	applyDistances(origin, locations)

	counts, err := ParseStoreQuantities(*payload.StoresResultsHTML)
	if err != nil {
		return nil, domain.NewAdapterError(a.Retailer(), "storesResultsHtml", err)
	}

	sku := payload.SKU
	if sku == "" {
		sku = payload.SearchKey.SKU
	}

	item := domain.Item{
		SKU:          sku,
		ISPUEligible: domain.BoolPtr(false),
		Locations:    make([]domain.ItemLocation, 0, len(payload.Stores)),
	}
	for _, store := range payload.Stores {
		qty := a.storeQuantity(store.ID, counts)
		if qty > 0 {
			item.InStoreAvailable = true
			item.ISPUEligible = domain.BoolPtr(true)
		}

		mode := store.StoreMode
		if mode == "" {
			mode = defaultStoreMode
		}
		item.Locations = append(item.Locations, domain.ItemLocation{
			LocationID:          store.ID,
			Availability:        domain.PickupAvailability{AvailablePickupQuantity: domain.Count(float64(qty))},
			InStoreAvailability: domain.InStoreAvailability{AvailableInStoreQuantity: domain.Count(float64(qty))},
			QuantityText:        rawText(store.EligiblePickupCount),
			MiddleDayClosure:    store.StoreMiddleDayClosure != nil && *store.StoreMiddleDayClosure,
			Mode:                mode,
		})
	}

	return &domain.SearchResults{Locations: locations, Items: []domain.Item{item}}, nil
}

func (a *GameStopAdapter) parseLocations(encoded string) ([]domain.Location, error) {
	var rawLocations []gameStopRawLocation
	if err := json.Unmarshal([]byte(encoded), &rawLocations); err != nil {
		return nil, domain.NewAdapterError(a.Retailer(), "locations", err)
	}

	locations := make([]domain.Location, 0, len(rawLocations))
	for i, rl := range rawLocations {
		details, err := ParseStoreFragment(rl.InfoWindowHTML)
		if err != nil {
			return nil, domain.NewAdapterError(a.Retailer(), fmt.Sprintf("locations[%d].infoWindowHtml", i), err)
		}
		locations = append(locations, domain.Location{
			ID:        details.ID,
			Name:      rl.Name,
			Address:   details.Address,
			City:      details.City,
			State:     details.State,
			ZipCode:   details.ZipCode,
			Phone:     details.Phone,
			Latitude:  rl.Latitude.ptr(),
			Longitude: rl.Longitude.ptr(),
		})
	}
	return locations, nil
}

// storeQuantity resolves a store's count, degrading to 0 when it is missing
// or unreadable
func (a *GameStopAdapter) storeQuantity(storeID string, counts map[string]string) int {
	text, ok := counts[storeID]
	if !ok {
		log.Printf("[Adapter] gamestop: no count for store %s, using 0", storeID)
		return 0
	}
	qty, err := ParseQuantityText(text)
	if err != nil {
		log.Printf("[Adapter] gamestop: store %s: %v, using 0", storeID, err)
		return 0
	}
	return qty
}

// rawText renders a JSON scalar as plain text
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
