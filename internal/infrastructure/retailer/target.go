package retailer

import (
	"fmt"

	"github.com/stocklens/backend/internal/domain"
)

// targetPayload is the fulfillment response of the target stock API
type targetPayload struct {
	Origin *searchOrigin `json:"origin"`
	Data   struct {
		FulfillmentFiats *targetFulfillmentFiats `json:"fulfillment_fiats"`
	} `json:"data"`
}

type targetFulfillmentFiats struct {
	ProductID string           `json:"product_id"`
	Locations []targetLocation `json:"locations"`
}

type targetLocation struct {
	LocationID         string      `json:"location_id"`
	AvailableToPromise *float64    `json:"location_available_to_promise_quantity"`
	InStoreOnly        *bool       `json:"in_store_only"`
	Store              targetStore `json:"store"`
}

type targetStore struct {
	StoreID              string                `json:"store_id"`
	LocationName         string                `json:"location_name"`
	MailingAddress       targetMailingAddress  `json:"mailing_address"`
	MainVoicePhoneNumber string                `json:"main_voice_phone_number"`
	Geographic           targetGeographicSpecs `json:"geographic_specifications"`
	TimeZone             string                `json:"time_zone"`
}

type targetMailingAddress struct {
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	State        string `json:"state"`
}

type targetGeographicSpecs struct {
	Latitude  coordinate `json:"latitude"`
	Longitude coordinate `json:"longitude"`
}

// TargetAdapter renames target's fulfillment fields into the canonical shape
type TargetAdapter struct{}

// NewTargetAdapter creates the target adapter
func NewTargetAdapter() *TargetAdapter {
	return &TargetAdapter{}
}

// Retailer returns domain.RetailerTarget
func (a *TargetAdapter) Retailer() domain.Retailer { return domain.RetailerTarget }

// Transform maps a target fulfillment payload to SearchResults.
// Pickup and in-store quantities both carry the available-to-promise count.
func (a *TargetAdapter) Transform(raw []byte) (*domain.SearchResults, error) {
	var payload targetPayload
	if err := decodePayload(a.Retailer(), raw, &payload); err != nil {
		return nil, err
	}

	fiats := payload.Data.FulfillmentFiats
	if fiats == nil {
		return nil, domain.NewAdapterError(a.Retailer(), "data.fulfillment_fiats", fmt.Errorf("missing fulfillment data"))
	}

	locations := make([]domain.Location, 0, len(fiats.Locations))
	itemLocations := make([]domain.ItemLocation, 0, len(fiats.Locations))
	inStoreOnly := len(fiats.Locations) > 0

	for i, loc := range fiats.Locations {
		id := loc.LocationID
		if id == "" {
			id = loc.Store.StoreID
		}
		if id == "" {
			return nil, domain.NewAdapterError(a.Retailer(), fmt.Sprintf("locations[%d].location_id", i), fmt.Errorf("missing store id"))
		}

		locations = append(locations, domain.Location{
			ID:         id,
			Name:       loc.Store.LocationName,
			Address:    loc.Store.MailingAddress.AddressLine1,
			City:       loc.Store.MailingAddress.City,
			State:      loc.Store.MailingAddress.State,
			ZipCode:    loc.Store.MailingAddress.PostalCode,
			Phone:      loc.Store.MainVoicePhoneNumber,
			Latitude:   loc.Store.Geographic.Latitude.ptr(),
			Longitude:  loc.Store.Geographic.Longitude.ptr(),
			TimeZoneID: loc.Store.TimeZone,
		})

		var qty domain.Quantity
		if loc.AvailableToPromise != nil {
			qty = domain.Count(*loc.AvailableToPromise)
		}
		itemLocations = append(itemLocations, domain.ItemLocation{
			LocationID:          id,
			Availability:        domain.PickupAvailability{AvailablePickupQuantity: qty},
			InStoreAvailability: domain.InStoreAvailability{AvailableInStoreQuantity: qty},
		})

		if loc.InStoreOnly == nil || !*loc.InStoreOnly {
			inStoreOnly = false
		}
	}
	applyDistances(payload.Origin, locations)

	available := anyInStock(itemLocations)
	item := domain.Item{
		SKU:              fiats.ProductID,
		InStoreAvailable: available,
		ISPUEligible:     domain.BoolPtr(available),
		PickupEligible:   domain.BoolPtr(available),
		InStoreOnly:      domain.BoolPtr(inStoreOnly),
		Locations:        itemLocations,
	}

	return &domain.SearchResults{Locations: locations, Items: []domain.Item{item}}, nil
}
