package domain

import (
	"fmt"
	"strings"
)

// Retailer identifies which stock-lookup API and adapter a search uses
type Retailer string

const (
	RetailerTarget   Retailer = "target"
	RetailerBestBuy  Retailer = "bestbuy"
	RetailerWalmart  Retailer = "walmart"
	RetailerGameStop Retailer = "gamestop"
)

// Retailers lists every supported retailer
func Retailers() []Retailer {
	return []Retailer{RetailerTarget, RetailerBestBuy, RetailerWalmart, RetailerGameStop}
}

// ParseRetailer converts a path or config value into a supported Retailer
func ParseRetailer(s string) (Retailer, error) {
	r := Retailer(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Retailers() {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRetailer, s)
}

// DayTimeMap holds a time of day per weekday, e.g. "10:00:00.000"
type DayTimeMap struct {
	Monday    string `json:"Monday,omitempty"`
	Tuesday   string `json:"Tuesday,omitempty"`
	Wednesday string `json:"Wednesday,omitempty"`
	Thursday  string `json:"Thursday,omitempty"`
	Friday    string `json:"Friday,omitempty"`
	Saturday  string `json:"Saturday,omitempty"`
	Sunday    string `json:"Sunday,omitempty"`
}

// Location is a store in the canonical result shape.
// DistanceKm is always computed locally, never copied from the upstream payload.
type Location struct {
	ID            string      `json:"id"`
	Name          string      `json:"name,omitempty"`
	Address       string      `json:"address"`
	City          string      `json:"city"`
	State         string      `json:"state"`
	ZipCode       string      `json:"zipCode"`
	Phone         string      `json:"phone,omitempty"`
	Latitude      *float64    `json:"latitude,omitempty"`
	Longitude     *float64    `json:"longitude,omitempty"`
	TimeZoneID    string      `json:"timeZoneId,omitempty"`
	DistanceKm    float64     `json:"distanceKm"`
	OpenTimesMap  *DayTimeMap `json:"openTimesMap,omitempty"`
	CloseTimesMap *DayTimeMap `json:"closeTimesMap,omitempty"`
}

// PickupAvailability is the in-store pickup channel of an item location
type PickupAvailability struct {
	AvailablePickupQuantity Quantity `json:"availablePickupQuantity,omitzero"`
}

// InStoreAvailability is the walk-in channel of an item location
type InStoreAvailability struct {
	AvailableInStoreQuantity Quantity `json:"availableInStoreQuantity,omitzero"`
}

// ItemLocation is the stock of one item at one store
type ItemLocation struct {
	LocationID          string              `json:"locationId"`
	Availability        PickupAvailability  `json:"availability"`
	InStoreAvailability InStoreAvailability `json:"inStoreAvailability"`
	OnShelfDisplay      *bool               `json:"onShelfDisplay,omitempty"`

	// Scraped retailers also report the raw quantity label and store mode
	QuantityText     string `json:"quantityText,omitempty"`
	MiddleDayClosure bool   `json:"middleDayClosure,omitempty"`
	Mode             string `json:"mode,omitempty"`
}

// Item is one SKU with its per-store availability
type Item struct {
	SKU              string         `json:"sku"`
	InStoreAvailable bool           `json:"inStoreAvailable"`
	ISPUEligible     *bool          `json:"ispuEligible,omitempty"`
	PickupEligible   *bool          `json:"pickupEligible,omitempty"`
	InStoreOnly      *bool          `json:"inStoreOnly,omitempty"`
	Locations        []ItemLocation `json:"locations"`
}

// SearchResults is the canonical output of every retailer adapter
type SearchResults struct {
	Locations []Location `json:"locations"`
	Items     []Item     `json:"items"`
}

// DisplayRow is one store line derived by the reconciler
type DisplayRow struct {
	LocationID string   `json:"locationId"`
	Name       string   `json:"name,omitempty"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	ZipCode    string   `json:"zipCode"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	DistanceKm float64  `json:"distanceKm"`
	Quantity   Quantity `json:"quantity"`
	InStock    bool     `json:"inStock"`
	MapURL     string   `json:"mapUrl,omitempty"`
}

// ReconciliationWarning records a store whose pickup and in-store counts disagree
type ReconciliationWarning struct {
	LocationID      string  `json:"locationId"`
	PickupQuantity  float64 `json:"pickupQuantity"`
	InStoreQuantity float64 `json:"inStoreQuantity"`
}

func (w ReconciliationWarning) String() string {
	return fmt.Sprintf("mismatched quantity at %s: pickup=%v in-store=%v", w.LocationID, w.PickupQuantity, w.InStoreQuantity)
}

// Reconciliation is the reconciler output. NoResults is set when the result had
// no items, which is distinct from every row being out of stock.
type Reconciliation struct {
	Rows      []DisplayRow            `json:"rows"`
	NoResults bool                    `json:"noResults"`
	Warnings  []ReconciliationWarning `json:"warnings,omitempty"`
}

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 { return &v }

// BoolPtr returns a pointer to v
func BoolPtr(v bool) *bool { return &v }
