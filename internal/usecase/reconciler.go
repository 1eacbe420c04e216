package usecase

import (
	"log"
	"math"
	"net/url"
	"strings"

	"github.com/stocklens/backend/internal/domain"
)

const mapsBaseURL = "https://maps.google.com/"

// Reconcile derives one display row per canonical location, in the order the
// adapter produced them, using the first item's per-store availability.
// A location with no matching item location is out of stock. An empty item
// list yields no rows and NoResults.
func Reconcile(results *domain.SearchResults) *domain.Reconciliation {
	if results == nil || len(results.Items) == 0 {
		return &domain.Reconciliation{Rows: []domain.DisplayRow{}, NoResults: true}
	}

	item := results.Items[0]
	byLocation := make(map[string]domain.ItemLocation, len(item.Locations))
	for _, loc := range item.Locations {
		if _, seen := byLocation[loc.LocationID]; !seen {
			byLocation[loc.LocationID] = loc
		}
	}

	reconciliation := &domain.Reconciliation{
		Rows: make([]domain.DisplayRow, 0, len(results.Locations)),
	}

	for _, location := range results.Locations {
		qty := domain.Count(0)
		if itemLocation, ok := byLocation[location.ID]; ok {
			pickup := itemLocation.Availability.AvailablePickupQuantity
			inStore := itemLocation.InStoreAvailability.AvailableInStoreQuantity

			var mismatch bool
			qty, mismatch = MergeQuantity(pickup, inStore)
			if mismatch {
				warning := domain.ReconciliationWarning{
					LocationID:      location.ID,
					PickupQuantity:  pickup.Number(),
					InStoreQuantity: inStore.Number(),
				}
				log.Printf("[Reconcile] %s", warning)
				reconciliation.Warnings = append(reconciliation.Warnings, warning)
			}
		}

		reconciliation.Rows = append(reconciliation.Rows, domain.DisplayRow{
			LocationID: location.ID,
			Name:       location.Name,
			Address:    location.Address,
			City:       location.City,
			State:      location.State,
			ZipCode:    location.ZipCode,
			Latitude:   location.Latitude,
			Longitude:  location.Longitude,
			DistanceKm: location.DistanceKm,
			Quantity:   qty,
			InStock:    qty.InStock(),
			MapURL:     MapURL(location),
		})
	}

	return reconciliation
}

// MergeQuantity combines the pickup and in-store channels into the quantity
// shown for a store. mismatch is true when both channels report different
// counts.
//
//   - two flags are OR-ed
//   - if either is a count, the larger value wins; flags count as 1/0 and
//     absent as 0
//   - a single flag with an absent partner keeps the flag
//   - nothing reported is a count of 0
func MergeQuantity(pickup, inStore domain.Quantity) (qty domain.Quantity, mismatch bool) {
	if pickup.IsCount() && inStore.IsCount() && pickup.Number() != inStore.Number() {
		mismatch = true
	}

	switch {
	case pickup.IsFlag() && inStore.IsFlag():
		return domain.Flag(pickup.Bool() || inStore.Bool()), mismatch
	case pickup.IsCount() || inStore.IsCount():
		n := math.Max(pickup.Number(), inStore.Number())
		if math.IsNaN(n) {
			n = 0
		}
		return domain.Count(n), mismatch
	case pickup.IsFlag():
		return domain.Flag(pickup.Bool()), mismatch
	case inStore.IsFlag():
		return domain.Flag(inStore.Bool()), mismatch
	}
	return domain.Count(0), mismatch
}

// MapURL links a store address to a map search
func MapURL(location domain.Location) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{location.Address, location.City, location.State, location.ZipCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return mapsBaseURL + "?" + url.Values{"q": {strings.Join(parts, " ")}}.Encode()
}
