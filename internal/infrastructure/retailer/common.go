package retailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/geo"
)

// coordinate is a latitude or longitude sent as a JSON number or a numeric
// string. A value that is not numeric decodes as unset, so the location falls
// back to the sentinel distance instead of failing the payload.
type coordinate struct {
	value float64
	set   bool
}

func (c *coordinate) UnmarshalJSON(data []byte) error {
	*c = coordinate{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var v float64
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			log.Printf("[Adapter] ignoring non-numeric coordinate %q", s)
			return nil
		}
		v = parsed
	} else if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("[Adapter] ignoring non-numeric coordinate %s", data)
		return nil
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		log.Printf("[Adapter] ignoring non-finite coordinate %s", data)
		return nil
	}
	*c = coordinate{value: v, set: true}
	return nil
}

func (c coordinate) ptr() *float64 {
	if !c.set {
		return nil
	}
	v := c.value
	return &v
}

// searchOrigin is the point a search was made from
type searchOrigin struct {
	Lat  coordinate `json:"lat"`
	Long coordinate `json:"long"`
}

func (o *searchOrigin) latLong() (*float64, *float64) {
	if o == nil {
		return nil, nil
	}
	return o.Lat.ptr(), o.Long.ptr()
}

// applyDistances computes DistanceKm from origin for every location and
// orders them nearest first. Equal distances keep their upstream order.
func applyDistances(origin *searchOrigin, locations []domain.Location) {
	originLat, originLong := origin.latLong()
	for i := range locations {
		locations[i].DistanceKm = geo.DistanceFrom(originLat, originLong, locations[i].Latitude, locations[i].Longitude)
	}
	sort.SliceStable(locations, func(i, j int) bool {
		return locations[i].DistanceKm < locations[j].DistanceKm
	})
}

// decodePayload unmarshals raw into v, reporting failures as adapter errors
func decodePayload(retailer domain.Retailer, raw []byte, v interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.NewAdapterError(retailer, "payload", fmt.Errorf("empty payload"))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.NewAdapterError(retailer, "payload", err)
	}
	return nil
}

// anyInStock reports whether any item location has stock on either channel
func anyInStock(locations []domain.ItemLocation) bool {
	for _, loc := range locations {
		if loc.Availability.AvailablePickupQuantity.InStock() || loc.InStoreAvailability.AvailableInStoreQuantity.InStock() {
			return true
		}
	}
	return false
}
