// Package geo computes great-circle distances between store coordinates.
package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used for distances
	EarthRadiusKm = 6371.0

	// SentinelDistanceKm is returned when a distance cannot be computed.
	// It sorts malformed coordinates to the end of a nearest-first list.
	SentinelDistanceKm = 9999.0

	// roundingTolerance bounds how far the cosine operand may overshoot [-1, 1]
	// from floating point error alone
	roundingTolerance = 1e-12
)

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// Distance returns the distance in kilometers between two points given in
// degrees, using the spherical law of cosines. It never returns NaN.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	for _, v := range []float64{lat1, lon1, lat2, lon2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return SentinelDistanceKm
		}
	}

	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	dLambda := degToRad(lon2) - degToRad(lon1)

	cosC := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	switch {
	case cosC > 1 && cosC-1 <= roundingTolerance:
		cosC = 1
	case cosC < -1 && -1-cosC <= roundingTolerance:
		cosC = -1
	}

	d := math.Acos(cosC) * EarthRadiusKm
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return SentinelDistanceKm
	}
	return d
}

// DistanceFrom is Distance with optional coordinates. Any missing coordinate
// yields SentinelDistanceKm.
func DistanceFrom(lat1, lon1, lat2, lon2 *float64) float64 {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return SentinelDistanceKm
	}
	return Distance(*lat1, *lon1, *lat2, *lon2)
}
