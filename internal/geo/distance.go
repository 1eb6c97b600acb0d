// Package geo computes great-circle distances between user coordinates and
// carparks.
package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"carparkfinder/internal/model"
)

// EarthRadiusKM is the mean Earth radius used by the haversine formula.
const EarthRadiusKM = 6371.0

// Distance returns the great-circle distance in kilometres between two
// points given in decimal degrees (haversine formula).
func Distance(a, b orb.Point) float64 {
	lat1 := degToRad(a.Lat())
	lat2 := degToRad(b.Lat())
	dLat := degToRad(b.Lat() - a.Lat())
	dLon := degToRad(b.Lon() - a.Lon())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKM * c
}

// AttachDistances sets distance_km on every carpark, measured from the
// given user location.
func AttachDistances(carparks []model.Carpark, from orb.Point) {
	for i := range carparks {
		d := Distance(from, orb.Point{carparks[i].Longitude, carparks[i].Latitude})
		carparks[i].DistanceKM = &d
	}
}

// SortByDistance orders carparks by ascending distance_km. Carparks without
// a distance sort last, keeping their relative order.
func SortByDistance(carparks []model.Carpark) {
	sort.SliceStable(carparks, func(i, j int) bool {
		di, dj := carparks[i].DistanceKM, carparks[j].DistanceKM
		if di == nil || dj == nil {
			return di != nil && dj == nil
		}
		return *di < *dj
	})
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
