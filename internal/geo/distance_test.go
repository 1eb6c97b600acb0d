package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"

	"carparkfinder/internal/model"
)

func TestDistance_SamePointIsZero(t *testing.T) {
	p := orb.Point{103.8198, 1.3521}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_Symmetric(t *testing.T) {
	orchard := orb.Point{103.8322, 1.3040}
	changi := orb.Point{103.9893, 1.3644}

	assert.Equal(t, Distance(orchard, changi), Distance(changi, orchard))
}

func TestDistance_KnownPair(t *testing.T) {
	// Orchard to Changi Airport is roughly 18-19 km as the crow flies.
	orchard := orb.Point{103.8322, 1.3040}
	changi := orb.Point{103.9893, 1.3644}

	d := Distance(orchard, changi)
	assert.InDelta(t, 18.7, d, 1.0)
}

func TestAttachDistances(t *testing.T) {
	carparks := []model.Carpark{
		{CarparkID: "A", Latitude: 1.3040, Longitude: 103.8322},
		{CarparkID: "B", Latitude: 1.3644, Longitude: 103.9893},
	}

	AttachDistances(carparks, orb.Point{103.8322, 1.3040})

	assert.NotNil(t, carparks[0].DistanceKM)
	assert.NotNil(t, carparks[1].DistanceKM)
	assert.Equal(t, 0.0, *carparks[0].DistanceKM)
	assert.Greater(t, *carparks[1].DistanceKM, 10.0)
}

func TestSortByDistance(t *testing.T) {
	far := 12.5
	near := 0.3
	mid := 4.2
	carparks := []model.Carpark{
		{CarparkID: "far", DistanceKM: &far},
		{CarparkID: "none"},
		{CarparkID: "near", DistanceKM: &near},
		{CarparkID: "mid", DistanceKM: &mid},
	}

	SortByDistance(carparks)

	got := make([]string, len(carparks))
	for i, cp := range carparks {
		got[i] = cp.CarparkID
	}
	assert.Equal(t, []string{"near", "mid", "far", "none"}, got)
}
