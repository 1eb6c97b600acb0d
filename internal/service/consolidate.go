package service

import (
	"github.com/sirupsen/logrus"

	"carparkfinder/internal/model"
)

// Consolidate collapses slot records sharing a carpark identifier into one
// carpark each, summing lot counts per vehicle class. Output order is the
// order of first appearance of each identifier in the input; upstream
// ranking already encodes relevance and must not be disturbed here.
func Consolidate(slots []model.SlotRecord, logger *logrus.Logger) []model.Carpark {
	index := make(map[string]int, len(slots))
	carparks := make([]model.Carpark, 0, len(slots))

	for _, slot := range slots {
		i, seen := index[slot.CarparkID]
		if !seen {
			carparks = append(carparks, model.Carpark{
				CarparkID:   slot.CarparkID,
				Area:        slot.Area,
				Development: slot.Development,
				Address:     slot.Address,
				Latitude:    slot.Location.Lat(),
				Longitude:   slot.Location.Lon(),
				Source:      slot.Source,
				UpdatedAt:   slot.UpdatedAt,
				HDB:         slot.HDB,
			})
			i = len(carparks) - 1
			index[slot.CarparkID] = i
		}

		cp := &carparks[i]
		switch {
		case slot.Aggregated:
			// Already summed by its source; counts as car lots.
			cp.CarLots += slot.AvailableLots
		case slot.LotType == model.LotTypeCar:
			cp.CarLots += slot.AvailableLots
		case slot.LotType == model.LotTypeMotorcycle:
			cp.MotorcycleLots += slot.AvailableLots
		case slot.LotType == model.LotTypeHeavy:
			cp.HeavyVehicleLots += slot.AvailableLots
		default:
			logger.WithFields(logrus.Fields{
				"carpark_id": slot.CarparkID,
				"lot_type":   slot.LotType,
			}).Warn("Ignoring slot with unrecognized lot type")
		}
	}

	return carparks
}
