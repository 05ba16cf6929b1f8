package service

import (
	"github.com/juniormojica/estuarriendo-sub000/internal/model"
)

// RentalModeMachine guards the rental mode of a container.
//
//	by_unit  -> complete  only while no unit is rented
//	complete -> by_unit   always; every unit becomes vacant
//
// There is no terminal state.
type RentalModeMachine struct{}

// Transition returns nil when a container in mode from may move to mode to.
// occupiedUnits is the number of its units currently rented.
func (RentalModeMachine) Transition(containerID uint, from, to model.RentalMode, occupiedUnits int64) error {
	from = normalizeMode(from)
	if !to.Valid() {
		return validation("unknown rental mode %q", to)
	}

	switch to {
	case model.RentalByUnit:
		return nil
	case model.RentalComplete:
		if from == model.RentalComplete {
			return conflict(EntityContainer, containerID, "container is already rented as a whole")
		}
		if occupiedUnits > 0 {
			return conflict(EntityContainer, containerID,
				"%d unit(s) already rented; the whole container can only be rented when every unit is vacant", occupiedUnits)
		}
		return nil
	}
	return nil
}

// AllowsUnitChanges reports whether units may be toggled or added in mode.
// While a container is rented as a whole its units follow the container.
func (RentalModeMachine) AllowsUnitChanges(mode model.RentalMode) bool {
	return normalizeMode(mode) == model.RentalByUnit
}

func normalizeMode(mode model.RentalMode) model.RentalMode {
	if mode == "" {
		return model.RentalByUnit
	}
	return mode
}
