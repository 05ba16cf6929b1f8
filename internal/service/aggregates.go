package service

import (
	"github.com/juniormojica/estuarriendo-sub000/internal/repository"
)

// recountAggregates recomputes total_units and available_units of a container
// from its unit rows. Callers hold the container lock.
func recountAggregates(repo *repository.Repo, containerID uint) error {
	total, err := repo.CountUnits(containerID)
	if err != nil {
		return err
	}
	available, err := repo.CountUnitsByRented(containerID, false)
	if err != nil {
		return err
	}
	return repo.UpdateListingColumns(containerID, map[string]interface{}{
		"total_units":     total,
		"available_units": available,
	})
}

// recountAvailability recomputes available_units only
func recountAvailability(repo *repository.Repo, containerID uint) error {
	available, err := repo.CountUnitsByRented(containerID, false)
	if err != nil {
		return err
	}
	return repo.UpdateListingColumns(containerID, map[string]interface{}{
		"available_units": available,
	})
}
