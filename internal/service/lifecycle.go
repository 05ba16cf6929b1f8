package service

import (
	"context"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/internal/repository"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"go.uber.org/zap"
)

// Lifecycle drives the rental mode of containers and the occupancy of their units
type Lifecycle struct {
	store   *repository.Store
	machine RentalModeMachine
	views   views
}

// OccupancyChange is the result of toggling a unit
type OccupancyChange struct {
	Unit      *model.Listing `json:"unit"`
	Container *model.Listing `json:"container"`
	// Changed is false when the unit already had the requested occupancy
	Changed bool `json:"changed"`
}

// NewLifecycle creates the lifecycle manager. A nil cache disables view invalidation.
func NewLifecycle(store *repository.Store, cache ViewCache) *Lifecycle {
	return &Lifecycle{store: store, views: newViews(cache)}
}

// RentCompleteContainer rents a container as a whole. Every unit must be vacant;
// afterwards every unit is rented and no unit is available.
func (l *Lifecycle) RentCompleteContainer(ctx context.Context, id uint) (*model.Listing, error) {
	var container *model.Listing
	err := l.store.InTx(ctx, func(repo *repository.Repo) error {
		current, err := l.lockContainer(repo, id)
		if err != nil {
			return err
		}
		occupied, err := repo.CountUnitsByRented(id, true)
		if err != nil {
			return err
		}
		if err := l.machine.Transition(id, current.RentalMode, model.RentalComplete, occupied); err != nil {
			return err
		}

		if err := repo.SetUnitsRented(id, true); err != nil {
			return err
		}
		if err := repo.UpdateListingColumns(id, map[string]interface{}{
			"rental_mode": model.RentalComplete,
			"is_rented":   true,
		}); err != nil {
			return err
		}
		if err := updateContainerAvailability(repo, id); err != nil {
			return err
		}
		container, err = repo.FindListing(id)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Warn("Complete rental rejected", zap.Uint("container_id", id), zap.Error(err))
		return nil, err
	}

	l.views.invalidate(ctx, id)
	logger.FromContext(ctx).Info("Container rented as a whole", zap.Uint("container_id", id), zap.Int("units", container.TotalUnits))
	return container, nil
}

// ChangeToByUnitMode moves a container back to renting rooms individually.
// It is always allowed and leaves every unit vacant.
func (l *Lifecycle) ChangeToByUnitMode(ctx context.Context, id uint) (*model.Listing, error) {
	var container *model.Listing
	err := l.store.InTx(ctx, func(repo *repository.Repo) error {
		current, err := l.lockContainer(repo, id)
		if err != nil {
			return err
		}
		if err := l.machine.Transition(id, current.RentalMode, model.RentalByUnit, 0); err != nil {
			return err
		}

		if err := repo.SetUnitsRented(id, false); err != nil {
			return err
		}
		if err := repo.UpdateListingColumns(id, map[string]interface{}{
			"rental_mode": model.RentalByUnit,
			"is_rented":   false,
		}); err != nil {
			return err
		}
		if err := updateContainerAvailability(repo, id); err != nil {
			return err
		}
		container, err = repo.FindListing(id)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.views.invalidate(ctx, id)
	logger.FromContext(ctx).Info("Container switched to by-unit mode", zap.Uint("container_id", id), zap.Int("available_units", container.AvailableUnits))
	return container, nil
}

// UpdateUnitRentalStatus sets the occupancy of a unit and recounts the
// availability of its container. Setting the current value again is a no-op
// that still returns the current state. Units of a container rented as a whole
// cannot be toggled.
func (l *Lifecycle) UpdateUnitRentalStatus(ctx context.Context, unitID uint, isRented bool) (*OccupancyChange, error) {
	change := &OccupancyChange{}
	err := l.store.InTx(ctx, func(repo *repository.Repo) error {
		unit, err := repo.FindListing(unitID)
		if err != nil {
			return lookupErr(err, EntityUnit, unitID)
		}
		if !unit.IsUnit() {
			return invalidState(EntityListing, unitID, "listing is not a unit")
		}

		containerID := *unit.ParentID
		container, err := repo.LockListing(containerID)
		if err != nil {
			return lookupErr(err, EntityContainer, containerID)
		}
		if !l.machine.AllowsUnitChanges(container.RentalMode) {
			return conflict(EntityContainer, containerID, "units cannot be toggled while the container is rented as a whole")
		}

		// unit writes hold the container lock; re-read under it
		if unit, err = repo.FindListing(unitID); err != nil {
			return lookupErr(err, EntityUnit, unitID)
		}
		if !unit.IsUnit() || *unit.ParentID != containerID {
			return conflict(EntityUnit, unitID, "unit moved while its container was being locked")
		}

		change.Changed = unit.IsRented != isRented
		if change.Changed {
			if err := repo.UpdateListingColumns(unitID, map[string]interface{}{"is_rented": isRented}); err != nil {
				return err
			}
		}
		if err := updateContainerAvailability(repo, containerID); err != nil {
			return err
		}

		if change.Unit, err = repo.FindListing(unitID); err != nil {
			return err
		}
		change.Container, err = repo.FindListing(containerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.views.invalidate(ctx, change.Container.ID)
	logger.FromContext(ctx).Info("Unit occupancy updated",
		zap.Uint("unit_id", unitID),
		zap.Bool("is_rented", isRented),
		zap.Bool("changed", change.Changed),
		zap.Int("available_units", change.Container.AvailableUnits))
	return change, nil
}

func (l *Lifecycle) lockContainer(repo *repository.Repo, id uint) (*model.Listing, error) {
	container, err := repo.LockListing(id)
	if err != nil {
		return nil, lookupErr(err, EntityContainer, id)
	}
	if !container.IsContainer {
		return nil, invalidState(EntityListing, id, "listing is not a container")
	}
	return container, nil
}

// updateContainerAvailability recounts available_units from the occupancy of the units
func updateContainerAvailability(repo *repository.Repo, containerID uint) error {
	return recountAvailability(repo, containerID)
}
