package service

import (
	"context"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/internal/repository"
	"github.com/juniormojica/estuarriendo-sub000/pkg/config"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"go.uber.org/zap"
)

// Hierarchy manages containers and the units they own
type Hierarchy struct {
	store        *repository.Store
	composer     *Composer
	machine      RentalModeMachine
	deletePolicy config.DeletePolicy
	views        views
}

// NewHierarchy creates the container/unit store. A nil cache disables view caching.
func NewHierarchy(store *repository.Store, composer *Composer, deletePolicy config.DeletePolicy, cache ViewCache) *Hierarchy {
	if deletePolicy == "" {
		deletePolicy = config.DeleteReject
	}
	return &Hierarchy{
		store:        store,
		composer:     composer,
		deletePolicy: deletePolicy,
		views:        newViews(cache),
	}
}

// CreateContainer creates an empty container in by_unit mode with its associations
func (h *Hierarchy) CreateContainer(ctx context.Context, in ListingInput) (*model.Listing, error) {
	var id uint
	err := h.store.InTx(ctx, func(repo *repository.Repo) error {
		container, err := h.composer.createInTx(repo, &in, model.Listing{
			OwnerID:     in.OwnerID,
			TypeID:      in.TypeID,
			IsContainer: true,
		})
		if err != nil {
			return err
		}
		id = container.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Container created", zap.Uint("container_id", id), zap.Uint("owner_id", in.OwnerID))
	return h.composer.FindListingWithAssociations(ctx, id)
}

// CreateUnit adds a unit to a container. The unit inherits owner, type and
// location; the container aggregates are recounted in the same transaction.
func (h *Hierarchy) CreateUnit(ctx context.Context, containerID uint, in UnitInput) (*model.Listing, error) {
	var id uint
	err := h.store.InTx(ctx, func(repo *repository.Repo) error {
		container, err := repo.LockListing(containerID)
		if err != nil {
			return lookupErr(err, EntityContainer, containerID)
		}
		if !container.IsContainer {
			return invalidState(EntityListing, containerID, "listing is not a container")
		}
		if !h.machine.AllowsUnitChanges(container.RentalMode) {
			return conflict(EntityContainer, containerID, "cannot add units while the container is rented as a whole")
		}

		listingIn := in.listingInput()
		unit, err := h.composer.createInTx(repo, &listingIn, model.Listing{
			OwnerID:    container.OwnerID,
			TypeID:     container.TypeID,
			ParentID:   &container.ID,
			LocationID: container.LocationID,
		})
		if err != nil {
			return err
		}
		id = unit.ID
		return recountAggregates(repo, container.ID)
	})
	if err != nil {
		return nil, err
	}

	h.views.invalidate(ctx, containerID)
	logger.FromContext(ctx).Info("Unit created", zap.Uint("unit_id", id), zap.Uint("container_id", containerID))
	return h.composer.FindListingWithAssociations(ctx, id)
}

// DeleteUnit removes a unit and recounts its container
func (h *Hierarchy) DeleteUnit(ctx context.Context, unitID uint) error {
	var containerID uint
	err := h.store.InTx(ctx, func(repo *repository.Repo) error {
		unit, err := repo.FindListing(unitID)
		if err != nil {
			return lookupErr(err, EntityUnit, unitID)
		}
		if !unit.IsUnit() {
			return invalidState(EntityListing, unitID, "listing is not a unit")
		}
		containerID = *unit.ParentID
		if _, err := repo.LockListing(containerID); err != nil {
			return lookupErr(err, EntityContainer, containerID)
		}

		if err := repo.DeleteAssociations(unitID); err != nil {
			return err
		}
		if err := repo.DeleteListing(unitID); err != nil {
			return err
		}
		return recountAggregates(repo, containerID)
	})
	if err != nil {
		return err
	}

	h.views.invalidate(ctx, containerID)
	logger.FromContext(ctx).Info("Unit deleted", zap.Uint("unit_id", unitID), zap.Uint("container_id", containerID))
	return nil
}

// DeleteContainer removes a container. What happens to its units is decided by
// the configured delete policy.
func (h *Hierarchy) DeleteContainer(ctx context.Context, id uint) error {
	var detached int
	err := h.store.InTx(ctx, func(repo *repository.Repo) error {
		container, err := repo.LockListing(id)
		if err != nil {
			return lookupErr(err, EntityContainer, id)
		}
		if !container.IsContainer {
			return invalidState(EntityListing, id, "listing is not a container")
		}

		unitIDs, err := repo.UnitIDs(id)
		if err != nil {
			return err
		}
		detached = len(unitIDs)
		if len(unitIDs) > 0 {
			switch h.deletePolicy {
			case config.DeleteCascade:
				if err := repo.DeleteAssociations(unitIDs...); err != nil {
					return err
				}
				if err := repo.DeleteUnits(id); err != nil {
					return err
				}
			case config.DeleteOrphan:
				if err := repo.DetachUnits(id); err != nil {
					return err
				}
			default:
				return conflict(EntityContainer, id, "container still has %d unit(s)", len(unitIDs))
			}
		}

		if err := repo.DeleteAssociations(id); err != nil {
			return err
		}
		return repo.DeleteListing(id)
	})
	if err != nil {
		return err
	}

	h.views.invalidate(ctx, id)
	logger.FromContext(ctx).Info("Container deleted",
		zap.Uint("container_id", id),
		zap.String("policy", string(h.deletePolicy)),
		zap.Int("units", detached))
	return nil
}

// FindContainerWithUnits loads a container, its units and its associations
func (h *Hierarchy) FindContainerWithUnits(ctx context.Context, id uint) (*ContainerView, error) {
	if view, ok := h.views.get(ctx, id); ok {
		return view, nil
	}
	gen, genErr := h.views.generation(ctx, id)

	repo := h.store.Read(ctx)
	container, err := repo.LoadListingGraph(id)
	if err != nil {
		return nil, lookupErr(err, EntityContainer, id)
	}
	if !container.IsContainer {
		return nil, invalidState(EntityListing, id, "listing is not a container")
	}

	units, err := repo.LoadUnits(id)
	if err != nil {
		return nil, err
	}
	counts, err := repo.UnitStatusCounts(id)
	if err != nil {
		return nil, err
	}

	view := &ContainerView{
		Container: container,
		Units:     units,
		UnitsByStatus: UnitStatusSummary{
			Pending:  counts[model.StatusPending],
			Approved: counts[model.StatusApproved],
			Rejected: counts[model.StatusRejected],
		},
	}
	if genErr == nil {
		h.views.put(ctx, view, gen)
	}
	return view, nil
}

// ListUnits returns the units of a container
func (h *Hierarchy) ListUnits(ctx context.Context, containerID uint) ([]model.Listing, error) {
	repo := h.store.Read(ctx)
	container, err := repo.FindListing(containerID)
	if err != nil {
		return nil, lookupErr(err, EntityContainer, containerID)
	}
	if !container.IsContainer {
		return nil, invalidState(EntityListing, containerID, "listing is not a container")
	}
	return repo.LoadUnits(containerID)
}

// UpdateContainer applies a partial update to a container
func (h *Hierarchy) UpdateContainer(ctx context.Context, id uint, in UpdateInput) (*model.Listing, error) {
	updated, err := h.composer.update(ctx, id, in, func(l *model.Listing) error {
		if !l.IsContainer {
			return invalidState(EntityListing, id, "listing is not a container")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.views.invalidate(ctx, id)
	return updated, nil
}

// UpdateUnit applies a partial update to a unit
func (h *Hierarchy) UpdateUnit(ctx context.Context, id uint, in UpdateInput) (*model.Listing, error) {
	updated, err := h.composer.update(ctx, id, in, func(l *model.Listing) error {
		if !l.IsUnit() {
			return invalidState(EntityListing, id, "listing is not a unit")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.views.invalidate(ctx, *updated.ParentID)
	return updated, nil
}

// OwnerOf returns the owner of a listing
func (h *Hierarchy) OwnerOf(ctx context.Context, id uint) (uint, error) {
	listing, err := h.store.Read(ctx).FindListing(id)
	if err != nil {
		return 0, lookupErr(err, EntityListing, id)
	}
	return listing.OwnerID, nil
}

// Invalidate drops the cached view that contains listing, if any
func (h *Hierarchy) Invalidate(ctx context.Context, listing *model.Listing) {
	switch {
	case listing.IsContainer:
		h.views.invalidate(ctx, listing.ID)
	case listing.IsUnit():
		h.views.invalidate(ctx, *listing.ParentID)
	}
}
