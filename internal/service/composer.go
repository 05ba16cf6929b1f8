package service

import (
	"context"
	"strings"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/internal/repository"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"go.uber.org/zap"
)

// Composer assembles and updates the records that make up one listing
// (location, contact, features, images, institution links and the
// container-only services, rules and common areas) as one unit of work.
type Composer struct {
	store *repository.Store
}

// NewComposer creates a composer on top of store
func NewComposer(store *repository.Store) *Composer {
	return &Composer{store: store}
}

// CreateListingWithAssociations creates a standalone listing and its association graph
func (c *Composer) CreateListingWithAssociations(ctx context.Context, in ListingInput) (*model.Listing, error) {
	var id uint
	err := c.store.InTx(ctx, func(repo *repository.Repo) error {
		listing, err := c.createInTx(repo, &in, model.Listing{OwnerID: in.OwnerID, TypeID: in.TypeID})
		if err != nil {
			return err
		}
		id = listing.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Listing created", zap.Uint("listing_id", id), zap.Uint("owner_id", in.OwnerID))
	return c.FindListingWithAssociations(ctx, id)
}

// UpdateListingWithAssociations applies a partial update to any listing
func (c *Composer) UpdateListingWithAssociations(ctx context.Context, id uint, in UpdateInput) (*model.Listing, error) {
	return c.update(ctx, id, in, nil)
}

// FindListingWithAssociations loads a listing with the graph creation produces
func (c *Composer) FindListingWithAssociations(ctx context.Context, id uint) (*model.Listing, error) {
	listing, err := c.store.Read(ctx).LoadListingGraph(id)
	if err != nil {
		return nil, lookupErr(err, EntityListing, id)
	}
	return listing, nil
}

// update runs a partial update in one transaction. guard, when set, vets the
// current row before anything is written.
func (c *Composer) update(ctx context.Context, id uint, in UpdateInput, guard func(*model.Listing) error) (*model.Listing, error) {
	err := c.store.InTx(ctx, func(repo *repository.Repo) error {
		return c.updateInTx(repo, id, &in, guard)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Listing updated", zap.Uint("listing_id", id))
	return c.FindListingWithAssociations(ctx, id)
}

// createInTx writes the core row described by base + in, then its associations.
// Units arrive with ParentID and LocationID already set on base.
func (c *Composer) createInTx(repo *repository.Repo, in *ListingInput, base model.Listing) (*model.Listing, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validation("title is required")
	}
	if in.MonthlyRent < 0 {
		return nil, validation("monthly_rent cannot be negative")
	}
	if base.OwnerID == 0 {
		return nil, validation("owner is required")
	}

	isUnit := base.ParentID != nil
	if !isUnit {
		if err := checkType(repo, base.TypeID); err != nil {
			return nil, err
		}
		if in.Location == nil {
			return nil, validation("location is required")
		}
		loc, err := resolveLocation(repo, *in.Location)
		if err != nil {
			return nil, err
		}
		base.LocationID = &loc.ID
	}

	listing := base
	listing.ID = 0
	listing.Title = title
	listing.Description = in.Description
	listing.MonthlyRent = in.MonthlyRent
	listing.Status = model.StatusPending
	listing.IsRented = false
	if listing.IsContainer {
		listing.RentalMode = model.RentalByUnit
		listing.TotalUnits = 0
		listing.AvailableUnits = 0
	} else {
		listing.RentalMode = ""
	}

	if err := repo.CreateListing(&listing); err != nil {
		return nil, err
	}
	if err := writeAssociations(repo, listing.ID, listing.IsContainer, in.associations()); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *Composer) updateInTx(repo *repository.Repo, id uint, in *UpdateInput, guard func(*model.Listing) error) error {
	current, err := repo.LockListing(id)
	if err != nil {
		return lookupErr(err, EntityListing, id)
	}
	if guard != nil {
		if err := guard(current); err != nil {
			return err
		}
	}

	columns, err := in.scalarColumns()
	if err != nil {
		return err
	}

	if in.TypeID != nil {
		if current.IsUnit() {
			return validation("a unit inherits its type from the container")
		}
		if err := checkType(repo, *in.TypeID); err != nil {
			return err
		}
		columns["type_id"] = *in.TypeID
	}

	if in.Location != nil {
		if current.IsUnit() {
			return validation("a unit inherits its location from the container")
		}
		loc, err := resolveLocation(repo, *in.Location)
		if err != nil {
			return err
		}
		columns["location_id"] = loc.ID
		if current.IsContainer {
			// units live in the same building
			if err := repo.SetUnitsLocation(current.ID, &loc.ID); err != nil {
				return err
			}
		}
	}

	if err := repo.UpdateListingColumns(id, columns); err != nil {
		return err
	}
	return writeAssociations(repo, id, current.IsContainer, in.associations())
}

func checkType(repo *repository.Repo, typeID uint) error {
	if typeID == 0 {
		return validation("type_id is required")
	}
	ok, err := repo.TypeExists(typeID)
	if err != nil {
		return err
	}
	if !ok {
		return &Error{Kind: ErrValidation, Entity: EntityType, ID: typeID, Message: "unknown property type"}
	}
	return nil
}

func resolveLocation(repo *repository.Repo, in LocationInput) (*model.Location, error) {
	loc := in.toModel()
	loc.Normalize()
	if loc.Street == "" || loc.Neighborhood == "" || loc.City == "" {
		return nil, validation("location needs street, neighborhood and city")
	}
	return repo.ResolveLocation(loc)
}

// writeAssociations writes every member of set that is present. Collection
// members replace the stored set as a whole.
func writeAssociations(repo *repository.Repo, listingID uint, isContainer bool, set associationSet) error {
	if !isContainer && set.hasContainerOnly() {
		return validation("services, rules and common areas are only available for containers")
	}

	if set.Contact != nil {
		if err := repo.ReplaceContact(listingID, set.Contact.toModel()); err != nil {
			return err
		}
	}
	if set.Feature != nil {
		if err := repo.ReplaceFeature(listingID, set.Feature.toModel()); err != nil {
			return err
		}
	}
	if set.Images != nil {
		images, err := buildImages(*set.Images)
		if err != nil {
			return err
		}
		if err := repo.ReplaceImages(listingID, images); err != nil {
			return err
		}
	}
	if set.Institutions != nil {
		links, err := buildInstitutionLinks(repo, *set.Institutions)
		if err != nil {
			return err
		}
		if err := repo.ReplaceInstitutions(listingID, links); err != nil {
			return err
		}
	}
	if !isContainer {
		return nil
	}

	if set.Services != nil {
		services, err := buildServices(*set.Services)
		if err != nil {
			return err
		}
		if err := repo.ReplaceServices(listingID, services); err != nil {
			return err
		}
	}
	if set.Rules != nil {
		rules, err := buildRules(*set.Rules)
		if err != nil {
			return err
		}
		if err := repo.ReplaceRules(listingID, rules); err != nil {
			return err
		}
	}
	if set.CommonAreaIDs != nil {
		links, err := buildCommonAreaLinks(repo, *set.CommonAreaIDs)
		if err != nil {
			return err
		}
		if err := repo.ReplaceCommonAreas(listingID, links); err != nil {
			return err
		}
	}
	return nil
}

// buildImages orders images as given. Only the first image explicitly marked
// featured keeps the flag; with none marked, position 0 is featured.
func buildImages(in []ImageInput) ([]model.Image, error) {
	featured := -1
	for i, img := range in {
		if img.Featured {
			featured = i
			break
		}
	}
	if featured < 0 {
		featured = 0
	}

	images := make([]model.Image, 0, len(in))
	for i, img := range in {
		url := strings.TrimSpace(img.URL)
		if url == "" {
			return nil, validation("image %d has no url", i)
		}
		images = append(images, model.Image{URL: url, Position: i, IsFeatured: i == featured})
	}
	return images, nil
}

func buildInstitutionLinks(repo *repository.Repo, refs []InstitutionRef) ([]model.ListingInstitution, error) {
	links := make([]model.ListingInstitution, 0, len(refs))
	ids := make([]uint, 0, len(refs))
	seen := make(map[uint]bool, len(refs))
	for _, ref := range refs {
		if ref.InstitutionID == 0 {
			return nil, validation("institution reference without id")
		}
		if ref.Kind == InstitutionWithDistance && ref.DistanceKm < 0 {
			return nil, &Error{Kind: ErrValidation, Entity: EntityInstitution, ID: ref.InstitutionID, Message: "distance cannot be negative"}
		}
		if seen[ref.InstitutionID] {
			return nil, &Error{Kind: ErrValidation, Entity: EntityInstitution, ID: ref.InstitutionID, Message: "referenced more than once"}
		}
		seen[ref.InstitutionID] = true
		ids = append(ids, ref.InstitutionID)
		links = append(links, ref.toModel())
	}
	if len(ids) == 0 {
		return links, nil
	}

	found, err := repo.CountInstitutions(ids)
	if err != nil {
		return nil, err
	}
	if found != int64(len(ids)) {
		return nil, validation("%d of %d referenced institutions do not exist", int64(len(ids))-found, len(ids))
	}
	return links, nil
}

func buildCommonAreaLinks(repo *repository.Repo, ids []uint) ([]model.ContainerCommonArea, error) {
	links := make([]model.ContainerCommonArea, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			return nil, &Error{Kind: ErrValidation, Entity: EntityCommonArea, ID: id, Message: "invalid or repeated common area"}
		}
		seen[id] = true
		links = append(links, model.ContainerCommonArea{CommonAreaID: id})
	}
	if len(ids) == 0 {
		return links, nil
	}

	found, err := repo.CountCommonAreas(ids)
	if err != nil {
		return nil, err
	}
	if found != int64(len(ids)) {
		return nil, validation("%d of %d referenced common areas do not exist", int64(len(ids))-found, len(ids))
	}
	return links, nil
}

func buildServices(in []ServiceInput) ([]model.ListingService, error) {
	services := make([]model.ListingService, 0, len(in))
	for i, s := range in {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, validation("service %d has no name", i)
		}
		if s.ExtraCost != nil && *s.ExtraCost < 0 {
			return nil, validation("service %q has a negative extra cost", name)
		}
		services = append(services, model.ListingService{
			Name:        name,
			Description: s.Description,
			Included:    s.Included,
			ExtraCost:   s.ExtraCost,
		})
	}
	return services, nil
}

func buildRules(in []RuleInput) ([]model.ListingRule, error) {
	rules := make([]model.ListingRule, 0, len(in))
	for i, r := range in {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, validation("rule %d has no name", i)
		}
		rules = append(rules, model.ListingRule{Name: name, Description: r.Description, Allowed: r.Allowed})
	}
	return rules, nil
}
