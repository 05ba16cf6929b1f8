package repository

import (
	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// replaceSet deletes every T owned by listingID and inserts rows in their place.
// Called on a transactional Repo the delete and the insert commit together.
func replaceSet[T any](db *gorm.DB, listingID uint, rows []T) error {
	if err := db.Where("listing_id = ?", listingID).Delete(new(T)).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Omit(clause.Associations).Create(&rows).Error
}

// ReplaceImages replaces the image set of a listing. Positions are taken from the
// slice order so they stay unique and contiguous from 0.
func (r *Repo) ReplaceImages(listingID uint, images []model.Image) error {
	for i := range images {
		images[i].ID = 0
		images[i].ListingID = listingID
		images[i].Position = i
	}
	return replaceSet(r.db, listingID, images)
}

// ReplaceInstitutions replaces the institution links of a listing
func (r *Repo) ReplaceInstitutions(listingID uint, links []model.ListingInstitution) error {
	for i := range links {
		links[i].ListingID = listingID
	}
	return replaceSet(r.db, listingID, links)
}

// ReplaceServices replaces the included services of a container
func (r *Repo) ReplaceServices(listingID uint, services []model.ListingService) error {
	for i := range services {
		services[i].ID = 0
		services[i].ListingID = listingID
	}
	return replaceSet(r.db, listingID, services)
}

// ReplaceRules replaces the house rules of a container
func (r *Repo) ReplaceRules(listingID uint, rules []model.ListingRule) error {
	for i := range rules {
		rules[i].ID = 0
		rules[i].ListingID = listingID
	}
	return replaceSet(r.db, listingID, rules)
}

// ReplaceCommonAreas replaces the common-area links of a container
func (r *Repo) ReplaceCommonAreas(listingID uint, links []model.ContainerCommonArea) error {
	for i := range links {
		links[i].ListingID = listingID
	}
	return replaceSet(r.db, listingID, links)
}

// ReplaceContact replaces the contact card of a listing
func (r *Repo) ReplaceContact(listingID uint, contact model.Contact) error {
	contact.ID = 0
	contact.ListingID = listingID
	return replaceSet(r.db, listingID, []model.Contact{contact})
}

// ReplaceFeature replaces the feature flags of a listing
func (r *Repo) ReplaceFeature(listingID uint, feature model.Feature) error {
	feature.ID = 0
	feature.ListingID = listingID
	return replaceSet(r.db, listingID, []model.Feature{feature})
}

// DeleteAssociations removes every satellite row owned by the given listings.
// Locations are shared and are never removed here.
func (r *Repo) DeleteAssociations(listingIDs ...uint) error {
	if len(listingIDs) == 0 {
		return nil
	}
	owned := []interface{}{
		&model.Contact{},
		&model.Feature{},
		&model.Image{},
		&model.ListingInstitution{},
		&model.ListingService{},
		&model.ListingRule{},
		&model.ContainerCommonArea{},
	}
	for _, m := range owned {
		if err := r.db.Where("listing_id IN ?", listingIDs).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

// CountInstitutions counts how many of ids exist in the institution catalog
func (r *Repo) CountInstitutions(ids []uint) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.db.Model(&model.Institution{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// CountCommonAreas counts how many of ids exist in the common-area catalog
func (r *Repo) CountCommonAreas(ids []uint) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.db.Model(&model.CommonArea{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
