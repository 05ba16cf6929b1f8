package repository

import (
	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindListing loads a single listing row without associations
func (r *Repo) FindListing(id uint) (*model.Listing, error) {
	var listing model.Listing
	if err := r.db.First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// LockListing loads a listing and holds a row lock on it until the transaction ends.
// It is the per-container serialization point for unit-count changes.
func (r *Repo) LockListing(id uint) (*model.Listing, error) {
	query := r.db
	if database.SupportsRowLocks(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var listing model.Listing
	if err := query.First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// CreateListing inserts the core listing row only; associations are written separately
func (r *Repo) CreateListing(listing *model.Listing) error {
	return r.db.Omit(clause.Associations).Create(listing).Error
}

// UpdateListingColumns updates the given columns of one listing
func (r *Repo) UpdateListingColumns(id uint, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.Model(&model.Listing{}).Where("id = ?", id).Updates(columns).Error
}

// DeleteListing removes the listing row
func (r *Repo) DeleteListing(id uint) error {
	return r.db.Delete(&model.Listing{}, id).Error
}

// CountUnits counts the units whose parent is containerID
func (r *Repo) CountUnits(containerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Listing{}).Where("parent_id = ?", containerID).Count(&count).Error
	return count, err
}

// CountUnitsByRented counts the units of containerID with the given occupancy
func (r *Repo) CountUnitsByRented(containerID uint, rented bool) (int64, error) {
	var count int64
	err := r.db.Model(&model.Listing{}).
		Where("parent_id = ? AND is_rented = ?", containerID, rented).
		Count(&count).Error
	return count, err
}

// SetUnitsRented sets the occupancy flag of every unit of containerID
func (r *Repo) SetUnitsRented(containerID uint, rented bool) error {
	return r.db.Model(&model.Listing{}).
		Where("parent_id = ?", containerID).
		Update("is_rented", rented).Error
}

// SetUnitsLocation points every unit of containerID at locationID
func (r *Repo) SetUnitsLocation(containerID uint, locationID *uint) error {
	return r.db.Model(&model.Listing{}).
		Where("parent_id = ?", containerID).
		Update("location_id", locationID).Error
}

// DetachUnits clears the parent of every unit of containerID
func (r *Repo) DetachUnits(containerID uint) error {
	return r.db.Model(&model.Listing{}).
		Where("parent_id = ?", containerID).
		Update("parent_id", gorm.Expr("NULL")).Error
}

// UnitIDs returns the ids of the units of containerID
func (r *Repo) UnitIDs(containerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Listing{}).
		Where("parent_id = ?", containerID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// UnitStatusCounts groups the units of containerID by moderation status
func (r *Repo) UnitStatusCounts(containerID uint) (map[model.ListingStatus]int64, error) {
	var rows []struct {
		Status model.ListingStatus
		Total  int64
	}
	err := r.db.Model(&model.Listing{}).
		Select("status, COUNT(*) AS total").
		Where("parent_id = ?", containerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.ListingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// TypeExists reports whether a property type with the given id exists
func (r *Repo) TypeExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.PropertyType{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// DeleteUnits removes every unit row of containerID
func (r *Repo) DeleteUnits(containerID uint) error {
	return r.db.Where("parent_id = ?", containerID).Delete(&model.Listing{}).Error
}
