package repository

import (
	"errors"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolveLocation returns the location row matching the natural key of loc,
// inserting it first when none exists. A concurrent insert of the same address
// is absorbed by ON CONFLICT DO NOTHING followed by a re-read.
func (r *Repo) ResolveLocation(loc model.Location) (*model.Location, error) {
	loc.Normalize()

	existing, err := r.findLocation(loc)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	loc.ID = 0
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&loc)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 1 && loc.ID != 0 {
		return &loc, nil
	}

	return r.findLocation(loc)
}

func (r *Repo) findLocation(loc model.Location) (*model.Location, error) {
	var found model.Location
	err := r.db.
		Where("street = ? AND neighborhood = ? AND city = ?", loc.Street, loc.Neighborhood, loc.City).
		First(&found).Error
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// CountLocations returns the number of stored locations
func (r *Repo) CountLocations() (int64, error) {
	var count int64
	err := r.db.Model(&model.Location{}).Count(&count).Error
	return count, err
}
