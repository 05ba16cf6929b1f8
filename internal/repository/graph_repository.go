package repository

import (
	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"gorm.io/gorm"
)

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// LoadListingGraph loads a listing with its whole association graph
func (r *Repo) LoadListingGraph(id uint) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.
		Preload("Owner").
		Preload("Type").
		Preload("Location").
		Preload("Contact").
		Preload("Feature").
		Preload("Images", orderedImages).
		Preload("Institutions.Institution").
		Preload("Services").
		Preload("Rules").
		Preload("CommonAreas.CommonArea").
		First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// LoadUnits loads the units of a container with the associations a unit can carry
func (r *Repo) LoadUnits(containerID uint) ([]model.Listing, error) {
	var units []model.Listing
	err := r.db.
		Preload("Contact").
		Preload("Feature").
		Preload("Images", orderedImages).
		Preload("Institutions.Institution").
		Where("parent_id = ?", containerID).
		Order("id ASC").
		Find(&units).Error
	return units, err
}
