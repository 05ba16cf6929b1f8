package model

import (
	"strings"
	"time"
)

// Location is shared by every listing in the same building; the natural key is
// (street, neighborhood, city).
type Location struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Street       string    `json:"street" gorm:"type:varchar(255);not null;uniqueIndex:idx_location_natural_key"`
	Neighborhood string    `json:"neighborhood" gorm:"type:varchar(150);not null;uniqueIndex:idx_location_natural_key"`
	City         string    `json:"city" gorm:"type:varchar(150);not null;uniqueIndex:idx_location_natural_key"`
	Department   string    `json:"department" gorm:"type:varchar(150)"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Normalize trims the natural key so equivalent addresses collapse onto one row
func (l *Location) Normalize() {
	l.Street = strings.TrimSpace(l.Street)
	l.Neighborhood = strings.TrimSpace(l.Neighborhood)
	l.City = strings.TrimSpace(l.City)
	l.Department = strings.TrimSpace(l.Department)
}
