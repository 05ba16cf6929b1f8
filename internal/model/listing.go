package model

import (
	"time"
)

// RentalMode is the container-level occupancy mode
type RentalMode string

const (
	// RentalByUnit rents rooms individually
	RentalByUnit RentalMode = "by_unit"
	// RentalComplete rents the whole container as one
	RentalComplete RentalMode = "complete"
)

// Valid reports whether m is a known rental mode
func (m RentalMode) Valid() bool {
	return m == RentalByUnit || m == RentalComplete
}

// ListingStatus is the moderation status of a listing
type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

// Listing is either a container (IsContainer, no parent), a unit (ParentID set)
// or a standalone listing (neither).
type Listing struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	OwnerID        uint          `json:"owner_id" gorm:"index;not null"`
	TypeID         uint          `json:"type_id" gorm:"index;not null"`
	ParentID       *uint         `json:"parent_id,omitempty" gorm:"index"`
	LocationID     *uint         `json:"location_id,omitempty" gorm:"index"`
	Title          string        `json:"title" gorm:"type:varchar(255);not null"`
	Description    string        `json:"description" gorm:"type:text"`
	IsContainer    bool          `json:"is_container" gorm:"not null"`
	RentalMode     RentalMode    `json:"rental_mode,omitempty" gorm:"type:varchar(16)"`
	TotalUnits     int           `json:"total_units" gorm:"not null"`
	AvailableUnits int           `json:"available_units" gorm:"not null"`
	MonthlyRent    float64       `json:"monthly_rent" gorm:"not null"`
	Status         ListingStatus `json:"status" gorm:"type:varchar(16);index;not null"`
	IsRented       bool          `json:"is_rented" gorm:"index;not null"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Relations
	Owner        *Owner                `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Type         *PropertyType         `json:"type,omitempty" gorm:"foreignKey:TypeID"`
	Location     *Location             `json:"location,omitempty" gorm:"foreignKey:LocationID"`
	Contact      *Contact              `json:"contact,omitempty" gorm:"foreignKey:ListingID"`
	Feature      *Feature              `json:"feature,omitempty" gorm:"foreignKey:ListingID"`
	Images       []Image               `json:"images,omitempty" gorm:"foreignKey:ListingID"`
	Institutions []ListingInstitution  `json:"institutions,omitempty" gorm:"foreignKey:ListingID"`
	Services     []ListingService      `json:"services,omitempty" gorm:"foreignKey:ListingID"`
	Rules        []ListingRule         `json:"rules,omitempty" gorm:"foreignKey:ListingID"`
	CommonAreas  []ContainerCommonArea `json:"common_areas,omitempty" gorm:"foreignKey:ListingID"`
	Units        []Listing             `json:"units,omitempty" gorm:"foreignKey:ParentID"`
}

// IsUnit reports whether the listing belongs to a container
func (l *Listing) IsUnit() bool {
	return l.ParentID != nil
}

// PropertyType is the listing category (boarding house, room, apartment...)
type PropertyType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Code string `json:"code" gorm:"type:varchar(50);uniqueIndex;not null"`
	Name string `json:"name" gorm:"type:varchar(100);not null"`
}

// Owner is the read model of the user that owns a listing.
// Rows are written by the authentication service.
type Owner struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"type:varchar(150)"`
	Email string `json:"email" gorm:"type:varchar(255)"`
	Phone string `json:"phone" gorm:"type:varchar(50)"`
}

// TableName keeps the owner read model on the shared users table
func (Owner) TableName() string {
	return "users"
}
