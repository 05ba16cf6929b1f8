package model

// Contact is the one-to-one contact card of a listing
type Contact struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ListingID uint   `json:"listing_id" gorm:"uniqueIndex;not null"`
	Name      string `json:"name" gorm:"type:varchar(150)"`
	Phone     string `json:"phone" gorm:"type:varchar(50)"`
	Email     string `json:"email" gorm:"type:varchar(255)"`
	WhatsApp  string `json:"whatsapp" gorm:"type:varchar(50)"`
}

// TableName overrides the table name
func (Contact) TableName() string {
	return "listing_contacts"
}

// Feature holds the one-to-one feature flags of a listing
type Feature struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	ListingID       uint    `json:"listing_id" gorm:"uniqueIndex;not null"`
	Bedrooms        int     `json:"bedrooms"`
	Bathrooms       int     `json:"bathrooms"`
	AreaM2          float64 `json:"area_m2"`
	Furnished       bool    `json:"furnished"`
	PrivateBathroom bool    `json:"private_bathroom"`
	Wifi            bool    `json:"wifi"`
	Parking         bool    `json:"parking"`
	PetsAllowed     bool    `json:"pets_allowed"`
	Laundry         bool    `json:"laundry"`
	Kitchen         bool    `json:"kitchen"`
	AirConditioning bool    `json:"air_conditioning"`
}

// TableName overrides the table name
func (Feature) TableName() string {
	return "listing_features"
}

// Image is an ordered picture of a listing. Positions are contiguous from 0.
type Image struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ListingID  uint   `json:"listing_id" gorm:"not null;uniqueIndex:idx_image_position"`
	URL        string `json:"url" gorm:"type:text;not null"`
	Position   int    `json:"position" gorm:"not null;uniqueIndex:idx_image_position"`
	IsFeatured bool   `json:"is_featured" gorm:"not null"`
}

// TableName overrides the table name
func (Image) TableName() string {
	return "listing_images"
}

// Institution is a university, school or similar place listings advertise proximity to
type Institution struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(255);not null"`
	Kind string `json:"kind" gorm:"type:varchar(50)"`
	City string `json:"city" gorm:"type:varchar(150)"`
}

// ListingInstitution links a listing to a nearby institution
type ListingInstitution struct {
	ListingID     uint         `json:"listing_id" gorm:"primaryKey"`
	InstitutionID uint         `json:"institution_id" gorm:"primaryKey"`
	DistanceKm    *float64     `json:"distance_km,omitempty"`
	Institution   *Institution `json:"institution,omitempty" gorm:"foreignKey:InstitutionID"`
}

// TableName overrides the table name
func (ListingInstitution) TableName() string {
	return "listing_institutions"
}

// ListingService is a service included with a container (meals, cleaning...)
type ListingService struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	ListingID   uint     `json:"listing_id" gorm:"index;not null"`
	Name        string   `json:"name" gorm:"type:varchar(100);not null"`
	Description string   `json:"description" gorm:"type:text"`
	Included    bool     `json:"included"`
	ExtraCost   *float64 `json:"extra_cost,omitempty"`
}

// TableName overrides the table name
func (ListingService) TableName() string {
	return "listing_services"
}

// ListingRule is a house rule of a container
type ListingRule struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ListingID   uint   `json:"listing_id" gorm:"index;not null"`
	Name        string `json:"name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`
	Allowed     bool   `json:"allowed"`
}

// TableName overrides the table name
func (ListingRule) TableName() string {
	return "listing_rules"
}

// CommonArea is a catalog entry for shared spaces (kitchen, terrace, study room...)
type CommonArea struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
}

// ContainerCommonArea links a container to a common area
type ContainerCommonArea struct {
	ListingID    uint        `json:"listing_id" gorm:"primaryKey"`
	CommonAreaID uint        `json:"common_area_id" gorm:"primaryKey"`
	CommonArea   *CommonArea `json:"common_area,omitempty" gorm:"foreignKey:CommonAreaID"`
}

// TableName overrides the table name
func (ContainerCommonArea) TableName() string {
	return "container_common_areas"
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&Owner{},
		&PropertyType{},
		&Location{},
		&Institution{},
		&CommonArea{},
		&Listing{},
		&Contact{},
		&Feature{},
		&Image{},
		&ListingInstitution{},
		&ListingService{},
		&ListingRule{},
		&ContainerCommonArea{},
	}
}
