package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
)

// LocationInput is the address of a listing
type LocationInput struct {
	Street       string   `json:"street" validate:"required,max=255"`
	Neighborhood string   `json:"neighborhood" validate:"required,max=150"`
	City         string   `json:"city" validate:"required,max=150"`
	Department   string   `json:"department" validate:"max=150"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
}

func (in LocationInput) toModel() model.Location {
	return model.Location{
		Street:       in.Street,
		Neighborhood: in.Neighborhood,
		City:         in.City,
		Department:   in.Department,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
	}
}

// ContactInput is the contact card of a listing
type ContactInput struct {
	Name     string `json:"name" validate:"max=150"`
	Phone    string `json:"phone" validate:"max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	WhatsApp string `json:"whatsapp" validate:"max=50"`
}

func (in ContactInput) toModel() model.Contact {
	return model.Contact{Name: in.Name, Phone: in.Phone, Email: in.Email, WhatsApp: in.WhatsApp}
}

// FeatureInput carries the feature flags of a listing
type FeatureInput struct {
	Bedrooms        int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms       int     `json:"bathrooms" validate:"gte=0"`
	AreaM2          float64 `json:"area_m2" validate:"gte=0"`
	Furnished       bool    `json:"furnished"`
	PrivateBathroom bool    `json:"private_bathroom"`
	Wifi            bool    `json:"wifi"`
	Parking         bool    `json:"parking"`
	PetsAllowed     bool    `json:"pets_allowed"`
	Laundry         bool    `json:"laundry"`
	Kitchen         bool    `json:"kitchen"`
	AirConditioning bool    `json:"air_conditioning"`
}

func (in FeatureInput) toModel() model.Feature {
	return model.Feature{
		Bedrooms:        in.Bedrooms,
		Bathrooms:       in.Bathrooms,
		AreaM2:          in.AreaM2,
		Furnished:       in.Furnished,
		PrivateBathroom: in.PrivateBathroom,
		Wifi:            in.Wifi,
		Parking:         in.Parking,
		PetsAllowed:     in.PetsAllowed,
		Laundry:         in.Laundry,
		Kitchen:         in.Kitchen,
		AirConditioning: in.AirConditioning,
	}
}

// ImageInput is an image URL handed over by the file storage service
type ImageInput struct {
	URL      string `json:"url" validate:"required"`
	Featured bool   `json:"featured"`
}

// ServiceInput is a service included with a container
type ServiceInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description"`
	Included    bool     `json:"included"`
	ExtraCost   *float64 `json:"extra_cost,omitempty" validate:"omitempty,gte=0"`
}

// RuleInput is a house rule of a container
type RuleInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Allowed     bool   `json:"allowed"`
}

// InstitutionRefKind tells the two accepted institution reference shapes apart
type InstitutionRefKind int

const (
	// InstitutionByID references an institution without a distance
	InstitutionByID InstitutionRefKind = iota + 1
	// InstitutionWithDistance references an institution and its distance in km
	InstitutionWithDistance
)

// InstitutionRef references an institution near a listing. On the wire it is
// either a bare id (7) or an object ({"id": 7, "distance": 1.5}).
type InstitutionRef struct {
	Kind          InstitutionRefKind
	InstitutionID uint
	DistanceKm    float64
}

// InstitutionID builds a reference without distance
func InstitutionID(id uint) InstitutionRef {
	return InstitutionRef{Kind: InstitutionByID, InstitutionID: id}
}

// InstitutionNear builds a reference with a distance in km
func InstitutionNear(id uint, km float64) InstitutionRef {
	return InstitutionRef{Kind: InstitutionWithDistance, InstitutionID: id, DistanceKm: km}
}

type institutionRefObject struct {
	ID            uint     `json:"id,omitempty"`
	InstitutionID uint     `json:"institution_id,omitempty"`
	Distance      *float64 `json:"distance,omitempty"`
}

// UnmarshalJSON decodes either accepted shape into the tagged form
func (r *InstitutionRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj institutionRefObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		id := obj.ID
		if id == 0 {
			id = obj.InstitutionID
		}
		if obj.Distance != nil {
			*r = InstitutionNear(id, *obj.Distance)
		} else {
			*r = InstitutionID(id)
		}
		return nil
	}

	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return errors.New("institution reference must be an id or an object with id and distance")
	}
	*r = InstitutionID(id)
	return nil
}

// MarshalJSON encodes the reference in the shape it was given
func (r InstitutionRef) MarshalJSON() ([]byte, error) {
	if r.Kind == InstitutionWithDistance {
		d := r.DistanceKm
		return json.Marshal(institutionRefObject{ID: r.InstitutionID, Distance: &d})
	}
	return json.Marshal(r.InstitutionID)
}

func (r InstitutionRef) toModel() model.ListingInstitution {
	link := model.ListingInstitution{InstitutionID: r.InstitutionID}
	if r.Kind == InstitutionWithDistance {
		d := r.DistanceKm
		link.DistanceKm = &d
	}
	return link
}

// ListingInput is the payload that creates a listing with its associations.
// Services, Rules and CommonAreaIDs are only accepted for containers.
type ListingInput struct {
	OwnerID       uint             `json:"-"`
	TypeID        uint             `json:"type_id" validate:"required"`
	Title         string           `json:"title" validate:"required,max=255"`
	Description   string           `json:"description"`
	MonthlyRent   float64          `json:"monthly_rent" validate:"gte=0"`
	Location      *LocationInput   `json:"location" validate:"required"`
	Contact       *ContactInput    `json:"contact,omitempty"`
	Feature       *FeatureInput    `json:"feature,omitempty"`
	Images        []ImageInput     `json:"images,omitempty" validate:"dive"`
	Institutions  []InstitutionRef `json:"institutions,omitempty"`
	Services      []ServiceInput   `json:"services,omitempty" validate:"dive"`
	Rules         []RuleInput      `json:"rules,omitempty" validate:"dive"`
	CommonAreaIDs []uint           `json:"common_area_ids,omitempty"`
}

func (in *ListingInput) associations() associationSet {
	return associationSet{
		Contact:       in.Contact,
		Feature:       in.Feature,
		Images:        &in.Images,
		Institutions:  &in.Institutions,
		Services:      &in.Services,
		Rules:         &in.Rules,
		CommonAreaIDs: &in.CommonAreaIDs,
	}
}

// UnitInput is the payload that creates a unit. Owner, type and location come from the container.
type UnitInput struct {
	Title        string           `json:"title" validate:"required,max=255"`
	Description  string           `json:"description"`
	MonthlyRent  float64          `json:"monthly_rent" validate:"gte=0"`
	Contact      *ContactInput    `json:"contact,omitempty"`
	Feature      *FeatureInput    `json:"feature,omitempty"`
	Images       []ImageInput     `json:"images,omitempty" validate:"dive"`
	Institutions []InstitutionRef `json:"institutions,omitempty"`
}

func (in *UnitInput) listingInput() ListingInput {
	return ListingInput{
		Title:        in.Title,
		Description:  in.Description,
		MonthlyRent:  in.MonthlyRent,
		Contact:      in.Contact,
		Feature:      in.Feature,
		Images:       in.Images,
		Institutions: in.Institutions,
	}
}

// UpdateInput is a partial update. Nil fields are left untouched; a non-nil
// slice pointer replaces the whole set, an empty slice clears it.
type UpdateInput struct {
	Title         *string           `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description   *string           `json:"description,omitempty"`
	MonthlyRent   *float64          `json:"monthly_rent,omitempty" validate:"omitempty,gte=0"`
	TypeID        *uint             `json:"type_id,omitempty"`
	Location      *LocationInput    `json:"location,omitempty"`
	Contact       *ContactInput     `json:"contact,omitempty"`
	Feature       *FeatureInput     `json:"feature,omitempty"`
	Images        *[]ImageInput     `json:"images,omitempty"`
	Institutions  *[]InstitutionRef `json:"institutions,omitempty"`
	Services      *[]ServiceInput   `json:"services,omitempty"`
	Rules         *[]RuleInput      `json:"rules,omitempty"`
	CommonAreaIDs *[]uint           `json:"common_area_ids,omitempty"`
}

func (in *UpdateInput) associations() associationSet {
	return associationSet{
		Contact:       in.Contact,
		Feature:       in.Feature,
		Images:        in.Images,
		Institutions:  in.Institutions,
		Services:      in.Services,
		Rules:         in.Rules,
		CommonAreaIDs: in.CommonAreaIDs,
	}
}

// scalarColumns returns the listing columns present in the update
func (in *UpdateInput) scalarColumns() (map[string]interface{}, error) {
	columns := make(map[string]interface{})
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, validation("title cannot be empty")
		}
		columns["title"] = title
	}
	if in.Description != nil {
		columns["description"] = *in.Description
	}
	if in.MonthlyRent != nil {
		if *in.MonthlyRent < 0 {
			return nil, validation("monthly_rent cannot be negative")
		}
		columns["monthly_rent"] = *in.MonthlyRent
	}
	return columns, nil
}

// associationSet is the nested part of a create or update. A nil member is not touched.
type associationSet struct {
	Contact       *ContactInput
	Feature       *FeatureInput
	Images        *[]ImageInput
	Institutions  *[]InstitutionRef
	Services      *[]ServiceInput
	Rules         *[]RuleInput
	CommonAreaIDs *[]uint
}

func (s associationSet) hasContainerOnly() bool {
	return (s.Services != nil && len(*s.Services) > 0) ||
		(s.Rules != nil && len(*s.Rules) > 0) ||
		(s.CommonAreaIDs != nil && len(*s.CommonAreaIDs) > 0)
}
