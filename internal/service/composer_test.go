package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/pkg/config"
)

func TestCreateListingWithAssociations(t *testing.T) {
	f := newFixture(t, config.DeleteReject, nil)
	ctx := context.Background()

	in := f.listingInput("Apartaestudio centro", "Carrera 7 #15-20")
	in.Contact = &ContactInput{Name: "Marta", Phone: "3001234567"}
	in.Feature = &FeatureInput{Bedrooms: 1, Bathrooms: 1, Wifi: true}
	in.Images = []ImageInput{{URL: "https://cdn.example.com/a.jpg"}, {URL: "https://cdn.example.com/b.jpg"}, {URL: "https://cdn.example.com/c.jpg"}}
	in.Institutions = []InstitutionRef{InstitutionID(f.institutions[0]), InstitutionNear(f.institutions[1], 1.5)}

	listing, err := f.composer.CreateListingWithAssociations(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if listing.Status != model.StatusPending || listing.IsContainer || listing.IsRented {
		t.Fatalf("unexpected core row %+v", listing)
	}
	if listing.Location == nil || listing.Location.City != "Valledupar" {
		t.Fatalf("location not hydrated: %+v", listing.Location)
	}
	if listing.Contact == nil || listing.Contact.Phone != "3001234567" {
		t.Fatalf("contact not hydrated: %+v", listing.Contact)
	}
	if listing.Feature == nil || !listing.Feature.Wifi {
		t.Fatalf("feature not hydrated: %+v", listing.Feature)
	}
	if listing.Owner == nil || listing.Owner.ID != testOwnerID {
		t.Fatalf("owner not hydrated: %+v", listing.Owner)
	}

	if len(listing.Images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(listing.Images))
	}
	for i, img := range listing.Images {
		if img.Position != i {
			t.Fatalf("image %d has position %d", i, img.Position)
		}
		if img.IsFeatured != (i == 0) {
			t.Fatalf("image %d featured=%v", i, img.IsFeatured)
		}
	}

	if len(listing.Institutions) != 2 {
		t.Fatalf("expected 2 institution links, got %d", len(listing.Institutions))
	}
	for _, link := range listing.Institutions {
		switch link.InstitutionID {
		case f.institutions[0]:
			if link.DistanceKm != nil {
				t.Fatalf("bare reference stored a distance: %v", *link.DistanceKm)
			}
		case f.institutions[1]:
			if link.DistanceKm == nil || *link.DistanceKm != 1.5 {
				t.Fatalf("expected distance 1.5, got %v", link.DistanceKm)
			}
		}
		if link.Institution == nil {
			t.Fatalf("institution %d not hydrated", link.InstitutionID)
		}
	}
}

func TestCreateListingRollsBackOnInvalidInstitution(t *testing.T) {
	f := newFixture(t, config.DeleteReject, nil)

	in := f.listingInput("Habitación amoblada", "Calle 16 #8-11")
	in.Contact = &ContactInput{Name: "Marta"}
	in.Feature = &FeatureInput{Bedrooms: 1}
	in.Images = []ImageInput{{URL: "https://cdn.example.com/a.jpg"}}
	in.Institutions = []InstitutionRef{InstitutionID(f.institutions[0]), InstitutionNear(9999, 2)}

	_, err := f.composer.CreateListingWithAssociations(context.Background(), in)
	expectKind(t, err, ErrValidation)

	for _, m := range []interface{}{&model.Listing{}, &model.Location{}, &model.Contact{}, &model.Feature{}, &model.Image{}, &model.ListingInstitution{}} {
		if n := f.count(t, m); n != 0 {
			t.Fatalf("%T: expected no rows after rollback, found %d", m, n)
		}
	}
}

func TestCreateListingValidation(t *testing.T) {
	f := newFixture(t, config.DeleteReject, nil)

	cases := map[string]func(in *ListingInput){
		"blank title":        func(in *ListingInput) { in.Title = "  " },
		"negative rent":      func(in *ListingInput) { in.MonthlyRent = -1 },
		"missing location":   func(in *ListingInput) { in.Location = nil },
		"unknown type":       func(in *ListingInput) { in.TypeID = 77 },
		"duplicate institut": func(in *ListingInput) { in.Institutions = []InstitutionRef{InstitutionID(1), InstitutionNear(1, 2)} },
		"negative distance":  func(in *ListingInput) { in.Institutions = []InstitutionRef{InstitutionNear(1, -0.5)} },
		"image without url":  func(in *ListingInput) { in.Images = []ImageInput{{URL: " "}} },
		"services on listing": func(in *ListingInput) {
			in.Services = []ServiceInput{{Name: "Meals", Included: true}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := f.listingInput("Habitación", "Calle 1 #1-1")
			mutate(&in)
			_, err := f.composer.CreateListingWithAssociations(context.Background(), in)
			expectKind(t, err, ErrValidation)
		})
	}
	if n := f.count(t, &model.Listing{}); n != 0 {
		t.Fatalf("rejected payloads left %d listings behind", n)
	}
}

func TestLocationIsSharedByNaturalKey(t *testing.T) {
	f := newFixture(t, config.DeleteReject, nil)
	ctx := context.Background()

	a, err := f.composer.CreateListingWithAssociations(ctx, f.listingInput("Room A", "Calle 9 #12-40"))
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	sameBuilding := f.listingInput("Room B", " Calle 9 #12-40 ")
	sameBuilding.Location.Department = "Cesar"
	b, err := f.composer.CreateListingWithAssociations(ctx, sameBuilding)
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	c, err := f.composer.CreateListingWithAssociations(ctx, f.listingInput("Room C", "Calle 10 #3-02"))
	if err != nil {
		t.Fatalf("create c: %v", err)
	}

	if *a.LocationID != *b.LocationID {
		t.Fatalf("same address produced locations %d and %d", *a.LocationID, *b.LocationID)
	}
	if *c.LocationID == *a.LocationID {
		t.Fatalf("different street reused location %d", *a.LocationID)
	}
	if n := f.count(t, &model.Location{}); n != 2 {
		t.Fatalf("expected 2 locations, got %d", n)
	}
}

func TestExplicitFeaturedImageWins(t *testing.T) {
	f := newFixture(t, config.DeleteReject, nil)

	in := f.listingInput("Room", "Calle 9 #12-40")
	in.Images = []ImageInput{
		{URL: "https://cdn.example.com/a.jpg"},
		{URL: "https://cdn.example.com/b.jpg", Featured: true},
		{URL: "https://cdn.example.com/c.jpg", Featured: true},
	}
	listing, err := f.composer.CreateListingWithAssociations(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	featured := 0
	for _, img := range listing.Images {
		if img.IsFeatured {
			featured++
			if img.Position != 1 {
				t.Fatalf("featured image at position %d, want 1", img.Position)
			}
		}
	}
	if featured != 1 {
		t.Fatalf("expected exactly one featured image, got %d", featured)
	}
}

func TestUpdateListingReplacesOnlySuppliedSets(t *testing.T) {
	f := newFixture(t, config.DeleteReject, nil)
	ctx := context.Background()

	in := f.listingInput("Room", "Calle 9 #12-40")
	in.Contact = &ContactInput{Name: "Marta", Phone: "300"}
	in.Images = []ImageInput{{URL: "https://cdn.example.com/a.jpg"}, {URL: "https://cdn.example.com/b.jpg"}}
	in.Institutions = []InstitutionRef{InstitutionID(f.institutions[0])}
	created, err := f.composer.CreateListingWithAssociations(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rent := 520000.0
	images := []ImageInput{{URL: "https://cdn.example.com/new.jpg"}}
	updated, err := f.composer.UpdateListingWithAssociations(ctx, created.ID, UpdateInput{
		MonthlyRent: &rent,
		Images:      &images,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.MonthlyRent != rent || updated.Title != "Room" {
		t.Fatalf("unexpected scalars after update: rent=%v title=%q", updated.MonthlyRent, updated.Title)
	}
	if len(updated.Images) != 1 || updated.Images[0].URL != "https://cdn.example.com/new.jpg" || !updated.Images[0].IsFeatured || updated.Images[0].Position != 0 {
		t.Fatalf("images were not replaced: %+v", updated.Images)
	}
	if len(updated.Institutions) != 1 {
		t.Fatalf("institutions should be untouched, got %d", len(updated.Institutions))
	}
	if updated.Contact == nil || updated.Contact.Phone != "300" {
		t.Fatalf("contact should be untouched: %+v", updated.Contact)
	}
	if n := f.count(t, &model.Image{}); n != 1 {
		t.Fatalf("old images survived: %d rows", n)
	}

	empty := []InstitutionRef{}
	cleared, err := f.composer.UpdateListingWithAssociations(ctx, created.ID, UpdateInput{Institutions: &empty})
	if err != nil {
		t.Fatalf("clear institutions: %v", err)
	}
	if len(cleared.Institutions) != 0 {
		t.Fatalf("expected institutions cleared, got %d", len(cleared.Institutions))
	}
}

func TestUpdateListingRollsBackOnInvalidReference(t *testing.T) {
	f := newFixture(t, config.DeleteReject, nil)
	ctx := context.Background()

	in := f.listingInput("Room", "Calle 9 #12-40")
	in.Images = []ImageInput{{URL: "https://cdn.example.com/a.jpg"}}
	created, err := f.composer.CreateListingWithAssociations(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Renamed"
	images := []ImageInput{{URL: "https://cdn.example.com/b.jpg"}}
	refs := []InstitutionRef{InstitutionID(4040)}
	_, err = f.composer.UpdateListingWithAssociations(ctx, created.ID, UpdateInput{Title: &title, Images: &images, Institutions: &refs})
	expectKind(t, err, ErrValidation)

	after, err := f.composer.FindListingWithAssociations(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if after.Title != "Room" || len(after.Images) != 1 || after.Images[0].URL != "https://cdn.example.com/a.jpg" {
		t.Fatalf("failed update leaked changes: title=%q images=%+v", after.Title, after.Images)
	}
}

func TestFindListingNotFound(t *testing.T) {
	f := newFixture(t, config.DeleteReject, nil)
	_, err := f.composer.FindListingWithAssociations(context.Background(), 999)
	expectKind(t, err, ErrNotFound)
}

func TestInstitutionRefJSON(t *testing.T) {
	var refs []InstitutionRef
	payload := `[7, {"id": 8, "distance": 1.25}, {"institution_id": 9}]`
	if err := json.Unmarshal([]byte(payload), &refs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []InstitutionRef{InstitutionID(7), InstitutionNear(8, 1.25), InstitutionID(9)}
	if len(refs) != len(want) {
		t.Fatalf("expected %d refs, got %d", len(want), len(refs))
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("ref %d: got %+v want %+v", i, refs[i], want[i])
		}
	}

	var bad InstitutionRef
	if err := json.Unmarshal([]byte(`"seven"`), &bad); err == nil {
		t.Fatalf("expected error for string reference")
	}
}
