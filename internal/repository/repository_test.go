package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/pkg/database"
	"gorm.io/gorm"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := database.MigrateModels(db, model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func TestResolveLocationReusesNaturalKey(t *testing.T) {
	store := newStore(t)
	repo := store.Read(context.Background())

	existing := model.Location{Street: "Calle 9", Neighborhood: "Novalito", City: "Valledupar"}
	if err := store.DB().Create(&existing).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := repo.ResolveLocation(model.Location{Street: " Calle 9", Neighborhood: "Novalito ", City: "Valledupar", Department: "Cesar"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatalf("expected location %d, got %d", existing.ID, got.ID)
	}

	other, err := repo.ResolveLocation(model.Location{Street: "Calle 10", Neighborhood: "Novalito", City: "Valledupar"})
	if err != nil {
		t.Fatalf("resolve other: %v", err)
	}
	if other.ID == existing.ID {
		t.Fatalf("different street resolved to the same location")
	}
	if n, _ := repo.CountLocations(); n != 2 {
		t.Fatalf("expected 2 locations, got %d", n)
	}
}

func TestResolveLocationAbsorbsConcurrentInsert(t *testing.T) {
	store := newStore(t)

	// another writer stores the same address between the lookup and the insert
	armed := true
	err := store.DB().Callback().Create().Before("gorm:create").Register("test:racing_location", func(db *gorm.DB) {
		if !armed || db.Statement.Table != "locations" {
			return
		}
		armed = false
		err := db.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO locations (street, neighborhood, city, department, created_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)",
				"Calle 9", "Novalito", "Valledupar", "racer").Error
		if err != nil {
			t.Errorf("racing insert: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	var got *model.Location
	err = store.InTx(context.Background(), func(repo *Repo) error {
		var err error
		got, err = repo.ResolveLocation(model.Location{Street: "Calle 9", Neighborhood: "Novalito", City: "Valledupar", Department: "Cesar"})
		return err
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if armed {
		t.Fatalf("callback never ran")
	}
	if got.ID == 0 || got.Department != "racer" {
		t.Fatalf("expected the row stored by the other writer, got %+v", got)
	}
	if n, _ := store.Read(context.Background()).CountLocations(); n != 1 {
		t.Fatalf("expected 1 location, got %d", n)
	}
}

func TestReplaceImagesRenumbersPositions(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(repo *Repo) error {
		if err := repo.ReplaceImages(1, []model.Image{{URL: "a", Position: 5}, {URL: "b", Position: 9}}); err != nil {
			return err
		}
		return repo.ReplaceImages(1, []model.Image{{URL: "c"}, {URL: "d"}, {URL: "e"}})
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	var images []model.Image
	if err := store.DB().Where("listing_id = ?", 1).Order("position").Find(&images).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(images))
	}
	for i, img := range images {
		if img.Position != i || img.URL != string(rune('c'+i)) {
			t.Fatalf("image %d: %+v", i, img)
		}
	}
}

func TestInTxRollsBack(t *testing.T) {
	store := newStore(t)
	boom := errors.New("boom")

	err := store.InTx(context.Background(), func(repo *Repo) error {
		if err := repo.CreateListing(&model.Listing{OwnerID: 1, TypeID: 1, Title: "x", Status: model.StatusPending}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var n int64
	store.DB().Model(&model.Listing{}).Count(&n)
	if n != 0 {
		t.Fatalf("rolled back transaction left %d listings", n)
	}
}

func TestUnitQueries(t *testing.T) {
	store := newStore(t)
	repo := store.Read(context.Background())

	container := model.Listing{OwnerID: 1, TypeID: 1, Title: "c", IsContainer: true, RentalMode: model.RentalByUnit, Status: model.StatusPending}
	if err := repo.CreateListing(&container); err != nil {
		t.Fatalf("create container: %v", err)
	}
	for i, rented := range []bool{true, false, false} {
		status := model.StatusPending
		if i == 0 {
			status = model.StatusApproved
		}
		unit := model.Listing{OwnerID: 1, TypeID: 1, Title: "u", ParentID: &container.ID, IsRented: rented, Status: status}
		if err := repo.CreateListing(&unit); err != nil {
			t.Fatalf("create unit: %v", err)
		}
	}

	if n, _ := repo.CountUnits(container.ID); n != 3 {
		t.Fatalf("expected 3 units, got %d", n)
	}
	if n, _ := repo.CountUnitsByRented(container.ID, false); n != 2 {
		t.Fatalf("expected 2 vacant units, got %d", n)
	}
	counts, err := repo.UnitStatusCounts(container.ID)
	if err != nil {
		t.Fatalf("status counts: %v", err)
	}
	if counts[model.StatusApproved] != 1 || counts[model.StatusPending] != 2 {
		t.Fatalf("unexpected status counts %v", counts)
	}

	if err := repo.DetachUnits(container.ID); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if ids, _ := repo.UnitIDs(container.ID); len(ids) != 0 {
		t.Fatalf("units still attached: %v", ids)
	}
}
