package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/internal/repository"
	"github.com/juniormojica/estuarriendo-sub000/pkg/config"
	"github.com/juniormojica/estuarriendo-sub000/pkg/database"
	"gorm.io/gorm"
)

const testOwnerID uint = 42

type fixture struct {
	db           *gorm.DB
	composer     *Composer
	hierarchy    *Hierarchy
	lifecycle    *Lifecycle
	typeID       uint
	institutions []uint
	commonAreas  []uint
}

func newFixture(t *testing.T, policy config.DeletePolicy, cache ViewCache) *fixture {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := database.MigrateModels(db, model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	f := &fixture{db: db}
	mustCreate(t, db, &model.Owner{ID: testOwnerID, Name: "Marta", Email: "marta@example.com"})

	boarding := model.PropertyType{Code: "boarding_house", Name: "Boarding house"}
	mustCreate(t, db, &boarding)
	f.typeID = boarding.ID

	for _, name := range []string{"Universidad Popular del Cesar", "Universidad de Santander"} {
		inst := model.Institution{Name: name, Kind: "university", City: "Valledupar"}
		mustCreate(t, db, &inst)
		f.institutions = append(f.institutions, inst.ID)
	}
	for _, name := range []string{"Kitchen", "Study room"} {
		area := model.CommonArea{Name: name}
		mustCreate(t, db, &area)
		f.commonAreas = append(f.commonAreas, area.ID)
	}

	store := repository.NewStore(db)
	f.composer = NewComposer(store)
	f.hierarchy = NewHierarchy(store, f.composer, policy, cache)
	f.lifecycle = NewLifecycle(store, cache)
	return f
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("seed %T: %v", value, err)
	}
}

func (f *fixture) listingInput(title, street string) ListingInput {
	return ListingInput{
		OwnerID:     testOwnerID,
		TypeID:      f.typeID,
		Title:       title,
		MonthlyRent: 450000,
		Location: &LocationInput{
			Street:       street,
			Neighborhood: "Novalito",
			City:         "Valledupar",
			Department:   "Cesar",
		},
	}
}

// newContainer creates a container with n vacant units and returns their ids
func (f *fixture) newContainer(t *testing.T, n int) (uint, []uint) {
	t.Helper()
	ctx := context.Background()
	container, err := f.hierarchy.CreateContainer(ctx, f.listingInput("Casa Novalito", "Calle 9 #12-40"))
	if err != nil {
		t.Fatalf("create container: %v", err)
	}
	var units []uint
	for i := 0; i < n; i++ {
		unit, err := f.hierarchy.CreateUnit(ctx, container.ID, UnitInput{Title: "Room", MonthlyRent: 350000})
		if err != nil {
			t.Fatalf("create unit %d: %v", i, err)
		}
		units = append(units, unit.ID)
	}
	return container.ID, units
}

func (f *fixture) setRented(t *testing.T, unitID uint, rented bool) {
	t.Helper()
	if _, err := f.lifecycle.UpdateUnitRentalStatus(context.Background(), unitID, rented); err != nil {
		t.Fatalf("set unit %d rented=%v: %v", unitID, rented, err)
	}
}

func (f *fixture) listing(t *testing.T, id uint) model.Listing {
	t.Helper()
	var l model.Listing
	if err := f.db.First(&l, id).Error; err != nil {
		t.Fatalf("load listing %d: %v", id, err)
	}
	return l
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", m, err)
	}
	return n
}

// checkAggregates verifies the stored aggregates of a container against its unit rows
func (f *fixture) checkAggregates(t *testing.T, containerID uint) model.Listing {
	t.Helper()
	container := f.listing(t, containerID)

	var units []model.Listing
	if err := f.db.Where("parent_id = ?", containerID).Find(&units).Error; err != nil {
		t.Fatalf("load units: %v", err)
	}
	vacant := 0
	for _, u := range units {
		if u.IsContainer {
			t.Fatalf("unit %d is marked as container", u.ID)
		}
		if !u.IsRented {
			vacant++
		}
	}
	if container.TotalUnits != len(units) {
		t.Fatalf("total_units=%d, container has %d units", container.TotalUnits, len(units))
	}
	if container.AvailableUnits != vacant {
		t.Fatalf("available_units=%d, container has %d vacant units", container.AvailableUnits, vacant)
	}
	if container.RentalMode == model.RentalComplete && vacant != 0 {
		t.Fatalf("complete container has %d vacant units", vacant)
	}
	return container
}

func expectKind(t *testing.T, err error, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}

// memoryCache is a ViewCache backed by a map. beforeSet, when set, runs
// before every Set stores its value.
type memoryCache struct {
	mu        sync.Mutex
	items     map[string][]byte
	sets      int
	beforeSet func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) error {
	if m.beforeSet != nil {
		hook := m.beforeSet
		m.beforeSet = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.items[key] = value
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.items[key]), 10, 64)
	n++
	m.items[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}
