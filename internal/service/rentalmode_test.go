package service

import (
	"errors"
	"testing"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
)

func TestRentalModeTransitions(t *testing.T) {
	var m RentalModeMachine
	tests := []struct {
		name     string
		from, to model.RentalMode
		occupied int64
		wantErr  error
	}{
		{"by unit to complete when vacant", model.RentalByUnit, model.RentalComplete, 0, nil},
		{"by unit to complete with tenants", model.RentalByUnit, model.RentalComplete, 1, ErrConflict},
		{"complete to complete", model.RentalComplete, model.RentalComplete, 3, ErrConflict},
		{"complete to by unit", model.RentalComplete, model.RentalByUnit, 3, nil},
		{"by unit to by unit", model.RentalByUnit, model.RentalByUnit, 2, nil},
		{"unset mode counts as by unit", "", model.RentalComplete, 0, nil},
		{"unknown target", model.RentalByUnit, model.RentalMode("weekly"), 0, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Transition(1, tt.from, tt.to, tt.occupied)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRentalModeAllowsUnitChanges(t *testing.T) {
	var m RentalModeMachine
	if !m.AllowsUnitChanges(model.RentalByUnit) {
		t.Fatalf("by_unit must allow unit changes")
	}
	if m.AllowsUnitChanges(model.RentalComplete) {
		t.Fatalf("complete must not allow unit changes")
	}
}
