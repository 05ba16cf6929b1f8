package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds, matched with errors.Is
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// Entity names used in errors
const (
	EntityListing     = "listing"
	EntityContainer   = "container"
	EntityUnit        = "unit"
	EntityInstitution = "institution"
	EntityCommonArea  = "common area"
	EntityType        = "property type"
)

// Error is a domain error carrying one of the kinds above
type Error struct {
	Kind    error
	Entity  string
	ID      uint
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.ID != 0:
		return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Message)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("%s %d %s", e.Entity, e.ID, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(entity string, id uint) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id}
}

func invalidState(entity string, id uint, format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalidState, Entity: entity, ID: id, Message: fmt.Sprintf(format, args...)}
}

func conflict(entity string, id uint, format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Entity: entity, ID: id, Message: fmt.Sprintf(format, args...)}
}

func validation(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// lookupErr turns a missing row into a NotFound error and wraps everything else
func lookupErr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("load %s %d: %w", entity, id, err)
}
