package handler

import (
	"net/http"

	"github.com/juniormojica/estuarriendo-sub000/internal/notify"
	"github.com/juniormojica/estuarriendo-sub000/internal/service"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"github.com/juniormojica/estuarriendo-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RentalStatusRequest toggles the occupancy of a unit
type RentalStatusRequest struct {
	IsRented *bool `json:"is_rented" validate:"required"`
}

// CreateUnit handles POST /containers/:containerId/units
func (h *Handler) CreateUnit(c echo.Context) error {
	log := logger.FromEcho(c)
	containerID, err := parseID(c, "containerId")
	if err != nil {
		return badRequest(c, err)
	}
	if _, ok, err := h.authorize(c, containerID); !ok {
		return err
	}

	var req service.UnitInput
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}

	ctx := logger.RequestContext(c)
	done := prometheus.TimeDBOperation("create_unit")
	unit, err := h.hierarchy.CreateUnit(ctx, containerID, req)
	done()
	if err != nil {
		return respondError(c, err, "create unit")
	}

	prometheus.RecordUnitOperation("create")
	h.publish(ctx, notify.Event{Type: notify.EventUnitCreated, OwnerID: unit.OwnerID, ContainerID: containerID, UnitID: unit.ID})
	log.Info("Unit created successfully", zap.Uint("unit_id", unit.ID), zap.Uint("container_id", containerID))
	return c.JSON(http.StatusCreated, unit)
}

// ListUnits handles GET /containers/:containerId/units
func (h *Handler) ListUnits(c echo.Context) error {
	containerID, err := parseID(c, "containerId")
	if err != nil {
		return badRequest(c, err)
	}

	done := prometheus.TimeDBOperation("list_units")
	units, err := h.hierarchy.ListUnits(logger.RequestContext(c), containerID)
	done()
	if err != nil {
		return respondError(c, err, "list units")
	}

	prometheus.RecordUnitOperation("list")
	return c.JSON(http.StatusOK, units)
}

// UpdateUnit handles PUT /units/:id
func (h *Handler) UpdateUnit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if _, ok, err := h.authorize(c, id); !ok {
		return err
	}

	var req service.UpdateInput
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}

	done := prometheus.TimeDBOperation("update_unit")
	unit, err := h.hierarchy.UpdateUnit(logger.RequestContext(c), id, req)
	done()
	if err != nil {
		return respondError(c, err, "update unit")
	}

	prometheus.RecordUnitOperation("update")
	return c.JSON(http.StatusOK, unit)
}

// DeleteUnit handles DELETE /units/:id
func (h *Handler) DeleteUnit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if _, ok, err := h.authorize(c, id); !ok {
		return err
	}

	done := prometheus.TimeDBOperation("delete_unit")
	err = h.hierarchy.DeleteUnit(logger.RequestContext(c), id)
	done()
	if err != nil {
		return respondError(c, err, "delete unit")
	}

	prometheus.RecordUnitOperation("delete")
	return c.NoContent(http.StatusNoContent)
}

// UpdateUnitRentalStatus handles PATCH /units/:id/rental-status
func (h *Handler) UpdateUnitRentalStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if _, ok, err := h.authorize(c, id); !ok {
		return err
	}

	var req RentalStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}

	ctx := logger.RequestContext(c)
	done := prometheus.TimeDBOperation("update_rental_status")
	change, err := h.lifecycle.UpdateUnitRentalStatus(ctx, id, *req.IsRented)
	done()
	if err != nil {
		return respondError(c, err, "update rental status")
	}

	prometheus.RecordUnitOperation("rental_status")
	if change.Changed {
		h.publish(ctx, notify.Event{
			Type:        notify.EventOccupancyChanged,
			OwnerID:     change.Unit.OwnerID,
			ContainerID: change.Container.ID,
			UnitID:      change.Unit.ID,
			IsRented:    req.IsRented,
		})
	}
	return c.JSON(http.StatusOK, change)
}
