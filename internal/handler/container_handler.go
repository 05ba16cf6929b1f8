package handler

import (
	"net/http"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/internal/notify"
	"github.com/juniormojica/estuarriendo-sub000/internal/service"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"github.com/juniormojica/estuarriendo-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateContainer handles POST /containers
func (h *Handler) CreateContainer(c echo.Context) error {
	log := logger.FromEcho(c)

	var req service.ListingInput
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	req.OwnerID = ownerFrom(c)

	done := prometheus.TimeDBOperation("create_container")
	container, err := h.hierarchy.CreateContainer(logger.RequestContext(c), req)
	done()
	if err != nil {
		return respondError(c, err, "create container")
	}

	prometheus.RecordContainerOperation("create")
	log.Info("Container created successfully", zap.Uint("container_id", container.ID))
	return c.JSON(http.StatusCreated, container)
}

// GetContainer handles GET /containers/:id
func (h *Handler) GetContainer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	done := prometheus.TimeDBOperation("find_container")
	view, err := h.hierarchy.FindContainerWithUnits(logger.RequestContext(c), id)
	done()
	if err != nil {
		return respondError(c, err, "load container")
	}

	prometheus.RecordContainerOperation("get")
	return c.JSON(http.StatusOK, view)
}

// UpdateContainer handles PUT /containers/:id
func (h *Handler) UpdateContainer(c echo.Context) error {
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

	done := prometheus.TimeDBOperation("update_container")
	container, err := h.hierarchy.UpdateContainer(logger.RequestContext(c), id, req)
	done()
	if err != nil {
		return respondError(c, err, "update container")
	}

	prometheus.RecordContainerOperation("update")
	return c.JSON(http.StatusOK, container)
}

// DeleteContainer handles DELETE /containers/:id
func (h *Handler) DeleteContainer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	ownerID, ok, err := h.authorize(c, id)
	if !ok {
		return err
	}

	ctx := logger.RequestContext(c)
	done := prometheus.TimeDBOperation("delete_container")
	err = h.hierarchy.DeleteContainer(ctx, id)
	done()
	if err != nil {
		return respondError(c, err, "delete container")
	}

	prometheus.RecordContainerOperation("delete")
	h.publish(ctx, notify.Event{Type: notify.EventContainerDeleted, OwnerID: ownerID, ContainerID: id})
	return c.NoContent(http.StatusNoContent)
}

// RentComplete handles POST /containers/:id/rent-complete
func (h *Handler) RentComplete(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if _, ok, err := h.authorize(c, id); !ok {
		return err
	}

	ctx := logger.RequestContext(c)
	done := prometheus.TimeDBOperation("rent_complete")
	container, err := h.lifecycle.RentCompleteContainer(ctx, id)
	done()
	prometheus.RecordRentalTransition(string(model.RentalComplete), err == nil)
	if err != nil {
		return respondError(c, err, "rent container")
	}

	h.publish(ctx, notify.Event{Type: notify.EventContainerRented, OwnerID: container.OwnerID, ContainerID: container.ID})
	log.Info("Container rented as a whole", zap.Uint("container_id", id))
	return c.JSON(http.StatusOK, container)
}

// ChangeMode handles POST /containers/:id/change-mode and moves the container
// back to by-unit rentals
func (h *Handler) ChangeMode(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if _, ok, err := h.authorize(c, id); !ok {
		return err
	}

	ctx := logger.RequestContext(c)
	done := prometheus.TimeDBOperation("change_mode")
	container, err := h.lifecycle.ChangeToByUnitMode(ctx, id)
	done()
	prometheus.RecordRentalTransition(string(model.RentalByUnit), err == nil)
	if err != nil {
		return respondError(c, err, "change rental mode")
	}

	h.publish(ctx, notify.Event{Type: notify.EventModeChanged, OwnerID: container.OwnerID, ContainerID: container.ID})
	return c.JSON(http.StatusOK, container)
}
