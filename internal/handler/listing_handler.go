package handler

import (
	"net/http"

	"github.com/juniormojica/estuarriendo-sub000/internal/service"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"github.com/juniormojica/estuarriendo-sub000/prometheus"
	"github.com/labstack/echo/v4"
)

// CreateListing handles POST /listings
func (h *Handler) CreateListing(c echo.Context) error {
	var req service.ListingInput
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	req.OwnerID = ownerFrom(c)

	done := prometheus.TimeDBOperation("create_listing")
	listing, err := h.composer.CreateListingWithAssociations(logger.RequestContext(c), req)
	done()
	if err != nil {
		return respondError(c, err, "create listing")
	}

	prometheus.RecordListingOperation("create")
	return c.JSON(http.StatusCreated, listing)
}

// GetListing handles GET /listings/:id
func (h *Handler) GetListing(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	done := prometheus.TimeDBOperation("find_listing")
	listing, err := h.composer.FindListingWithAssociations(logger.RequestContext(c), id)
	done()
	if err != nil {
		return respondError(c, err, "load listing")
	}

	prometheus.RecordListingOperation("get")
	return c.JSON(http.StatusOK, listing)
}

// UpdateListing handles PUT /listings/:id
func (h *Handler) UpdateListing(c echo.Context) error {
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

	ctx := logger.RequestContext(c)
	done := prometheus.TimeDBOperation("update_listing")
	listing, err := h.composer.UpdateListingWithAssociations(ctx, id, req)
	done()
	if err != nil {
		return respondError(c, err, "update listing")
	}
	h.hierarchy.Invalidate(ctx, listing)

	prometheus.RecordListingOperation("update")
	return c.JSON(http.StatusOK, listing)
}
