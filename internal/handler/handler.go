package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juniormojica/estuarriendo-sub000/internal/middleware"
	"github.com/juniormojica/estuarriendo-sub000/internal/notify"
	"github.com/juniormojica/estuarriendo-sub000/internal/service"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"github.com/juniormojica/estuarriendo-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler serves the container, unit and listing routes
type Handler struct {
	hierarchy *service.Hierarchy
	composer  *service.Composer
	lifecycle *service.Lifecycle
	notifier  notify.Notifier
}

// New creates the HTTP handlers. A nil notifier drops events.
func New(hierarchy *service.Hierarchy, composer *service.Composer, lifecycle *service.Lifecycle, notifier notify.Notifier) *Handler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Handler{
		hierarchy: hierarchy,
		composer:  composer,
		lifecycle: lifecycle,
		notifier:  notifier,
	}
}

// Register mounts the routes. Reads are public; writes go through auth.
func (h *Handler) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	containers := e.Group("/containers")
	containers.GET("/:id", h.GetContainer)
	containers.GET("/:containerId/units", h.ListUnits)
	containers.POST("", h.CreateContainer, auth)
	containers.PUT("/:id", h.UpdateContainer, auth)
	containers.DELETE("/:id", h.DeleteContainer, auth)
	containers.POST("/:id/rent-complete", h.RentComplete, auth)
	containers.POST("/:id/change-mode", h.ChangeMode, auth)
	containers.POST("/:containerId/units", h.CreateUnit, auth)

	units := e.Group("/units", auth)
	units.PUT("/:id", h.UpdateUnit)
	units.DELETE("/:id", h.DeleteUnit)
	units.PATCH("/:id/rental-status", h.UpdateUnitRentalStatus)

	listings := e.Group("/listings")
	listings.GET("/:id", h.GetListing)
	listings.POST("", h.CreateListing, auth)
	listings.PUT("/:id", h.UpdateListing, auth)
}

// Validator adapts validator/v10 to echo
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the request validator
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

func badRequest(c echo.Context, err error) error {
	logger.FromEcho(c).Warn("Invalid request", zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request: " + err.Error()})
}

// respondError maps domain errors to HTTP answers. Unknown errors are logged
// and reported as 500 without their text.
func respondError(c echo.Context, err error, action string) error {
	log := logger.FromEcho(c)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error("Failed to "+action, zap.Error(err))
		return c.JSON(status, echo.Map{"error": "failed to " + action})
	}
	log.Info("Request rejected", zap.String("action", action), zap.Int("status", status), zap.Error(err))
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// authorize reports whether the caller owns listingID or is an admin and
// returns the owner of the listing. When it returns false the response has
// already been written.
func (h *Handler) authorize(c echo.Context, listingID uint) (uint, bool, error) {
	claims, ok := middleware.GetUser(c)
	if !ok {
		return 0, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing credentials"})
	}

	ownerID, err := h.hierarchy.OwnerOf(logger.RequestContext(c), listingID)
	if err != nil {
		return 0, false, respondError(c, err, "load listing")
	}
	if ownerID != claims.UserID && !claims.IsAdmin() {
		logger.FromEcho(c).Warn("Owner mismatch",
			zap.Uint("listing_id", listingID),
			zap.Uint("owner_id", ownerID),
			zap.Uint("user_id", claims.UserID))
		return 0, false, c.JSON(http.StatusForbidden, echo.Map{"error": "listing belongs to another owner"})
	}
	return ownerID, true, nil
}

// publish sends a notification after a committed change. Failures are logged only.
func (h *Handler) publish(ctx context.Context, event notify.Event) {
	event.OccurredAt = time.Now().UTC()
	err := h.notifier.Notify(ctx, event)
	prometheus.RecordNotification(string(event.Type), err)
	if err != nil {
		logger.FromContext(ctx).Warn("Notification not delivered",
			zap.String("type", string(event.Type)),
			zap.Uint("container_id", event.ContainerID),
			zap.Error(err))
	}
}

func ownerFrom(c echo.Context) uint {
	if claims, ok := middleware.GetUser(c); ok {
		return claims.UserID
	}
	return 0
}
