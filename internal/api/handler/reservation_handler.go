package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ema-residences/rental-system/internal/api/metrics"
	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

// ReservationHandler handles HTTP requests for the reservation lifecycle.
type ReservationHandler struct {
	service ports.ReservationService
}

func NewReservationHandler(service ports.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

type createReservationRequest struct {
	ResidenceID string `json:"residence_id" validate:"required"`
	StartDate   string `json:"start_date"   validate:"required"`
	EndDate     string `json:"end_date"     validate:"required"`
}

type transitionStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Create handles POST /api/reservations.
//
// @Summary      Create a reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                    false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createReservationRequest  true   "Reservation details"
// @Success      201              {object}  ports.ReservationView
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	start, ok := parseDate(req.StartDate)
	if !ok {
		return domain.NewValidationError("start_date must be a date (YYYY-MM-DD)")
	}
	end, ok := parseDate(req.EndDate)
	if !ok {
		return domain.NewValidationError("end_date must be a date (YYYY-MM-DD)")
	}

	view, err := h.service.Create(c.Request().Context(), ports.CreateReservationInput{
		ResidenceID:    req.ResidenceID,
		Requester:      identity,
		StartDate:      start,
		EndDate:        end,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	metrics.ReservationsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, view)
}

// TransitionStatus handles PATCH /api/reservations/:id/status.
//
// @Summary      Transition a reservation's status
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Reservation id"
// @Param        body  body      transitionStatusRequest  true  "Target status"
// @Success      200   {object}  ports.ReservationView
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/reservations/{id}/status [patch]
func (h *ReservationHandler) TransitionStatus(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req transitionStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	view, err := h.service.TransitionStatus(c.Request().Context(), c.Param("id"), domain.ReservationStatus(req.Status), identity)
	if err != nil {
		return err
	}

	metrics.ReservationTransitionsTotal.WithLabelValues(req.Status).Inc()
	return c.JSON(http.StatusOK, view)
}

// Get handles GET /api/reservations/:id.
//
// @Summary      Reservation detail
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reservation id"
// @Success      200  {object}  ports.ReservationView
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetByID(c.Request().Context(), c.Param("id"), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/reservations/:id.
//
// @Summary      Delete a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reservation id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/reservations/{id} [delete]
func (h *ReservationHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), identity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "reservation deleted"})
}

// ListForOwner handles GET /api/reservations/owner.
//
// @Summary      Reservations against the caller's residences
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.ReservationView
// @Failure      401  {object}  errorResponse
// @Router       /api/reservations/owner [get]
func (h *ReservationHandler) ListForOwner(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	views, err := h.service.ListForOwner(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// ListForClient handles GET /api/reservations/client.
//
// @Summary      The caller's own reservations
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.ReservationView
// @Failure      401  {object}  errorResponse
// @Router       /api/reservations/client [get]
func (h *ReservationHandler) ListForClient(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	views, err := h.service.ListForClient(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// OwnerStats handles GET /api/reservations/stats/owner.
//
// @Summary      Aggregated owner statistics
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.OwnerStats
// @Failure      401  {object}  errorResponse
// @Router       /api/reservations/stats/owner [get]
func (h *ReservationHandler) OwnerStats(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	stats, err := h.service.OwnerStatistics(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
