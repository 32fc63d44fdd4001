package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ema-residences/rental-system/internal/api/metrics"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

// ResidenceHandler handles HTTP requests for listing operations.
type ResidenceHandler struct {
	service ports.ResidenceService
}

func NewResidenceHandler(service ports.ResidenceService) *ResidenceHandler {
	return &ResidenceHandler{service: service}
}

// List handles GET /api/residences, the public filtered search.
//
// @Summary      Search residences
// @Tags         residences
// @Produce      json
// @Param        city      query     string  false  "Partial match on location"
// @Param        title     query     string  false  "Partial match on title"
// @Param        maxPrice  query     number  false  "Upper price bound"
// @Success      200       {array}   domain.Residence
// @Failure      500       {object}  errorResponse
// @Router       /api/residences [get]
func (h *ResidenceHandler) List(c echo.Context) error {
	filter := ports.ResidenceFilter{
		City:  c.QueryParam("city"),
		Title: c.QueryParam("title"),
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		// Unparseable bounds are ignored, like any other unset filter field.
		if p, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = p
		}
	}

	residences, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, residences)
}

// Get handles GET /api/residences/:id.
//
// @Summary      Residence detail
// @Tags         residences
// @Produce      json
// @Param        id   path      string  true  "Residence id"
// @Success      200  {object}  domain.Residence
// @Failure      404  {object}  errorResponse
// @Router       /api/residences/{id} [get]
func (h *ResidenceHandler) Get(c echo.Context) error {
	residence, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, residence)
}

// Create handles POST /api/residences (multipart, roles owner/admin).
//
// @Summary      Create a residence
// @Tags         residences
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.Residence
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/residences [post]
func (h *ResidenceHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	form, err := parseListingForm(c)
	if err != nil {
		return err
	}

	price, err := form.price()
	if err != nil {
		return err
	}

	uploads, cleanup, err := form.openUploads()
	if err != nil {
		return err
	}
	defer cleanup()

	created, err := h.service.Create(c.Request().Context(), ports.CreateResidenceInput{
		Title:         form.value("title"),
		Description:   form.value("description"),
		Location:      form.value("location"),
		Address:       form.value("address"),
		Reference:     form.value("reference"),
		Type:          form.value("type"),
		Price:         price,
		Amenities:     form.jsonStrings("amenities"),
		ExistingMedia: form.jsonMedia("existingImages"),
		Uploads:       uploads,
		Owner:         identity,
	})
	if err != nil {
		return err
	}

	metrics.ListingsCreatedTotal.WithLabelValues("residence").Inc()
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/residences/:id (multipart, owner or admin).
//
// @Summary      Update a residence
// @Tags         residences
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Residence id"
// @Success      200  {object}  domain.Residence
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/residences/{id} [put]
func (h *ResidenceHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	form, err := parseListingForm(c)
	if err != nil {
		return err
	}

	in := ports.UpdateResidenceInput{
		ID:            c.Param("id"),
		MediaToDelete: form.jsonStrings("mediaToDelete"),
		ExistingMedia: form.jsonMedia("existingImages"),
		Requester:     identity,
	}
	for key, dst := range map[string]**string{
		"title":       &in.Title,
		"description": &in.Description,
		"location":    &in.Location,
		"address":     &in.Address,
		"reference":   &in.Reference,
		"type":        &in.Type,
	} {
		if form.has(key) {
			v := form.value(key)
			*dst = &v
		}
	}
	if form.has("price") {
		price, err := form.price()
		if err != nil {
			return err
		}
		in.Price = &price
	}
	if form.has("amenities") {
		amenities := form.jsonStrings("amenities")
		in.Amenities = &amenities
	}

	uploads, cleanup, err := form.openUploads()
	if err != nil {
		return err
	}
	defer cleanup()
	in.Uploads = uploads

	updated, err := h.service.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/residences/:id (owner or admin).
//
// @Summary      Delete a residence
// @Tags         residences
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Residence id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/residences/{id} [delete]
func (h *ResidenceHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), identity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "residence deleted"})
}
