package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ema-residences/rental-system/internal/api/metrics"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

// AnnonceHandler handles the secondary listing type: public reads,
// role-gated creation.
type AnnonceHandler struct {
	service ports.AnnonceService
}

func NewAnnonceHandler(service ports.AnnonceService) *AnnonceHandler {
	return &AnnonceHandler{service: service}
}

// List handles GET /api/annonces.
//
// @Summary      List annonces
// @Tags         annonces
// @Produce      json
// @Success      200  {array}  domain.Annonce
// @Router       /api/annonces [get]
func (h *AnnonceHandler) List(c echo.Context) error {
	annonces, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, annonces)
}

// Get handles GET /api/annonces/:id.
//
// @Summary      Annonce detail
// @Tags         annonces
// @Produce      json
// @Param        id   path      string  true  "Annonce id"
// @Success      200  {object}  domain.Annonce
// @Failure      404  {object}  errorResponse
// @Router       /api/annonces/{id} [get]
func (h *AnnonceHandler) Get(c echo.Context) error {
	annonce, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, annonce)
}

// Create handles POST /api/annonces (multipart, roles owner/admin).
//
// @Summary      Create an annonce
// @Tags         annonces
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.Annonce
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/annonces [post]
func (h *AnnonceHandler) Create(c echo.Context) error {
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

	created, err := h.service.Create(c.Request().Context(), ports.CreateAnnonceInput{
		Title:       form.value("title"),
		Description: form.value("description"),
		Location:    form.value("location"),
		Address:     form.value("address"),
		Type:        form.value("type"),
		Price:       price,
		Amenities:   form.jsonStrings("amenities"),
		Uploads:     uploads,
		Owner:       identity,
	})
	if err != nil {
		return err
	}

	metrics.ListingsCreatedTotal.WithLabelValues("annonce").Inc()
	return c.JSON(http.StatusCreated, created)
}
