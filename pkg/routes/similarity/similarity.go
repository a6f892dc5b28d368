package similarity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/recommend"
	simpkg "github.com/Ramsey-B/fern/pkg/similarity"
)

// Service runs a projection. recommend.Service implements it.
type Service interface {
	Similar(ctx context.Context, name string) (*simpkg.Result, error)
}

// Handler handles similarity endpoints
type Handler struct {
	service     Service
	projections []string
}

// NewHandler creates a new similarity handler. projections lists the
// names served by GET /similarity.
func NewHandler(service Service, projections []string) *Handler {
	return &Handler{
		service:     service,
		projections: projections,
	}
}

// Register registers the similarity routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/similarity", h.List)
	g.GET("/similarity/:projection", h.Get)
}

// List returns the configured projection names
// @Summary List similarity projections
// @Tags Similarity
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/similarity [get]
func (h *Handler) List(c echo.Context) error {
	names := h.projections
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"projections": names})
}

// Get runs one projection and returns its similar pairs
// @Summary Similar pairs for a projection
// @Tags Similarity
// @Produce json
// @Param projection path string true "Projection name"
// @Success 200 {object} simpkg.Result
// @Failure 404 {object} httperror.HTTPError
// @Failure 503 {object} httperror.HTTPError
// @Router /api/v1/similarity/{projection} [get]
func (h *Handler) Get(c echo.Context) error {
	name := c.Param("projection")

	res, err := h.service.Similar(c.Request().Context(), name)
	switch {
	case err == nil:
	case errors.Is(err, simpkg.ErrUnknownProjection):
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("projection %s not found", name))
	case errors.Is(err, recommend.ErrSimilarityUnavailable):
		return httperror.NewHTTPError(http.StatusServiceUnavailable, "similarity linking unavailable")
	default:
		return httperror.WrapError(http.StatusInternalServerError, err)
	}

	if res.Pairs == nil {
		res.Pairs = []models.SimilarPair{}
	}
	return c.JSON(http.StatusOK, res)
}
