package seed

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/loader"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/recommend"
	"github.com/Ramsey-B/fern/pkg/seeding"
)

// Service seeds the store. recommend.Service implements it.
type Service interface {
	Seed(ctx context.Context, ds models.Dataset, reseed bool) (*seeding.Result, error)
}

// Source loads the dataset to seed from.
type Source func(ctx context.Context) (models.Dataset, error)

// Handler handles the seeding endpoint
type Handler struct {
	service Service
	source  Source
}

// NewHandler creates a new seed handler
func NewHandler(service Service, source Source) *Handler {
	return &Handler{
		service: service,
		source:  source,
	}
}

// Register registers the seed route
func (h *Handler) Register(g *echo.Group) {
	g.POST("/seed", h.Seed)
}

// Response summarizes a seeding run.
type Response struct {
	Outcome       string                  `json:"outcome"`
	Cleared       bool                    `json:"cleared"`
	Nodes         map[models.NodeKind]int `json:"nodes"`
	Relationships map[models.RelKind]int  `json:"relationships"`
	Dangling      int                     `json:"dangling"`
}

// Seed loads the configured dataset and seeds the graph
// @Summary Seed the knowledge graph
// @Tags Seeding
// @Produce json
// @Param reseed query string false "Clear and rewrite an already seeded graph (1, true, yes or y)"
// @Success 200 {object} Response
// @Failure 422 {object} httperror.HTTPError
// @Failure 503 {object} httperror.HTTPError
// @Router /api/v1/seed [post]
func (h *Handler) Seed(c echo.Context) error {
	ctx := c.Request().Context()

	reseed := config.IsTruthy(c.QueryParam("reseed"))

	ds, err := h.source(ctx)
	if err != nil {
		if errors.Is(err, loader.ErrInputMissing) {
			return httperror.WrapError(http.StatusServiceUnavailable, err)
		}
		return httperror.WrapError(http.StatusInternalServerError, err)
	}

	res, err := h.service.Seed(ctx, ds, reseed)
	switch {
	case err == nil:
	case errors.Is(err, recommend.ErrSeedingUnavailable):
		return httperror.NewHTTPError(http.StatusServiceUnavailable, "seeding unavailable")
	case errors.Is(err, models.ErrInvalidRecord):
		return httperror.WrapError(http.StatusUnprocessableEntity, err)
	default:
		return httperror.WrapError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, Response{
		Outcome:       res.Outcome,
		Cleared:       res.Cleared,
		Nodes:         res.Nodes,
		Relationships: res.Relationships,
		Dangling:      res.Dangling,
	})
}
