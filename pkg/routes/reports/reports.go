package reports

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Repository reads archived runs. reportrun.Repository implements it.
type Repository interface {
	Get(ctx context.Context, id string) (*models.ReportRun, error)
	List(ctx context.Context, report string, limit int) ([]models.ReportRun, error)
}

// Handler handles the report archive endpoints
type Handler struct {
	repo Repository
}

// NewHandler creates a new report archive handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Register registers the report archive routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/reports", h.List)
	g.GET("/reports/:id", h.Get)
}

// List returns archived runs, newest first
// @Summary List archived report runs
// @Tags Reports
// @Produce json
// @Param report query string false "Report name filter"
// @Param limit query int false "Maximum number of runs"
// @Success 200 {array} models.ReportRun
// @Failure 400 {object} httperror.HTTPError
// @Router /api/v1/reports [get]
func (h *Handler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return httperror.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = v
	}

	runs, err := h.repo.List(c.Request().Context(), c.QueryParam("report"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, runs)
}

// Get returns one archived run
// @Summary Get an archived report run
// @Tags Reports
// @Produce json
// @Param id path string true "Report run id"
// @Success 200 {object} models.ReportRun
// @Failure 404 {object} httperror.HTTPError
// @Router /api/v1/reports/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	run, err := h.repo.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}
