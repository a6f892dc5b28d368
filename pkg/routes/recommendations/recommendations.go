package recommendations

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/recommend"
	"github.com/Ramsey-B/fern/pkg/speed"
)

// Service is the part of recommend.Service these routes need.
type Service interface {
	SegmentSkips(ctx context.Context) (*recommend.SkipReport, error)
	PlaybackSpeeds(ctx context.Context) ([]speed.Recommendation, error)
}

// Handler handles recommendation endpoints
type Handler struct {
	service Service
}

// NewHandler creates a new recommendation handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register registers the recommendation routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/recommendations/segments", h.SegmentSkips)
	g.GET("/recommendations/speeds", h.PlaybackSpeeds)
}

// SpeedsResponse wraps the playback speed listing.
type SpeedsResponse struct {
	Recommendations []speed.Recommendation `json:"recommendations"`
}

// SegmentSkips returns the segment skip listings
// @Summary Segment skip recommendations
// @Tags Recommendations
// @Produce json
// @Success 200 {object} recommend.SkipReport
// @Failure 500 {object} httperror.HTTPError
// @Router /api/v1/recommendations/segments [get]
func (h *Handler) SegmentSkips(c echo.Context) error {
	report, err := h.service.SegmentSkips(c.Request().Context())
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, report)
}

// PlaybackSpeeds returns the playback speed recommendations
// @Summary Playback speed recommendations
// @Tags Recommendations
// @Produce json
// @Success 200 {object} SpeedsResponse
// @Failure 500 {object} httperror.HTTPError
// @Router /api/v1/recommendations/speeds [get]
func (h *Handler) PlaybackSpeeds(c echo.Context) error {
	recs, err := h.service.PlaybackSpeeds(c.Request().Context())
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if recs == nil {
		recs = []speed.Recommendation{}
	}
	return c.JSON(http.StatusOK, SpeedsResponse{Recommendations: recs})
}
