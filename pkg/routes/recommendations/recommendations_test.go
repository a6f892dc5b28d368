package recommendations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/recommend"
	"github.com/Ramsey-B/fern/pkg/skiprules"
	"github.com/Ramsey-B/fern/pkg/speed"
)

type fakeService struct {
	report *recommend.SkipReport
	speeds []speed.Recommendation
	err    error
}

func (f *fakeService) SegmentSkips(context.Context) (*recommend.SkipReport, error) {
	return f.report, f.err
}

func (f *fakeService) PlaybackSpeeds(context.Context) ([]speed.Recommendation, error) {
	return f.speeds, f.err
}

func serve(svc Service, path string) *httptest.ResponseRecorder {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logging.NewNop())
	NewHandler(svc).Register(e.Group("/api/v1"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestSegmentSkips(t *testing.T) {
	svc := &fakeService{report: &recommend.SkipReport{
		Recommended:   []skiprules.Stat{{VideoID: "V_1", SegmentID: "V_1_S1", Views: 1, Skips: 2}},
		HighSkipCount: 1,
	}}

	rec := serve(svc, "/api/v1/recommendations/segments")
	require.Equal(t, http.StatusOK, rec.Code)

	var got recommend.SkipReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.HighSkipCount)
	require.Len(t, got.Recommended, 1)
	assert.Equal(t, "V_1_S1", got.Recommended[0].SegmentID)
}

func TestPlaybackSpeeds_EmptyIsArray(t *testing.T) {
	rec := serve(&fakeService{}, "/api/v1/recommendations/speeds")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"recommendations":[]}`, rec.Body.String())
}

func TestStoreFailureIs500(t *testing.T) {
	rec := serve(&fakeService{err: errors.New("neo4j unavailable")}, "/api/v1/recommendations/speeds")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
