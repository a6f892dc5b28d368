package similarity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/recommend"
	simpkg "github.com/Ramsey-B/fern/pkg/similarity"
)

type fakeService struct {
	results map[string][]models.SimilarPair
	err     error
}

func (f *fakeService) Similar(_ context.Context, name string) (*simpkg.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	pairs, ok := f.results[name]
	if !ok {
		return nil, simpkg.ErrUnknownProjection
	}
	return &simpkg.Result{Projection: models.Projection{Name: name, Label: "User"}, Pairs: pairs}, nil
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logging.NewNop())
	h.Register(e.Group("/api/v1"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGet(t *testing.T) {
	svc := &fakeService{results: map[string][]models.SimilarPair{
		"users":   {{ID1: "U_1", ID2: "U_2", Similarity: 0.9}},
		"courses": nil,
	}}
	h := NewHandler(svc, []string{"courses", "users"})

	rec := serve(h, "/api/v1/similarity/users")
	require.Equal(t, http.StatusOK, rec.Code)
	var res simpkg.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "users", res.Projection.Name)
	assert.Equal(t, []models.SimilarPair{{ID1: "U_1", ID2: "U_2", Similarity: 0.9}}, res.Pairs)

	rec = serve(h, "/api/v1/similarity/courses")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pairs":[]`)
}

func TestGet_Errors(t *testing.T) {
	rec := serve(NewHandler(&fakeService{}, nil), "/api/v1/similarity/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(NewHandler(&fakeService{err: recommend.ErrSimilarityUnavailable}, nil), "/api/v1/similarity/users")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestList(t *testing.T) {
	rec := serve(NewHandler(&fakeService{}, []string{"courses", "users"}), "/api/v1/similarity")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"projections":["courses","users"]}`, rec.Body.String())
}
