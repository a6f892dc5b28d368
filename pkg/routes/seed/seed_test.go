package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/loader"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/seeding"
)

type fakeService struct {
	reseeds []bool
	err     error
}

func (f *fakeService) Seed(_ context.Context, _ models.Dataset, reseed bool) (*seeding.Result, error) {
	f.reseeds = append(f.reseeds, reseed)
	if f.err != nil {
		return nil, f.err
	}
	return &seeding.Result{
		Outcome: seeding.OutcomeSeeded,
		Cleared: reseed,
		Nodes:   map[models.NodeKind]int{models.KindUser: 2},
	}, nil
}

func staticSource(context.Context) (models.Dataset, error) {
	return models.Dataset{}, nil
}

func post(h *Handler, path string) *httptest.ResponseRecorder {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logging.NewNop())
	h.Register(e.Group("/api/v1"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func TestSeed(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, staticSource)

	rec := post(h, "/api/v1/seed")
	require.Equal(t, http.StatusOK, rec.Code)
	var res Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, seeding.OutcomeSeeded, res.Outcome)
	assert.Equal(t, 2, res.Nodes[models.KindUser])

	rec = post(h, "/api/v1/seed?reseed=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bool{false, true}, svc.reseeds)
}

func TestSeed_ReseedTruthiness(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"reseed=yes", true},
		{"reseed=Y", true},
		{"reseed=1", true},
		{"reseed=TRUE", true},
		{"reseed=t", false},
		{"reseed=no", false},
		{"reseed=maybe", false},
		{"reseed=", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			svc := &fakeService{}
			rec := post(NewHandler(svc, staticSource), "/api/v1/seed?"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, []bool{tt.want}, svc.reseeds)
		})
	}
}

func TestSeed_ErrorMapping(t *testing.T) {
	rec := post(NewHandler(&fakeService{err: fmt.Errorf("user U_1: %w", models.ErrInvalidRecord)}, staticSource), "/api/v1/seed")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	missing := func(context.Context) (models.Dataset, error) {
		return models.Dataset{}, fmt.Errorf("user.json: %w", loader.ErrInputMissing)
	}
	rec = post(NewHandler(&fakeService{}, missing), "/api/v1/seed")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
