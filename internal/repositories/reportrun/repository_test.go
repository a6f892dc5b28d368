package reportrun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
)

type call struct {
	query string
	args  []any
}

type fakeDB struct {
	calls []call
	err   error
	get   func(dest any)
	sel   func(dest any)
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	return nil, f.err
}

func (f *fakeDB) GetContext(_ context.Context, dest any, query string, args ...any) error {
	f.calls = append(f.calls, call{query: query, args: args})
	if f.err != nil {
		return f.err
	}
	if f.get != nil {
		f.get(dest)
	}
	return nil
}

func (f *fakeDB) SelectContext(_ context.Context, dest any, query string, args ...any) error {
	f.calls = append(f.calls, call{query: query, args: args})
	if f.err != nil {
		return f.err
	}
	if f.sel != nil {
		f.sel(dest)
	}
	return nil
}

func hasLimit(c call, n int) bool {
	for _, a := range c.args {
		if a == n {
			return true
		}
	}
	return strings.Contains(c.query, fmt.Sprintf("LIMIT %d", n))
}

func TestCreate(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db, logging.NewNop())

	run, err := repo.Create(context.Background(), &models.ReportRun{Report: models.ReportSegmentSkips, ItemCount: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.JSONEq(t, `{}`, string(run.Parameters))
	assert.JSONEq(t, `[]`, string(run.Items))

	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].query, "INSERT INTO report_runs")
	assert.Contains(t, db.calls[0].query, "$6")
	assert.Equal(t, run.ID, db.calls[0].args[0])
	assert.Equal(t, models.ReportSegmentSkips, db.calls[0].args[1])
	assert.Equal(t, 2, db.calls[0].args[2])
}

func TestCreate_RequiresReport(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db, logging.NewNop())

	_, err := repo.Create(context.Background(), &models.ReportRun{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	assert.Empty(t, db.calls)
}

func TestCreate_DBError(t *testing.T) {
	repo := NewRepository(&fakeDB{err: errors.New("boom")}, logging.NewNop())

	_, err := repo.Create(context.Background(), &models.ReportRun{Report: models.ReportPlaybackSpeeds})
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err))
	assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))
}

func TestGet_NotFound(t *testing.T) {
	repo := NewRepository(&fakeDB{err: sql.ErrNoRows}, logging.NewNop())

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestGet(t *testing.T) {
	db := &fakeDB{get: func(dest any) {
		dest.(*models.ReportRun).Report = models.ReportSimilarity
	}}
	repo := NewRepository(db, logging.NewNop())

	run, err := repo.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, models.ReportSimilarity, run.Report)
	assert.Contains(t, db.calls[0].query, "WHERE id = $1")
	assert.Equal(t, []any{"abc"}, db.calls[0].args)
}

func TestList(t *testing.T) {
	db := &fakeDB{sel: func(dest any) {
		runs := dest.(*[]models.ReportRun)
		*runs = append(*runs, models.ReportRun{ID: "1"}, models.ReportRun{ID: "2"})
	}}
	repo := NewRepository(db, logging.NewNop())

	runs, err := repo.List(context.Background(), models.ReportSegmentSkips, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	q := db.calls[0].query
	assert.Contains(t, q, "WHERE report = $1")
	assert.Contains(t, q, "ORDER BY created_at DESC")
	assert.Contains(t, q, "LIMIT")
	assert.True(t, hasLimit(db.calls[0], defaultLimit))
}

func TestList_ClampsLimitAndSkipsFilter(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db, logging.NewNop())

	runs, err := repo.List(context.Background(), "", 10_000)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotContains(t, db.calls[0].query, "WHERE")
	assert.True(t, hasLimit(db.calls[0], maxLimit))
}
