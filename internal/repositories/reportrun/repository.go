package reportrun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const (
	table        = "report_runs"
	defaultLimit = 20
	maxLimit     = 200
)

var columns = []string{"id", "report", "item_count", "parameters", "items", "created_at"}

// Repository archives recommendation report runs in Postgres.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new report run repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a run, assigning its id and timestamp.
func (r *Repository) Create(ctx context.Context, run *models.ReportRun) (*models.ReportRun, error) {
	ctx, span := tracing.StartSpan(ctx, "reportrun.Repository.Create")
	defer span.End()

	if run.Report == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "report name is required")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.CreatedAt = time.Now().UTC()
	if len(run.Parameters) == 0 {
		run.Parameters = []byte("{}")
	}
	if len(run.Items) == 0 {
		run.Items = []byte("[]")
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(table)
	sb.Cols(columns...)
	sb.Values(run.ID, run.Report, run.ItemCount, string(run.Parameters), string(run.Items), run.CreatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"report_run_id": run.ID}).Error("Failed to create report run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create report run")
	}

	return run, nil
}

// Get retrieves a run by id.
func (r *Repository) Get(ctx context.Context, id string) (*models.ReportRun, error) {
	ctx, span := tracing.StartSpan(ctx, "reportrun.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var run models.ReportRun
	if err := r.db.GetContext(ctx, &run, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("report run %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get report run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get report run")
	}

	return &run, nil
}

// List returns the newest runs first, optionally filtered by report name.
func (r *Repository) List(ctx context.Context, report string, limit int) ([]models.ReportRun, error) {
	ctx, span := tracing.StartSpan(ctx, "reportrun.Repository.List")
	defer span.End()

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	if report != "" {
		sb.Where(sb.Equal("report", report))
	}
	sb.OrderBy("created_at").Desc()
	sb.Limit(limit)

	query, args := sb.Build()
	runs := []models.ReportRun{}
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list report runs")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list report runs")
	}

	return runs, nil
}
