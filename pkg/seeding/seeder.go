// Package seeding materializes a reconciled dataset into the graph store in
// dependency order, guarded by a seeded-state check.
package seeding

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// State is the externally observed seeding state of the store.
type State string

const (
	StateEmpty   State = "empty"
	StateSeeding State = "seeding"
	StateSeeded  State = "seeded"
)

// Outcome labels for runs.
const (
	OutcomeSeeded  = "seeded"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Options control one seeding run.
type Options struct {
	Reseed bool
}

// Result describes a finished run.
type Result struct {
	Outcome       string
	Cleared       bool
	Nodes         map[models.NodeKind]int
	Relationships map[models.RelKind]int
	Dangling      int
}

// Seeder writes plans through a graph.Writer.
type Seeder struct {
	store  graph.Writer
	logger ectologger.Logger
	state  State
}

// NewSeeder creates a seeder for store.
func NewSeeder(store graph.Writer, logger ectologger.Logger) *Seeder {
	return &Seeder{
		store:  store,
		logger: logger,
		state:  StateEmpty,
	}
}

// State returns the state observed at the end of the last run.
func (s *Seeder) State() State {
	return s.state
}

// Seed runs the seeding protocol. An already seeded store is left untouched
// unless opts.Reseed is set, in which case it is cleared first. Any write
// failure aborts the run.
func (s *Seeder) Seed(ctx context.Context, ds models.Dataset, opts Options) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "seeding.Seeder.Seed")
	defer span.End()

	log := s.logger.WithContext(ctx).WithField("reseed", opts.Reseed)

	plan, err := BuildPlan(ds)
	if err != nil {
		metrics.RecordSeedingRun(OutcomeFailed)
		log.WithError(err).Error("Dataset failed schema validation")
		return nil, err
	}

	seeded, err := s.store.IsSeeded(ctx)
	if err != nil {
		metrics.RecordSeedingRun(OutcomeFailed)
		return nil, err
	}

	res := &Result{
		Nodes:         make(map[models.NodeKind]int),
		Relationships: make(map[models.RelKind]int),
		Dangling:      plan.Dangling,
	}

	if seeded {
		s.state = StateSeeded
		if !opts.Reseed {
			log.Info("Database already seeded. Skipping seeding")
			res.Outcome = OutcomeSkipped
			metrics.RecordSeedingRun(OutcomeSkipped)
			return res, nil
		}
		log.Warn("Database already seeded. Reseeding as requested")
		if err := s.store.ClearAll(ctx); err != nil {
			metrics.RecordSeedingRun(OutcomeFailed)
			return nil, err
		}
		res.Cleared = true
		s.state = StateEmpty
	} else {
		log.Info("Database not seeded. Proceeding with seeding")
	}

	s.state = StateSeeding
	if err := s.write(ctx, plan, res); err != nil {
		metrics.RecordSeedingRun(OutcomeFailed)
		log.WithError(err).Error("Seeding aborted")
		return nil, err
	}
	s.state = StateSeeded
	res.Outcome = OutcomeSeeded
	metrics.RecordSeedingRun(OutcomeSeeded)

	if plan.Dangling > 0 {
		log.WithField("dangling", plan.Dangling).Warn("Skipped relationships whose endpoints are not in the dataset")
	}
	log.WithFields(map[string]any{
		"users":    res.Nodes[models.KindUser],
		"courses":  res.Nodes[models.KindCourse],
		"videos":   res.Nodes[models.KindVideo],
		"segments": res.Nodes[models.KindSegment],
		"watched":  res.Relationships[models.RelWatched],
	}).Info("Knowledge graph seeded successfully")
	return res, nil
}

// write performs the plan phase by phase so no relationship precedes the
// nodes it references.
func (s *Seeder) write(ctx context.Context, p *Plan, res *Result) error {
	for _, n := range p.Users {
		if err := s.node(ctx, n, res); err != nil {
			return err
		}
	}
	for _, n := range p.Courses {
		if err := s.node(ctx, n, res); err != nil {
			return err
		}
	}
	for _, r := range p.Enrollments {
		if err := s.rel(ctx, r, res); err != nil {
			return err
		}
	}
	for _, n := range p.Videos {
		if err := s.node(ctx, n, res); err != nil {
			return err
		}
	}
	for i, n := range p.Segments {
		if err := s.node(ctx, n, res); err != nil {
			return err
		}
		if err := s.rel(ctx, p.HasSegments[i], res); err != nil {
			return err
		}
	}
	for _, r := range p.Memberships {
		if err := s.rel(ctx, r, res); err != nil {
			return err
		}
	}
	for _, r := range p.Watches {
		if err := s.rel(ctx, r, res); err != nil {
			return err
		}
	}
	for _, r := range p.Creations {
		if err := s.rel(ctx, r, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) node(ctx context.Context, n models.Node, res *Result) error {
	if err := s.store.UpsertEntity(ctx, n.Kind(), n.Key(), n.Props()); err != nil {
		return fmt.Errorf("seeding %s %s: %w", n.Kind(), n.Key(), err)
	}
	res.Nodes[n.Kind()]++
	metrics.RecordSeedingWrite(string(n.Kind()))
	return nil
}

func (s *Seeder) rel(ctx context.Context, r models.Relationship, res *Result) error {
	if err := s.store.UpsertRelationship(ctx, r); err != nil {
		return fmt.Errorf("seeding %s %s->%s: %w", r.Kind(), r.From(), r.To(), err)
	}
	res.Relationships[r.Kind()]++
	metrics.RecordSeedingWrite(string(r.Kind()))
	return nil
}
