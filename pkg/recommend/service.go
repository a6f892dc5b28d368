// Package recommend reads the graph store, derives recommendations and hands
// each finished report to the optional sinks.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/facts"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/reconcile"
	"github.com/Ramsey-B/fern/pkg/seeding"
	"github.com/Ramsey-B/fern/pkg/similarity"
	"github.com/Ramsey-B/fern/pkg/skiprules"
	"github.com/Ramsey-B/fern/pkg/speed"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var (
	// ErrSeedingUnavailable is returned by Seed when no seeder is configured.
	ErrSeedingUnavailable = errors.New("seeding is not configured")
	// ErrSimilarityUnavailable is returned by Similar when no linker is configured.
	ErrSimilarityUnavailable = errors.New("similarity linking is not configured")
)

// EventSink receives finished reports. *events.Emitter implements it.
type EventSink interface {
	EmitSegmentSkips(ctx context.Context, stats []skiprules.Stat) error
	EmitPlaybackSpeeds(ctx context.Context, recs []speed.Recommendation) error
	EmitGraphSeeded(ctx context.Context, res *seeding.Result) error
}

// Archive stores report runs. *reportrun.Repository implements it.
type Archive interface {
	Create(ctx context.Context, run *models.ReportRun) (*models.ReportRun, error)
}

// Invalidator drops cached similarity listings. *cache.Client implements it.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Linker runs a similarity projection. *similarity.Linker implements it.
type Linker interface {
	Link(ctx context.Context, name string) (*similarity.Result, error)
}

// Options configure the derivations.
type Options struct {
	Skip  skiprules.Thresholds
	Speed speed.Thresholds
	// UseRules derives skip recommendations through the rules program
	// instead of the direct filter.
	UseRules bool
}

// SkipReport holds the three skip listings.
type SkipReport struct {
	Recommended   []skiprules.Stat `json:"recommended"`
	ByPercentage  []skiprules.Stat `json:"by_percentage"`
	ByCount       []skiprules.Stat `json:"by_count"`
	HighSkipCount int              `json:"high_skip_count"`
	Segments      int              `json:"segments"`
}

// Service is shared by the CLI and the HTTP API.
type Service struct {
	reader  graph.Reader
	opts    Options
	engine  *skiprules.Engine
	seeder  *seeding.Seeder
	linker  Linker
	events  EventSink
	archive Archive
	cache   Invalidator
	logger  ectologger.Logger

	seedMu sync.Mutex
}

// NewService creates a service reading from reader.
func NewService(reader graph.Reader, opts Options, logger ectologger.Logger) *Service {
	return &Service{
		reader: reader,
		opts:   opts,
		engine: skiprules.NewEngine(opts.Skip),
		logger: logger,
	}
}

func (s *Service) WithSeeder(seeder *seeding.Seeder) *Service {
	s.seeder = seeder
	return s
}

func (s *Service) WithLinker(l Linker) *Service {
	s.linker = l
	return s
}

func (s *Service) WithEvents(sink EventSink) *Service {
	s.events = sink
	return s
}

func (s *Service) WithArchive(a Archive) *Service {
	s.archive = a
	return s
}

func (s *Service) WithCache(c Invalidator) *Service {
	s.cache = c
	return s
}

// Options returns the configured thresholds.
func (s *Service) Options() Options {
	return s.opts
}

// SegmentSkips derives the three skip listings from the store.
func (s *Service) SegmentSkips(ctx context.Context) (*SkipReport, error) {
	ctx, span := tracing.StartSpan(ctx, "recommend.Service.SegmentSkips")
	defer span.End()

	watches, err := s.reader.SegmentWatches(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.skipReport(facts.Classify(watches))
	if err != nil {
		return nil, err
	}

	metrics.RecordRecommendations(models.ReportSegmentSkips, len(report.Recommended))
	if s.events != nil {
		if err := s.events.EmitSegmentSkips(ctx, report.Recommended); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to publish segment skip recommendations")
		}
	}
	s.archiveRun(ctx, models.ReportSegmentSkips, s.opts.Skip, report.Recommended, len(report.Recommended))
	return report, nil
}

func (s *Service) skipReport(f *facts.SegmentFacts) (*SkipReport, error) {
	report := &SkipReport{
		ByPercentage:  s.engine.ByPercentage(f),
		ByCount:       s.engine.ByCount(f),
		HighSkipCount: s.engine.HighSkipRateCount(f),
		Segments:      f.Len(),
	}
	if s.opts.UseRules {
		recs, err := s.engine.RecommendWithRules(f)
		if err != nil {
			return nil, err
		}
		report.Recommended = recs
	} else {
		report.Recommended = s.engine.Recommend(f)
	}
	return report, nil
}

// PlaybackSpeeds derives the speed recommendations from the store.
func (s *Service) PlaybackSpeeds(ctx context.Context) ([]speed.Recommendation, error) {
	ctx, span := tracing.StartSpan(ctx, "recommend.Service.PlaybackSpeeds")
	defer span.End()

	watches, err := s.reader.VideoWatches(ctx)
	if err != nil {
		return nil, err
	}
	recs := speed.Recommend(watches, s.opts.Speed)

	metrics.RecordRecommendations(models.ReportPlaybackSpeeds, len(recs))
	if s.events != nil {
		if err := s.events.EmitPlaybackSpeeds(ctx, recs); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to publish playback speed recommendations")
		}
	}
	s.archiveRun(ctx, models.ReportPlaybackSpeeds, s.opts.Speed, recs, len(recs))
	return recs, nil
}

// Similar runs the named similarity projection.
func (s *Service) Similar(ctx context.Context, name string) (*similarity.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "recommend.Service.Similar")
	defer span.End()

	if s.linker == nil {
		return nil, ErrSimilarityUnavailable
	}
	res, err := s.linker.Link(ctx, name)
	if err != nil {
		return nil, err
	}

	metrics.RecordRecommendations(models.ReportSimilarity, len(res.Pairs))
	s.archiveRun(ctx, models.ReportSimilarity, map[string]any{"projection": name}, res.Pairs, len(res.Pairs))
	return res, nil
}

// Seed reconciles ds and runs the seeding protocol. Concurrent calls are
// serialized.
func (s *Service) Seed(ctx context.Context, ds models.Dataset, reseed bool) (*seeding.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "recommend.Service.Seed")
	defer span.End()

	if s.seeder == nil {
		return nil, ErrSeedingUnavailable
	}

	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	res, err := s.seeder.Seed(ctx, reconcile.Reconcile(ds), seeding.Options{Reseed: reseed})
	if err != nil {
		return nil, err
	}
	if res.Outcome != seeding.OutcomeSeeded {
		return res, nil
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to invalidate similarity cache")
		}
	}
	if s.events != nil {
		if err := s.events.EmitGraphSeeded(ctx, res); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to publish seeding summary")
		}
	}
	return res, nil
}

func (s *Service) archiveRun(ctx context.Context, report string, params, items any, count int) {
	if s.archive == nil {
		return
	}
	log := s.logger.WithContext(ctx).WithField("report", report)

	p, err := json.Marshal(params)
	if err != nil {
		log.WithError(err).Warn("Failed to encode report parameters")
		return
	}
	it, err := json.Marshal(items)
	if err != nil {
		log.WithError(err).Warn("Failed to encode report items")
		return
	}

	run, err := s.archive.Create(ctx, &models.ReportRun{
		Report:     report,
		ItemCount:  count,
		Parameters: p,
		Items:      it,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to archive report run")
		return
	}
	log.WithField("report_run_id", run.ID).Debug("Archived report run")
}
