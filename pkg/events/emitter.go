// Package events emits recommendation and seeding events
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/seeding"
	"github.com/Ramsey-B/fern/pkg/skiprules"
	"github.com/Ramsey-B/fern/pkg/speed"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

const (
	EventSegmentSkip   = "recommendation.segment_skip"
	EventPlaybackSpeed = "recommendation.playback_speed"
	EventGraphSeeded   = "graph.seeded"
)

// Publisher is implemented by kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, events ...*kafka.Event) error
}

// Emitter builds fern events and hands them to a Publisher.
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

func newEvent(eventType, key string, data any) (*kafka.Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return &kafka.Event{
		EventType:     eventType,
		Key:           key,
		SchemaVersion: SchemaVersion,
		Data:          raw,
	}, nil
}

// EmitSegmentSkips emits one event per recommended segment
func (e *Emitter) EmitSegmentSkips(ctx context.Context, stats []skiprules.Stat) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitSegmentSkips")
	defer span.End()

	batch := make([]*kafka.Event, 0, len(stats))
	for _, s := range stats {
		ev, err := newEvent(EventSegmentSkip, s.VideoID, s)
		if err != nil {
			return err
		}
		batch = append(batch, ev)
	}

	if err := e.publisher.Publish(ctx, batch...); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s events", EventSegmentSkip)
		return err
	}
	return nil
}

// EmitPlaybackSpeeds emits one event per recommended (video, speed) pair
func (e *Emitter) EmitPlaybackSpeeds(ctx context.Context, recs []speed.Recommendation) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPlaybackSpeeds")
	defer span.End()

	batch := make([]*kafka.Event, 0, len(recs))
	for _, r := range recs {
		ev, err := newEvent(EventPlaybackSpeed, r.VideoID, r)
		if err != nil {
			return err
		}
		batch = append(batch, ev)
	}

	if err := e.publisher.Publish(ctx, batch...); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s events", EventPlaybackSpeed)
		return err
	}
	return nil
}

// SeededPayload is the data of a graph.seeded event.
type SeededPayload struct {
	Outcome       string         `json:"outcome"`
	Cleared       bool           `json:"cleared"`
	Nodes         map[string]int `json:"nodes"`
	Relationships map[string]int `json:"relationships"`
	Dangling      int            `json:"dangling"`
}

// EmitGraphSeeded emits the summary of a seeding run
func (e *Emitter) EmitGraphSeeded(ctx context.Context, res *seeding.Result) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitGraphSeeded")
	defer span.End()

	payload := SeededPayload{
		Outcome:       res.Outcome,
		Cleared:       res.Cleared,
		Nodes:         make(map[string]int, len(res.Nodes)),
		Relationships: make(map[string]int, len(res.Relationships)),
		Dangling:      res.Dangling,
	}
	for k, v := range res.Nodes {
		payload.Nodes[string(k)] = v
	}
	for k, v := range res.Relationships {
		payload.Relationships[string(k)] = v
	}

	ev, err := newEvent(EventGraphSeeded, "graph", payload)
	if err != nil {
		return err
	}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", EventGraphSeeded)
		return err
	}
	return nil
}
