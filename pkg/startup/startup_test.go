package startup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/logging"
)

func recorder(events *[]string, name string, parents ...string) Func {
	return Func{
		Name:    name,
		Parents: parents,
		StartFn: func(context.Context) error { *events = append(*events, "start:"+name); return nil },
		StopFn:  func(context.Context) error { *events = append(*events, "stop:"+name); return nil },
	}
}

func TestStartup_DependencyOrder(t *testing.T) {
	var events []string
	s := New(logging.NewNop(), 1)
	s.Add(recorder(&events, "service", "graph", "cache"))
	s.Add(recorder(&events, "cache"))
	s.Add(recorder(&events, "graph"))

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{"start:graph", "start:cache", "start:service"}, events)
	assert.Equal(t, StatusStarted, s.Status("service"))

	events = nil
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, []string{"stop:service", "stop:cache", "stop:graph"}, events)
}

func TestStartup_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	s := New(logging.NewNop(), 3).WithBackoffUnit(time.Millisecond)
	s.Add(Func{Name: "graph", StartFn: func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	}})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestStartup_GivesUp(t *testing.T) {
	boom := errors.New("connection refused")
	s := New(logging.NewNop(), 2).WithBackoffUnit(time.Millisecond)
	s.Add(Func{Name: "graph", StartFn: func(context.Context) error { return boom }})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailed, s.Status("graph"))
}

func TestStartup_UnknownParent(t *testing.T) {
	s := New(logging.NewNop(), 1)
	s.Add(Func{Name: "service", Parents: []string{"missing"}})
	assert.Error(t, s.Start(context.Background()))
}
