//go:build integration

package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
)

func startNeo4j(t *testing.T, ctx context.Context) *Client {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/password123",
		},
		WaitingFor: wait.ForLog("Started.").
			WithStartupTimeout(120 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	client, err := NewClient(Config{
		URI:      fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		Username: "neo4j",
		Password: "password123",
	}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(ctx) })
	require.NoError(t, client.Start(ctx))
	return client
}

func TestNeo4jStore(t *testing.T) {
	ctx := context.Background()
	store := NewNeo4jStore(startNeo4j(t, ctx), logging.NewNop())

	seeded, err := store.IsSeeded(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	require.NoError(t, store.UpsertEntity(ctx, models.KindUser, "U_1", models.User{ID: "U_1", Name: "Ada"}.Props()))
	require.NoError(t, store.UpsertEntity(ctx, models.KindVideo, "V_1", models.Video{ID: "V_1"}.Props()))
	seg := models.Segment{ID: "V_1_S0", VideoID: "V_1", Start: 0, End: 10}
	require.NoError(t, store.UpsertEntity(ctx, seg.Kind(), seg.Key(), seg.Props()))
	require.NoError(t, store.UpsertRelationship(ctx, models.HasSegment{VideoID: "V_1", SegmentID: seg.ID}))

	start, end, progress, local := 10.0, 20.0, 9.0, 3.0
	watched := models.Watched{UserID: "U_1", VideoID: "V_1", VideoStartTime: &start, VideoEndTime: &end, VideoProgressTime: &progress, LocalWatchingTime: &local}
	require.NoError(t, store.UpsertRelationship(ctx, watched))
	require.NoError(t, store.UpsertRelationship(ctx, watched))

	require.NoError(t, store.UpsertRelationship(ctx, models.PartOf{VideoID: "V_1", CourseID: "C_1", VideoOrder: 0}))

	err = store.UpsertRelationship(ctx, models.Watched{UserID: "U_2", VideoID: "V_1"})
	assert.True(t, errors.Is(err, ErrEndpointMissing))

	segs, err := store.SegmentWatches(ctx)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, 10.0, *segs[0].WatchedStart)

	videos, err := store.VideoWatches(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)

	seeded, err = store.IsSeeded(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	require.NoError(t, store.ClearAll(ctx))
	seeded, err = store.IsSeeded(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
}
