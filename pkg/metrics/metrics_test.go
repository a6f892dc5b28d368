package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSeedingWrite(t *testing.T) {
	before := testutil.ToFloat64(SeedingWritesTotal.WithLabelValues("Segment"))
	RecordSeedingWrite("Segment")
	RecordSeedingWrite("Segment")
	assert.Equal(t, before+2, testutil.ToFloat64(SeedingWritesTotal.WithLabelValues("Segment")))
}

func TestRecordRecommendations(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("speeds"))
	RecordRecommendations("speeds", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(RecommendationsTotal.WithLabelValues("speeds")))
}

func TestObserveQuery(t *testing.T) {
	ObserveQuery("is_seeded", time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(StoreQueryDuration, "fern_store_query_duration_seconds"))
}
