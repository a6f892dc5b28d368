package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "fern:similarity:users:k5", Key("users:k5"))
}

func TestCodec(t *testing.T) {
	raw, err := encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	pairs := []models.SimilarPair{{ID1: "U_1", ID2: "U_2", Similarity: 0.912}}
	raw, err = encode(pairs)
	require.NoError(t, err)
	got, err := decode(raw)
	require.NoError(t, err)
	assert.Equal(t, pairs, got)

	_, err = decode([]byte("{"))
	assert.Error(t, err)
}
