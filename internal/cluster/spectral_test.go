package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobs() [][]float64 {
	return [][]float64{
		{0, 0, 0}, {0.1, 0, 0}, {0, 0.1, 0},
		{5, 5, 5}, {5.1, 5, 5}, {5, 5.1, 5},
	}
}

func TestEmbed_UnitRowsAndBlobs(t *testing.T) {
	emb, err := Embed(blobs(), 2, 1.0)
	require.NoError(t, err)
	require.Len(t, emb, 6)

	for _, row := range emb {
		require.Len(t, row, 2)
		assert.InDelta(t, 1.0, math.Hypot(row[0], row[1]), 1e-9)
	}

	// rows of the same blob embed almost on top of each other
	dist := func(a, b []float64) float64 { return math.Sqrt(sqDist(a, b)) }
	assert.Less(t, dist(emb[0], emb[1]), 0.1)
	assert.Less(t, dist(emb[3], emb[4]), 0.1)
	assert.Greater(t, dist(emb[0], emb[3]), 1.0)
}

func TestEmbed_RejectsNaN(t *testing.T) {
	_, err := Embed([][]float64{{1}, {math.NaN()}}, 1, 1)
	assert.Error(t, err)

	_, err = Embed(nil, 1, 1)
	assert.ErrorIs(t, err, ErrTooFewRows)
}

func TestFitPredict(t *testing.T) {
	labels, err := Spectral{Clusters: 2}.FitPredict(blobs())
	require.NoError(t, err)
	require.Len(t, labels, 6)
	for _, l := range labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 2)
	}

	_, err = NewSpectral(8).FitPredict(blobs())
	assert.ErrorIs(t, err, ErrTooFewRows)
}

func TestSizesAndMembers(t *testing.T) {
	labels := []int{0, 2, 2, 0, 2}

	assert.Equal(t, []int{2, 0, 3}, Sizes(labels))
	assert.Equal(t, []int{1, 2, 4}, Members(labels, 2))
	assert.Nil(t, Members(labels, 1))
	assert.Nil(t, Sizes(nil))
}
