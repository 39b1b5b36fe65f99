package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopDocsCollectorKeepsHighestScores(t *testing.T) {
	c := NewTopDocsCollector(2)
	lc := c.LeafCollector(0)

	scores := map[int]float32{0: 1.0, 1: 3.0, 2: 2.0}
	for doc, sc := range scores {
		sc := sc
		require.NoError(t, lc.Collect(doc, func() (float32, error) { return sc, nil }))
	}

	top := c.TopDocs()
	require.Len(t, top, 2)
	assert.Equal(t, 1, top[0].DocID)
	assert.Equal(t, float32(3.0), top[0].Score)
	assert.Equal(t, 2, top[1].DocID)
	assert.Equal(t, int64(3), c.TotalHits())
}

func TestTopDocsCollectorTiesBreakByAscendingDocID(t *testing.T) {
	c := NewTopDocsCollector(1)
	lc := c.LeafCollector(0)
	require.NoError(t, lc.Collect(5, func() (float32, error) { return 1.0, nil }))
	require.NoError(t, lc.Collect(2, func() (float32, error) { return 1.0, nil }))

	top := c.TopDocs()
	require.Len(t, top, 1)
	assert.Equal(t, 2, top[0].DocID)
}

func TestNoMatchExplanationForcesZeroValue(t *testing.T) {
	e := NoMatch("term not present")
	assert.False(t, e.IsMatch)
	assert.Equal(t, float32(0), e.Value)
}
