package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstantSimilarityIgnoresInputs(t *testing.T) {
	c := ConstantSimilarity{Value: 1.5}
	assert.Equal(t, float32(1.5), c.Score(99, 12.0, Stats{DocFreq: 1, TotalDocs: 100}))
}

func TestBM25ScoresRarerTermsHigher(t *testing.T) {
	bm25 := NewBM25Similarity()
	common := bm25.Score(1, 5, Stats{DocFreq: 90, TotalDocs: 100, AvgDocLen: 5})
	rare := bm25.Score(1, 5, Stats{DocFreq: 1, TotalDocs: 100, AvgDocLen: 5})
	assert.Greater(t, rare, common)
}

func TestBM25ScoresHigherFrequencyHigher(t *testing.T) {
	bm25 := NewBM25Similarity()
	low := bm25.Score(1, 5, Stats{DocFreq: 10, TotalDocs: 100, AvgDocLen: 5})
	high := bm25.Score(5, 5, Stats{DocFreq: 10, TotalDocs: 100, AvgDocLen: 5})
	assert.Greater(t, high, low)
}
