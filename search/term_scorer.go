package search

import (
	"github.com/emberfts/ember/search/similarity"
	"github.com/emberfts/ember/segreader"
)

// termScorer scores documents containing one term, using the
// postings' per-doc frequency, the document's norm byte, and the
// query-wide Similarity and corpus Stats supplied by the weight.
type termScorer struct {
	noopMatches
	postings *segreader.PostingsEnum
	leaf     *segreader.LeafReader
	field    int
	sim      similarity.Similarity
	stats    similarity.Stats
	boost    float32
}

func newTermScorer(postings *segreader.PostingsEnum, leaf *segreader.LeafReader, field int, sim similarity.Similarity, stats similarity.Stats, boost float32) *termScorer {
	return &termScorer{postings: postings, leaf: leaf, field: field, sim: sim, stats: stats, boost: boost}
}

func (s *termScorer) DocID() int64 { return s.postings.DocID() }

func (s *termScorer) ApproximateNext() (int64, error) { return s.postings.ApproximateNext() }

func (s *termScorer) ApproximateAdvance(target int64) (int64, error) {
	return s.postings.ApproximateAdvance(target)
}

func (s *termScorer) Cost() int64 { return s.postings.Cost() }

func (s *termScorer) Score() (float32, error) {
	norm, ok := s.leaf.Norm(s.field, int(s.DocID()))
	normVal := float64(1)
	if ok {
		normVal = decodeNorm(norm)
	}
	return s.sim.Score(s.postings.Freq(), normVal, s.stats) * s.boost, nil
}

// decodeNorm turns the stored norm byte back into a document-length
// magnitude for BM25's length-normalization term. The norm byte is the
// field's token count clamped to a byte (see ember.toBufferField), so
// decoding it is just widening back to float64.
func decodeNorm(b byte) float64 {
	if b == 0 {
		return 1
	}
	return float64(b)
}
