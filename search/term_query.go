package search

import (
	"github.com/emberfts/ember/search/collector"
	"github.com/emberfts/ember/search/similarity"
	"github.com/emberfts/ember/segreader"
)

// TermQuery matches documents containing one term in one field.
type TermQuery struct {
	Field string
	Term  []byte
	Boost float32
}

func NewTermQuery(field string, term []byte) TermQuery {
	return TermQuery{Field: field, Term: term, Boost: 1.0}
}

func (q TermQuery) Rewrite() Query { return q }

func (q TermQuery) String() string { return "TermQuery(" + q.Field + ":" + string(q.Term) + ")" }

func (q TermQuery) CreateWeight(s *IndexSearcher) (Weight, error) {
	docFreq, err := s.docFreq(q.Field, q.Term)
	if err != nil {
		return nil, err
	}
	boost := q.Boost
	if boost == 0 {
		boost = 1.0
	}
	return &termWeight{
		field: q.Field,
		term:  q.Term,
		boost: boost,
		sim:   s.similarity,
		stats: corpusStats(s, q.Field, docFreq),
	}, nil
}

type termWeight struct {
	field string
	term  []byte
	boost float32
	sim   similarity.Similarity
	stats similarity.Stats
}

func (w *termWeight) lookup(leaf *segreader.LeafReader) (*segreader.PostingsEnum, int, bool, error) {
	fi, ok := leaf.FieldInfos().ByName(w.field)
	if !ok {
		return nil, 0, false, nil
	}
	terms, ok := leaf.Terms(fi.Number)
	if !ok {
		return nil, 0, false, nil
	}
	found, err := terms.SeekExact(w.term)
	if err != nil || !found {
		return nil, 0, false, err
	}
	pe, err := terms.Postings()
	if err != nil {
		return nil, 0, false, err
	}
	return pe, fi.Number, true, nil
}

func (w *termWeight) Scorer(leaf *segreader.LeafReader) (Scorer, error) {
	pe, fieldNumber, ok, err := w.lookup(leaf)
	if err != nil || !ok {
		return nil, err
	}
	return newTermScorer(pe, leaf, fieldNumber, w.sim, w.stats, w.boost), nil
}

func (w *termWeight) Explain(leaf *segreader.LeafReader, docID int) (collector.Explanation, error) {
	pe, fieldNumber, ok, err := w.lookup(leaf)
	if err != nil {
		return collector.Explanation{}, err
	}
	if !ok {
		return collector.NoMatch("term not present: " + string(w.term)), nil
	}
	target, err := pe.ApproximateAdvance(int64(docID))
	if err != nil {
		return collector.Explanation{}, err
	}
	if target != int64(docID) {
		return collector.NoMatch("doc does not contain term: " + string(w.term)), nil
	}
	norm, ok := leaf.Norm(fieldNumber, docID)
	normVal := 1.0
	if ok {
		normVal = decodeNorm(norm)
	}
	value, desc := w.sim.Explain(pe.Freq(), normVal, w.stats)
	return collector.NewExplanation(value*w.boost, desc), nil
}
