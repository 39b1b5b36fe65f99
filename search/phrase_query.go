package search

import (
	"strconv"
	"strings"

	"github.com/emberfts/ember/search/collector"
	"github.com/emberfts/ember/search/similarity"
	"github.com/emberfts/ember/segreader"
)

// PhraseQuery matches documents where every term appears at its given
// offset relative to the others, e.g. Terms=["quick","fox"],
// Offsets=[0,1] requires "fox" immediately after "quick".
type PhraseQuery struct {
	Field   string
	Terms   [][]byte
	Offsets []int
	Boost   float32
}

// NewPhraseQuery builds a PhraseQuery with terms at consecutive
// offsets 0..n-1, the common case of an exact phrase.
func NewPhraseQuery(field string, terms [][]byte) PhraseQuery {
	offsets := make([]int, len(terms))
	for i := range offsets {
		offsets[i] = i
	}
	return PhraseQuery{Field: field, Terms: terms, Offsets: offsets, Boost: 1.0}
}

func (q PhraseQuery) Rewrite() Query { return q }

func (q PhraseQuery) String() string {
	parts := make([]string, len(q.Terms))
	for i, t := range q.Terms {
		parts[i] = string(t)
	}
	return "PhraseQuery(" + q.Field + ":\"" + strings.Join(parts, " ") + "\")"
}

func (q PhraseQuery) CreateWeight(s *IndexSearcher) (Weight, error) {
	var stats []similarity.Stats
	for _, t := range q.Terms {
		df, err := s.docFreq(q.Field, t)
		if err != nil {
			return nil, err
		}
		stats = append(stats, corpusStats(s, q.Field, df))
	}
	boost := q.Boost
	if boost == 0 {
		boost = 1.0
	}
	return &phraseWeight{field: q.Field, terms: q.Terms, offsets: q.Offsets, boost: boost, sim: s.similarity, stats: stats}, nil
}

type phraseWeight struct {
	field   string
	terms   [][]byte
	offsets []int
	boost   float32
	sim     similarity.Similarity
	stats   []similarity.Stats
}

func (w *phraseWeight) termScorers(leaf *segreader.LeafReader) ([]*termScorer, bool, error) {
	fi, ok := leaf.FieldInfos().ByName(w.field)
	if !ok {
		return nil, false, nil
	}
	scorers := make([]*termScorer, len(w.terms))
	for i, term := range w.terms {
		terms, ok := leaf.Terms(fi.Number)
		if !ok {
			return nil, false, nil
		}
		found, err := terms.SeekExact(term)
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, nil
		}
		pe, err := terms.Postings()
		if err != nil {
			return nil, false, err
		}
		scorers[i] = newTermScorer(pe, leaf, fi.Number, w.sim, w.stats[i], 1.0)
	}
	return scorers, true, nil
}

func (w *phraseWeight) Scorer(leaf *segreader.LeafReader) (Scorer, error) {
	scorers, ok, err := w.termScorers(leaf)
	if err != nil || !ok {
		return nil, err
	}
	ps := newPhraseScorer(scorers, w.offsets)
	return &boostScorer{Scorer: ps, boost: w.boost}, nil
}

func (w *phraseWeight) Explain(leaf *segreader.LeafReader, docID int) (collector.Explanation, error) {
	scorers, ok, err := w.termScorers(leaf)
	if err != nil {
		return collector.Explanation{}, err
	}
	if !ok {
		return collector.NoMatch("phrase terms not all present"), nil
	}
	ps := newPhraseScorer(scorers, w.offsets)
	target, err := ps.ApproximateAdvance(int64(docID))
	if err != nil {
		return collector.Explanation{}, err
	}
	if target != int64(docID) {
		return collector.NoMatch("doc does not contain all phrase terms"), nil
	}
	ok2, err := ps.Matches()
	if err != nil {
		return collector.Explanation{}, err
	}
	if !ok2 {
		return collector.NoMatch("phrase terms present but not in order"), nil
	}
	score, err := ps.Score()
	if err != nil {
		return collector.Explanation{}, err
	}
	return collector.NewExplanation(score*w.boost, "phrase match at "+strconv.Itoa(docID)), nil
}
