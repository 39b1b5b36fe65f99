package search

import (
	"github.com/emberfts/ember/search/collector"
	"github.com/emberfts/ember/search/similarity"
	"github.com/emberfts/ember/segreader"
)

// Query is rewritten to a fixed point, then compiled into a Weight
// bound to a particular searcher (similarity, corpus stats).
type Query interface {
	// Rewrite returns an equivalent, possibly simplified query. The
	// caller rewrites repeatedly until the result no longer changes.
	Rewrite() Query
	CreateWeight(s *IndexSearcher) (Weight, error)
	String() string
}

// Weight holds per-search state (similarity, IDF) and builds a Scorer
// for each leaf in turn.
type Weight interface {
	Scorer(leaf *segreader.LeafReader) (Scorer, error)
	Explain(leaf *segreader.LeafReader, docID int) (collector.Explanation, error)
}

// MatchAllDocsQuery matches every live document with a constant score.
type MatchAllDocsQuery struct{}

func (MatchAllDocsQuery) Rewrite() Query { return MatchAllDocsQuery{} }

func (MatchAllDocsQuery) String() string { return "MatchAllDocsQuery" }

func (q MatchAllDocsQuery) CreateWeight(*IndexSearcher) (Weight, error) {
	return matchAllWeight{}, nil
}

type matchAllWeight struct{}

func (matchAllWeight) Scorer(leaf *segreader.LeafReader) (Scorer, error) {
	return newMatchAllScorer(leaf.MaxDoc()), nil
}

func (matchAllWeight) Explain(*segreader.LeafReader, int) (collector.Explanation, error) {
	return collector.NewExplanation(1.0, "MatchAllDocsQuery"), nil
}

type matchAllScorer struct {
	noopMatches
	doc    int64
	maxDoc int64
}

func newMatchAllScorer(maxDoc int) *matchAllScorer { return &matchAllScorer{doc: -1, maxDoc: int64(maxDoc)} }

func (s *matchAllScorer) DocID() int64 { return s.doc }

func (s *matchAllScorer) ApproximateNext() (int64, error) {
	return s.ApproximateAdvance(s.doc + 1)
}

func (s *matchAllScorer) ApproximateAdvance(target int64) (int64, error) {
	if target >= s.maxDoc {
		s.doc = NoMoreDocs()
	} else {
		s.doc = target
	}
	return s.doc, nil
}

func (s *matchAllScorer) Score() (float32, error) { return 1.0, nil }

func (s *matchAllScorer) Cost() int64 { return s.maxDoc }

// BoostQuery multiplies an inner query's score by a constant factor
// without changing which documents match.
type BoostQuery struct {
	Inner Query
	Boost float32
}

func (q BoostQuery) Rewrite() Query {
	inner := q.Inner.Rewrite()
	if inner.String() == q.Inner.String() {
		return q
	}
	return BoostQuery{Inner: inner, Boost: q.Boost}
}

func (q BoostQuery) String() string { return "BoostQuery(" + q.Inner.String() + ")" }

func (q BoostQuery) CreateWeight(s *IndexSearcher) (Weight, error) {
	inner, err := q.Inner.CreateWeight(s)
	if err != nil {
		return nil, err
	}
	return boostWeight{inner: inner, boost: q.Boost}, nil
}

type boostWeight struct {
	inner Weight
	boost float32
}

func (w boostWeight) Scorer(leaf *segreader.LeafReader) (Scorer, error) {
	s, err := w.inner.Scorer(leaf)
	if err != nil || s == nil {
		return s, err
	}
	return &boostScorer{Scorer: s, boost: w.boost}, nil
}

func (w boostWeight) Explain(leaf *segreader.LeafReader, docID int) (collector.Explanation, error) {
	e, err := w.inner.Explain(leaf, docID)
	if err != nil {
		return e, err
	}
	if !e.IsMatch {
		return e, nil
	}
	return collector.NewExplanation(e.Value*w.boost, "boost", e), nil
}

type boostScorer struct {
	Scorer
	boost float32
}

func (s *boostScorer) Score() (float32, error) {
	sc, err := s.Scorer.Score()
	return sc * s.boost, err
}

// ConstantScoreQuery wraps an inner query and scores every match at a
// fixed value, discarding the inner query's own scoring.
type ConstantScoreQuery struct {
	Inner Query
	Score float32
}

func (q ConstantScoreQuery) Rewrite() Query {
	inner := q.Inner.Rewrite()
	if inner.String() == q.Inner.String() {
		return q
	}
	return ConstantScoreQuery{Inner: inner, Score: q.Score}
}

func (q ConstantScoreQuery) String() string { return "ConstantScoreQuery(" + q.Inner.String() + ")" }

func (q ConstantScoreQuery) CreateWeight(s *IndexSearcher) (Weight, error) {
	inner, err := q.Inner.CreateWeight(s)
	if err != nil {
		return nil, err
	}
	return constantScoreWeight{inner: inner, score: q.Score}, nil
}

type constantScoreWeight struct {
	inner Weight
	score float32
}

func (w constantScoreWeight) Scorer(leaf *segreader.LeafReader) (Scorer, error) {
	s, err := w.inner.Scorer(leaf)
	if err != nil || s == nil {
		return s, err
	}
	return &constantScoreScorer{Scorer: s, score: w.score}, nil
}

func (w constantScoreWeight) Explain(leaf *segreader.LeafReader, docID int) (collector.Explanation, error) {
	e, err := w.inner.Explain(leaf, docID)
	if err != nil {
		return e, err
	}
	if !e.IsMatch {
		return e, nil
	}
	return collector.NewExplanation(w.score, "ConstantScoreQuery", e), nil
}

type constantScoreScorer struct {
	Scorer
	score float32
}

func (s *constantScoreScorer) Score() (float32, error) { return s.score, nil }

// corpusStats is a small helper shared by TermQuery/PhraseQuery/etc. to
// gather similarity.Stats for a field+term across every leaf searched.
func corpusStats(s *IndexSearcher, fieldName string, docFreq int64) similarity.Stats {
	return similarity.Stats{
		DocFreq:   docFreq,
		TotalDocs: int64(s.reader.NumDocs()),
		AvgDocLen: s.avgDocLen(fieldName),
	}
}
