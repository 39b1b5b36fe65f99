package search

import (
	"strconv"
	"strings"

	"github.com/emberfts/ember/search/collector"
	"github.com/emberfts/ember/segreader"
)

// Occur labels how a BooleanQuery clause participates in matching.
type Occur int

const (
	Must Occur = iota
	Should
	MustNot
	Filter
)

func (o Occur) String() string {
	switch o {
	case Must:
		return "+"
	case MustNot:
		return "-"
	case Filter:
		return "#"
	default:
		return ""
	}
}

// BooleanClause pairs a sub-query with how it participates.
type BooleanClause struct {
	Query Query
	Occur Occur
}

// BooleanQuery combines clauses with MUST/SHOULD/MUST_NOT/FILTER
// semantics and an optional MinShouldMatch over the SHOULD clauses.
type BooleanQuery struct {
	Clauses        []BooleanClause
	MinShouldMatch int
}

func (q BooleanQuery) Rewrite() Query {
	// A single MUST clause and nothing else collapses to that clause.
	if len(q.Clauses) == 1 && q.Clauses[0].Occur == Must {
		return q.Clauses[0].Query.Rewrite()
	}
	changed := false
	rewritten := make([]BooleanClause, len(q.Clauses))
	for i, c := range q.Clauses {
		r := c.Query.Rewrite()
		if r.String() != c.Query.String() {
			changed = true
		}
		rewritten[i] = BooleanClause{Query: r, Occur: c.Occur}
	}
	if !changed {
		return q
	}
	return BooleanQuery{Clauses: rewritten, MinShouldMatch: q.MinShouldMatch}
}

func (q BooleanQuery) String() string {
	var b strings.Builder
	b.WriteString("BooleanQuery(")
	for i, c := range q.Clauses {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(c.Occur.String())
		b.WriteString(c.Query.String())
	}
	if q.MinShouldMatch > 0 {
		b.WriteString(" msm=")
		b.WriteString(strconv.Itoa(q.MinShouldMatch))
	}
	b.WriteString(")")
	return b.String()
}

func (q BooleanQuery) CreateWeight(s *IndexSearcher) (Weight, error) {
	w := &booleanWeight{minShouldMatch: q.MinShouldMatch}
	for _, c := range q.Clauses {
		inner, err := c.Query.CreateWeight(s)
		if err != nil {
			return nil, err
		}
		switch c.Occur {
		case Must:
			w.must = append(w.must, inner)
		case Filter:
			w.filter = append(w.filter, inner)
		case MustNot:
			w.mustNot = append(w.mustNot, inner)
		case Should:
			w.should = append(w.should, inner)
		}
	}
	return w, nil
}

type booleanWeight struct {
	must           []Weight
	filter         []Weight
	mustNot        []Weight
	should         []Weight
	minShouldMatch int
}

func (w *booleanWeight) Scorer(leaf *segreader.LeafReader) (Scorer, error) {
	var required []Scorer
	for _, weight := range append(append([]Weight{}, w.must...), w.filter...) {
		s, err := weight.Scorer(leaf)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, nil // a MUST/FILTER clause with no matches kills the whole query
		}
		required = append(required, s)
	}

	var should []Scorer
	for _, weight := range w.should {
		s, err := weight.Scorer(leaf)
		if err != nil {
			return nil, err
		}
		if s != nil {
			should = append(should, s)
		}
	}
	if w.minShouldMatch > 0 && len(should) < w.minShouldMatch {
		return nil, nil
	}

	var excluded []Scorer
	for _, weight := range w.mustNot {
		s, err := weight.Scorer(leaf)
		if err != nil {
			return nil, err
		}
		if s != nil {
			excluded = append(excluded, s)
		}
	}

	var core Scorer
	switch {
	case len(required) > 0 && len(should) > 0:
		core = newConjunctionScorer(append(append([]Scorer{}, required...), newDisjunctionScorer(should, max1(w.minShouldMatch), 1.0)))
	case len(required) > 0:
		core = newConjunctionScorer(required)
	case len(should) > 0:
		core = newDisjunctionScorer(should, max1(w.minShouldMatch), 1.0)
	default:
		return nil, nil
	}

	if len(excluded) > 0 {
		core = newExclusionScorer(core, excluded)
	}
	return core, nil
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func (w *booleanWeight) Explain(leaf *segreader.LeafReader, docID int) (collector.Explanation, error) {
	var details []collector.Explanation
	matchedRequired := true
	for _, weight := range append(append([]Weight{}, w.must...), w.filter...) {
		e, err := weight.Explain(leaf, docID)
		if err != nil {
			return collector.Explanation{}, err
		}
		details = append(details, e)
		if !e.IsMatch {
			matchedRequired = false
		}
	}
	for _, weight := range w.mustNot {
		e, err := weight.Explain(leaf, docID)
		if err != nil {
			return collector.Explanation{}, err
		}
		if e.IsMatch {
			return collector.NoMatch("excluded by MUST_NOT", e), nil
		}
	}
	shouldMatches := 0
	for _, weight := range w.should {
		e, err := weight.Explain(leaf, docID)
		if err != nil {
			return collector.Explanation{}, err
		}
		details = append(details, e)
		if e.IsMatch {
			shouldMatches++
		}
	}
	if !matchedRequired {
		return collector.NoMatch("boolean clause missing", details...), nil
	}
	if w.minShouldMatch > 0 && shouldMatches < w.minShouldMatch {
		return collector.NoMatch("min_should_match not satisfied", details...), nil
	}
	var total float32
	for _, e := range details {
		if e.IsMatch {
			total += e.Value
		}
	}
	return collector.NewExplanation(total, "sum of boolean clauses", details...), nil
}

// exclusionScorer drives core but skips any doc matched by one of the
// excluded (MUST_NOT) scorers.
type exclusionScorer struct {
	core     Scorer
	excluded []Scorer
}

func newExclusionScorer(core Scorer, excluded []Scorer) *exclusionScorer {
	return &exclusionScorer{core: core, excluded: excluded}
}

func (s *exclusionScorer) DocID() int64 { return s.core.DocID() }

func (s *exclusionScorer) ApproximateNext() (int64, error) {
	doc, err := s.core.ApproximateNext()
	if err != nil {
		return 0, err
	}
	return s.skipExcluded(doc)
}

func (s *exclusionScorer) ApproximateAdvance(target int64) (int64, error) {
	doc, err := s.core.ApproximateAdvance(target)
	if err != nil {
		return 0, err
	}
	return s.skipExcluded(doc)
}

func (s *exclusionScorer) skipExcluded(doc int64) (int64, error) {
	for doc != NoMoreDocs() && s.isExcluded(doc) {
		var err error
		doc, err = s.core.ApproximateNext()
		if err != nil {
			return 0, err
		}
	}
	return doc, nil
}

func (s *exclusionScorer) isExcluded(doc int64) bool {
	for _, e := range s.excluded {
		d := e.DocID()
		if d < doc {
			d, _ = e.ApproximateAdvance(doc)
		}
		if d == doc {
			return true
		}
	}
	return false
}

func (s *exclusionScorer) Matches() (bool, error) { return s.core.Matches() }

func (s *exclusionScorer) MatchCost() float32 { return s.core.MatchCost() }

func (s *exclusionScorer) Score() (float32, error) { return s.core.Score() }

func (s *exclusionScorer) Cost() int64 { return s.core.Cost() }
