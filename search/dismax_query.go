package search

import (
	"strconv"
	"strings"

	"github.com/emberfts/ember/search/collector"
	"github.com/emberfts/ember/segreader"
)

// DisjunctionMaxQuery scores a document by its single best-matching
// clause, with a fraction of the remaining clauses' scores added in as
// a tie-breaker -- useful for searching the same text across several
// fields without double-counting.
type DisjunctionMaxQuery struct {
	Clauses    []Query
	TieBreaker float32
}

func (q DisjunctionMaxQuery) Rewrite() Query {
	changed := false
	rewritten := make([]Query, len(q.Clauses))
	for i, c := range q.Clauses {
		r := c.Rewrite()
		if r.String() != c.String() {
			changed = true
		}
		rewritten[i] = r
	}
	if !changed {
		return q
	}
	return DisjunctionMaxQuery{Clauses: rewritten, TieBreaker: q.TieBreaker}
}

func (q DisjunctionMaxQuery) String() string {
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		parts[i] = c.String()
	}
	return "DisjunctionMaxQuery(" + strings.Join(parts, " ") + ")"
}

func (q DisjunctionMaxQuery) CreateWeight(s *IndexSearcher) (Weight, error) {
	weights := make([]Weight, len(q.Clauses))
	for i, c := range q.Clauses {
		w, err := c.CreateWeight(s)
		if err != nil {
			return nil, err
		}
		weights[i] = w
	}
	return &dismaxWeight{weights: weights, tieBreaker: q.TieBreaker}, nil
}

type dismaxWeight struct {
	weights    []Weight
	tieBreaker float32
}

func (w *dismaxWeight) Scorer(leaf *segreader.LeafReader) (Scorer, error) {
	var children []Scorer
	for _, weight := range w.weights {
		s, err := weight.Scorer(leaf)
		if err != nil {
			return nil, err
		}
		if s != nil {
			children = append(children, s)
		}
	}
	if len(children) == 0 {
		return nil, nil
	}
	return newDisjunctionScorer(children, 1, w.tieBreaker), nil
}

func (w *dismaxWeight) Explain(leaf *segreader.LeafReader, docID int) (collector.Explanation, error) {
	var matched []collector.Explanation
	for _, weight := range w.weights {
		e, err := weight.Explain(leaf, docID)
		if err != nil {
			return collector.Explanation{}, err
		}
		if e.IsMatch {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return collector.NoMatch("no clause matched doc " + strconv.Itoa(docID)), nil
	}
	var sum, max float32
	var maxIdx int
	for i, e := range matched {
		sum += e.Value
		if e.Value > max {
			max = e.Value
			maxIdx = i
		}
	}
	value := max + w.tieBreaker*(sum-max)
	details := append([]collector.Explanation{matched[maxIdx]}, matched...)
	return collector.NewExplanation(value, "max plus tie-break over disjunction clauses", details...), nil
}
