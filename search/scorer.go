// Package search implements the query and scorer tree: Query types
// compile into per-segment Weight/Scorer pairs driven by two-phase
// iteration (a cheap approximation plus an optional verification step),
// matching Lucene's TwoPhaseIterator split.
package search

import diskpq "github.com/emberfts/ember/util/pq"

// NoMoreDocs is the sentinel doc id signaling scorer exhaustion.
func NoMoreDocs() int64 { return diskpq.NoMoreDocs() }

// Scorer walks one segment's matches for a query in ascending doc-id
// order. ApproximateNext/ApproximateAdvance move a cheap approximation
// iterator; Matches confirms the current position actually satisfies
// the query (a no-op returning true for scorers with no separate
// verification phase, e.g. term scorers).
type Scorer interface {
	DocID() int64
	ApproximateNext() (int64, error)
	ApproximateAdvance(target int64) (int64, error)
	Matches() (bool, error)
	MatchCost() float32
	Score() (float32, error)
	Cost() int64
}

// Next advances s past verification failures to the next confirmed
// match, or NoMoreDocs.
func Next(s Scorer) (int64, error) {
	doc, err := s.ApproximateNext()
	if err != nil {
		return 0, err
	}
	return align(s, doc)
}

// Advance moves s to the first confirmed match at or after target, or
// NoMoreDocs.
func Advance(s Scorer, target int64) (int64, error) {
	doc, err := s.ApproximateAdvance(target)
	if err != nil {
		return 0, err
	}
	return align(s, doc)
}

func align(s Scorer, doc int64) (int64, error) {
	for doc != NoMoreDocs() {
		ok, err := s.Matches()
		if err != nil {
			return 0, err
		}
		if ok {
			return doc, nil
		}
		doc, err = s.ApproximateNext()
		if err != nil {
			return 0, err
		}
	}
	return NoMoreDocs(), nil
}

// noopMatches is embedded by scorers with no separate verification
// phase: their approximation is already exact.
type noopMatches struct{}

func (noopMatches) Matches() (bool, error) { return true, nil }
func (noopMatches) MatchCost() float32     { return 0 }
