package search

import diskpq "github.com/emberfts/ember/util/pq"

// newDisjunctionScorer builds a scorer matching documents where at
// least minShouldMatch children match, picking the crossover the
// original scorer used: a priority queue once there are enough
// children and minShouldMatch doesn't require tracking per-doc counts,
// otherwise a simple linear scan.
func newDisjunctionScorer(children []Scorer, minShouldMatch int, tieBreaker float32) Scorer {
	if len(children) >= 10 && minShouldMatch <= 1 {
		return newPQDisjunctionScorer(children, tieBreaker)
	}
	return newSimpleDisjunctionScorer(children, minShouldMatch, tieBreaker)
}

// simpleDisjunctionScorer tracks the current doc as the min over all
// children and advances every child sitting on it, repeating until at
// least minShouldMatch children are aligned (or exhausted).
type simpleDisjunctionScorer struct {
	children       []Scorer
	minShouldMatch int
	tieBreaker     float32
	curDoc         int64
	atCur          []Scorer
}

func newSimpleDisjunctionScorer(children []Scorer, minShouldMatch int, tieBreaker float32) *simpleDisjunctionScorer {
	s := &simpleDisjunctionScorer{children: children, minShouldMatch: minShouldMatch, tieBreaker: tieBreaker, curDoc: -1}
	s.settle()
	return s
}

func (s *simpleDisjunctionScorer) minDoc() int64 {
	min := NoMoreDocs()
	for _, c := range s.children {
		if c.DocID() < min {
			min = c.DocID()
		}
	}
	return min
}

// settle advances children sitting at curDoc until at least
// minShouldMatch of them agree on the same doc id, or no candidates
// remain.
func (s *simpleDisjunctionScorer) settle() (int64, error) {
	for {
		doc := s.minDoc()
		if doc == NoMoreDocs() {
			s.curDoc = NoMoreDocs()
			s.atCur = nil
			return s.curDoc, nil
		}
		var at []Scorer
		for _, c := range s.children {
			if c.DocID() == doc {
				at = append(at, c)
			}
		}
		if len(at) >= max(1, s.minShouldMatch) {
			s.curDoc = doc
			s.atCur = at
			return doc, nil
		}
		for _, c := range at {
			if _, err := c.ApproximateNext(); err != nil {
				return 0, err
			}
		}
	}
}

func (s *simpleDisjunctionScorer) DocID() int64 { return s.curDoc }

func (s *simpleDisjunctionScorer) ApproximateNext() (int64, error) {
	for _, c := range s.atCur {
		if _, err := c.ApproximateNext(); err != nil {
			return 0, err
		}
	}
	return s.settle()
}

func (s *simpleDisjunctionScorer) ApproximateAdvance(target int64) (int64, error) {
	for _, c := range s.children {
		if c.DocID() < target {
			if _, err := c.ApproximateAdvance(target); err != nil {
				return 0, err
			}
		}
	}
	return s.settle()
}

func (s *simpleDisjunctionScorer) Matches() (bool, error) {
	matched := 0
	for _, c := range s.atCur {
		ok, err := c.Matches()
		if err != nil {
			return false, err
		}
		if ok {
			matched++
		}
	}
	return matched >= max(1, s.minShouldMatch), nil
}

func (s *simpleDisjunctionScorer) MatchCost() float32 {
	var total float32
	for _, c := range s.atCur {
		total += c.MatchCost()
	}
	return total
}

func (s *simpleDisjunctionScorer) Score() (float32, error) {
	return scoreMax(s.atCur, s.tieBreaker)
}

func (s *simpleDisjunctionScorer) Cost() int64 {
	var total int64
	for _, c := range s.children {
		total += c.Cost()
	}
	return total
}

// pqDisjunctionScorer handles the wide-fanout, minShouldMatch<=1 case
// via util/pq.DisiPriorityQueue, matching Scorer directly to
// diskpq.DocIterator.
type pqDisjunctionScorer struct {
	pq         *diskpq.DisiPriorityQueue[Scorer]
	tieBreaker float32
	cost       int64
}

func newPQDisjunctionScorer(children []Scorer, tieBreaker float32) *pqDisjunctionScorer {
	var cost int64
	for _, c := range children {
		cost += c.Cost()
	}
	return &pqDisjunctionScorer{pq: diskpq.NewDisiPriorityQueue(children), tieBreaker: tieBreaker, cost: cost}
}

func (s *pqDisjunctionScorer) DocID() int64 {
	if s.pq.Len() == 0 {
		return NoMoreDocs()
	}
	return s.pq.Top().DocID()
}

func (s *pqDisjunctionScorer) ApproximateNext() (int64, error) { return s.pq.ApproximateNext() }

func (s *pqDisjunctionScorer) ApproximateAdvance(target int64) (int64, error) {
	return s.pq.ApproximateAdvance(target)
}

// Matches confirms the current doc by walking TopList(): the doc
// matches iff at least one child aligned on it verifies true, mirroring
// simpleDisjunctionScorer's confirmation over atCur instead of
// short-circuiting the two-phase contract.
func (s *pqDisjunctionScorer) Matches() (bool, error) {
	for _, c := range s.pq.TopList() {
		ok, err := c.Matches()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *pqDisjunctionScorer) MatchCost() float32 { return 0 }

func (s *pqDisjunctionScorer) Score() (float32, error) {
	return scoreMax(s.pq.TopList(), s.tieBreaker)
}

func (s *pqDisjunctionScorer) Cost() int64 { return s.cost }

// scoreMax implements DisjunctionMaxQuery-style combination: the top
// score plus tieBreaker times the sum of the remaining scores.
func scoreMax(matched []Scorer, tieBreaker float32) (float32, error) {
	var sum, max float32
	for _, c := range matched {
		sc, err := c.Score()
		if err != nil {
			return 0, err
		}
		sum += sc
		if sc > max {
			max = sc
		}
	}
	return max + tieBreaker*(sum-max), nil
}
