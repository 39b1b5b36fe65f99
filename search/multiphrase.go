package search

import "sort"

// multiPhraseScorer generalizes phraseScorer to let one position in the
// phrase be satisfied by any of several alternative terms (e.g. a
// synonym set), matching MultiPhraseQuery semantics.
type multiPhraseScorer struct {
	groups  [][]*termScorer // one slice of term alternatives per phrase position
	offsets []int
	conjoin *conjunctionScorer

	lastDoc    int64
	lastResult bool
}

func newMultiPhraseScorer(groups [][]*termScorer, offsets []int) *multiPhraseScorer {
	groupScorers := make([]Scorer, len(groups))
	for i, g := range groups {
		children := make([]Scorer, len(g))
		for j, t := range g {
			children[j] = t
		}
		groupScorers[i] = newDisjunctionScorer(children, 1, 1.0)
	}
	return &multiPhraseScorer{
		groups:  groups,
		offsets: offsets,
		conjoin: newConjunctionScorer(groupScorers),
		lastDoc: -1,
	}
}

func (p *multiPhraseScorer) DocID() int64 { return p.conjoin.DocID() }

func (p *multiPhraseScorer) ApproximateNext() (int64, error) { return p.conjoin.ApproximateNext() }

func (p *multiPhraseScorer) ApproximateAdvance(target int64) (int64, error) {
	return p.conjoin.ApproximateAdvance(target)
}

func (p *multiPhraseScorer) Cost() int64 { return p.conjoin.Cost() }

func (p *multiPhraseScorer) MatchCost() float32 { return float32(len(p.groups)) }

func (p *multiPhraseScorer) Matches() (bool, error) {
	doc := p.DocID()
	if doc == p.lastDoc {
		return p.lastResult, nil
	}
	p.lastDoc = doc

	candidates := positionsOf(p.groups[0], doc)
	sort.Ints(candidates)
	for _, candidate := range candidates {
		match := true
		for i := 1; i < len(p.groups); i++ {
			want := candidate + (p.offsets[i] - p.offsets[0])
			if !anyTermAtPosition(p.groups[i], doc, want) {
				match = false
				break
			}
		}
		if match {
			p.lastResult = true
			return true, nil
		}
	}
	p.lastResult = false
	return false, nil
}

func positionsOf(group []*termScorer, doc int64) []int {
	var out []int
	for _, t := range group {
		if t.DocID() == doc {
			out = append(out, t.postings.Positions()...)
		}
	}
	return out
}

func anyTermAtPosition(group []*termScorer, doc int64, want int) bool {
	for _, t := range group {
		if t.DocID() != doc {
			continue
		}
		if containsPosition(t.postings.Positions(), want) {
			return true
		}
	}
	return false
}

func (p *multiPhraseScorer) Score() (float32, error) { return p.conjoin.Score() }
