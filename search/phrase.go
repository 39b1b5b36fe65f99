package search

import "sort"

// phraseScorer matches documents containing every term in order with
// the given offsets, using a conjunction over the terms' doc
// iterators as the cheap approximation and a position-list walk as
// the expensive verification, per the two-phase split.
type phraseScorer struct {
	terms      []*termScorer
	offsets    []int // term i must appear at position p+offsets[i] for some p
	conjoin    *conjunctionScorer
	lastDoc    int64
	lastResult bool
}

func newPhraseScorer(terms []*termScorer, offsets []int) *phraseScorer {
	children := make([]Scorer, len(terms))
	for i, t := range terms {
		children[i] = t
	}
	return &phraseScorer{terms: terms, offsets: offsets, conjoin: newConjunctionScorer(children), lastDoc: -1}
}

func (p *phraseScorer) DocID() int64 { return p.conjoin.DocID() }

func (p *phraseScorer) ApproximateNext() (int64, error) { return p.conjoin.ApproximateNext() }

func (p *phraseScorer) ApproximateAdvance(target int64) (int64, error) {
	return p.conjoin.ApproximateAdvance(target)
}

func (p *phraseScorer) Cost() int64 { return p.conjoin.Cost() }

func (p *phraseScorer) MatchCost() float32 { return float32(len(p.terms)) }

// Matches verifies the current doc actually contains the terms at
// consecutive, offset-shifted positions, not just that all terms occur
// somewhere in the document.
func (p *phraseScorer) Matches() (bool, error) {
	doc := p.DocID()
	if doc == p.lastDoc {
		return p.lastResult, nil
	}
	p.lastDoc = doc

	base := p.terms[0].postings.Positions()
	sort.Ints(base)
	for _, candidate := range base {
		match := true
		for i := 1; i < len(p.terms); i++ {
			want := candidate + (p.offsets[i] - p.offsets[0])
			if !containsPosition(p.terms[i].postings.Positions(), want) {
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

func containsPosition(positions []int, want int) bool {
	for _, pos := range positions {
		if pos == want {
			return true
		}
	}
	return false
}

func (p *phraseScorer) Score() (float32, error) { return p.conjoin.Score() }
