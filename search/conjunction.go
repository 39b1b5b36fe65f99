package search

import "sort"

// conjunctionScorer matches documents present in every child scorer's
// postings. Children are sorted by ascending Cost so the cheapest
// (most selective) child drives iteration and the rest only ever
// advance, never scan linearly.
type conjunctionScorer struct {
	children []Scorer
	lead     Scorer
	rest     []Scorer
}

func newConjunctionScorer(children []Scorer) *conjunctionScorer {
	sorted := append([]Scorer(nil), children...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cost() < sorted[j].Cost() })
	return &conjunctionScorer{children: children, lead: sorted[0], rest: sorted[1:]}
}

func (c *conjunctionScorer) DocID() int64 { return c.lead.DocID() }

func (c *conjunctionScorer) ApproximateNext() (int64, error) {
	doc, err := c.lead.ApproximateNext()
	if err != nil {
		return 0, err
	}
	return c.alignRest(doc)
}

func (c *conjunctionScorer) ApproximateAdvance(target int64) (int64, error) {
	doc, err := c.lead.ApproximateAdvance(target)
	if err != nil {
		return 0, err
	}
	return c.alignRest(doc)
}

// alignRest advances every other child to the lead's doc; if one lands
// past it, the lead re-advances to that doc and the whole group must
// realign again, since an earlier child may now be behind.
func (c *conjunctionScorer) alignRest(doc int64) (int64, error) {
	for doc != NoMoreDocs() {
		restarted := false
		for _, child := range c.rest {
			if child.DocID() < doc {
				d, err := child.ApproximateAdvance(doc)
				if err != nil {
					return 0, err
				}
				if d > doc {
					var err error
					doc, err = c.lead.ApproximateAdvance(d)
					if err != nil {
						return 0, err
					}
					restarted = true
					break
				}
			}
		}
		if !restarted {
			return doc, nil
		}
	}
	return NoMoreDocs(), nil
}

func (c *conjunctionScorer) Matches() (bool, error) {
	for _, child := range c.children {
		ok, err := child.Matches()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (c *conjunctionScorer) MatchCost() float32 {
	var total float32
	for _, child := range c.children {
		total += child.MatchCost()
	}
	return total
}

func (c *conjunctionScorer) Score() (float32, error) {
	var total float32
	for _, child := range c.children {
		s, err := child.Score()
		if err != nil {
			return 0, err
		}
		total += s
	}
	return total, nil
}

func (c *conjunctionScorer) Cost() int64 { return c.lead.Cost() }
