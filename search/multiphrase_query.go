package search

import (
	"strconv"
	"strings"

	"github.com/emberfts/ember/search/collector"
	"github.com/emberfts/ember/search/similarity"
	"github.com/emberfts/ember/segreader"
)

// MultiPhraseQuery generalizes PhraseQuery: each offset may be
// satisfied by any of several alternative terms.
type MultiPhraseQuery struct {
	Field      string
	TermGroups [][][]byte
	Offsets    []int
	Boost      float32
}

func (q MultiPhraseQuery) Rewrite() Query { return q }

func (q MultiPhraseQuery) String() string {
	groups := make([]string, len(q.TermGroups))
	for i, g := range q.TermGroups {
		parts := make([]string, len(g))
		for j, t := range g {
			parts[j] = string(t)
		}
		groups[i] = "[" + strings.Join(parts, "|") + "]"
	}
	return "MultiPhraseQuery(" + q.Field + ":" + strings.Join(groups, " ") + ")"
}

func (q MultiPhraseQuery) CreateWeight(s *IndexSearcher) (Weight, error) {
	var groupStats [][]similarity.Stats
	for _, g := range q.TermGroups {
		stats := make([]similarity.Stats, len(g))
		for i, t := range g {
			df, err := s.docFreq(q.Field, t)
			if err != nil {
				return nil, err
			}
			stats[i] = corpusStats(s, q.Field, df)
		}
		groupStats = append(groupStats, stats)
	}
	boost := q.Boost
	if boost == 0 {
		boost = 1.0
	}
	return &multiPhraseWeight{field: q.Field, groups: q.TermGroups, offsets: q.Offsets, boost: boost, sim: s.similarity, stats: groupStats}, nil
}

type multiPhraseWeight struct {
	field   string
	groups  [][][]byte
	offsets []int
	boost   float32
	sim     similarity.Similarity
	stats   [][]similarity.Stats
}

func (w *multiPhraseWeight) termScorers(leaf *segreader.LeafReader) ([][]*termScorer, bool, error) {
	fi, ok := leaf.FieldInfos().ByName(w.field)
	if !ok {
		return nil, false, nil
	}
	groups := make([][]*termScorer, len(w.groups))
	for gi, group := range w.groups {
		var scorers []*termScorer
		for ti, term := range group {
			terms, ok := leaf.Terms(fi.Number)
			if !ok {
				continue
			}
			found, err := terms.SeekExact(term)
			if err != nil {
				return nil, false, err
			}
			if !found {
				continue
			}
			pe, err := terms.Postings()
			if err != nil {
				return nil, false, err
			}
			scorers = append(scorers, newTermScorer(pe, leaf, fi.Number, w.sim, w.stats[gi][ti], 1.0))
		}
		if len(scorers) == 0 {
			return nil, false, nil // every position must have at least one candidate term present
		}
		groups[gi] = scorers
	}
	return groups, true, nil
}

func (w *multiPhraseWeight) Scorer(leaf *segreader.LeafReader) (Scorer, error) {
	groups, ok, err := w.termScorers(leaf)
	if err != nil || !ok {
		return nil, err
	}
	return &boostScorer{Scorer: newMultiPhraseScorer(groups, w.offsets), boost: w.boost}, nil
}

func (w *multiPhraseWeight) Explain(leaf *segreader.LeafReader, docID int) (collector.Explanation, error) {
	groups, ok, err := w.termScorers(leaf)
	if err != nil {
		return collector.Explanation{}, err
	}
	if !ok {
		return collector.NoMatch("multi-phrase position has no candidate term"), nil
	}
	ps := newMultiPhraseScorer(groups, w.offsets)
	target, err := ps.ApproximateAdvance(int64(docID))
	if err != nil {
		return collector.Explanation{}, err
	}
	if target != int64(docID) {
		return collector.NoMatch("doc missing a required phrase position"), nil
	}
	matched, err := ps.Matches()
	if err != nil {
		return collector.Explanation{}, err
	}
	if !matched {
		return collector.NoMatch("phrase positions present but misaligned"), nil
	}
	score, err := ps.Score()
	if err != nil {
		return collector.Explanation{}, err
	}
	return collector.NewExplanation(score*w.boost, "multi-phrase match at "+strconv.Itoa(docID)), nil
}
