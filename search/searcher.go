package search

import (
	"github.com/emberfts/ember/reader"
	"github.com/emberfts/ember/search/collector"
	"github.com/emberfts/ember/search/similarity"
)

// IndexSearcher executes queries against a point-in-time IndexReader,
// driving the rewrite → weight → per-leaf scorer → collect loop.
type IndexSearcher struct {
	reader     *reader.IndexReader
	similarity similarity.Similarity
}

// NewIndexSearcher binds a searcher to a reader with the given
// similarity; a nil similarity defaults to BM25.
func NewIndexSearcher(r *reader.IndexReader, sim similarity.Similarity) *IndexSearcher {
	if sim == nil {
		sim = similarity.NewBM25Similarity()
	}
	return &IndexSearcher{reader: r, similarity: sim}
}

// Search rewrites query to a fixed point, builds one weight for the
// whole search, then drives each leaf's scorer into the collector.
func (s *IndexSearcher) Search(query Query, c collector.Collector) error {
	query = rewriteToFixedPoint(query)
	weight, err := query.CreateWeight(s)
	if err != nil {
		return err
	}

	base := 0
	for _, leaf := range s.reader.Leaves() {
		scorer, err := weight.Scorer(leaf)
		if err != nil {
			return err
		}
		if scorer != nil {
			if err := s.collectLeaf(leaf, scorer, c.LeafCollector(base)); err != nil {
				return err
			}
		}
		base += leaf.MaxDoc()
	}
	return nil
}

func (s *IndexSearcher) collectLeaf(leaf leafDocChecker, scorer Scorer, lc collector.LeafCollector) error {
	doc, err := Next(scorer)
	if err != nil {
		return err
	}
	for doc != NoMoreDocs() {
		if leaf.IsLive(int(doc)) {
			if err := lc.Collect(int(doc), scorer.Score); err != nil {
				return err
			}
		}
		doc, err = Next(scorer)
		if err != nil {
			return err
		}
	}
	return nil
}

// leafDocChecker is the sliver of segreader.LeafReader the collect
// loop needs, kept narrow so tests can fake it.
type leafDocChecker interface {
	IsLive(docID int) bool
}

// Explain recomputes a single document's score breakdown for query.
func (s *IndexSearcher) Explain(query Query, globalDocID int) (collector.Explanation, error) {
	query = rewriteToFixedPoint(query)
	weight, err := query.CreateWeight(s)
	if err != nil {
		return collector.Explanation{}, err
	}

	base := 0
	for _, leaf := range s.reader.Leaves() {
		if globalDocID < base+leaf.MaxDoc() {
			return weight.Explain(leaf, globalDocID-base)
		}
		base += leaf.MaxDoc()
	}
	return collector.NoMatch("doc id out of range"), nil
}

func rewriteToFixedPoint(q Query) Query {
	for {
		next := q.Rewrite()
		if next.String() == q.String() {
			return next
		}
		q = next
	}
}

// docFreq sums, across every leaf, the number of documents containing
// term in field.
func (s *IndexSearcher) docFreq(field string, term []byte) (int64, error) {
	var total int64
	for _, leaf := range s.reader.Leaves() {
		fi, ok := leaf.FieldInfos().ByName(field)
		if !ok {
			continue
		}
		terms, ok := leaf.Terms(fi.Number)
		if !ok {
			continue
		}
		found, err := terms.SeekExact(term)
		if err != nil {
			return 0, err
		}
		if !found {
			continue
		}
		pe, err := terms.Postings()
		if err != nil {
			return 0, err
		}
		total += pe.Cost()
	}
	return total, nil
}

// avgDocLen averages the field's stored norm byte (a token-count proxy)
// across every live document in the corpus, falling back to 1 when the
// field has no norms anywhere.
func (s *IndexSearcher) avgDocLen(field string) float64 {
	var sum float64
	var count int64
	for _, leaf := range s.reader.Leaves() {
		fi, ok := leaf.FieldInfos().ByName(field)
		if !ok || !fi.HasNorms {
			continue
		}
		for d := 0; d < leaf.MaxDoc(); d++ {
			if !leaf.IsLive(d) {
				continue
			}
			if norm, ok := leaf.Norm(fi.Number, d); ok {
				sum += decodeNorm(norm)
				count++
			}
		}
	}
	if count == 0 {
		return 1
	}
	return sum / float64(count)
}
