// Package collector defines what a search does with each matching
// document: TopDocsCollector keeps a bounded ranked list, and
// Explanation reconstructs why one document scored the way it did.
package collector

import "container/heap"

// ScoreFunc is passed to a LeafCollector so it can lazily compute the
// current match's score without the collector needing to know about
// Scorer or Weight.
type ScoreFunc func() (float32, error)

// LeafCollector receives matches for one segment, in ascending docId
// order.
type LeafCollector interface {
	// Collect is called for each live, matching document. The docId is
	// segment-local (0-based within the leaf).
	Collect(docID int, score ScoreFunc) error
}

// Collector builds a LeafCollector for each segment searched and is
// asked afterward how many total hits were seen.
type Collector interface {
	LeafCollector(base int) LeafCollector
	TotalHits() int64
}

// ScoredDoc is one result: docId is global (leaf base + segment-local
// docId) so results from different segments compare directly.
type ScoredDoc struct {
	DocID int
	Score float32
}

// topDocsHeap is a size-bounded min-heap ordered by score ascending;
// on equal scores the higher docId ranks lower and sits nearer the
// root. The lowest-ranked doc sits at the root and is evicted first
// when a better match arrives.
type topDocsHeap []ScoredDoc

func (h topDocsHeap) Len() int { return len(h) }
func (h topDocsHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}
func (h topDocsHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *topDocsHeap) Push(x any)   { *h = append(*h, x.(ScoredDoc)) }
func (h *topDocsHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopDocsCollector keeps the K highest-scoring documents across every
// segment searched.
type TopDocsCollector struct {
	k         int
	heap      topDocsHeap
	totalHits int64
}

func NewTopDocsCollector(k int) *TopDocsCollector {
	return &TopDocsCollector{k: k}
}

func (c *TopDocsCollector) LeafCollector(base int) LeafCollector {
	return &topDocsLeafCollector{parent: c, base: base}
}

func (c *TopDocsCollector) TotalHits() int64 { return c.totalHits }

// TopDocs returns the collected results in descending score order
// (ascending docId for ties), popping from a copy so the internal heap
// is left intact.
func (c *TopDocsCollector) TopDocs() []ScoredDoc {
	out := make([]ScoredDoc, len(c.heap))
	tmp := append(topDocsHeap(nil), c.heap...)
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&tmp).(ScoredDoc)
	}
	return out
}

type topDocsLeafCollector struct {
	parent *TopDocsCollector
	base   int
}

func (lc *topDocsLeafCollector) Collect(docID int, score ScoreFunc) error {
	lc.parent.totalHits++
	s, err := score()
	if err != nil {
		return err
	}
	sd := ScoredDoc{DocID: lc.base + docID, Score: s}
	h := &lc.parent.heap
	if h.Len() < lc.parent.k {
		heap.Push(h, sd)
		return nil
	}
	if h.Len() > 0 && ((*h)[0].Score < sd.Score || ((*h)[0].Score == sd.Score && (*h)[0].DocID > sd.DocID)) {
		(*h)[0] = sd
		heap.Fix(h, 0)
	}
	return nil
}

// Explanation is a recursive breakdown of how a document's score for a
// query was computed. Value is forced to 0 when IsMatch is false.
type Explanation struct {
	IsMatch     bool
	Value       float32
	Description string
	Details     []Explanation
}

// NewExplanation builds a matching explanation node.
func NewExplanation(value float32, description string, details ...Explanation) Explanation {
	return Explanation{IsMatch: true, Value: value, Description: description, Details: details}
}

// NoMatch builds a non-matching explanation node; Value is always 0.
func NoMatch(description string, details ...Explanation) Explanation {
	return Explanation{IsMatch: false, Value: 0, Description: description, Details: details}
}
