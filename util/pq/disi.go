// Package diskpq implements the min-heap of doc-id iterators the
// disjunction scorers use to drive alignment across many children. It
// replaces a linked top_list walk with a slice of the children tied at
// the top doc, collected by scanning the heap.
package diskpq

// DocIterator is the minimal capability a disjunction queue needs from a
// child scorer: its current doc id and the ability to move to the next
// approximate match. Kept separate from the richer search.Scorer interface
// so this package has no dependency on the query/scorer tree.
type DocIterator interface {
	DocID() int64
	ApproximateNext() (int64, error)
	ApproximateAdvance(target int64) (int64, error)
}

const noMoreDocs = int64(1<<31 - 1)

// DisiPriorityQueue is a binary min-heap of child iterators ordered by
// current doc id.
type DisiPriorityQueue[T DocIterator] struct {
	heap []T
}

// NewDisiPriorityQueue builds a queue over the given children, heapifying
// by their current doc id.
func NewDisiPriorityQueue[T DocIterator](children []T) *DisiPriorityQueue[T] {
	q := &DisiPriorityQueue[T]{heap: append([]T(nil), children...)}
	n := len(q.heap)
	for i := n/2 - 1; i >= 0; i-- {
		q.siftDown(i)
	}
	return q
}

func (q *DisiPriorityQueue[T]) Len() int { return len(q.heap) }

func (q *DisiPriorityQueue[T]) Top() T { return q.heap[0] }

func (q *DisiPriorityQueue[T]) less(i, j int) bool {
	return q.heap[i].DocID() < q.heap[j].DocID()
}

func (q *DisiPriorityQueue[T]) siftDown(i int) {
	n := len(q.heap)
	for {
		l, r := 2*i+1, 2*i+2
		smallest := i
		if l < n && q.less(l, smallest) {
			smallest = l
		}
		if r < n && q.less(r, smallest) {
			smallest = r
		}
		if smallest == i {
			return
		}
		q.heap[i], q.heap[smallest] = q.heap[smallest], q.heap[i]
		i = smallest
	}
}

// updateTop is called after the root's doc id has changed (e.g. via
// ApproximateNext/ApproximateAdvance) to restore the heap invariant without
// a full rebuild.
func (q *DisiPriorityQueue[T]) updateTop() { q.siftDown(0) }

// TopList returns every child currently positioned at Top().DocID(),
// collected into a plain slice without reordering the heap.
func (q *DisiPriorityQueue[T]) TopList() []T {
	if len(q.heap) == 0 {
		return nil
	}
	doc := q.heap[0].DocID()
	var group []T
	n := len(q.heap)
	// A linear scan over every heap node finds all children tied at doc;
	// it costs O(n) per call rather than walking only the tied subtree.
	for i := 0; i < n; i++ {
		if q.heap[i].DocID() == doc {
			group = append(group, q.heap[i])
		}
	}
	return group
}

// ApproximateNext advances every child currently at the top doc and
// restores the heap, returning the new top doc id (or NoMoreDocs).
func (q *DisiPriorityQueue[T]) ApproximateNext() (int64, error) {
	doc := q.heap[0].DocID()
	for {
		if _, err := q.heap[0].ApproximateNext(); err != nil {
			return 0, err
		}
		q.updateTop()
		if len(q.heap) == 0 || q.heap[0].DocID() != doc {
			break
		}
	}
	if len(q.heap) == 0 {
		return noMoreDocs, nil
	}
	return q.heap[0].DocID(), nil
}

// ApproximateAdvance advances the top repeatedly until it reaches at least
// target, restoring the heap after each step.
func (q *DisiPriorityQueue[T]) ApproximateAdvance(target int64) (int64, error) {
	for len(q.heap) > 0 && q.heap[0].DocID() < target {
		if _, err := q.heap[0].ApproximateAdvance(target); err != nil {
			return 0, err
		}
		q.updateTop()
	}
	if len(q.heap) == 0 {
		return noMoreDocs, nil
	}
	return q.heap[0].DocID(), nil
}

// NoMoreDocs is the sentinel doc id terminating iteration.
func NoMoreDocs() int64 { return noMoreDocs }
