package diskpq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIter is a simple sorted-slice doc iterator for exercising the queue.
type fakeIter struct {
	docs []int64
	pos  int
}

func newFakeIter(docs []int64) *fakeIter { return &fakeIter{docs: docs, pos: -1} }

func (f *fakeIter) DocID() int64 {
	if f.pos < 0 {
		return -1
	}
	if f.pos >= len(f.docs) {
		return noMoreDocs
	}
	return f.docs[f.pos]
}

func (f *fakeIter) ApproximateNext() (int64, error) {
	f.pos++
	return f.DocID(), nil
}

func (f *fakeIter) ApproximateAdvance(target int64) (int64, error) {
	for {
		f.pos++
		if f.DocID() >= target {
			return f.DocID(), nil
		}
	}
}

func primeAll(iters []*fakeIter) {
	for _, it := range iters {
		it.ApproximateNext()
	}
}

func TestDisiPriorityQueueOrdersByDocID(t *testing.T) {
	a := newFakeIter([]int64{1, 5, 9})
	b := newFakeIter([]int64{2, 5, 20})
	c := newFakeIter([]int64{5, 6})
	iters := []*fakeIter{a, b, c}
	primeAll(iters)

	q := NewDisiPriorityQueue[*fakeIter](iters)
	require.Equal(t, int64(1), q.Top().DocID())

	doc, err := q.ApproximateNext()
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc)
}

func TestTopListGroupsTiedChildren(t *testing.T) {
	a := newFakeIter([]int64{5})
	b := newFakeIter([]int64{5})
	c := newFakeIter([]int64{7})
	iters := []*fakeIter{a, b, c}
	primeAll(iters)

	q := NewDisiPriorityQueue[*fakeIter](iters)
	group := q.TopList()
	assert.Len(t, group, 2)
	for _, g := range group {
		assert.Equal(t, int64(5), g.DocID())
	}
}

func TestApproximateNextConvergesToNoMoreDocs(t *testing.T) {
	a := newFakeIter([]int64{1})
	b := newFakeIter([]int64{1, 2})
	iters := []*fakeIter{a, b}
	primeAll(iters)

	q := NewDisiPriorityQueue[*fakeIter](iters)
	doc, err := q.ApproximateNext()
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc)

	doc, err = q.ApproximateNext()
	require.NoError(t, err)
	assert.Equal(t, NoMoreDocs(), doc)
}

func TestApproximateAdvanceSkipsAhead(t *testing.T) {
	a := newFakeIter([]int64{1, 2, 3, 100})
	b := newFakeIter([]int64{1, 50, 100})
	iters := []*fakeIter{a, b}
	primeAll(iters)

	q := NewDisiPriorityQueue[*fakeIter](iters)
	doc, err := q.ApproximateAdvance(40)
	require.NoError(t, err)
	assert.Equal(t, int64(50), doc)
}
