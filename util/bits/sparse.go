package bitset

import (
	"io"

	"github.com/RoaringBitmap/roaring"
)

// Sparse holds a sorted set of doc ids using a compressed roaring bitmap.
// Used for merge-time deleted-doc sets.
type Sparse struct {
	bm *roaring.Bitmap
}

func NewSparse() *Sparse {
	return &Sparse{bm: roaring.New()}
}

func (s *Sparse) Add(docID uint32) { s.bm.Add(docID) }

func (s *Sparse) Remove(docID uint32) { s.bm.Remove(docID) }

func (s *Sparse) Contains(docID uint32) bool { return s.bm.Contains(docID) }

func (s *Sparse) Cardinality() uint64 { return s.bm.GetCardinality() }

func (s *Sparse) Or(other *Sparse) { s.bm.Or(other.bm) }

func (s *Sparse) AndNot(other *Sparse) { s.bm.AndNot(other.bm) }

// Cursor returns a forward iterator with amortized O(1) sequential access.
type Cursor struct {
	it roaring.IntPeekable
}

func (s *Sparse) Cursor() *Cursor {
	return &Cursor{it: s.bm.Iterator()}
}

func (c *Cursor) HasNext() bool { return c.it.HasNext() }

func (c *Cursor) Next() uint32 { return c.it.Next() }

// AdvanceIfNeeded moves the cursor forward to the first value >= target,
// matching roaring's own skip-ahead primitive so callers avoid a linear
// scan when advancing a postings-style iterator.
func (c *Cursor) AdvanceIfNeeded(target uint32) {
	c.it.AdvanceIfNeeded(target)
}

func (s *Sparse) WriteTo(w io.Writer) (int64, error) { return s.bm.WriteTo(w) }

func ReadSparseFrom(r io.Reader) (*Sparse, error) {
	bm := roaring.New()
	if _, err := bm.ReadFrom(r); err != nil {
		return nil, err
	}
	return &Sparse{bm: bm}, nil
}

// ToSlice materializes every doc id currently in the set, ascending.
func (s *Sparse) ToSlice() []uint32 {
	return s.bm.ToArray()
}
