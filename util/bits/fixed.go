// Package bitset provides two bitset flavors: a
// dense FixedBitSet (live-docs, docs-with-field presence) and a sparse,
// sorted-doc-id set with amortized O(1) sequential access (merge-time
// deleted-doc tracking).
package bitset

import (
	"io"

	bbbitset "github.com/bits-and-blooms/bitset"
)

// Fixed is a dense bitset over doc ids [0, capacity), backed by
// github.com/bits-and-blooms/bitset — a direct teacher dependency already
// present (indirectly) in its module graph for exactly this concern.
type Fixed struct {
	bs *bbbitset.BitSet
}

// NewFixed allocates a Fixed bitset with room for capacity bits, all clear.
func NewFixed(capacity uint) *Fixed {
	return &Fixed{bs: bbbitset.New(capacity)}
}

func (f *Fixed) Get(i uint) bool { return f.bs.Test(i) }

func (f *Fixed) Set(i uint) { f.bs.Set(i) }

func (f *Fixed) Clear(i uint) { f.bs.Clear(i) }

func (f *Fixed) Cardinality() uint { return f.bs.Count() }

// EnsureCapacity grows the bitset, if needed, to hold at least capacity
// bits.
func (f *Fixed) EnsureCapacity(capacity uint) {
	if f.bs.Len() < capacity {
		grown := bbbitset.New(capacity)
		grown.InPlaceUnion(f.bs)
		f.bs = grown
	}
}

func (f *Fixed) Len() uint { return f.bs.Len() }

// NextSet returns the index of the next set bit at or after i, and whether
// one was found, matching the underlying library's cursor-free scan.
func (f *Fixed) NextSet(i uint) (uint, bool) { return f.bs.NextSet(i) }

// WriteTo serializes the bitset (the .liv on-disk format) to w.
func (f *Fixed) WriteTo(w io.Writer) (int64, error) { return f.bs.WriteTo(w) }

// ReadFixedFrom deserializes a Fixed bitset previously written with WriteTo.
func ReadFixedFrom(r io.Reader) (*Fixed, error) {
	bs := &bbbitset.BitSet{}
	if _, err := bs.ReadFrom(r); err != nil {
		return nil, err
	}
	return &Fixed{bs: bs}, nil
}

// AllLive returns a read-only Fixed-like view where every doc in [0, maxDoc)
// is live -- spec's "absent live-docs means all live" is represented
// explicitly by callers checking for a nil *Fixed rather than allocating
// one of these; this helper exists for code paths that need a concrete
// value (e.g. merge input iteration).
func AllLive(maxDoc uint) *Fixed {
	f := NewFixed(maxDoc)
	for i := uint(0); i < maxDoc; i++ {
		f.Set(i)
	}
	return f
}
