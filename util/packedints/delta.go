package packedints

import (
	"encoding/binary"
	"io"
)

// DeltaBuilder encodes a sequence of non-negative integers as a base value
// plus packed residuals (value - base). Good for sets of values clustered
// around a common minimum, e.g. positions within a document or a field's
// stored numeric doc-values.
type DeltaBuilder struct {
	pending []uint64
}

func NewDeltaBuilder() *DeltaBuilder {
	return &DeltaBuilder{}
}

func (b *DeltaBuilder) Add(value uint64) {
	b.pending = append(b.pending, value)
}

// Build finalizes the builder into a DeltaReader. Because the minimum may
// only be known once all values are seen, residual widths are computed here.
func (b *DeltaBuilder) Build() *DeltaReader {
	if len(b.pending) == 0 {
		return &DeltaReader{base: 0, residuals: NewWriter(1).Build()}
	}
	base := b.pending[0]
	for _, v := range b.pending {
		if v < base {
			base = v
		}
	}
	maxResidual := uint64(0)
	for _, v := range b.pending {
		if r := v - base; r > maxResidual {
			maxResidual = r
		}
	}
	w := NewWriter(BitsRequired(maxResidual))
	for _, v := range b.pending {
		w.Add(v - base)
	}
	return &DeltaReader{base: base, residuals: w.Build()}
}

// DeltaReader provides random access to a delta-encoded sequence.
type DeltaReader struct {
	base      uint64
	residuals *Reader
}

func (r *DeltaReader) Len() int { return r.residuals.Len() }

func (r *DeltaReader) Get(i int) uint64 {
	return r.base + r.residuals.Get(i)
}

// Iterator yields the original sequence of values.
type DeltaIterator struct {
	r   *DeltaReader
	pos int
}

func (r *DeltaReader) Iterator() *DeltaIterator { return &DeltaIterator{r: r} }

func (it *DeltaIterator) HasNext() bool { return it.pos < it.r.Len() }

func (it *DeltaIterator) Next() uint64 {
	v := it.r.Get(it.pos)
	it.pos++
	return v
}

func (r *DeltaReader) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, r.base); err != nil {
		return 0, err
	}
	n, err := r.residuals.WriteTo(w)
	return 8 + n, err
}

// ReadDeltaFrom parses a sequence written by DeltaReader.WriteTo. count is
// unused here (the residual reader records its own length) but kept for
// symmetry with ReadMonotonicFrom's signature.
func ReadDeltaFrom(r io.Reader, count int) (*DeltaReader, error) {
	var base uint64
	if err := binary.Read(r, binary.BigEndian, &base); err != nil {
		return nil, err
	}
	residuals, err := ReadFrom(r)
	if err != nil {
		return nil, err
	}
	return &DeltaReader{base: base, residuals: residuals}, nil
}
