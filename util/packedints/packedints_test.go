package packedints

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 17, 31, 63, 64, 1000, 1 << 20}
	maxV := uint64(0)
	for _, v := range values {
		if v > maxV {
			maxV = v
		}
	}
	w := NewWriter(BitsRequired(maxV))
	for _, v := range values {
		w.Add(v)
	}
	r := w.Build()

	assert.Equal(t, len(values), r.Len())
	for i, v := range values {
		assert.Equal(t, v, r.Get(i), "index %d", i)
	}
}

func TestWriterHandlesAllBitWidths(t *testing.T) {
	for bitWidth := 1; bitWidth <= 64; bitWidth++ {
		max := uint64(1)<<uint(bitWidth) - 1
		if bitWidth == 64 {
			max = ^uint64(0)
		}
		w := NewWriter(bitWidth)
		n := 50
		vals := make([]uint64, n)
		for i := 0; i < n; i++ {
			v := uint64(rand.Int63()) & max
			vals[i] = v
			w.Add(v)
		}
		r := w.Build()
		for i, v := range vals {
			assert.Equal(t, v, r.Get(i), "bitWidth=%d index=%d", bitWidth, i)
		}
	}
}

// Packed-int round trip: for any array A of n non-negative longs,
// Delta.build(A).iterator yields A.
func TestDeltaRoundTrip(t *testing.T) {
	arrays := [][]uint64{
		{},
		{5},
		{100, 102, 105, 200, 201},
		{0, 0, 0, 0},
		{7, 3, 9, 1, 1000000},
	}
	for _, a := range arrays {
		b := NewDeltaBuilder()
		for _, v := range a {
			b.Add(v)
		}
		r := b.Build()
		assert.Equal(t, len(a), r.Len())
		it := r.Iterator()
		got := make([]uint64, 0, len(a))
		for it.HasNext() {
			got = append(got, it.Next())
		}
		assert.Equal(t, a, got)
	}
}

func TestMonotonicRoundTrip(t *testing.T) {
	n := 500
	vals := make([]uint64, n)
	acc := uint64(0)
	for i := range vals {
		acc += uint64(rand.Intn(50))
		vals[i] = acc
	}
	b := NewMonotonicBuilder()
	for _, v := range vals {
		b.Add(v)
	}
	r := b.Build()
	assert.Equal(t, n, r.Len())
	for i, v := range vals {
		assert.Equal(t, v, r.Get(i), "index %d", i)
	}
}

func TestReaderWriteReadRoundTrip(t *testing.T) {
	w := NewWriter(BitsRequired(1000))
	vals := []uint64{0, 5, 999, 1000, 17}
	for _, v := range vals {
		w.Add(v)
	}
	r := w.Build()

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	require.NoError(t, err)

	r2, err := ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, r.Len(), r2.Len())
	for i, v := range vals {
		assert.Equal(t, v, r2.Get(i))
	}
}

func TestDeltaWriteReadRoundTrip(t *testing.T) {
	b := NewDeltaBuilder()
	vals := []uint64{100, 102, 150, 101}
	for _, v := range vals {
		b.Add(v)
	}
	r := b.Build()

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	require.NoError(t, err)

	r2, err := ReadDeltaFrom(&buf, len(vals))
	require.NoError(t, err)
	for i, v := range vals {
		assert.Equal(t, v, r2.Get(i))
	}
}

func TestMonotonicWriteReadRoundTrip(t *testing.T) {
	n := 300
	vals := make([]uint64, n)
	acc := uint64(10)
	for i := range vals {
		acc += uint64(rand.Intn(40))
		vals[i] = acc
	}
	b := NewMonotonicBuilder()
	for _, v := range vals {
		b.Add(v)
	}
	r := b.Build()

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	require.NoError(t, err)

	r2, err := ReadMonotonicFrom(&buf, n)
	require.NoError(t, err)
	for i, v := range vals {
		assert.Equal(t, v, r2.Get(i), "index %d", i)
	}
}

func TestBitsRequired(t *testing.T) {
	assert.Equal(t, 1, BitsRequired(0))
	assert.Equal(t, 1, BitsRequired(1))
	assert.Equal(t, 2, BitsRequired(2))
	assert.Equal(t, 7, BitsRequired(100))
	assert.Equal(t, 64, BitsRequired(^uint64(0)))
}
