package bitset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSetClearCardinality(t *testing.T) {
	f := NewFixed(100)
	f.Set(3)
	f.Set(50)
	f.Set(99)
	assert.Equal(t, uint(3), f.Cardinality())
	assert.True(t, f.Get(50))
	f.Clear(50)
	assert.False(t, f.Get(50))
	assert.Equal(t, uint(2), f.Cardinality())
}

func TestFixedWriteReadRoundTrip(t *testing.T) {
	f := NewFixed(64)
	f.Set(1)
	f.Set(10)
	f.Set(63)

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	f2, err := ReadFixedFrom(&buf)
	require.NoError(t, err)
	assert.True(t, f2.Get(1))
	assert.True(t, f2.Get(10))
	assert.True(t, f2.Get(63))
	assert.False(t, f2.Get(2))
}

func TestAllLive(t *testing.T) {
	f := AllLive(10)
	for i := uint(0); i < 10; i++ {
		assert.True(t, f.Get(i))
	}
}

func TestSparseCursorSkipAhead(t *testing.T) {
	s := NewSparse()
	for _, id := range []uint32{5, 10, 15, 1000} {
		s.Add(id)
	}
	assert.Equal(t, uint64(4), s.Cardinality())
	assert.True(t, s.Contains(15))
	assert.False(t, s.Contains(16))

	c := s.Cursor()
	c.AdvanceIfNeeded(11)
	require.True(t, c.HasNext())
	assert.Equal(t, uint32(15), c.Next())
}

func TestSparseWriteReadRoundTrip(t *testing.T) {
	s := NewSparse()
	s.Add(1)
	s.Add(2)
	s.Add(1000000)

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)

	s2, err := ReadSparseFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 1000000}, s2.ToSlice())
}
