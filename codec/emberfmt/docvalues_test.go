package emberfmt

import (
	"testing"

	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/iocontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericDocValuesRoundTrip(t *testing.T) {
	dir := directory.NewMemDirectory()
	w := NewNumericDocValuesWriter(5)
	w.Add(0, 42)
	w.Add(2, -7)
	w.Add(4, 1000)

	out, err := dir.CreateOutput("_0.dvd.num", iocontext.DefaultContext)
	require.NoError(t, err)
	var id [16]byte
	require.NoError(t, w.Flush(out, id))
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("_0.dvd.num", iocontext.ReadContext)
	require.NoError(t, err)
	defer in.Close()

	r, err := ReadNumericDocValues(in)
	require.NoError(t, err)

	v, ok := r.Get(0)
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	_, ok = r.Get(1)
	assert.False(t, ok)

	v, ok = r.Get(2)
	assert.True(t, ok)
	assert.Equal(t, int64(-7), v)

	v, ok = r.Get(4)
	assert.True(t, ok)
	assert.Equal(t, int64(1000), v)
}

func TestSortedDocValuesRoundTrip(t *testing.T) {
	dir := directory.NewMemDirectory()
	w := NewSortedDocValuesWriter(3)
	w.Add(0, []byte("zebra"))
	w.Add(1, []byte("apple"))
	w.Add(2, []byte("zebra"))

	out, err := dir.CreateOutput("_0.dvd.srt", iocontext.DefaultContext)
	require.NoError(t, err)
	var id [16]byte
	require.NoError(t, w.Flush(out, id))
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("_0.dvd.srt", iocontext.ReadContext)
	require.NoError(t, err)
	defer in.Close()

	r, err := ReadSortedDocValues(in)
	require.NoError(t, err)

	v0, ok := r.Get(0)
	require.True(t, ok)
	assert.Equal(t, "zebra", string(v0))

	v1, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, "apple", string(v1))

	v2, ok := r.Get(2)
	require.True(t, ok)
	assert.Equal(t, string(v0), string(v2))
}
