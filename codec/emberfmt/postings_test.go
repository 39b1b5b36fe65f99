package emberfmt

import (
	"testing"

	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/iocontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostingsRoundTrip(t *testing.T) {
	dir := directory.NewMemDirectory()

	w := NewPostingsWriter()
	w.AddPosting([]byte("fox"), 0, 1)
	w.AddPosting([]byte("fox"), 0, 5)
	w.AddPosting([]byte("fox"), 3, 0)
	w.AddPosting([]byte("dog"), 0, 2)

	pst, err := dir.CreateOutput("_0.pst", iocontext.DefaultContext)
	require.NoError(t, err)
	tmd, err := dir.CreateOutput("_0.tmd", iocontext.DefaultContext)
	require.NoError(t, err)

	var id [16]byte
	require.NoError(t, w.Flush(pst, tmd, id))
	require.NoError(t, pst.Close())
	require.NoError(t, tmd.Close())

	pstIn, err := dir.OpenInput("_0.pst", iocontext.ReadContext)
	require.NoError(t, err)
	defer pstIn.Close()
	tmdIn, err := dir.OpenInput("_0.tmd", iocontext.ReadContext)
	require.NoError(t, err)
	defer tmdIn.Close()

	dict, err := OpenTermsDict(tmdIn)
	require.NoError(t, err)
	defer dict.Close()

	postingsReader, err := OpenPostingsReader(pstIn)
	require.NoError(t, err)

	offset, found, err := dict.SeekExact([]byte("fox"))
	require.NoError(t, err)
	require.True(t, found)

	block, err := postingsReader.ReadBlock(offset)
	require.NoError(t, err)
	require.Len(t, block, 2)
	assert.Equal(t, 0, block[0].DocID)
	assert.Equal(t, []int{1, 5}, block[0].Positions)
	assert.Equal(t, 3, block[1].DocID)
	assert.Equal(t, []int{0}, block[1].Positions)

	_, found, err = dict.SeekExact([]byte("cat"))
	require.NoError(t, err)
	assert.False(t, found)
}
