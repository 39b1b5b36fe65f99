package reader

import (
	"testing"

	"github.com/emberfts/ember/buffer"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFromInfosAndReopenSameGeneration(t *testing.T) {
	dir := directory.NewMemDirectory()
	b := buffer.New()
	b.AddDocument([]buffer.Field{{Name: "title", Stored: []byte("doc"), HasStored: true}})
	var segID [16]byte
	info, err := b.Flush(dir, "_0", segID)
	require.NoError(t, err)

	infos := segment.NewInfos()
	infos.Segments = append(infos.Segments, info)
	infos.Generation = 1

	r, err := OpenFromInfos(dir, infos)
	require.NoError(t, err)
	assert.Equal(t, 1, r.MaxDoc())
	assert.Equal(t, 1, r.NumDocs())

	_, err = segment.WriteCommit(dir, infos)
	require.NoError(t, err)

	r2, err := r.Reopen()
	require.NoError(t, err)
	assert.Same(t, r, r2)
}
