package writer

import (
	"testing"

	"github.com/emberfts/ember/buffer"
	"github.com/emberfts/ember/config"
	"github.com/emberfts/ember/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openWriter(t *testing.T, dir directory.Directory) *IndexWriter {
	t.Helper()
	w, err := Open(dir, config.DefaultWriterConfig(), nil)
	require.NoError(t, err)
	return w
}

func TestCommitFlushesBufferedDocuments(t *testing.T) {
	dir := directory.NewMemDirectory()
	w := openWriter(t, dir)

	_, err := w.AddDocument([]buffer.Field{
		{Name: "title", Tokens: []buffer.Token{{Term: []byte("fox"), Position: 0}}, Stored: []byte("fox"), HasStored: true},
	})
	require.NoError(t, err)

	require.NoError(t, w.Commit())

	r, err := w.GetReader()
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumDocs())
	require.NoError(t, r.Close())
	require.NoError(t, w.Close())
}

func TestDeleteDocumentsAppliesOnlyToPriorSegments(t *testing.T) {
	dir := directory.NewMemDirectory()
	w := openWriter(t, dir)

	_, err := w.AddDocument([]buffer.Field{
		{Name: "id", Tokens: []buffer.Token{{Term: []byte("doc1"), Position: 0}}, Stored: []byte("doc1"), HasStored: true},
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	_, err = w.DeleteDocuments("id", []byte("doc1"))
	require.NoError(t, err)
	_, err = w.AddDocument([]buffer.Field{
		{Name: "id", Tokens: []buffer.Token{{Term: []byte("doc1"), Position: 0}}, Stored: []byte("doc1-again"), HasStored: true},
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	r, err := w.GetReader()
	require.NoError(t, err)
	// One doc deleted out of the first segment, one added fresh: both
	// segments' MaxDoc count their dead docs, NumDocs does not.
	assert.Equal(t, 2, r.MaxDoc())
	assert.Equal(t, 1, r.NumDocs())
	require.NoError(t, r.Close())
	require.NoError(t, w.Close())
}

func TestForceMergeReducesSegmentCount(t *testing.T) {
	dir := directory.NewMemDirectory()
	w := openWriter(t, dir)

	for i := 0; i < 3; i++ {
		_, err := w.AddDocument([]buffer.Field{
			{Name: "title", Tokens: []buffer.Token{{Term: []byte("fox"), Position: 0}}, Stored: []byte("fox"), HasStored: true},
		})
		require.NoError(t, err)
		require.NoError(t, w.Commit())
	}

	require.NoError(t, w.ForceMerge(1))
	assert.Len(t, w.infos.Segments, 1)
	assert.Equal(t, 3, w.infos.Segments[0].MaxDoc)
	require.NoError(t, w.Close())
}
