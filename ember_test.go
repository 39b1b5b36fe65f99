package ember

import (
	"testing"

	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterCommitAndSearchRoundTrip(t *testing.T) {
	dir := directory.NewMemDirectory()
	cfg := DefaultConfig()

	w, err := OpenWriter(dir, cfg)
	require.NoError(t, err)

	_, err = w.AddDocument(Document{
		NewTextField("body", "the quick brown fox"),
		NewKeywordField("id", []byte("doc-1")),
	})
	require.NoError(t, err)
	_, err = w.AddDocument(Document{
		NewTextField("body", "the lazy dog sleeps"),
		NewKeywordField("id", []byte("doc-2")),
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	r, err := w.GetReader()
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 2, r.NumDocs())

	s := NewSearcher(r, cfg)
	top, total, err := s.TopDocs(search.NewTermQuery("body", []byte("fox")), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, top, 1)

	stored, err := r.Document(top[0].DocID)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", string(stored["id"]))

	require.NoError(t, w.Close())
}

func TestDeleteDocumentsRemovesFromNextReader(t *testing.T) {
	dir := directory.NewMemDirectory()
	cfg := DefaultConfig()
	w, err := OpenWriter(dir, cfg)
	require.NoError(t, err)

	_, err = w.AddDocument(Document{NewKeywordField("id", []byte("doc-1"))})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	_, err = w.DeleteDocuments(Term{Field: "id", Value: []byte("doc-1")})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	r, err := w.GetReader()
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 0, r.NumDocs())

	require.NoError(t, w.Close())
}
