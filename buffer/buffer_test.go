package buffer

import (
	"testing"

	"github.com/emberfts/ember/codec/emberfmt"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/iocontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDocumentAssignsMonotonicIDs(t *testing.T) {
	b := New()
	id0 := b.AddDocument([]Field{{Name: "title", Tokens: []Token{{Term: []byte("fox"), Position: 0}}}})
	id1 := b.AddDocument([]Field{{Name: "title", Tokens: []Token{{Term: []byte("dog"), Position: 0}}}})
	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, b.NumDocs())
}

func TestFlushProducesReadableSegment(t *testing.T) {
	b := New()
	n := int64(7)
	b.AddDocument([]Field{
		{
			Name:      "title",
			Tokens:    []Token{{Term: []byte("quick"), Position: 0}, {Term: []byte("fox"), Position: 1}, {Term: []byte("fox"), Position: 3}},
			Stored:    []byte("the quick fox"),
			HasStored: true,
			Numeric:   &n,
			Sorted:    []byte("article"),
		},
	})
	b.AddDocument([]Field{
		{
			Name:      "title",
			Tokens:    []Token{{Term: []byte("lazy"), Position: 0}, {Term: []byte("fox"), Position: 1}},
			Stored:    []byte("lazy fox"),
			HasStored: true,
			Sorted:    []byte("brief"),
		},
	})

	dir := directory.NewMemDirectory()
	var segID [16]byte
	info, err := b.Flush(dir, "_0", segID)
	require.NoError(t, err)
	assert.Equal(t, 2, info.MaxDoc)
	assert.NotEmpty(t, info.Files)

	fi, err := emberfmt.ReadFieldInfos(mustOpen(t, dir, "_0.fnm"))
	require.NoError(t, err)
	titleField, ok := fi.ByName("title")
	require.True(t, ok)

	tmdIn := mustOpen(t, dir, emberfmt.TermsDictFile("_0", titleField.Number))
	pstIn := mustOpen(t, dir, emberfmt.PostingsFile("_0", titleField.Number))
	dict, err := emberfmt.OpenTermsDict(tmdIn)
	require.NoError(t, err)
	defer dict.Close()
	reader, err := emberfmt.OpenPostingsReader(pstIn)
	require.NoError(t, err)

	offset, found, err := dict.SeekExact([]byte("fox"))
	require.NoError(t, err)
	require.True(t, found)
	block, err := reader.ReadBlock(offset)
	require.NoError(t, err)
	require.Len(t, block, 2)
	assert.Equal(t, []int{1, 3}, block[0].Positions)
	assert.Equal(t, []int{1}, block[1].Positions)

	stored, err := emberfmt.OpenStoredFieldsReader(
		mustOpen(t, dir, "_0.fdt"),
		mustOpen(t, dir, "_0.fdx"),
	)
	require.NoError(t, err)
	fields, err := stored.Document(0)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "the quick fox", string(fields[0].Value))
}

func mustOpen(t *testing.T, dir directory.Directory, name string) directory.IndexInput {
	t.Helper()
	in, err := dir.OpenInput(name, iocontext.ReadContext)
	require.NoError(t, err)
	return in
}
