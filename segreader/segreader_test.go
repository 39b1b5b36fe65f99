package segreader

import (
	"testing"

	"github.com/emberfts/ember/buffer"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSegment(t *testing.T, dir directory.Directory) *segment.Info {
	t.Helper()
	b := buffer.New()
	b.AddDocument([]buffer.Field{
		{
			Name:      "title",
			Tokens:    []buffer.Token{{Term: []byte("quick"), Position: 0}, {Term: []byte("fox"), Position: 1}},
			Stored:    []byte("the quick fox"),
			HasStored: true,
		},
	})
	b.AddDocument([]buffer.Field{
		{
			Name:      "title",
			Tokens:    []buffer.Token{{Term: []byte("lazy"), Position: 0}, {Term: []byte("fox"), Position: 1}},
			Stored:    []byte("lazy fox"),
			HasStored: true,
		},
	})
	var segID [16]byte
	info, err := b.Flush(dir, "_0", segID)
	require.NoError(t, err)
	return info
}

func TestLeafReaderOpenAndTermsEnum(t *testing.T) {
	dir := directory.NewMemDirectory()
	info := buildSegment(t, dir)

	r, err := Open(dir, info)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 2, r.MaxDoc())
	assert.Equal(t, 2, r.NumDocs())

	fi, ok := r.FieldInfos().ByName("title")
	require.True(t, ok)

	enum, ok := r.Terms(fi.Number)
	require.True(t, ok)
	found, err := enum.SeekExact([]byte("fox"))
	require.NoError(t, err)
	require.True(t, found)

	pe, err := enum.Postings()
	require.NoError(t, err)
	doc, err := pe.ApproximateNext()
	require.NoError(t, err)
	assert.Equal(t, int64(0), doc)
	assert.Equal(t, 1, pe.Freq())

	doc, err = pe.ApproximateNext()
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc)

	fields, err := r.Document(0)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "the quick fox", string(fields[0].Value))
}
