package emberfmt

import (
	"testing"

	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/iocontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredFieldsRoundTrip(t *testing.T) {
	dir := directory.NewMemDirectory()

	w := NewStoredFieldsWriter()
	w.StartDoc()
	w.AddField(StoredField{FieldNumber: 0, Value: []byte("hello world")})
	w.AddField(StoredField{FieldNumber: 1, Value: []byte("2026-07-30")})
	w.FinishDoc()

	w.StartDoc()
	w.AddField(StoredField{FieldNumber: 0, Value: []byte("second document")})
	w.FinishDoc()

	fdt, err := dir.CreateOutput("_0.fdt", iocontext.DefaultContext)
	require.NoError(t, err)
	fdx, err := dir.CreateOutput("_0.fdx", iocontext.DefaultContext)
	require.NoError(t, err)

	var id [16]byte
	require.NoError(t, w.Flush(fdt, fdx, id))
	require.NoError(t, fdt.Close())
	require.NoError(t, fdx.Close())

	fdtIn, err := dir.OpenInput("_0.fdt", iocontext.ReadContext)
	require.NoError(t, err)
	defer fdtIn.Close()
	fdxIn, err := dir.OpenInput("_0.fdx", iocontext.ReadContext)
	require.NoError(t, err)
	defer fdxIn.Close()

	reader, err := OpenStoredFieldsReader(fdtIn, fdxIn)
	require.NoError(t, err)

	doc0, err := reader.Document(0)
	require.NoError(t, err)
	require.Len(t, doc0, 2)
	assert.Equal(t, "hello world", string(doc0[0].Value))
	assert.Equal(t, "2026-07-30", string(doc0[1].Value))

	doc1, err := reader.Document(1)
	require.NoError(t, err)
	require.Len(t, doc1, 1)
	assert.Equal(t, "second document", string(doc1[0].Value))
}
