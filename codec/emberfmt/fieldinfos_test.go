package emberfmt

import (
	"testing"

	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/fieldinfo"
	"github.com/emberfts/ember/iocontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldInfosRoundTrip(t *testing.T) {
	dir := directory.NewMemDirectory()

	fi := fieldinfo.New()
	title := fi.GetOrAdd("title")
	title.IndexOptions = fieldinfo.IndexOptionsDocsAndFreqsAndPositions
	title.HasNorms = true
	body := fi.GetOrAdd("body")
	body.DocValues = fieldinfo.DocValuesSorted
	body.Attributes["lang"] = "en"

	out, err := dir.CreateOutput("_0.fnm", iocontext.DefaultContext)
	require.NoError(t, err)
	var id [16]byte
	require.NoError(t, WriteFieldInfos(out, id, fi))
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("_0.fnm", iocontext.ReadContext)
	require.NoError(t, err)
	defer in.Close()

	readBack, err := ReadFieldInfos(in)
	require.NoError(t, err)
	assert.Equal(t, 2, readBack.Len())

	rTitle, ok := readBack.ByName("title")
	require.True(t, ok)
	assert.Equal(t, fieldinfo.IndexOptionsDocsAndFreqsAndPositions, rTitle.IndexOptions)
	assert.True(t, rTitle.HasNorms)

	rBody, ok := readBack.ByName("body")
	require.True(t, ok)
	assert.Equal(t, fieldinfo.DocValuesSorted, rBody.DocValues)
	assert.Equal(t, "en", rBody.Attributes["lang"])
}
