package segment

import (
	"testing"

	"github.com/emberfts/ember/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGeneratorMonotonicBase36(t *testing.T) {
	g := &IDGenerator{}
	assert.Equal(t, "_0", g.NextName())
	assert.Equal(t, "_1", g.NextName())
	for i := 0; i < 34; i++ {
		g.NextName()
	}
	assert.Equal(t, "_10", g.NextName())
}

func TestCommitRoundTrip(t *testing.T) {
	dir := directory.NewMemDirectory()

	id1, err := NewFileFramingID()
	require.NoError(t, err)
	id2, err := NewFileFramingID()
	require.NoError(t, err)

	infos := NewInfos()
	infos.Segments = []*Info{
		{Name: "_0", Codec: "Ember50", MaxDoc: 100, Files: []string{"_0.si", "_0.fnm"}, ID: id1},
		{Name: "_1", Codec: "Ember50", MaxDoc: 50, HasDeletions: true, DelGen: 1, Files: []string{"_1.si"}, ID: id2},
	}

	name, err := WriteCommit(dir, infos)
	require.NoError(t, err)
	assert.Equal(t, "segments_0", name)

	readBack, err := ReadCommit(dir)
	require.NoError(t, err)
	assert.Equal(t, infos.Generation, readBack.Generation)
	require.Len(t, readBack.Segments, 2)
	assert.Equal(t, "_0", readBack.Segments[0].Name)
	assert.Equal(t, 100, readBack.Segments[0].MaxDoc)
	assert.False(t, readBack.Segments[0].HasDeletions)
	assert.Equal(t, "_1", readBack.Segments[1].Name)
	assert.True(t, readBack.Segments[1].HasDeletions)
	assert.Equal(t, int64(1), readBack.Segments[1].DelGen)
	assert.Equal(t, []string{"_1.si"}, readBack.Segments[1].Files)
}

func TestReadCommitPicksHighestGeneration(t *testing.T) {
	dir := directory.NewMemDirectory()

	for gen := int64(0); gen < 3; gen++ {
		infos := &Infos{Generation: gen}
		_, err := WriteCommit(dir, infos)
		require.NoError(t, err)
	}

	readBack, err := ReadCommit(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(2), readBack.Generation)
}

func TestNextGenerationName(t *testing.T) {
	infos := &Infos{Generation: 5}
	assert.Equal(t, "segments_6", NextGenerationName(infos))
}
