package merge

import (
	"testing"

	"github.com/emberfts/ember/buffer"
	"github.com/emberfts/ember/codec/emberfmt"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/iocontext"
	"github.com/emberfts/ember/segment"
	bitset "github.com/emberfts/ember/util/bits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDropsDeletedDocsAndUnionsPostings(t *testing.T) {
	dir := directory.NewMemDirectory()

	b0 := buffer.New()
	b0.AddDocument([]buffer.Field{{
		Name:      "title",
		Tokens:    []buffer.Token{{Term: []byte("fox"), Position: 0}},
		Stored:    []byte("doc-a"),
		HasStored: true,
	}})
	b0.AddDocument([]buffer.Field{{
		Name:      "title",
		Tokens:    []buffer.Token{{Term: []byte("dog"), Position: 0}},
		Stored:    []byte("doc-b"),
		HasStored: true,
	}})
	var seg0ID [16]byte
	info0, err := b0.Flush(dir, "_0", seg0ID)
	require.NoError(t, err)

	b1 := buffer.New()
	b1.AddDocument([]buffer.Field{{
		Name:      "title",
		Tokens:    []buffer.Token{{Term: []byte("fox"), Position: 0}},
		Stored:    []byte("doc-c"),
		HasStored: true,
	}})
	var seg1ID [16]byte
	info1, err := b1.Flush(dir, "_1", seg1ID)
	require.NoError(t, err)

	// Delete doc 1 ("doc-b") of segment _0.
	live := bitset.NewFixed(uint(info0.MaxDoc))
	live.Set(0)
	livName := "_0_1.liv"
	out, err := dir.CreateOutput(livName, iocontext.DefaultContext)
	require.NoError(t, err)
	require.NoError(t, emberfmt.WriteLiveDocs(out, seg0ID, live))
	require.NoError(t, out.Close())
	info0.HasDeletions = true
	info0.DelGen = 1
	info0.Files = append(info0.Files, livName)

	var mergedID [16]byte
	merged, err := Merge(dir, []*segment.Info{info0, info1}, "_2", mergedID)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.MaxDoc)

	names, err := dir.ListAll()
	require.NoError(t, err)
	assert.Contains(t, names, "_2.fnm")
}

func TestTieredMergePolicySelectsFullTiers(t *testing.T) {
	infos := segment.NewInfos()
	for i := 0; i < 12; i++ {
		infos.Segments = append(infos.Segments, &segment.Info{Name: "_x", MaxDoc: 5})
	}
	policy := NewTieredMergePolicy()
	groups := policy.Select(infos)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 12)
}
