package search

import (
	"testing"

	"github.com/emberfts/ember/analysis"
	"github.com/emberfts/ember/buffer"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/reader"
	"github.com/emberfts/ember/search/collector"
	"github.com/emberfts/ember/search/similarity"
	"github.com/emberfts/ember/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSearchReader(t *testing.T) *reader.IndexReader {
	t.Helper()
	dir := directory.NewMemDirectory()
	b := buffer.New()
	docs := []string{
		"the quick brown fox",
		"the lazy dog sleeps",
		"quick fox jumps high",
	}
	tokenizer := analysis.NewWhitespaceTokenizer()
	for _, text := range docs {
		stream := tokenizer.Tokenize([]byte(text))
		positions := stream.Positions()
		var tokens []buffer.Token
		for i, tok := range stream {
			tokens = append(tokens, buffer.Token{Term: tok.Term, Position: positions[i]})
		}
		b.AddDocument([]buffer.Field{
			{Name: "body", Tokens: tokens, Stored: []byte(text), HasStored: true, Norm: byte(len(tokens)), HasNorm: true},
		})
	}
	var segID [16]byte
	info, err := b.Flush(dir, "_0", segID)
	require.NoError(t, err)

	infos := segment.NewInfos()
	infos.Segments = append(infos.Segments, info)
	r, err := reader.OpenFromInfos(dir, infos)
	require.NoError(t, err)
	return r
}

func TestTermQueryMatchesExpectedDocs(t *testing.T) {
	r := buildSearchReader(t)
	defer r.Close()

	s := NewIndexSearcher(r, similarity.ConstantSimilarity{Value: 1})
	c := collector.NewTopDocsCollector(10)
	require.NoError(t, s.Search(NewTermQuery("body", []byte("quick")), c))

	top := c.TopDocs()
	assert.Len(t, top, 2)
	assert.Equal(t, int64(2), c.TotalHits())
}

func TestBooleanQueryMustAndMustNot(t *testing.T) {
	r := buildSearchReader(t)
	defer r.Close()

	s := NewIndexSearcher(r, similarity.ConstantSimilarity{Value: 1})
	q := BooleanQuery{Clauses: []BooleanClause{
		{Query: NewTermQuery("body", []byte("fox")), Occur: Must},
		{Query: NewTermQuery("body", []byte("lazy")), Occur: MustNot},
	}}
	c := collector.NewTopDocsCollector(10)
	require.NoError(t, s.Search(q, c))
	assert.Equal(t, int64(2), c.TotalHits())
}

func TestPhraseQueryRequiresOrder(t *testing.T) {
	r := buildSearchReader(t)
	defer r.Close()

	s := NewIndexSearcher(r, similarity.ConstantSimilarity{Value: 1})
	q := NewPhraseQuery("body", [][]byte{[]byte("quick"), []byte("brown")})
	c := collector.NewTopDocsCollector(10)
	require.NoError(t, s.Search(q, c))
	assert.Equal(t, int64(1), c.TotalHits())

	q2 := NewPhraseQuery("body", [][]byte{[]byte("brown"), []byte("quick")})
	c2 := collector.NewTopDocsCollector(10)
	require.NoError(t, s.Search(q2, c2))
	assert.Equal(t, int64(0), c2.TotalHits())
}

func TestParseQueryStringBuildsBooleanQuery(t *testing.T) {
	q, err := ParseQueryString("body", "quick AND fox NOT lazy")
	require.NoError(t, err)
	r := buildSearchReader(t)
	defer r.Close()
	s := NewIndexSearcher(r, similarity.ConstantSimilarity{Value: 1})
	c := collector.NewTopDocsCollector(10)
	require.NoError(t, s.Search(q, c))
	assert.Equal(t, int64(2), c.TotalHits())
}

func TestMatchAllDocsQueryMatchesEveryLiveDoc(t *testing.T) {
	r := buildSearchReader(t)
	defer r.Close()
	s := NewIndexSearcher(r, similarity.ConstantSimilarity{Value: 1})
	c := collector.NewTopDocsCollector(10)
	require.NoError(t, s.Search(MatchAllDocsQuery{}, c))
	assert.Equal(t, int64(3), c.TotalHits())
}
