package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhitespaceTokenizerSplitsOnRuns(t *testing.T) {
	ts := NewWhitespaceTokenizer().Tokenize([]byte("the  quick fox"))
	require := []string{"the", "quick", "fox"}
	assert.Len(t, ts, len(require))
	for i, want := range require {
		assert.Equal(t, want, string(ts[i].Term))
	}
}

func TestKeywordTokenizerKeepsWholeInput(t *testing.T) {
	ts := NewKeywordTokenizer().Tokenize([]byte("us-east-1"))
	assert.Len(t, ts, 1)
	assert.Equal(t, "us-east-1", string(ts[0].Term))
}

func TestTokenStreamPositionsHonorsIncrement(t *testing.T) {
	ts := TokenStream{
		{Term: []byte("a"), PositionIncr: 1},
		{Term: []byte("b"), PositionIncr: 0},
		{Term: []byte("c"), PositionIncr: 1},
	}
	assert.Equal(t, []int{0, 0, 1}, ts.Positions())
}

func TestAnalyzerAppliesFilters(t *testing.T) {
	a := &Analyzer{
		Tokenizer:    NewWhitespaceTokenizer(),
		TokenFilters: []TokenFilter{dropEmptyFilter{}},
	}
	ts := a.Analyze([]byte("fox  "))
	assert.Len(t, ts, 1)
}

type dropEmptyFilter struct{}

func (dropEmptyFilter) Filter(in TokenStream) TokenStream {
	out := in[:0]
	for _, tok := range in {
		if len(tok.Term) > 0 {
			out = append(out, tok)
		}
	}
	return out
}
