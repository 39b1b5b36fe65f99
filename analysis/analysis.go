// Package analysis defines the token stream contract fields are turned
// into before indexing: a Tokenizer splits raw bytes into Tokens, an
// optional chain of TokenFilters can add, drop, or rewrite tokens, and
// an Analyzer wires both together.
package analysis

// Token is one occurrence of a term at a position in a field.
type Token struct {
	Term         []byte
	Start        int
	End          int
	PositionIncr int
}

// TokenStream is an ordered sequence of tokens produced by a Tokenizer
// and optionally reshaped by TokenFilters.
type TokenStream []*Token

// Tokenizer splits raw field bytes into a TokenStream.
type Tokenizer interface {
	Tokenize(input []byte) TokenStream
}

// TokenFilter transforms a TokenStream, e.g. lower-casing or dropping
// stop words. Ember ships none beyond what Analyzer itself composes;
// callers needing stemming or stop-word removal supply their own.
type TokenFilter interface {
	Filter(TokenStream) TokenStream
}

// Analyzer chains a Tokenizer with zero or more TokenFilters.
type Analyzer struct {
	Tokenizer    Tokenizer
	TokenFilters []TokenFilter
}

func (a *Analyzer) Analyze(input []byte) TokenStream {
	tokens := a.Tokenizer.Tokenize(input)
	for _, f := range a.TokenFilters {
		tokens = f.Filter(tokens)
	}
	return tokens
}

// Positions returns the cumulative token position for each token in the
// stream, honoring PositionIncr the way postings position numbers do:
// the first token starts at 0, and a PositionIncr of 0 repeats the
// previous token's position (used by synonym-style filters to inject
// an alternate term at the same slot).
func (ts TokenStream) Positions() []int {
	positions := make([]int, len(ts))
	pos := -1
	for i, tok := range ts {
		incr := tok.PositionIncr
		if i == 0 && incr == 0 {
			incr = 1
		}
		pos += incr
		positions[i] = pos
	}
	return positions
}
