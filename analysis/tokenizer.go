package analysis

import (
	"unicode"
	"unicode/utf8"
)

// KeywordTokenizer treats the entire input as a single, unsplit term,
// matching bluge's SingleTokenTokenizer — used for identifier-style
// fields that must never be split (tags, ids, enum values).
type KeywordTokenizer struct{}

func NewKeywordTokenizer() *KeywordTokenizer { return &KeywordTokenizer{} }

func (t *KeywordTokenizer) Tokenize(input []byte) TokenStream {
	return TokenStream{{Term: input, Start: 0, End: len(input), PositionIncr: 1}}
}

// WhitespaceTokenizer splits on Unicode whitespace runs, the simplest
// word-boundary tokenizer in the bluge/blevesearch family and the
// default for free-text fields.
type WhitespaceTokenizer struct{}

func NewWhitespaceTokenizer() *WhitespaceTokenizer { return &WhitespaceTokenizer{} }

func (t *WhitespaceTokenizer) Tokenize(input []byte) TokenStream {
	var stream TokenStream
	start := -1
	runes := []rune(string(input))
	byteOffsets := make([]int, len(runes)+1)
	offset := 0
	for i, r := range runes {
		byteOffsets[i] = offset
		offset += utf8.RuneLen(r)
	}
	byteOffsets[len(runes)] = offset

	for i, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				stream = append(stream, &Token{
					Term:         input[byteOffsets[start]:byteOffsets[i]],
					Start:        byteOffsets[start],
					End:          byteOffsets[i],
					PositionIncr: 1,
				})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		stream = append(stream, &Token{
			Term:         input[byteOffsets[start]:byteOffsets[len(runes)]],
			Start:        byteOffsets[start],
			End:          byteOffsets[len(runes)],
			PositionIncr: 1,
		})
	}
	return stream
}

