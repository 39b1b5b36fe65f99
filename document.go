package ember

import (
	"github.com/emberfts/ember/analysis"
	"github.com/emberfts/ember/buffer"
	"github.com/emberfts/ember/fieldinfo"
)

// IndexOptions controls how much postings detail a tokenized field
// records. Re-exported from fieldinfo so callers never need to import
// that package directly.
type IndexOptions = fieldinfo.IndexOptions

const (
	IndexOptionsNone                               = fieldinfo.IndexOptionsNone
	IndexOptionsDocs                                = fieldinfo.IndexOptionsDocs
	IndexOptionsDocsAndFreqs                        = fieldinfo.IndexOptionsDocsAndFreqs
	IndexOptionsDocsAndFreqsAndPositions             = fieldinfo.IndexOptionsDocsAndFreqsAndPositions
	IndexOptionsDocsAndFreqsAndPositionsAndOffsets   = fieldinfo.IndexOptionsDocsAndFreqsAndPositionsAndOffsets
)

// DocValueKind names the doc-values column shape for a field.
type DocValueKind = fieldinfo.DocValueKind

const (
	DocValuesNone       = fieldinfo.DocValuesNone
	DocValuesNumeric    = fieldinfo.DocValuesNumeric
	DocValuesBinary     = fieldinfo.DocValuesBinary
	DocValuesSorted     = fieldinfo.DocValuesSorted
	DocValuesSortedNumeric = fieldinfo.DocValuesSortedNumeric
	DocValuesSortedSet  = fieldinfo.DocValuesSortedSet
)

// FieldType declares which facets of a Field are populated: whether its
// text is analyzed into postings, whether its raw value is kept for
// retrieval, and what doc-values column (if any) backs sort/facet
// access. A field may be indexed, stored, doc-valued, or any
// combination of the three.
type FieldType struct {
	Indexed      bool
	Tokenized    bool
	Stored       bool
	IndexOptions IndexOptions
	DocValues    DocValueKind
}

// TextField returns a FieldType for ordinary analyzed, stored text.
func TextField() FieldType {
	return FieldType{Indexed: true, Tokenized: true, Stored: true, IndexOptions: IndexOptionsDocsAndFreqsAndPositions}
}

// KeywordField returns a FieldType for an indexed-but-not-tokenized
// exact-match value, stored and sortable.
func KeywordField() FieldType {
	return FieldType{Indexed: true, Stored: true, DocValues: DocValuesSorted}
}

// StoredOnlyField returns a FieldType for a value retrieved but never
// searched.
func StoredOnlyField() FieldType {
	return FieldType{Stored: true}
}

// Field is one named value within a Document. Text is analyzed for
// tokenized fields, Raw holds the stored or keyword bytes, and Numeric
// backs numeric doc-values; NewTextField sets both Text and Raw.
type Field struct {
	Name    string
	Type    FieldType
	Text    string
	Numeric *int64
	Raw     []byte
}

// NewTextField builds an indexed, tokenized, stored text field.
func NewTextField(name, text string) Field {
	return Field{Name: name, Type: TextField(), Text: text, Raw: []byte(text)}
}

// NewKeywordField builds an indexed-as-one-token, stored, sortable field.
func NewKeywordField(name string, value []byte) Field {
	return Field{Name: name, Type: KeywordField(), Raw: value}
}

// NewNumericField builds a doc-valued numeric field, stored for retrieval.
func NewNumericField(name string, value int64) Field {
	return Field{
		Name:    name,
		Type:    FieldType{Stored: true, DocValues: DocValuesNumeric},
		Numeric: &value,
	}
}

// Document is an ordered sequence of Field values.
type Document []Field

// maxByteValue is the ceiling a norm encodes before clamping; token
// counts above this collapse to the same byte, trading precision in
// very long fields for a single-byte-per-doc norms file.
const maxByteValue = 255

// toBufferField translates one public Field into the buffer package's
// lower-level shape, running the field's token stream through analyzer
// when indexed+tokenized and deriving the norm byte directly from the
// resulting token count (clamped to a byte; decodeNorm in
// ember/search widens it back out, treating 0 as 1).
func toBufferField(f Field, analyzer *analysis.Analyzer) buffer.Field {
	bf := buffer.Field{Name: f.Name}

	if f.Type.Stored {
		switch {
		case f.Raw != nil:
			bf.Stored = f.Raw
			bf.HasStored = true
		case f.Numeric != nil:
			bf.Stored = encodeNumeric(*f.Numeric)
			bf.HasStored = true
		case f.Text != "":
			bf.Stored = []byte(f.Text)
			bf.HasStored = true
		}
	}

	if f.Type.Indexed {
		var stream analysis.TokenStream
		switch {
		case f.Type.Tokenized && f.Text != "":
			stream = analyzer.Analyze([]byte(f.Text))
		case !f.Type.Tokenized:
			value := f.Raw
			if value == nil {
				value = []byte(f.Text)
			}
			if len(value) > 0 {
				stream = analysis.TokenStream{{Term: value, PositionIncr: 1}}
			}
		}
		if len(stream) > 0 {
			positions := stream.Positions()
			bf.Tokens = make([]buffer.Token, len(stream))
			for i, tok := range stream {
				bf.Tokens[i] = buffer.Token{Term: tok.Term, Position: positions[i]}
			}
			count := len(stream)
			if count > maxByteValue {
				count = maxByteValue
			}
			bf.Norm = byte(count)
			bf.HasNorm = true
		}
	}

	if f.Type.DocValues == DocValuesNumeric && f.Numeric != nil {
		bf.Numeric = f.Numeric
	}
	if f.Type.DocValues == DocValuesSorted || f.Type.DocValues == DocValuesBinary {
		value := f.Raw
		if value == nil {
			value = []byte(f.Text)
		}
		bf.Sorted = value
	}

	return bf
}

func encodeNumeric(v int64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
	return b
}
