package segreader

import (
	"fmt"

	"github.com/blevesearch/vellum"
	"github.com/emberfts/ember/codec/emberfmt"
	diskpq "github.com/emberfts/ember/util/pq"
)

// TermsEnum walks or seeks a field's terms dictionary in lexicographic
// order and decodes the postings for whichever term it is positioned on.
type TermsEnum struct {
	dict     *emberfmt.TermsDictReader
	postings *emberfmt.PostingsReader
	term     []byte
	offset   uint64
	it       *vellum.FSTIterator
}

// SeekExact positions the enum exactly on term, reporting whether it
// exists in this field's dictionary.
func (t *TermsEnum) SeekExact(term []byte) (bool, error) {
	offset, found, err := t.dict.SeekExact(term)
	if err != nil || !found {
		return false, err
	}
	t.term = term
	t.offset = offset
	t.it = nil
	return true, nil
}

// SeekCeil positions the enum on the first term >= from (nil seeks to
// the start of the dictionary), reporting whether the dictionary has
// any term at or after it.
func (t *TermsEnum) SeekCeil(from []byte) (bool, error) {
	it, err := t.dict.Iterator(from)
	if err != nil {
		if err == vellum.ErrIteratorDone {
			return false, nil
		}
		return false, err
	}
	t.it = it
	return t.loadCurrent()
}

// Next advances to the next term in the dictionary; SeekCeil must have
// been called first.
func (t *TermsEnum) Next() (bool, error) {
	if t.it == nil {
		return false, fmt.Errorf("segreader: Next called without a prior SeekCeil")
	}
	if err := t.it.Next(); err != nil {
		if err == vellum.ErrIteratorDone {
			return false, nil
		}
		return false, err
	}
	return t.loadCurrent()
}

func (t *TermsEnum) loadCurrent() (bool, error) {
	term, offset := t.it.Current()
	t.term = append([]byte(nil), term...)
	t.offset = offset
	return true, nil
}

func (t *TermsEnum) Term() []byte { return t.term }

// Postings decodes the full posting list for the term the enum is
// currently positioned on.
func (t *TermsEnum) Postings() (*PostingsEnum, error) {
	block, err := t.postings.ReadBlock(t.offset)
	if err != nil {
		return nil, err
	}
	return &PostingsEnum{block: block, cursor: -1}, nil
}

// PostingsEnum walks one term's decoded posting list in doc-id order. It
// satisfies diskpq.DocIterator so it can be used directly as a
// disjunction/conjunction scorer's leaf.
type PostingsEnum struct {
	block  []emberfmt.Posting
	cursor int
}

func (p *PostingsEnum) DocID() int64 {
	if p.cursor < 0 {
		return -1
	}
	if p.cursor >= len(p.block) {
		return diskpq.NoMoreDocs()
	}
	return int64(p.block[p.cursor].DocID)
}

// ApproximateNext moves to the next document in the posting list.
func (p *PostingsEnum) ApproximateNext() (int64, error) {
	p.cursor++
	return p.DocID(), nil
}

// ApproximateAdvance moves forward to the first document >= target.
func (p *PostingsEnum) ApproximateAdvance(target int64) (int64, error) {
	if p.cursor < 0 {
		p.cursor = 0
	}
	for p.cursor < len(p.block) && int64(p.block[p.cursor].DocID) < target {
		p.cursor++
	}
	return p.DocID(), nil
}

// Freq returns the number of occurrences of the term in the current doc.
func (p *PostingsEnum) Freq() int {
	if p.cursor < 0 || p.cursor >= len(p.block) {
		return 0
	}
	return len(p.block[p.cursor].Positions)
}

// Positions returns the token positions of the term within the current
// doc, ascending.
func (p *PostingsEnum) Positions() []int {
	if p.cursor < 0 || p.cursor >= len(p.block) {
		return nil
	}
	return p.block[p.cursor].Positions
}

func (p *PostingsEnum) Cost() int64 { return int64(len(p.block)) }
