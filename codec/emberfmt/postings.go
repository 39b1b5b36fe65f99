package emberfmt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/blevesearch/vellum"
	"github.com/emberfts/ember/codec"
	"github.com/emberfts/ember/directory"
)

const postingsCodecName = "EmberPostings"
const postingsVersion = int32(1)
const termsDictCodecName = "EmberTermsDict"

type postingEntry struct {
	docID     int
	positions []int
}

type termPostings struct {
	term    []byte
	entries []postingEntry
}

// PostingsWriter accumulates postings for one field across the documents
// buffered this flush, keyed by term bytes. Postings are decoded eagerly
// into memory on the read side rather than streamed block-by-block; the
// scorer-visible contract (strictly increasing doc ids, positions on
// request) is unaffected, only the I/O granularity is simplified.
type PostingsWriter struct {
	byTerm map[string]*termPostings
}

func NewPostingsWriter() *PostingsWriter {
	return &PostingsWriter{byTerm: map[string]*termPostings{}}
}

// AddPosting records one occurrence of term in docID at the given token
// position. Calls for the same (term, docID) pair must be contiguous and
// position-ascending, matching how a document's token stream is drained.
func (w *PostingsWriter) AddPosting(term []byte, docID int, position int) {
	key := string(term)
	tp, ok := w.byTerm[key]
	if !ok {
		tp = &termPostings{term: append([]byte(nil), term...)}
		w.byTerm[key] = tp
	}
	if n := len(tp.entries); n > 0 && tp.entries[n-1].docID == docID {
		tp.entries[n-1].positions = append(tp.entries[n-1].positions, position)
		return
	}
	tp.entries = append(tp.entries, postingEntry{docID: docID, positions: []int{position}})
}

// Flush writes the postings blob (.pst) and the FST-backed terms
// dictionary (.tmd) mapping each term to its postings block's byte offset.
func (w *PostingsWriter) Flush(pst, tmd io.Writer, segmentID [16]byte) error {
	terms := make([]*termPostings, 0, len(w.byTerm))
	for _, tp := range w.byTerm {
		terms = append(terms, tp)
	}
	sort.Slice(terms, func(i, j int) bool { return bytes.Compare(terms[i].term, terms[j].term) < 0 })

	var blob bytes.Buffer
	offsets := make([]uint64, len(terms))
	for i, tp := range terms {
		offsets[i] = uint64(blob.Len())
		if err := writePostingsBlock(&blob, tp); err != nil {
			return err
		}
	}

	pstW := codec.NewChecksumWriter(pst)
	if err := codec.WriteHeader(pstW, postingsCodecName, postingsVersion, segmentID, ""); err != nil {
		return err
	}
	if _, err := pstW.Write(blob.Bytes()); err != nil {
		return err
	}
	if err := codec.WriteFooter(pstW); err != nil {
		return err
	}

	tmdW := codec.NewChecksumWriter(tmd)
	if err := codec.WriteHeader(tmdW, termsDictCodecName, postingsVersion, segmentID, ""); err != nil {
		return err
	}
	builder, err := vellum.New(tmdW, nil)
	if err != nil {
		return err
	}
	for i, tp := range terms {
		if err := builder.Insert(tp.term, offsets[i]); err != nil {
			return err
		}
	}
	if err := builder.Close(); err != nil {
		return err
	}
	return codec.WriteFooter(tmdW)
}

func writePostingsBlock(w io.Writer, tp *termPostings) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(tp.entries)))
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}
	prevDoc := 0
	for _, e := range tp.entries {
		n = binary.PutUvarint(buf[:], uint64(e.docID-prevDoc))
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		prevDoc = e.docID

		n = binary.PutUvarint(buf[:], uint64(len(e.positions)))
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		prevPos := 0
		for _, p := range e.positions {
			n = binary.PutUvarint(buf[:], uint64(p-prevPos))
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
			prevPos = p
		}
	}
	return nil
}

// TermsDictReader wraps the FST mapping term bytes to a postings block
// offset.
type TermsDictReader struct {
	fst *vellum.FST
}

func OpenTermsDict(in directory.IndexInput) (*TermsDictReader, error) {
	headerLen, err := framedHeaderLen(in)
	if err != nil {
		return nil, err
	}

	body := io.NewSectionReader(in, 0, in.Length())
	cr := codec.NewChecksumReader(body)
	if _, err := codec.ReadHeader(cr); err != nil {
		return nil, err
	}

	fstLen := in.Length() - headerLen - 16
	data := make([]byte, fstLen)
	if _, err := io.ReadFull(cr, data); err != nil {
		return nil, err
	}

	tail := io.NewSectionReader(in, in.Length()-8, 8)
	if err := codec.ReadAndVerifyFooter(cr, tail, in.Name()); err != nil {
		return nil, err
	}

	fst, err := vellum.Load(data)
	if err != nil {
		return nil, err
	}
	return &TermsDictReader{fst: fst}, nil
}

// SeekExact reports whether term is present and, if so, its postings
// block offset.
func (t *TermsDictReader) SeekExact(term []byte) (uint64, bool, error) {
	return t.fst.Get(term)
}

// Iterator walks every (term, offset) pair in lexicographic order,
// starting at or after start (nil for the beginning of the dictionary).
func (t *TermsDictReader) Iterator(start []byte) (*vellum.FSTIterator, error) {
	return t.fst.Iterator(start, nil)
}

func (t *TermsDictReader) Close() error { return t.fst.Close() }

// Posting is one term-in-document occurrence expanded from a postings
// block: the doc id, frequency (len(Positions)), and the positions
// themselves.
type Posting struct {
	DocID     int
	Positions []int
}

// PostingsReader decodes postings blocks out of a .pst file by byte
// offset, as looked up through a TermsDictReader.
type PostingsReader struct {
	data      directory.IndexInput
	headerLen int64
}

func OpenPostingsReader(in directory.IndexInput) (*PostingsReader, error) {
	headerLen, err := framedHeaderLen(in)
	if err != nil {
		return nil, err
	}
	return &PostingsReader{data: in, headerLen: headerLen}, nil
}

// ReadBlock decodes the full posting list starting at offset (as returned
// by TermsDictReader.SeekExact).
func (r *PostingsReader) ReadBlock(offset uint64) ([]Posting, error) {
	start := r.headerLen + int64(offset)
	length := r.data.Length() - 16 - start
	sec := io.NewSectionReader(r.data, start, length)
	br := bufio.NewReader(sec)

	count, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	postings := make([]Posting, 0, count)
	prevDoc := 0
	for i := uint64(0); i < count; i++ {
		deltaDoc, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, err
		}
		docID := prevDoc + int(deltaDoc)
		prevDoc = docID

		freq, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, err
		}
		positions := make([]int, freq)
		prevPos := 0
		for j := range positions {
			deltaPos, err := binary.ReadUvarint(br)
			if err != nil {
				return nil, err
			}
			prevPos += int(deltaPos)
			positions[j] = prevPos
		}
		postings = append(postings, Posting{DocID: docID, Positions: positions})
	}
	return postings, nil
}
