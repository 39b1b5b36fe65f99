package buffer

import (
	"github.com/emberfts/ember/codec/emberfmt"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/fieldinfo"
	"github.com/emberfts/ember/iocontext"
	"github.com/emberfts/ember/segment"
)

// Token is one term occurrence produced by a field's token stream.
type Token struct {
	Term     []byte
	Position int
}

// Field is one field value for one document as handed to the buffer; the
// caller (the root package's Document/Field model) decides which of
// Tokens/Stored/Norm/doc-values are populated for a given field.
type Field struct {
	Name      string
	Tokens    []Token
	Stored    []byte
	HasStored bool
	Norm      byte
	HasNorm   bool
	Numeric   *int64
	Sorted    []byte
}

type numericEntry struct {
	docID int
	value int64
}

type sortedEntry struct {
	docID int
	value []byte
}

// Buffer is the in-memory accumulator a writer thread drains documents
// into between flushes. One Buffer produces one segment.
type Buffer struct {
	fieldInfos *fieldinfo.FieldInfos
	nextDocID  int

	postings map[int]*emberfmt.PostingsWriter
	stored   *emberfmt.StoredFieldsWriter
	norms    map[int]map[int]byte
	numeric  map[int][]numericEntry
	sorted   map[int][]sortedEntry

	hash *TermHash
}

func New() *Buffer {
	return &Buffer{
		fieldInfos: fieldinfo.New(),
		postings:   map[int]*emberfmt.PostingsWriter{},
		stored:     emberfmt.NewStoredFieldsWriter(),
		norms:      map[int]map[int]byte{},
		numeric:    map[int][]numericEntry{},
		sorted:     map[int][]sortedEntry{},
		hash:       NewTermHash(),
	}
}

func (b *Buffer) NumDocs() int { return b.nextDocID }

// AddDocument assigns the next monotonic doc id, consolidates each
// field's token stream through TermHash, and records stored values,
// norms, and doc-values. It returns the assigned doc id.
func (b *Buffer) AddDocument(fields []Field) int {
	docID := b.nextDocID
	b.nextDocID++

	b.stored.StartDoc()
	for _, f := range fields {
		fi := b.fieldInfos.GetOrAdd(f.Name)

		if f.HasStored {
			b.stored.AddField(emberfmt.StoredField{FieldNumber: fi.Number, Value: f.Stored})
		}

		if len(f.Tokens) > 0 {
			fi.IndexOptions = fieldinfo.IndexOptionsDocsAndFreqsAndPositions
			b.hash.Reset()
			for _, tok := range f.Tokens {
				b.hash.Add(tok.Term, tok.Position)
			}
			pw, ok := b.postings[fi.Number]
			if !ok {
				pw = emberfmt.NewPostingsWriter()
				b.postings[fi.Number] = pw
			}
			for id := 0; id < b.hash.Len(); id++ {
				term := b.hash.Term(id)
				for _, pos := range b.hash.Positions(id) {
					pw.AddPosting(term, docID, pos)
				}
			}
		}

		if f.HasNorm {
			fi.HasNorms = true
			docs, ok := b.norms[fi.Number]
			if !ok {
				docs = map[int]byte{}
				b.norms[fi.Number] = docs
			}
			docs[docID] = f.Norm
		}

		if f.Numeric != nil {
			fi.DocValues = fieldinfo.DocValuesNumeric
			b.numeric[fi.Number] = append(b.numeric[fi.Number], numericEntry{docID: docID, value: *f.Numeric})
		}

		if f.Sorted != nil {
			fi.DocValues = fieldinfo.DocValuesSorted
			b.sorted[fi.Number] = append(b.sorted[fi.Number], sortedEntry{docID: docID, value: f.Sorted})
		}
	}
	b.stored.FinishDoc()
	return docID
}

// Flush drains every accumulated structure into a new segment's files
// under dir and returns its segment.Info. The buffer is left unusable
// afterward; callers allocate a fresh Buffer for the next round.
func (b *Buffer) Flush(dir directory.Directory, segmentName string, segmentID [16]byte) (*segment.Info, error) {
	maxDoc := b.nextDocID
	flushCtx := iocontext.NewFlush(uint32(maxDoc))
	var files []string

	fnmName := emberfmt.FieldInfosFile(segmentName)
	fnmOut, err := dir.CreateOutput(fnmName, flushCtx)
	if err != nil {
		return nil, err
	}
	if err := emberfmt.WriteFieldInfos(fnmOut, segmentID, b.fieldInfos); err != nil {
		return nil, err
	}
	if err := fnmOut.Close(); err != nil {
		return nil, err
	}
	files = append(files, fnmName)

	fdtName := emberfmt.StoredFieldsDataFile(segmentName)
	fdxName := emberfmt.StoredFieldsIndexFile(segmentName)
	fdt, err := dir.CreateOutput(fdtName, flushCtx)
	if err != nil {
		return nil, err
	}
	fdx, err := dir.CreateOutput(fdxName, flushCtx)
	if err != nil {
		return nil, err
	}
	if err := b.stored.Flush(fdt, fdx, segmentID); err != nil {
		return nil, err
	}
	if err := fdt.Close(); err != nil {
		return nil, err
	}
	if err := fdx.Close(); err != nil {
		return nil, err
	}
	files = append(files, fdtName, fdxName)

	for _, fi := range b.fieldInfos.List() {
		pw, ok := b.postings[fi.Number]
		if !ok {
			continue
		}
		pstName := emberfmt.PostingsFile(segmentName, fi.Number)
		tmdName := emberfmt.TermsDictFile(segmentName, fi.Number)
		pst, err := dir.CreateOutput(pstName, flushCtx)
		if err != nil {
			return nil, err
		}
		tmd, err := dir.CreateOutput(tmdName, flushCtx)
		if err != nil {
			return nil, err
		}
		if err := pw.Flush(pst, tmd, segmentID); err != nil {
			return nil, err
		}
		if err := pst.Close(); err != nil {
			return nil, err
		}
		if err := tmd.Close(); err != nil {
			return nil, err
		}
		files = append(files, pstName, tmdName)
	}

	for _, fi := range b.fieldInfos.List() {
		docs, ok := b.norms[fi.Number]
		if !ok {
			continue
		}
		nw := emberfmt.NewNormsWriter()
		for doc := 0; doc < maxDoc; doc++ {
			nw.Add(docs[doc])
		}
		name := emberfmt.NormsFile(segmentName, fi.Number)
		out, err := dir.CreateOutput(name, flushCtx)
		if err != nil {
			return nil, err
		}
		if err := nw.Flush(out, segmentID); err != nil {
			return nil, err
		}
		if err := out.Close(); err != nil {
			return nil, err
		}
		files = append(files, name)
	}

	for _, fi := range b.fieldInfos.List() {
		if entries, ok := b.numeric[fi.Number]; ok {
			nw := emberfmt.NewNumericDocValuesWriter(maxDoc)
			for _, e := range entries {
				nw.Add(e.docID, e.value)
			}
			name := emberfmt.DocValuesFile(segmentName, fi.Number) + ".num"
			out, err := dir.CreateOutput(name, flushCtx)
			if err != nil {
				return nil, err
			}
			if err := nw.Flush(out, segmentID); err != nil {
				return nil, err
			}
			if err := out.Close(); err != nil {
				return nil, err
			}
			files = append(files, name)
		}
		if entries, ok := b.sorted[fi.Number]; ok {
			sw := emberfmt.NewSortedDocValuesWriter(maxDoc)
			for _, e := range entries {
				sw.Add(e.docID, e.value)
			}
			name := emberfmt.DocValuesFile(segmentName, fi.Number) + ".srt"
			out, err := dir.CreateOutput(name, flushCtx)
			if err != nil {
				return nil, err
			}
			if err := sw.Flush(out, segmentID); err != nil {
				return nil, err
			}
			if err := out.Close(); err != nil {
				return nil, err
			}
			files = append(files, name)
		}
	}

	if err := dir.Sync(files); err != nil {
		return nil, err
	}

	return &segment.Info{
		Name:   segmentName,
		Codec:  emberfmt.Name,
		MaxDoc: maxDoc,
		Files:  files,
		ID:     segmentID,
	}, nil
}
