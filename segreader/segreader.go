// Package segreader is the read-only view over one committed segment's
// files: field metadata, terms dictionaries, postings, doc-values,
// norms, stored fields, and live-docs. A LeafReader is safe for
// concurrent use by many searches once opened.
package segreader

import (
	"github.com/emberfts/ember/codec/emberfmt"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/fieldinfo"
	"github.com/emberfts/ember/iocontext"
	"github.com/emberfts/ember/segment"
	bitset "github.com/emberfts/ember/util/bits"
)

// LeafReader is the open file set for one segment.
type LeafReader struct {
	info       *segment.Info
	fieldInfos *fieldinfo.FieldInfos
	stored     *emberfmt.StoredFieldsReader
	liveDocs   *bitset.Fixed // nil means every doc in [0, MaxDoc) is live

	termsDicts map[int]*emberfmt.TermsDictReader
	postings   map[int]*emberfmt.PostingsReader
	norms      map[int]*emberfmt.NormsReader
	numericDV  map[int]*emberfmt.NumericDocValuesReader
	sortedDV   map[int]*emberfmt.SortedDocValuesReader

	closers []func() error
}

// Open opens every file belonging to info under dir and returns a ready
// LeafReader. Doc-values, norms, and postings files are opened eagerly
// per field since a segment's field set is typically small relative to
// its document count.
func Open(dir directory.Directory, info *segment.Info) (*LeafReader, error) {
	r := &LeafReader{
		info:       info,
		termsDicts: map[int]*emberfmt.TermsDictReader{},
		postings:   map[int]*emberfmt.PostingsReader{},
		norms:      map[int]*emberfmt.NormsReader{},
		numericDV:  map[int]*emberfmt.NumericDocValuesReader{},
		sortedDV:   map[int]*emberfmt.SortedDocValuesReader{},
	}

	fnmIn, err := r.open(dir, emberfmt.FieldInfosFile(info.Name))
	if err != nil {
		return nil, err
	}
	fi, err := emberfmt.ReadFieldInfos(fnmIn)
	if err != nil {
		return nil, err
	}
	r.fieldInfos = fi

	fdtIn, err := r.open(dir, emberfmt.StoredFieldsDataFile(info.Name))
	if err != nil {
		return nil, err
	}
	fdxIn, err := r.open(dir, emberfmt.StoredFieldsIndexFile(info.Name))
	if err != nil {
		return nil, err
	}
	stored, err := emberfmt.OpenStoredFieldsReader(fdtIn, fdxIn)
	if err != nil {
		return nil, err
	}
	r.stored = stored

	if info.HasDeletions {
		livName := emberfmt.LiveDocsFile(info.Name, info.DelGen)
		if exists(dir, livName) {
			livIn, err := r.open(dir, livName)
			if err != nil {
				return nil, err
			}
			live, err := emberfmt.ReadLiveDocs(livIn)
			if err != nil {
				return nil, err
			}
			r.liveDocs = live
		}
	}

	for _, f := range fi.List() {
		if f.IndexOptions != fieldinfo.IndexOptionsNone {
			pstName := emberfmt.PostingsFile(info.Name, f.Number)
			tmdName := emberfmt.TermsDictFile(info.Name, f.Number)
			if exists(dir, pstName) && exists(dir, tmdName) {
				pstIn, err := r.open(dir, pstName)
				if err != nil {
					return nil, err
				}
				tmdIn, err := r.open(dir, tmdName)
				if err != nil {
					return nil, err
				}
				dict, err := emberfmt.OpenTermsDict(tmdIn)
				if err != nil {
					return nil, err
				}
				pr, err := emberfmt.OpenPostingsReader(pstIn)
				if err != nil {
					return nil, err
				}
				r.termsDicts[f.Number] = dict
				r.postings[f.Number] = pr
				r.closers = append(r.closers, dict.Close)
			}
		}

		if f.HasNorms {
			name := emberfmt.NormsFile(info.Name, f.Number)
			if exists(dir, name) {
				normIn, err := r.open(dir, name)
				if err != nil {
					return nil, err
				}
				nr, err := emberfmt.ReadNorms(normIn)
				if err != nil {
					return nil, err
				}
				r.norms[f.Number] = nr
			}
		}

		switch f.DocValues {
		case fieldinfo.DocValuesNumeric:
			name := emberfmt.DocValuesFile(info.Name, f.Number) + ".num"
			if exists(dir, name) {
				in, err := r.open(dir, name)
				if err != nil {
					return nil, err
				}
				dv, err := emberfmt.ReadNumericDocValues(in)
				if err != nil {
					return nil, err
				}
				r.numericDV[f.Number] = dv
			}
		case fieldinfo.DocValuesSorted:
			name := emberfmt.DocValuesFile(info.Name, f.Number) + ".srt"
			if exists(dir, name) {
				in, err := r.open(dir, name)
				if err != nil {
					return nil, err
				}
				dv, err := emberfmt.ReadSortedDocValues(in)
				if err != nil {
					return nil, err
				}
				r.sortedDV[f.Number] = dv
			}
		}
	}

	return r, nil
}

func (r *LeafReader) open(dir directory.Directory, name string) (directory.IndexInput, error) {
	in, err := dir.OpenInput(name, iocontext.ReadContext)
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, in.Close)
	return in, nil
}

func exists(dir directory.Directory, name string) bool {
	names, err := dir.ListAll()
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (r *LeafReader) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *LeafReader) MaxDoc() int { return r.info.MaxDoc }

// NumDocs returns the number of live (non-deleted) documents.
func (r *LeafReader) NumDocs() int {
	if r.liveDocs == nil {
		return r.info.MaxDoc
	}
	return int(r.liveDocs.Cardinality())
}

func (r *LeafReader) IsLive(docID int) bool {
	if r.liveDocs == nil {
		return true
	}
	return r.liveDocs.Get(uint(docID))
}

func (r *LeafReader) FieldInfos() *fieldinfo.FieldInfos { return r.fieldInfos }

func (r *LeafReader) Document(docID int) ([]emberfmt.StoredField, error) {
	return r.stored.Document(docID)
}

func (r *LeafReader) Norm(fieldNumber, docID int) (byte, bool) {
	nr, ok := r.norms[fieldNumber]
	if !ok {
		return 0, false
	}
	return nr.Get(docID), true
}

func (r *LeafReader) NumericDocValue(fieldNumber, docID int) (int64, bool) {
	dv, ok := r.numericDV[fieldNumber]
	if !ok {
		return 0, false
	}
	return dv.Get(docID)
}

func (r *LeafReader) SortedDocValue(fieldNumber, docID int) ([]byte, bool) {
	dv, ok := r.sortedDV[fieldNumber]
	if !ok {
		return nil, false
	}
	return dv.Get(docID)
}

// Terms returns a TermsEnum over fieldNumber's dictionary, or false if
// the field has no postings in this segment.
func (r *LeafReader) Terms(fieldNumber int) (*TermsEnum, bool) {
	dict, ok := r.termsDicts[fieldNumber]
	if !ok {
		return nil, false
	}
	return &TermsEnum{dict: dict, postings: r.postings[fieldNumber]}, true
}
