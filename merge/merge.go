// Package merge combines several committed segments into one: it drops
// deleted documents, remaps doc ids to a contiguous range, unions each
// field's postings, and recompresses stored fields through zstd rather
// than the snappy used at flush time.
package merge

import (
	"github.com/emberfts/ember/codec/emberfmt"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/fieldinfo"
	"github.com/emberfts/ember/iocontext"
	"github.com/emberfts/ember/segment"
	"github.com/emberfts/ember/segreader"
	bitset "github.com/emberfts/ember/util/bits"
	diskpq "github.com/emberfts/ember/util/pq"
)

// Merge reads every segment named in inputs, drops documents that are
// not live, and writes a single new segment named outputName. Callers
// are responsible for writing the resulting segment into a new commit
// point and deleting the input segments' files once that commit is
// durable.
func Merge(dir directory.Directory, inputs []*segment.Info, outputName string, segID [16]byte) (*segment.Info, error) {
	leaves := make([]*segreader.LeafReader, len(inputs))
	for i, info := range inputs {
		lr, err := segreader.Open(dir, info)
		if err != nil {
			closeLeaves(leaves[:i])
			return nil, err
		}
		leaves[i] = lr
	}
	defer closeLeaves(leaves)

	newFieldInfos, fieldNumberMap := mergeFieldInfos(leaves)
	deletedDocs := buildDeletedSets(leaves)
	docMap, newMaxDoc := buildDocMap(leaves, deletedDocs)

	mergeCtx := iocontext.NewMerge(uint32(newMaxDoc), 0, false, 0)
	var files []string

	fnmName := emberfmt.FieldInfosFile(outputName)
	fnmOut, err := dir.CreateOutput(fnmName, mergeCtx)
	if err != nil {
		return nil, err
	}
	if err := emberfmt.WriteFieldInfos(fnmOut, segID, newFieldInfos); err != nil {
		return nil, err
	}
	if err := fnmOut.Close(); err != nil {
		return nil, err
	}
	files = append(files, fnmName)

	storedName, err := mergeStoredFields(dir, leaves, docMap, fieldNumberMap, outputName, segID, mergeCtx)
	if err != nil {
		return nil, err
	}
	files = append(files, storedName...)

	postingsFiles, err := mergePostings(dir, leaves, docMap, fieldNumberMap, newFieldInfos, outputName, segID, mergeCtx)
	if err != nil {
		return nil, err
	}
	files = append(files, postingsFiles...)

	normFiles, err := mergeNorms(dir, leaves, docMap, fieldNumberMap, newFieldInfos, newMaxDoc, outputName, segID, mergeCtx)
	if err != nil {
		return nil, err
	}
	files = append(files, normFiles...)

	dvFiles, err := mergeDocValues(dir, leaves, docMap, fieldNumberMap, newFieldInfos, newMaxDoc, outputName, segID, mergeCtx)
	if err != nil {
		return nil, err
	}
	files = append(files, dvFiles...)

	if err := dir.Sync(files); err != nil {
		return nil, err
	}

	return &segment.Info{
		Name:   outputName,
		Codec:  emberfmt.Name,
		MaxDoc: newMaxDoc,
		Files:  files,
		ID:     segID,
	}, nil
}

func closeLeaves(leaves []*segreader.LeafReader) {
	for _, lr := range leaves {
		if lr != nil {
			lr.Close()
		}
	}
}

// mergeFieldInfos builds the output segment's field registry as the
// union of every input's fields (by name) and returns, per input, the
// old-number -> new-number mapping.
func mergeFieldInfos(leaves []*segreader.LeafReader) (*fieldinfo.FieldInfos, []map[int]int) {
	out := fieldinfo.New()
	maps := make([]map[int]int, len(leaves))
	for i, lr := range leaves {
		maps[i] = map[int]int{}
		for _, f := range lr.FieldInfos().List() {
			nf := out.GetOrAdd(f.Name)
			if f.HasNorms {
				nf.HasNorms = true
			}
			if f.DocValues != fieldinfo.DocValuesNone {
				nf.DocValues = f.DocValues
			}
			if f.IndexOptions > nf.IndexOptions {
				nf.IndexOptions = f.IndexOptions
			}
			maps[i][f.Number] = nf.Number
		}
	}
	return out, maps
}

// buildDeletedSets materializes each input's deleted-doc ids into a
// roaring bitmap, one per leaf, so the doc-id remap consults a sparse
// set rather than re-reading the live-docs bitset on every lookup.
func buildDeletedSets(leaves []*segreader.LeafReader) []*bitset.Sparse {
	deleted := make([]*bitset.Sparse, len(leaves))
	for i, lr := range leaves {
		s := bitset.NewSparse()
		for d := 0; d < lr.MaxDoc(); d++ {
			if !lr.IsLive(d) {
				s.Add(uint32(d))
			}
		}
		deleted[i] = s
	}
	return deleted
}

// buildDocMap assigns each live document across every leaf, in leaf
// order, a contiguous new doc id; documents present in deleted[i] map
// to -1.
func buildDocMap(leaves []*segreader.LeafReader, deleted []*bitset.Sparse) ([][]int, int) {
	docMap := make([][]int, len(leaves))
	next := 0
	for i, lr := range leaves {
		m := make([]int, lr.MaxDoc())
		for d := 0; d < lr.MaxDoc(); d++ {
			if deleted[i].Contains(uint32(d)) {
				m[d] = -1
				continue
			}
			m[d] = next
			next++
		}
		docMap[i] = m
	}
	return docMap, next
}

func mergeStoredFields(dir directory.Directory, leaves []*segreader.LeafReader, docMap [][]int, fieldNumberMap []map[int]int, outputName string, segID [16]byte, ctx iocontext.Context) ([]string, error) {
	// Surviving documents are recompressed through zstd rather than the
	// snappy used at flush time: they have already paid the flush-time
	// latency cost once, and merges run off the document-facing write path.
	w := emberfmt.NewStoredFieldsWriterZstd()
	for i, lr := range leaves {
		for d := 0; d < lr.MaxDoc(); d++ {
			if docMap[i][d] < 0 {
				continue
			}
			w.StartDoc()
			fields, err := lr.Document(d)
			if err != nil {
				return nil, err
			}
			for _, f := range fields {
				newNum, ok := fieldNumberMap[i][f.FieldNumber]
				if !ok {
					continue
				}
				w.AddField(emberfmt.StoredField{FieldNumber: newNum, Value: f.Value})
			}
			w.FinishDoc()
		}
	}

	fdtName := emberfmt.StoredFieldsDataFile(outputName)
	fdxName := emberfmt.StoredFieldsIndexFile(outputName)
	fdt, err := dir.CreateOutput(fdtName, ctx)
	if err != nil {
		return nil, err
	}
	fdx, err := dir.CreateOutput(fdxName, ctx)
	if err != nil {
		return nil, err
	}
	if err := w.Flush(fdt, fdx, segID); err != nil {
		return nil, err
	}
	if err := fdt.Close(); err != nil {
		return nil, err
	}
	if err := fdx.Close(); err != nil {
		return nil, err
	}
	return []string{fdtName, fdxName}, nil
}

func mergePostings(dir directory.Directory, leaves []*segreader.LeafReader, docMap [][]int, fieldNumberMap []map[int]int, newFieldInfos *fieldinfo.FieldInfos, outputName string, segID [16]byte, ctx iocontext.Context) ([]string, error) {
	byNewField := map[int]*emberfmt.PostingsWriter{}

	for i, lr := range leaves {
		for _, f := range lr.FieldInfos().List() {
			if f.IndexOptions == fieldinfo.IndexOptionsNone {
				continue
			}
			terms, ok := lr.Terms(f.Number)
			if !ok {
				continue
			}
			newNum := fieldNumberMap[i][f.Number]
			pw, ok := byNewField[newNum]
			if !ok {
				pw = emberfmt.NewPostingsWriter()
				byNewField[newNum] = pw
			}

			found, err := terms.SeekCeil(nil)
			if err != nil {
				return nil, err
			}
			for found {
				term := append([]byte(nil), terms.Term()...)
				pe, err := terms.Postings()
				if err != nil {
					return nil, err
				}
				for {
					docID, err := pe.ApproximateNext()
					if err != nil {
						return nil, err
					}
					if docID == diskpq.NoMoreDocs() {
						break
					}
					newDoc := docMap[i][int(docID)]
					if newDoc < 0 {
						continue
					}
					for _, pos := range pe.Positions() {
						pw.AddPosting(term, newDoc, pos)
					}
				}
				found, err = terms.Next()
				if err != nil {
					return nil, err
				}
			}
		}
	}

	var files []string
	for newNum, pw := range byNewField {
		pstName := emberfmt.PostingsFile(outputName, newNum)
		tmdName := emberfmt.TermsDictFile(outputName, newNum)
		pst, err := dir.CreateOutput(pstName, ctx)
		if err != nil {
			return nil, err
		}
		tmd, err := dir.CreateOutput(tmdName, ctx)
		if err != nil {
			return nil, err
		}
		if err := pw.Flush(pst, tmd, segID); err != nil {
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
	return files, nil
}

func mergeNorms(dir directory.Directory, leaves []*segreader.LeafReader, docMap [][]int, fieldNumberMap []map[int]int, newFieldInfos *fieldinfo.FieldInfos, newMaxDoc int, outputName string, segID [16]byte, ctx iocontext.Context) ([]string, error) {
	var files []string
	for _, nf := range newFieldInfos.List() {
		if !nf.HasNorms {
			continue
		}
		values := make([]byte, newMaxDoc)
		for i, lr := range leaves {
			var oldNum = -1
			for old, new := range fieldNumberMap[i] {
				if new == nf.Number {
					oldNum = old
					break
				}
			}
			if oldNum < 0 {
				continue
			}
			for d := 0; d < lr.MaxDoc(); d++ {
				newDoc := docMap[i][d]
				if newDoc < 0 {
					continue
				}
				if b, ok := lr.Norm(oldNum, d); ok {
					values[newDoc] = b
				}
			}
		}
		nw := emberfmt.NewNormsWriter()
		for _, b := range values {
			nw.Add(b)
		}
		name := emberfmt.NormsFile(outputName, nf.Number)
		out, err := dir.CreateOutput(name, ctx)
		if err != nil {
			return nil, err
		}
		if err := nw.Flush(out, segID); err != nil {
			return nil, err
		}
		if err := out.Close(); err != nil {
			return nil, err
		}
		files = append(files, name)
	}
	return files, nil
}

func mergeDocValues(dir directory.Directory, leaves []*segreader.LeafReader, docMap [][]int, fieldNumberMap []map[int]int, newFieldInfos *fieldinfo.FieldInfos, newMaxDoc int, outputName string, segID [16]byte, ctx iocontext.Context) ([]string, error) {
	var files []string
	for _, nf := range newFieldInfos.List() {
		switch nf.DocValues {
		case fieldinfo.DocValuesNumeric:
			nw := emberfmt.NewNumericDocValuesWriter(newMaxDoc)
			for i, lr := range leaves {
				oldNum := oldFieldNumber(fieldNumberMap[i], nf.Number)
				if oldNum < 0 {
					continue
				}
				for d := 0; d < lr.MaxDoc(); d++ {
					newDoc := docMap[i][d]
					if newDoc < 0 {
						continue
					}
					if v, ok := lr.NumericDocValue(oldNum, d); ok {
						nw.Add(newDoc, v)
					}
				}
			}
			name := emberfmt.DocValuesFile(outputName, nf.Number) + ".num"
			out, err := dir.CreateOutput(name, ctx)
			if err != nil {
				return nil, err
			}
			if err := nw.Flush(out, segID); err != nil {
				return nil, err
			}
			if err := out.Close(); err != nil {
				return nil, err
			}
			files = append(files, name)

		case fieldinfo.DocValuesSorted:
			sw := emberfmt.NewSortedDocValuesWriter(newMaxDoc)
			for i, lr := range leaves {
				oldNum := oldFieldNumber(fieldNumberMap[i], nf.Number)
				if oldNum < 0 {
					continue
				}
				for d := 0; d < lr.MaxDoc(); d++ {
					newDoc := docMap[i][d]
					if newDoc < 0 {
						continue
					}
					if v, ok := lr.SortedDocValue(oldNum, d); ok {
						sw.Add(newDoc, v)
					}
				}
			}
			name := emberfmt.DocValuesFile(outputName, nf.Number) + ".srt"
			out, err := dir.CreateOutput(name, ctx)
			if err != nil {
				return nil, err
			}
			if err := sw.Flush(out, segID); err != nil {
				return nil, err
			}
			if err := out.Close(); err != nil {
				return nil, err
			}
			files = append(files, name)
		}
	}
	return files, nil
}

func oldFieldNumber(m map[int]int, newNum int) int {
	for old, n := range m {
		if n == newNum {
			return old
		}
	}
	return -1
}

