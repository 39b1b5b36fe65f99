// Package reader composes every committed segment's LeafReader into one
// searchable view of the index, with atomic refcounting so a writer's
// background segment cleanup never deletes a file a live reader still
// needs.
package reader

import (
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/segment"
	"github.com/emberfts/ember/segreader"
	"go.uber.org/atomic"
)

// IndexReader is a point-in-time, read-only view over a generation of
// committed segments.
type IndexReader struct {
	dir    directory.Directory
	infos  *segment.Infos
	leaves []*segreader.LeafReader
	refs   atomic.Int64
}

// Open reads the highest commit point in dir and opens every segment it
// names.
func Open(dir directory.Directory) (*IndexReader, error) {
	infos, err := segment.ReadCommit(dir)
	if err != nil {
		return nil, err
	}
	return OpenFromInfos(dir, infos)
}

// OpenFromInfos opens every segment named in infos without consulting
// the commit point, letting a writer hand a reader its in-memory,
// not-yet-committed segment list for near-real-time search.
func OpenFromInfos(dir directory.Directory, infos *segment.Infos) (*IndexReader, error) {
	leaves := make([]*segreader.LeafReader, 0, len(infos.Segments))
	for _, s := range infos.Segments {
		lr, err := segreader.Open(dir, s)
		if err != nil {
			closeLeaves(leaves)
			return nil, err
		}
		leaves = append(leaves, lr)
	}
	r := &IndexReader{dir: dir, infos: infos, leaves: leaves}
	r.refs.Store(1)
	return r, nil
}

func closeLeaves(leaves []*segreader.LeafReader) {
	for _, lr := range leaves {
		lr.Close()
	}
}

func (r *IndexReader) Leaves() []*segreader.LeafReader { return r.leaves }

func (r *IndexReader) Generation() int64 { return r.infos.Generation }

func (r *IndexReader) NumDocs() int {
	total := 0
	for _, lr := range r.leaves {
		total += lr.NumDocs()
	}
	return total
}

func (r *IndexReader) MaxDoc() int {
	total := 0
	for _, lr := range r.leaves {
		total += lr.MaxDoc()
	}
	return total
}

// IncRef registers an additional owner of this reader.
func (r *IndexReader) IncRef() { r.refs.Inc() }

// DecRef releases one owner's claim, closing the underlying segment
// files once the last owner has released it.
func (r *IndexReader) DecRef() error {
	if r.refs.Dec() == 0 {
		return r.Close()
	}
	return nil
}

func (r *IndexReader) Close() error {
	var first error
	for _, lr := range r.leaves {
		if err := lr.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Reopen returns a reader reflecting the directory's current commit
// point. If the generation has not advanced since r was opened, it
// returns r itself with an extra reference rather than reopening
// unchanged segment files.
func (r *IndexReader) Reopen() (*IndexReader, error) {
	infos, err := segment.ReadCommit(r.dir)
	if err != nil {
		return nil, err
	}
	if infos.Generation == r.infos.Generation {
		r.IncRef()
		return r, nil
	}
	return OpenFromInfos(r.dir, infos)
}
