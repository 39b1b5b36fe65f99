// Package writer is the index writer: buffered document adds, buffered
// term deletes, and a crash-safe commit protocol that flushes, applies
// deletes, and publishes a new segments_<gen> commit point.
package writer

import (
	"strconv"
	"strings"
	"sync"

	"github.com/emberfts/ember/buffer"
	"github.com/emberfts/ember/codec/emberfmt"
	"github.com/emberfts/ember/config"
	"github.com/emberfts/ember/directory"
	ftserr "github.com/emberfts/ember/errors"
	"github.com/emberfts/ember/internal/log"
	"github.com/emberfts/ember/iocontext"
	"github.com/emberfts/ember/merge"
	"github.com/emberfts/ember/reader"
	"github.com/emberfts/ember/segment"
	"github.com/emberfts/ember/segreader"
	bitset "github.com/emberfts/ember/util/bits"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is the writer's coarse lifecycle stage.
type State int

const (
	StateOpen State = iota
	StateFlushing
	StateCommitting
	StateClosed
	StateFailed
)

type bufferedDelete struct {
	fieldName string
	term      []byte
}

// IndexWriter is the single-writer entry point for mutating an index.
// All exported methods are safe to call from one goroutine at a time;
// internally they serialize on mu, matching a single writer-lock-per-index
// model.
type IndexWriter struct {
	mu     sync.Mutex
	dir    directory.Directory
	logger *zap.Logger
	cfg    config.WriterConfig

	idGen *segment.IDGenerator
	infos *segment.Infos

	buf     *buffer.Buffer
	deletes []bufferedDelete

	mergePolicy *merge.TieredMergePolicy

	state    State
	sequence atomic.Int64
}

// Open acquires the directory's write lock and either resumes from the
// highest existing commit point or starts a brand new index.
func Open(dir directory.Directory, cfg config.WriterConfig, logger *zap.Logger) (*IndexWriter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := dir.Lock(); err != nil {
		return nil, ftserr.Wrap(ftserr.IllegalState, "acquire write lock", err)
	}

	infos, err := segment.ReadCommit(dir)
	if err != nil {
		if !ftserr.Is(err, ftserr.IllegalState) {
			dir.Unlock()
			return nil, err
		}
		infos = segment.NewInfos()
	}

	highest := int64(-1)
	for _, s := range infos.Segments {
		if n, ok := parseSegmentCounter(s.Name); ok && n > highest {
			highest = n
		}
	}
	w := &IndexWriter{
		dir:         dir,
		logger:      logger,
		cfg:         cfg,
		idGen:       segment.NewIDGeneratorFrom(highest),
		infos:       infos,
		mergePolicy: &merge.TieredMergePolicy{MergeFactor: cfg.MergePolicy.MergeFactor},
		state:       StateOpen,
	}
	return w, nil
}

// AddDocument buffers a new document and returns the sequence number
// assigned to the operation.
func (w *IndexWriter) AddDocument(fields []buffer.Field) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireOpen(); err != nil {
		return 0, err
	}
	if w.buf == nil {
		w.buf = buffer.New()
	}
	w.buf.AddDocument(fields)
	return w.sequence.Inc(), nil
}

// DeleteDocuments buffers a delete-by-term against every segment
// committed (or flushed) before this call.
func (w *IndexWriter) DeleteDocuments(fieldName string, term []byte) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireOpen(); err != nil {
		return 0, err
	}
	w.deletes = append(w.deletes, bufferedDelete{fieldName: fieldName, term: append([]byte(nil), term...)})
	return w.sequence.Inc(), nil
}

// UpdateDocument is DeleteDocuments followed by AddDocument under one
// lock acquisition: the new document is exempt from the delete it was
// just paired with, since buffered deletes only ever resolve against
// segments that existed before the current commit's flush.
func (w *IndexWriter) UpdateDocument(fieldName string, term []byte, fields []buffer.Field) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireOpen(); err != nil {
		return 0, err
	}
	w.deletes = append(w.deletes, bufferedDelete{fieldName: fieldName, term: append([]byte(nil), term...)})
	if w.buf == nil {
		w.buf = buffer.New()
	}
	w.buf.AddDocument(fields)
	return w.sequence.Inc(), nil
}

func (w *IndexWriter) requireOpen() error {
	switch w.state {
	case StateOpen:
		return nil
	case StateClosed:
		return ftserr.New(ftserr.AlreadyClosed, "writer is closed")
	case StateFailed:
		return ftserr.New(ftserr.IllegalState, "writer is in a failed state")
	default:
		return ftserr.New(ftserr.IllegalState, "writer is busy")
	}
}

// Commit runs the five-step crash-safe commit protocol: flush the
// buffer to a new segment, apply buffered deletes to the segments that
// predate it, write live-docs only for segments whose set actually
// changed, publish the next-generation commit point, and fsync it.
func (w *IndexWriter) Commit() (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireOpen(); err != nil {
		return err
	}
	w.state = StateCommitting
	defer func() {
		if err != nil {
			w.state = StateFailed
		} else {
			w.state = StateOpen
		}
	}()

	preFlushSegments := append([]*segment.Info(nil), w.infos.Segments...)

	var flushed *segment.Info
	if w.buf != nil && w.buf.NumDocs() > 0 {
		name := w.idGen.NextName()
		segID, idErr := segment.NewFileFramingID()
		if idErr != nil {
			return idErr
		}
		flushed, err = w.buf.Flush(w.dir, name, segID)
		if err != nil {
			return err
		}
		w.buf = nil
	}

	liveDocs, dirty, err := w.applyBufferedDeletes(preFlushSegments)
	if err != nil {
		return err
	}
	w.deletes = nil

	next := &segment.Infos{Generation: w.infos.Generation + 1}
	for _, s := range preFlushSegments {
		updated := *s
		if dirty[s.Name] {
			live := liveDocs[s.Name]
			updated.HasDeletions = true
			updated.DelGen = s.DelGen + 1
			livName := emberfmt.LiveDocsFile(s.Name, updated.DelGen)
			out, cerr := w.dir.CreateOutput(livName, iocontext.DefaultContext)
			if cerr != nil {
				return cerr
			}
			if cerr := emberfmt.WriteLiveDocs(out, s.ID, live); cerr != nil {
				return cerr
			}
			if cerr := out.Close(); cerr != nil {
				return cerr
			}
			updated.Files = append(append([]string(nil), s.Files...), livName)
		}
		next.Segments = append(next.Segments, &updated)
	}
	if flushed != nil {
		next.Segments = append(next.Segments, flushed)
	}

	if _, err = segment.WriteCommit(w.dir, next); err != nil {
		return err
	}
	w.infos = next
	w.logger.Info("committed", log.Generation(next.Generation), log.NumDocs(next.TotalMaxDoc()))
	return nil
}

// applyBufferedDeletes resolves every buffered delete-by-term against
// the given (pre-flush) segments, returning a live-docs bitset per
// affected segment and which segments actually changed.
func (w *IndexWriter) applyBufferedDeletes(segments []*segment.Info) (map[string]*bitset.Fixed, map[string]bool, error) {
	live := map[string]*bitset.Fixed{}
	dirty := map[string]bool{}
	if len(w.deletes) == 0 {
		return live, dirty, nil
	}

	for _, s := range segments {
		lr, err := segreader.Open(w.dir, s)
		if err != nil {
			return nil, nil, err
		}

		for _, del := range w.deletes {
			fi, ok := lr.FieldInfos().ByName(del.fieldName)
			if !ok {
				continue
			}
			terms, ok := lr.Terms(fi.Number)
			if !ok {
				continue
			}
			found, err := terms.SeekExact(del.term)
			if err != nil {
				lr.Close()
				return nil, nil, err
			}
			if !found {
				continue
			}
			pe, err := terms.Postings()
			if err != nil {
				lr.Close()
				return nil, nil, err
			}
			for {
				docID, err := pe.ApproximateNext()
				if err != nil {
					lr.Close()
					return nil, nil, err
				}
				if docID < 0 || int(docID) >= s.MaxDoc {
					break
				}
				set, ok := live[s.Name]
				if !ok {
					set = currentLiveDocs(lr)
					live[s.Name] = set
				}
				if set.Get(uint(docID)) {
					set.Clear(uint(docID))
					dirty[s.Name] = true
				}
			}
		}
		lr.Close()
	}
	return live, dirty, nil
}

// currentLiveDocs materializes a segment's live-docs bitset (all-live
// if it has none yet) so deletes can be applied to a concrete copy.
func currentLiveDocs(lr *segreader.LeafReader) *bitset.Fixed {
	f := bitset.NewFixed(uint(lr.MaxDoc()))
	for d := 0; d < lr.MaxDoc(); d++ {
		if lr.IsLive(d) {
			f.Set(uint(d))
		}
	}
	return f
}

// GetReader returns a reader over the writer's last commit point.
// Documents and deletes buffered since that commit are not visible in
// it; the buffer is flushed only by Commit.
func (w *IndexWriter) GetReader() (*reader.IndexReader, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return reader.OpenFromInfos(w.dir, w.infos)
}

// ForceMerge merges segments, tier by tier, down to at most maxSegments.
func (w *IndexWriter) ForceMerge(maxSegments int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireOpen(); err != nil {
		return err
	}

	for len(w.infos.Segments) > maxSegments {
		groups := w.mergePolicy.Select(w.infos)
		if len(groups) == 0 {
			// No tier is large enough on its own; merge everything.
			groups = [][]*segment.Info{w.infos.Segments}
		}
		group := groups[0]
		name := w.idGen.NextName()
		segID, err := segment.NewFileFramingID()
		if err != nil {
			return err
		}
		merged, err := merge.Merge(w.dir, group, name, segID)
		if err != nil {
			return err
		}

		remaining := make([]*segment.Info, 0, len(w.infos.Segments))
		inGroup := map[string]bool{}
		for _, s := range group {
			inGroup[s.Name] = true
		}
		for _, s := range w.infos.Segments {
			if !inGroup[s.Name] {
				remaining = append(remaining, s)
			}
		}
		remaining = append(remaining, merged)

		next := &segment.Infos{Generation: w.infos.Generation + 1, Segments: remaining}
		if _, err := segment.WriteCommit(w.dir, next); err != nil {
			return err
		}
		w.infos = next
		w.logger.Info("merged segments", log.Segment(merged.Name), log.NumDocs(merged.MaxDoc))
	}
	return nil
}

// parseSegmentCounter extracts the base-36 counter from a "_<n>" segment
// name, as minted by segment.IDGenerator.NextName.
func parseSegmentCounter(name string) (int64, bool) {
	if !strings.HasPrefix(name, "_") {
		return 0, false
	}
	n, err := strconv.ParseInt(name[1:], 36, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Close releases the write lock. It does not implicitly commit.
func (w *IndexWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return nil
	}
	w.state = StateClosed
	return multierr.Append(nil, w.dir.Unlock())
}
