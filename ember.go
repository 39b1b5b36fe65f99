// Package ember is the public façade over the index writer, reader, and
// searcher: translate a caller's Document/Field values into the lower
// packages' buffer/segment/scorer types and wire together sane defaults
// (BM25 similarity, a whitespace analyzer, YAML-loadable config) so most
// callers never need to import those packages directly.
package ember

import (
	"io"

	"github.com/emberfts/ember/analysis"
	"github.com/emberfts/ember/buffer"
	"github.com/emberfts/ember/config"
	"github.com/emberfts/ember/directory"
	ftserr "github.com/emberfts/ember/errors"
	"github.com/emberfts/ember/reader"
	"github.com/emberfts/ember/search"
	"github.com/emberfts/ember/search/collector"
	"github.com/emberfts/ember/search/similarity"
	"github.com/emberfts/ember/writer"
	"go.uber.org/zap"
)

// Config is the top-level options document for opening an index: where
// it lives, how the writer buffers and merges, and what analyzer and
// similarity its documents and queries use.
type Config struct {
	Writer     config.WriterConfig
	Analyzer   *analysis.Analyzer
	Similarity similarity.Similarity
	Logger     *zap.Logger
}

// DefaultConfig returns the configuration ember uses when a caller
// supplies none of its own: whitespace analysis, BM25 ranking, a no-op
// logger.
func DefaultConfig() Config {
	return Config{
		Writer: config.DefaultWriterConfig(),
		Analyzer: &analysis.Analyzer{
			Tokenizer: analysis.NewWhitespaceTokenizer(),
		},
		Similarity: similarity.NewBM25Similarity(),
	}
}

// LoadConfig decodes a Config's writer section from YAML, layering it
// over DefaultConfig's analyzer/similarity/logger.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	writerCfg, err := config.Load(r)
	if err != nil {
		return cfg, err
	}
	cfg.Writer = writerCfg
	return cfg, nil
}

func (c Config) analyzer() *analysis.Analyzer {
	if c.Analyzer != nil {
		return c.Analyzer
	}
	return DefaultConfig().Analyzer
}

func (c Config) similarity() similarity.Similarity {
	if c.Similarity != nil {
		return c.Similarity
	}
	return similarity.NewBM25Similarity()
}

// Writer is a Document-level wrapper around writer.IndexWriter.
type Writer struct {
	inner    *writer.IndexWriter
	analyzer *analysis.Analyzer
	cfg      Config
}

// OpenWriter opens (or creates) an index at dir under cfg.
func OpenWriter(dir directory.Directory, cfg Config) (*Writer, error) {
	iw, err := writer.Open(dir, cfg.Writer, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &Writer{inner: iw, analyzer: cfg.analyzer(), cfg: cfg}, nil
}

// AddDocument buffers doc for the next flush/commit.
func (w *Writer) AddDocument(doc Document) (int64, error) {
	return w.inner.AddDocument(toBufferFields(doc, w.analyzer))
}

// DeleteDocuments buffers a delete-by-term against segments that exist
// as of the next commit.
func (w *Writer) DeleteDocuments(t Term) (int64, error) {
	return w.inner.DeleteDocuments(t.Field, t.Value)
}

// UpdateDocument buffers a delete-by-term paired with a replacement add.
func (w *Writer) UpdateDocument(t Term, doc Document) (int64, error) {
	return w.inner.UpdateDocument(t.Field, t.Value, toBufferFields(doc, w.analyzer))
}

// Commit flushes and publishes a new commit point.
func (w *Writer) Commit() error { return w.inner.Commit() }

// ForceMerge merges down to at most maxSegments segments.
func (w *Writer) ForceMerge(maxSegments int) error { return w.inner.ForceMerge(maxSegments) }

// GetReader returns a Reader over the writer's last commit point;
// documents and deletes buffered since then are not visible in it.
func (w *Writer) GetReader() (*Reader, error) {
	r, err := w.inner.GetReader()
	if err != nil {
		return nil, err
	}
	return &Reader{inner: r}, nil
}

// Close releases the writer's lock on dir. It does not implicitly commit.
func (w *Writer) Close() error { return w.inner.Close() }

func toBufferFields(doc Document, analyzer *analysis.Analyzer) []buffer.Field {
	out := make([]buffer.Field, len(doc))
	for i, f := range doc {
		out[i] = toBufferField(f, analyzer)
	}
	return out
}

// Reader is a thin wrapper around reader.IndexReader that adds
// global-docID stored-field lookup across its leaves.
type Reader struct {
	inner *reader.IndexReader
}

// OpenReader opens the most recent commit point at dir directly,
// without going through a Writer.
func OpenReader(dir directory.Directory) (*Reader, error) {
	r, err := reader.Open(dir)
	if err != nil {
		return nil, err
	}
	return &Reader{inner: r}, nil
}

// NumDocs returns the number of live documents across all segments.
func (r *Reader) NumDocs() int { return r.inner.NumDocs() }

// MaxDoc returns the total doc id space, including deleted documents.
func (r *Reader) MaxDoc() int { return r.inner.MaxDoc() }

// Document retrieves the stored fields of the document at globalDocID
// (the doc id space Searcher results are reported in), translated back
// into field-name-keyed raw values.
func (r *Reader) Document(globalDocID int) (map[string][]byte, error) {
	base := 0
	for _, leaf := range r.inner.Leaves() {
		if globalDocID < base+leaf.MaxDoc() {
			fields, err := leaf.Document(globalDocID - base)
			if err != nil {
				return nil, err
			}
			out := make(map[string][]byte, len(fields))
			for _, sf := range fields {
				fi, ok := leaf.FieldInfos().ByNumber(sf.FieldNumber)
				if !ok {
					continue
				}
				out[fi.Name] = sf.Value
			}
			return out, nil
		}
		base += leaf.MaxDoc()
	}
	return nil, ftserr.New(ftserr.IllegalArgument, "doc id out of range")
}

// Close releases the reader's segment references.
func (r *Reader) Close() error { return r.inner.Close() }

// Searcher executes queries over a Reader's snapshot of the index.
type Searcher struct {
	*search.IndexSearcher
	reader *Reader
}

// NewSearcher builds a Searcher over r using cfg's similarity (BM25 by
// default).
func NewSearcher(r *Reader, cfg Config) *Searcher {
	return &Searcher{
		IndexSearcher: search.NewIndexSearcher(r.inner, cfg.similarity()),
		reader:        r,
	}
}

// TopDocs runs query through a fresh TopDocsCollector(k) and returns its
// results alongside the total number of matching documents.
func (s *Searcher) TopDocs(query search.Query, k int) ([]collector.ScoredDoc, int64, error) {
	c := collector.NewTopDocsCollector(k)
	if err := s.Search(query, c); err != nil {
		return nil, 0, err
	}
	return c.TopDocs(), c.TotalHits(), nil
}
