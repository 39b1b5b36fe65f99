// Package iocontext describes why a Directory is being asked to open an
// input or create an output, so implementations can pick buffer sizes and
// rate limiting appropriate to the caller's intent.
package iocontext

// Kind discriminates the IOContext variants.
type Kind int

const (
	Default Kind = iota
	Read
	ReadOnce
	Flush
	Merge
)

// FlushInfo accompanies a Flush context.
type FlushInfo struct {
	NumDocs uint32
}

// MergeInfo accompanies a Merge context.
type MergeInfo struct {
	TotalMaxDoc         uint32
	EstimatedMergeBytes uint64
	IsExternal          bool
	MaxNumSegments       int // 0 means unspecified
}

// Context is an immutable IOContext value. Use the package-level
// constructors rather than building one by hand.
type Context struct {
	kind  Kind
	flush FlushInfo
	merge MergeInfo
}

var (
	// DefaultContext carries no hints.
	DefaultContext = Context{kind: Default}
	// ReadContext is used for ordinary random-access reads.
	ReadContext = Context{kind: Read}
	// ReadOnceContext hints the input will be consumed sequentially exactly once.
	ReadOnceContext = Context{kind: ReadOnce}
)

// NewFlush builds a Flush context carrying the number of buffered documents
// about to be written out, used to size write buffers.
func NewFlush(numDocs uint32) Context {
	return Context{kind: Flush, flush: FlushInfo{NumDocs: numDocs}}
}

// NewMerge builds a Merge context, used to size buffers and drive the rate
// limiter.
func NewMerge(totalMaxDoc uint32, estimatedBytes uint64, external bool, maxSegs int) Context {
	return Context{
		kind: Merge,
		merge: MergeInfo{
			TotalMaxDoc:         totalMaxDoc,
			EstimatedMergeBytes: estimatedBytes,
			IsExternal:          external,
			MaxNumSegments:      maxSegs,
		},
	}
}

func (c Context) Kind() Kind { return c.kind }

func (c Context) IsMerge() bool { return c.kind == Merge }

// Flush returns the FlushInfo; only meaningful when Kind() == Flush.
func (c Context) Flush() FlushInfo { return c.flush }

// Merge returns the MergeInfo; only meaningful when Kind() == Merge.
func (c Context) Merge() MergeInfo { return c.merge }

// BufferSize recommends an IO buffer size in bytes for this context. Flush
// and Merge contexts request larger buffers proportional to the expected
// volume of data, reads default to a conservative fixed size.
func (c Context) BufferSize() int {
	switch c.kind {
	case Flush:
		size := 1 << 14 * (int(c.flush.NumDocs)/1000 + 1)
		if size > 1<<20 {
			return 1 << 20
		}
		return size
	case Merge:
		if c.merge.EstimatedMergeBytes > 1<<24 {
			return 1 << 20
		}
		return 1 << 16
	case ReadOnce:
		return 1 << 12
	default:
		return 1 << 13
	}
}
