package segment

import (
	"strconv"
	"sync/atomic"

	"github.com/gofrs/uuid"
)

// IDGenerator hands out monotonically increasing, base-36 segment names
// ("_0", "_1", ... "_a0") — a counter per directory, persisted implicitly
// by never reusing a name already present in a SegmentInfos commit.
type IDGenerator struct {
	counter int64
}

// NewIDGeneratorFrom resumes a generator past the highest segment name
// seen in an existing commit point, so reopening a directory never
// collides with prior segment names.
func NewIDGeneratorFrom(highest int64) *IDGenerator {
	return &IDGenerator{counter: highest + 1}
}

func (g *IDGenerator) NextName() string {
	n := atomic.AddInt64(&g.counter, 1) - 1
	return "_" + strconv.FormatInt(n, 36)
}

// NewFileFramingID mints the random 16-byte id stamped into every file
// belonging to one segment, distinct from the segment's human-readable
// name: the name is a small monotonic counter reused across directory
// reopens, while this id lets a reader detect a stale file left behind by
// a crashed writer even if names were ever reused.
func NewFileFramingID() ([16]byte, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return [16]byte{}, err
	}
	var b [16]byte
	copy(b[:], id.Bytes())
	return b, nil
}
