package segment

// Info is the durable metadata for one segment: its codec, doc count,
// deletion state, and file list. Once written into a committed
// SegmentInfos, a segment's files never change; merges and deletes
// produce new segments and new generations, never edit this one in
// place.
type Info struct {
	Name         string
	Codec        string
	MaxDoc       int
	HasDeletions bool
	DelGen       int64
	Files        []string
	ID           [16]byte
}

// Infos is the commit point: an ordered list of segments plus the
// generation number persisted atomically as segments_<gen>.
type Infos struct {
	Generation int64
	Segments   []*Info
}

func NewInfos() *Infos {
	return &Infos{Generation: 0}
}

func (in *Infos) TotalMaxDoc() int {
	total := 0
	for _, s := range in.Segments {
		total += s.MaxDoc
	}
	return total
}

// Clone returns a deep-enough copy for a writer to mutate while readers
// keep using the original.
func (in *Infos) Clone() *Infos {
	out := &Infos{Generation: in.Generation, Segments: make([]*Info, len(in.Segments))}
	for i, s := range in.Segments {
		cp := *s
		cp.Files = append([]string(nil), s.Files...)
		out.Segments[i] = &cp
	}
	return out
}
