package merge

import "github.com/emberfts/ember/segment"

// TieredMergePolicy groups segments of similar size ("tiers") and flags
// a tier for merging once it accumulates at least MergeFactor segments,
// bounding the number of segments a search has to fan out across
// without forcing every commit to touch the whole index.
type TieredMergePolicy struct {
	MergeFactor int
}

func NewTieredMergePolicy() *TieredMergePolicy {
	return &TieredMergePolicy{MergeFactor: 10}
}

// Select returns groups of segments eligible to merge together. Each
// returned group has at least MergeFactor segments drawn from the same
// size tier.
func (p *TieredMergePolicy) Select(infos *segment.Infos) [][]*segment.Info {
	tiers := map[int][]*segment.Info{}
	for _, s := range infos.Segments {
		t := tierOf(s.MaxDoc)
		tiers[t] = append(tiers[t], s)
	}
	var candidates [][]*segment.Info
	for _, segs := range tiers {
		if len(segs) >= p.MergeFactor {
			candidates = append(candidates, segs)
		}
	}
	return candidates
}

// tierOf buckets a segment by doc count on a log2 scale above a 1000-doc
// floor, so small just-flushed segments merge quickly while large ones
// accumulate far more peers before being picked up again.
func tierOf(maxDoc int) int {
	tier := 0
	for n := maxDoc; n > 1000; n /= 2 {
		tier++
	}
	return tier
}
