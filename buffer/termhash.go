// Package buffer is the per-writer in-memory document buffer: term
// hashing, a postings accumulator per field, a stored-fields sink, and
// doc-values/norms writers. Flushing drains it into one immutable segment.
package buffer

import (
	"bytes"

	"github.com/twmb/murmur3"
)

type termHashEntry struct {
	term      []byte
	hash      uint64
	positions []int
}

// TermHash interns the unique terms occurring in one document field,
// aggregating their positions, before they are handed to the segment's
// shared postings accumulator. Mirrors the per-field BytesRefHash a
// Lucene-style indexer resets for every document.
type TermHash struct {
	entries []termHashEntry
	table   []int
}

func NewTermHash() *TermHash {
	return &TermHash{table: newHashTable(16)}
}

func newHashTable(size int) []int {
	t := make([]int, size)
	for i := range t {
		t[i] = -1
	}
	return t
}

// Add records one occurrence of term at position, merging into an
// existing entry for the same term if one already exists in this buffer.
func (h *TermHash) Add(term []byte, position int) {
	if len(h.entries)*2 >= len(h.table) {
		h.grow()
	}
	hash := murmur3.Sum64(term)
	mask := uint64(len(h.table) - 1)
	idx := hash & mask
	for {
		slot := h.table[idx]
		if slot == -1 {
			id := len(h.entries)
			h.entries = append(h.entries, termHashEntry{
				term:      append([]byte(nil), term...),
				hash:      hash,
				positions: []int{position},
			})
			h.table[idx] = id
			return
		}
		if h.entries[slot].hash == hash && bytes.Equal(h.entries[slot].term, term) {
			h.entries[slot].positions = append(h.entries[slot].positions, position)
			return
		}
		idx = (idx + 1) & mask
	}
}

func (h *TermHash) grow() {
	newSize := len(h.table) * 2
	if newSize == 0 {
		newSize = 16
	}
	nt := newHashTable(newSize)
	mask := uint64(newSize - 1)
	for id, e := range h.entries {
		idx := e.hash & mask
		for nt[idx] != -1 {
			idx = (idx + 1) & mask
		}
		nt[idx] = id
	}
	h.table = nt
}

func (h *TermHash) Len() int { return len(h.entries) }

func (h *TermHash) Term(id int) []byte { return h.entries[id].term }

func (h *TermHash) Positions(id int) []int { return h.entries[id].positions }

// Reset discards every entry so the hash can be reused for the next
// document without reallocating its table.
func (h *TermHash) Reset() {
	h.entries = h.entries[:0]
	for i := range h.table {
		h.table[i] = -1
	}
}
