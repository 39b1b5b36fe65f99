package emberfmt

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/emberfts/ember/codec"
	"github.com/emberfts/ember/directory"
	bitset "github.com/emberfts/ember/util/bits"
	"github.com/emberfts/ember/util/packedints"
)

const docValuesCodecName = "EmberDocValues"
const docValuesVersion = int32(1)

// docValuesKindOnDisk is this format's own one-byte doc-values tag. It is
// numbered independently of fieldinfo.DocValueKind, which starts at
// DocValuesNone rather than at numeric.
type docValuesKindOnDisk byte

const (
	dvNumeric docValuesKindOnDisk = iota
	dvBinary
	dvSorted
	dvSortedNumeric
	dvSortedSet
)

// NumericDocValuesWriter records one int64 per document, with a presence
// bitset distinguishing "absent" from "zero".
type NumericDocValuesWriter struct {
	present *bitset.Fixed
	values  []uint64
	maxDoc  int
}

func NewNumericDocValuesWriter(maxDoc int) *NumericDocValuesWriter {
	return &NumericDocValuesWriter{present: bitset.NewFixed(uint(maxDoc)), maxDoc: maxDoc}
}

func (w *NumericDocValuesWriter) Add(docID int, value int64) {
	w.present.Set(uint(docID))
	for len(w.values) <= docID {
		w.values = append(w.values, 0)
	}
	w.values[docID] = zigzagEncode(value)
}

func (w *NumericDocValuesWriter) Flush(out io.Writer, segmentID [16]byte) error {
	cw := codec.NewChecksumWriter(out)
	if err := codec.WriteHeader(cw, docValuesCodecName, docValuesVersion, segmentID, "num"); err != nil {
		return err
	}
	if _, err := cw.Write([]byte{byte(dvNumeric)}); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.BigEndian, int32(w.maxDoc)); err != nil {
		return err
	}
	if _, err := w.present.WriteTo(cw); err != nil {
		return err
	}
	builder := packedints.NewDeltaBuilder()
	for i := 0; i < w.maxDoc; i++ {
		var v uint64
		if i < len(w.values) {
			v = w.values[i]
		}
		builder.Add(v)
	}
	if _, err := builder.Build().WriteTo(cw); err != nil {
		return err
	}
	return codec.WriteFooter(cw)
}

// NumericDocValuesReader exposes random access by doc id.
type NumericDocValuesReader struct {
	present *bitset.Fixed
	values  *packedints.DeltaReader
}

func (r *NumericDocValuesReader) Get(docID int) (int64, bool) {
	if !r.present.Get(uint(docID)) {
		return 0, false
	}
	return zigzagDecode(r.values.Get(docID)), true
}

func ReadNumericDocValues(in directory.IndexInput) (*NumericDocValuesReader, error) {
	body := io.NewSectionReader(in, 0, in.Length())
	cr := codec.NewChecksumReader(body)
	if _, err := codec.ReadHeader(cr); err != nil {
		return nil, err
	}
	var kind [1]byte
	if _, err := io.ReadFull(cr, kind[:]); err != nil {
		return nil, err
	}
	var maxDoc int32
	if err := binary.Read(cr, binary.BigEndian, &maxDoc); err != nil {
		return nil, err
	}
	present, err := bitset.ReadFixedFrom(cr)
	if err != nil {
		return nil, err
	}
	values, err := packedints.ReadDeltaFrom(cr, int(maxDoc))
	if err != nil {
		return nil, err
	}
	tail := io.NewSectionReader(in, in.Length()-8, 8)
	if err := codec.ReadAndVerifyFooter(cr, tail, in.Name()); err != nil {
		return nil, err
	}
	return &NumericDocValuesReader{present: present, values: values}, nil
}

// SortedDocValuesWriter stores one ordinal per document into a sorted,
// deduplicated dictionary of byte values -- the doc-values shape used for
// single-valued keyword/facet fields.
type SortedDocValuesWriter struct {
	maxDoc int
	ords   []int32
	dict   map[string]int32
	values [][]byte
}

func NewSortedDocValuesWriter(maxDoc int) *SortedDocValuesWriter {
	ords := make([]int32, maxDoc)
	for i := range ords {
		ords[i] = -1
	}
	return &SortedDocValuesWriter{maxDoc: maxDoc, ords: ords, dict: map[string]int32{}}
}

func (w *SortedDocValuesWriter) Add(docID int, value []byte) {
	key := string(value)
	ord, ok := w.dict[key]
	if !ok {
		ord = int32(len(w.values))
		w.dict[key] = ord
		w.values = append(w.values, append([]byte(nil), value...))
	}
	w.ords[docID] = ord
}

func (w *SortedDocValuesWriter) Flush(out io.Writer, segmentID [16]byte) error {
	order := sortedDictOrder(w.values)
	remap := make([]int32, len(w.values))
	for newOrd, oldOrd := range order {
		remap[oldOrd] = int32(newOrd)
	}

	cw := codec.NewChecksumWriter(out)
	if err := codec.WriteHeader(cw, docValuesCodecName, docValuesVersion, segmentID, "srt"); err != nil {
		return err
	}
	if _, err := cw.Write([]byte{byte(dvSorted)}); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.BigEndian, int32(w.maxDoc)); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.BigEndian, int32(len(order))); err != nil {
		return err
	}
	for _, oldOrd := range order {
		v := w.values[oldOrd]
		if err := binary.Write(cw, binary.BigEndian, int32(len(v))); err != nil {
			return err
		}
		if _, err := cw.Write(v); err != nil {
			return err
		}
	}
	for _, ord := range w.ords {
		newOrd := int32(-1)
		if ord >= 0 {
			newOrd = remap[ord]
		}
		if err := binary.Write(cw, binary.BigEndian, newOrd); err != nil {
			return err
		}
	}
	return codec.WriteFooter(cw)
}

func sortedDictOrder(values [][]byte) []int32 {
	order := make([]int32, len(values))
	for i := range order {
		order[i] = int32(i)
	}
	sort.Slice(order, func(a, b int) bool {
		return bytes.Compare(values[order[a]], values[order[b]]) < 0
	})
	return order
}

// SortedDocValuesReader exposes the ordinal-to-bytes dictionary and the
// per-doc ordinal array.
type SortedDocValuesReader struct {
	dict [][]byte
	ords []int32
}

func (r *SortedDocValuesReader) Get(docID int) ([]byte, bool) {
	ord := r.ords[docID]
	if ord < 0 {
		return nil, false
	}
	return r.dict[ord], true
}

func (r *SortedDocValuesReader) LookupOrd(ord int32) []byte { return r.dict[ord] }

func ReadSortedDocValues(in directory.IndexInput) (*SortedDocValuesReader, error) {
	body := io.NewSectionReader(in, 0, in.Length())
	cr := codec.NewChecksumReader(body)
	if _, err := codec.ReadHeader(cr); err != nil {
		return nil, err
	}
	var kind [1]byte
	if _, err := io.ReadFull(cr, kind[:]); err != nil {
		return nil, err
	}
	var maxDoc, dictSize int32
	if err := binary.Read(cr, binary.BigEndian, &maxDoc); err != nil {
		return nil, err
	}
	if err := binary.Read(cr, binary.BigEndian, &dictSize); err != nil {
		return nil, err
	}
	dict := make([][]byte, dictSize)
	for i := range dict {
		var l int32
		if err := binary.Read(cr, binary.BigEndian, &l); err != nil {
			return nil, err
		}
		v := make([]byte, l)
		if _, err := io.ReadFull(cr, v); err != nil {
			return nil, err
		}
		dict[i] = v
	}
	ords := make([]int32, maxDoc)
	for i := range ords {
		if err := binary.Read(cr, binary.BigEndian, &ords[i]); err != nil {
			return nil, err
		}
	}
	tail := io.NewSectionReader(in, in.Length()-8, 8)
	if err := codec.ReadAndVerifyFooter(cr, tail, in.Name()); err != nil {
		return nil, err
	}
	return &SortedDocValuesReader{dict: dict, ords: ords}, nil
}

func zigzagEncode(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }
func zigzagDecode(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }
