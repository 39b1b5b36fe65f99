package emberfmt

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/emberfts/ember/codec"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/util/packedints"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// storedCompression selects the byte-block codec a StoredFieldsWriter
// uses; recorded in the data file's header suffix so readers dispatch
// without guessing.
type storedCompression int

const (
	compressSnappy storedCompression = iota
	compressZstd
)

const storedFieldsDataCodec = "EmberStoredFieldsData"
const storedFieldsIndexCodec = "EmberStoredFieldsIndex"
const storedFieldsVersion = int32(1)

// StoredField is one field value captured for a document, keyed by its
// field-infos number rather than name so the data file never repeats
// field names.
type StoredField struct {
	FieldNumber int
	Value       []byte
}

// StoredFieldsWriter accumulates one document's field values at a time
// and flushes them, compressed per-document, to the data file. Flushes
// from the in-memory buffer use snappy; merges use NewStoredFieldsWriterZstd
// to recompress surviving documents through zstd instead, trading flush
// speed for ratio once a document has survived its first merge.
type StoredFieldsWriter struct {
	offsets     []int64
	buf         bytes.Buffer
	pending     bytes.Buffer
	compression storedCompression
	zstdEnc     *zstd.Encoder
}

func NewStoredFieldsWriter() *StoredFieldsWriter {
	return &StoredFieldsWriter{compression: compressSnappy}
}

// NewStoredFieldsWriterZstd builds a writer that compresses each
// document block with zstd instead of snappy.
func NewStoredFieldsWriterZstd() *StoredFieldsWriter {
	enc, _ := zstd.NewWriter(nil)
	return &StoredFieldsWriter{compression: compressZstd, zstdEnc: enc}
}

func (s *StoredFieldsWriter) StartDoc() { s.pending.Reset() }

func (s *StoredFieldsWriter) AddField(f StoredField) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(f.FieldNumber))
	s.pending.Write(lenBuf[:n])
	n = binary.PutUvarint(lenBuf[:], uint64(len(f.Value)))
	s.pending.Write(lenBuf[:n])
	s.pending.Write(f.Value)
}

// FinishDoc compresses the accumulated fields for the current doc and
// appends the block to the data buffer, recording its starting offset.
func (s *StoredFieldsWriter) FinishDoc() {
	s.offsets = append(s.offsets, int64(s.buf.Len()))
	var compressed []byte
	if s.compression == compressZstd {
		compressed = s.zstdEnc.EncodeAll(s.pending.Bytes(), nil)
	} else {
		compressed = snappy.Encode(nil, s.pending.Bytes())
	}
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(compressed)))
	s.buf.Write(lenBuf[:n])
	s.buf.Write(compressed)
}

func (s *StoredFieldsWriter) suffix() string {
	if s.compression == compressZstd {
		return "zstd"
	}
	return ""
}

// Flush writes the data file (.fdt) and the offset index (.fdx).
func (s *StoredFieldsWriter) Flush(fdt, fdx io.Writer, segmentID [16]byte) error {
	dataW := codec.NewChecksumWriter(fdt)
	if err := codec.WriteHeader(dataW, storedFieldsDataCodec, storedFieldsVersion, segmentID, s.suffix()); err != nil {
		return err
	}
	if _, err := dataW.Write(s.buf.Bytes()); err != nil {
		return err
	}
	if err := codec.WriteFooter(dataW); err != nil {
		return err
	}

	idxW := codec.NewChecksumWriter(fdx)
	if err := codec.WriteHeader(idxW, storedFieldsIndexCodec, storedFieldsVersion, segmentID, ""); err != nil {
		return err
	}
	if err := binary.Write(idxW, binary.BigEndian, int32(len(s.offsets))); err != nil {
		return err
	}
	builder := packedints.NewMonotonicBuilder()
	for _, off := range s.offsets {
		builder.Add(uint64(off))
	}
	if _, err := builder.Build().WriteTo(idxW); err != nil {
		return err
	}
	return codec.WriteFooter(idxW)
}

// StoredFieldsReader opens the .fdt/.fdx pair for random-access document
// retrieval by doc id.
type StoredFieldsReader struct {
	data          directory.IndexInput
	dataHeaderLen int64
	compression   storedCompression
	offsets       *packedints.MonotonicReader
}

func OpenStoredFieldsReader(fdt, fdx directory.IndexInput) (*StoredFieldsReader, error) {
	idxBody := io.NewSectionReader(fdx, 0, fdx.Length())
	cr := codec.NewChecksumReader(idxBody)
	if _, err := codec.ReadHeader(cr); err != nil {
		return nil, err
	}
	var count int32
	if err := binary.Read(cr, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	offsets, err := packedints.ReadMonotonicFrom(cr, int(count))
	if err != nil {
		return nil, err
	}
	tail := io.NewSectionReader(fdx, fdx.Length()-8, 8)
	if err := codec.ReadAndVerifyFooter(cr, tail, fdx.Name()); err != nil {
		return nil, err
	}

	dataHeader, headerLen, err := framedHeader(fdt)
	if err != nil {
		return nil, err
	}
	compression := compressSnappy
	if dataHeader.Suffix == "zstd" {
		compression = compressZstd
	}

	return &StoredFieldsReader{data: fdt, dataHeaderLen: headerLen, compression: compression, offsets: offsets}, nil
}

// framedHeaderLen reads the common file-framing header from the start of
// in and reports how many bytes it occupied, so callers can compute
// absolute offsets for the data that follows it.
func framedHeaderLen(in directory.IndexInput) (int64, error) {
	_, n, err := framedHeader(in)
	return n, err
}

// framedHeader is framedHeaderLen plus the parsed header itself, for
// callers that need the suffix (e.g. to pick a stored-fields decompressor).
func framedHeader(in directory.IndexInput) (*codec.Header, int64, error) {
	cr := &countingReader{r: io.NewSectionReader(in, 0, in.Length())}
	h, err := codec.ReadHeader(cr)
	if err != nil {
		return nil, 0, err
	}
	return h, cr.n, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Document decompresses and parses the stored fields for docID.
func (s *StoredFieldsReader) Document(docID int) ([]StoredField, error) {
	blockStart := s.dataHeaderLen + int64(s.offsets.Get(docID))

	lenBuf := make([]byte, binary.MaxVarintLen64)
	if _, err := s.data.ReadAt(lenBuf, blockStart); err != nil && err != io.EOF {
		return nil, err
	}
	compressedLen, varintLen := binary.Uvarint(lenBuf)
	if varintLen <= 0 {
		return nil, io.ErrUnexpectedEOF
	}

	compressed := make([]byte, compressedLen)
	if _, err := s.data.ReadAt(compressed, blockStart+int64(varintLen)); err != nil {
		return nil, err
	}
	var raw []byte
	var err error
	if s.compression == compressZstd {
		var dec *zstd.Decoder
		dec, err = zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		raw, err = dec.DecodeAll(compressed, nil)
		dec.Close()
	} else {
		raw, err = snappy.Decode(nil, compressed)
	}
	if err != nil {
		return nil, err
	}

	var fields []StoredField
	br := bytes.NewReader(raw)
	for br.Len() > 0 {
		fieldNumber, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, err
		}
		valueLen, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, err
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(br, value); err != nil {
			return nil, err
		}
		fields = append(fields, StoredField{FieldNumber: int(fieldNumber), Value: value})
	}
	return fields, nil
}
