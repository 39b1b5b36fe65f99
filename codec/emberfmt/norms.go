package emberfmt

import (
	"encoding/binary"
	"io"

	"github.com/emberfts/ember/codec"
	"github.com/emberfts/ember/directory"
)

const normsCodecName = "EmberNorms"
const normsVersion = int32(1)

// NormsWriter accumulates one encoded length-norm byte per document for a
// single field.
type NormsWriter struct {
	values []byte
}

func NewNormsWriter() *NormsWriter { return &NormsWriter{} }

func (w *NormsWriter) Add(b byte) { w.values = append(w.values, b) }

func (w *NormsWriter) Flush(out io.Writer, segmentID [16]byte) error {
	cw := codec.NewChecksumWriter(out)
	if err := codec.WriteHeader(cw, normsCodecName, normsVersion, segmentID, ""); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.BigEndian, int32(len(w.values))); err != nil {
		return err
	}
	if _, err := cw.Write(w.values); err != nil {
		return err
	}
	return codec.WriteFooter(cw)
}

// NormsReader exposes random access to one field's per-doc norm byte.
type NormsReader struct {
	values []byte
}

func ReadNorms(in directory.IndexInput) (*NormsReader, error) {
	body := io.NewSectionReader(in, 0, in.Length())
	cr := codec.NewChecksumReader(body)
	if _, err := codec.ReadHeader(cr); err != nil {
		return nil, err
	}
	var count int32
	if err := binary.Read(cr, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	values := make([]byte, count)
	if _, err := io.ReadFull(cr, values); err != nil {
		return nil, err
	}
	tail := io.NewSectionReader(in, in.Length()-8, 8)
	if err := codec.ReadAndVerifyFooter(cr, tail, in.Name()); err != nil {
		return nil, err
	}
	return &NormsReader{values: values}, nil
}

func (r *NormsReader) Get(docID int) byte { return r.values[docID] }

func (r *NormsReader) Len() int { return len(r.values) }
