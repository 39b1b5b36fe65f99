package emberfmt

import (
	"encoding/binary"
	"io"

	"github.com/emberfts/ember/codec"
	"github.com/emberfts/ember/directory"
	"github.com/emberfts/ember/fieldinfo"
)

const fieldInfosCodecName = "EmberFieldInfos"
const fieldInfosVersion = int32(1)
const fieldInfosExt = ".fnm"

// WriteFieldInfos serializes fi as a <segment>.fnm file.
func WriteFieldInfos(w io.Writer, segmentID [16]byte, fi *fieldinfo.FieldInfos) error {
	cw := codec.NewChecksumWriter(w)
	if err := codec.WriteHeader(cw, fieldInfosCodecName, fieldInfosVersion, segmentID, ""); err != nil {
		return err
	}
	list := fi.List()
	if err := binary.Write(cw, binary.BigEndian, int32(len(list))); err != nil {
		return err
	}
	for _, f := range list {
		if err := writeFieldInfo(cw, f); err != nil {
			return err
		}
	}
	return codec.WriteFooter(cw)
}

func writeFieldInfo(w io.Writer, f *fieldinfo.FieldInfo) error {
	if err := codec.WriteVString(w, f.Name); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(f.Number)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(f.IndexOptions)); err != nil {
		return err
	}
	hasNorms := byte(0)
	if f.HasNorms {
		hasNorms = 1
	}
	if _, err := w.Write([]byte{hasNorms}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(f.DocValues)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(f.PointDim)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(f.PointCount)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(f.Attributes))); err != nil {
		return err
	}
	for k, v := range f.Attributes {
		if err := codec.WriteVString(w, k); err != nil {
			return err
		}
		if err := codec.WriteVString(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadFieldInfos parses a <segment>.fnm file produced by WriteFieldInfos.
func ReadFieldInfos(in directory.IndexInput) (*fieldinfo.FieldInfos, error) {
	body := io.NewSectionReader(in, 0, in.Length())
	cr := codec.NewChecksumReader(body)
	if _, err := codec.ReadHeader(cr); err != nil {
		return nil, err
	}
	var count int32
	if err := binary.Read(cr, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	fi := fieldinfo.New()
	for i := int32(0); i < count; i++ {
		if err := readFieldInfo(cr, fi); err != nil {
			return nil, err
		}
	}
	tail := io.NewSectionReader(in, in.Length()-8, 8)
	if err := codec.ReadAndVerifyFooter(cr, tail, in.Name()); err != nil {
		return nil, err
	}
	return fi, nil
}

func readFieldInfo(r io.Reader, fi *fieldinfo.FieldInfos) error {
	name, err := codec.ReadVString(r)
	if err != nil {
		return err
	}
	f := fi.GetOrAdd(name)
	var number, options, docValues, pointDim, pointCount, attrCount int32
	if err := binary.Read(r, binary.BigEndian, &number); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &options); err != nil {
		return err
	}
	var hasNorms [1]byte
	if _, err := io.ReadFull(r, hasNorms[:]); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &docValues); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &pointDim); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &pointCount); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &attrCount); err != nil {
		return err
	}
	f.Number = int(number)
	f.IndexOptions = fieldinfo.IndexOptions(options)
	f.HasNorms = hasNorms[0] != 0
	f.DocValues = fieldinfo.DocValueKind(docValues)
	f.PointDim = int(pointDim)
	f.PointCount = int(pointCount)
	for i := int32(0); i < attrCount; i++ {
		k, err := codec.ReadVString(r)
		if err != nil {
			return err
		}
		v, err := codec.ReadVString(r)
		if err != nil {
			return err
		}
		f.Attributes[k] = v
	}
	return nil
}
