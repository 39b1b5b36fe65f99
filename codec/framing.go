// Package codec owns the on-disk file-framing format shared by every
// segment file: a magic header identifying the format and version, and a
// checksum footer. Concrete format implementations live in subpackages
// such as emberfmt; this package never parses field/postings bytes
// itself.
package codec

import (
	"encoding/binary"
	"hash"
	"hash/crc32"
	"io"

	ftserr "github.com/emberfts/ember/errors"
)

// Magic opens every framed file.
const Magic uint32 = 0x3FD76C17

const footerMagic uint32 = 0x3BEF3BEF
const algoCRC32 uint32 = 0

// ChecksumWriter tees every byte written through a running CRC-32 so the
// footer can record a checksum of the whole file body.
type ChecksumWriter struct {
	w   io.Writer
	crc hash.Hash32
}

func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{w: w, crc: crc32.NewIEEE()}
}

func (c *ChecksumWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		c.crc.Write(p[:n])
	}
	return n, err
}

func (c *ChecksumWriter) Checksum() uint32 { return c.crc.Sum32() }

// ChecksumReader mirrors ChecksumWriter on the read side.
type ChecksumReader struct {
	r   io.Reader
	crc hash.Hash32
}

func NewChecksumReader(r io.Reader) *ChecksumReader {
	return &ChecksumReader{r: r, crc: crc32.NewIEEE()}
}

func (c *ChecksumReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.crc.Write(p[:n])
	}
	return n, err
}

func (c *ChecksumReader) Checksum() uint32 { return c.crc.Sum32() }

// WriteVString and ReadVString are exported so other packages (segment
// commit points, field-infos) can frame their own length-prefixed
// strings consistently with header/suffix encoding.
func WriteVString(w io.Writer, s string) error { return writeVString(w, s) }

func ReadVString(r io.Reader) (string, error) { return readVString(byteReader{r}) }

func writeVString(w io.Writer, s string) error {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readVString(r io.ByteReader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		buf[i] = b
	}
	return string(buf), nil
}

// byteReader adapts an io.Reader (which may not support ReadByte) for
// readVString's use.
type byteReader struct {
	io.Reader
}

func (b byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(b.Reader, buf[:])
	return buf[0], err
}

// WriteHeader writes the common file-framing prefix: magic, codec name,
// format version, a 16-byte segment id, and a format suffix.
func WriteHeader(w io.Writer, codecName string, version int32, segmentID [16]byte, suffix string) error {
	if err := binary.Write(w, binary.BigEndian, Magic); err != nil {
		return err
	}
	if err := writeVString(w, codecName); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, version); err != nil {
		return err
	}
	if _, err := w.Write(segmentID[:]); err != nil {
		return err
	}
	return writeVString(w, suffix)
}

// Header is the parsed result of ReadHeader.
type Header struct {
	CodecName string
	Version   int32
	SegmentID [16]byte
	Suffix    string
}

func ReadHeader(r io.Reader) (*Header, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ftserr.Corrupt("", 0, Magic, magic)
	}
	br := byteReader{r}
	name, err := readVString(br)
	if err != nil {
		return nil, err
	}
	var version int32
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, err
	}
	var id [16]byte
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return nil, err
	}
	suffix, err := readVString(br)
	if err != nil {
		return nil, err
	}
	return &Header{CodecName: name, Version: version, SegmentID: id, Suffix: suffix}, nil
}

// WriteFooter writes the checksum footer. The checksum covers every byte
// written to cw before this call plus the footer's own magic and algo id.
func WriteFooter(cw *ChecksumWriter) error {
	if err := binary.Write(cw, binary.BigEndian, footerMagic); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.BigEndian, algoCRC32); err != nil {
		return err
	}
	sum := int64(cw.Checksum())
	return binary.Write(cw.w, binary.BigEndian, sum)
}

// ReadAndVerifyFooter reads the footer following cr and checks the
// checksum against what cr has accumulated so far.
func ReadAndVerifyFooter(cr *ChecksumReader, rawTail io.Reader, file string) error {
	var magic, algo uint32
	if err := binary.Read(cr, binary.BigEndian, &magic); err != nil {
		return err
	}
	if magic != footerMagic {
		return ftserr.Corrupt(file, 0, footerMagic, magic)
	}
	if err := binary.Read(cr, binary.BigEndian, &algo); err != nil {
		return err
	}
	expected := cr.Checksum()
	var actual int64
	if err := binary.Read(rawTail, binary.BigEndian, &actual); err != nil {
		return err
	}
	if uint32(actual) != expected {
		return ftserr.Corrupt(file, 0, expected, uint32(actual))
	}
	return nil
}
