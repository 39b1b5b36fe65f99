package segment

import (
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/emberfts/ember/codec"
	"github.com/emberfts/ember/directory"
	ftserr "github.com/emberfts/ember/errors"
	"github.com/emberfts/ember/iocontext"
)

const commitCodecName = "EmberSegmentInfos"
const commitVersion = int32(1)
const commitPrefix = "segments_"

// WriteCommit serializes infos as segments_<gen>, fsyncs it, and returns
// the file name written.
func WriteCommit(dir directory.Directory, infos *Infos) (string, error) {
	name := commitPrefix + strconv.FormatInt(infos.Generation, 36)
	out, err := dir.CreateOutput(name, iocontext.NewFlush(uint32(len(infos.Segments))))
	if err != nil {
		return "", err
	}

	cw := codec.NewChecksumWriter(out)
	var id [16]byte
	if err := codec.WriteHeader(cw, commitCodecName, commitVersion, id, ""); err != nil {
		out.Close()
		return "", err
	}
	if err := binary.Write(cw, binary.BigEndian, infos.Generation); err != nil {
		out.Close()
		return "", err
	}
	if err := binary.Write(cw, binary.BigEndian, int32(len(infos.Segments))); err != nil {
		out.Close()
		return "", err
	}
	for _, s := range infos.Segments {
		if err := writeSegmentPointer(cw, s); err != nil {
			out.Close()
			return "", err
		}
	}
	if err := codec.WriteFooter(cw); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := dir.Sync([]string{name}); err != nil {
		return "", err
	}
	return name, nil
}

func writeSegmentPointer(w io.Writer, s *Info) error {
	if err := codec.WriteVString(w, s.Name); err != nil {
		return err
	}
	if err := codec.WriteVString(w, s.Codec); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(s.MaxDoc)); err != nil {
		return err
	}
	hasDel := byte(0)
	if s.HasDeletions {
		hasDel = 1
	}
	if _, err := w.Write([]byte{hasDel}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, s.DelGen); err != nil {
		return err
	}
	if _, err := w.Write(s.ID[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(s.Files))); err != nil {
		return err
	}
	for _, f := range s.Files {
		if err := codec.WriteVString(w, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadCommit opens the highest segments_<gen> present in dir.
func ReadCommit(dir directory.Directory) (*Infos, error) {
	names, err := dir.ListAll()
	if err != nil {
		return nil, err
	}
	_, name, found := highestGeneration(names)
	if !found {
		return nil, ftserr.New(ftserr.IllegalState, "no commit point found")
	}

	in, err := dir.OpenInput(name, iocontext.ReadContext)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	body := io.NewSectionReader(in, 0, in.Length())
	cr := codec.NewChecksumReader(body)
	if _, err := codec.ReadHeader(cr); err != nil {
		return nil, err
	}

	var readGen int64
	if err := binary.Read(cr, binary.BigEndian, &readGen); err != nil {
		return nil, err
	}
	var count int32
	if err := binary.Read(cr, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	infos := &Infos{Generation: readGen, Segments: make([]*Info, 0, count)}
	for i := int32(0); i < count; i++ {
		s, err := readSegmentPointer(cr)
		if err != nil {
			return nil, err
		}
		infos.Segments = append(infos.Segments, s)
	}

	footerOffset := in.Length() - 8
	tail := io.NewSectionReader(in, footerOffset, 8)
	if err := codec.ReadAndVerifyFooter(cr, tail, name); err != nil {
		return nil, err
	}
	return infos, nil
}

func readSegmentPointer(r io.Reader) (*Info, error) {
	name, err := codec.ReadVString(r)
	if err != nil {
		return nil, err
	}
	codecName, err := codec.ReadVString(r)
	if err != nil {
		return nil, err
	}
	var maxDoc int32
	if err := binary.Read(r, binary.BigEndian, &maxDoc); err != nil {
		return nil, err
	}
	var hasDelByte [1]byte
	if _, err := io.ReadFull(r, hasDelByte[:]); err != nil {
		return nil, err
	}
	var delGen int64
	if err := binary.Read(r, binary.BigEndian, &delGen); err != nil {
		return nil, err
	}
	var id [16]byte
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return nil, err
	}
	var fileCount int32
	if err := binary.Read(r, binary.BigEndian, &fileCount); err != nil {
		return nil, err
	}
	files := make([]string, 0, fileCount)
	for i := int32(0); i < fileCount; i++ {
		f, err := codec.ReadVString(r)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return &Info{
		Name:         name,
		Codec:        codecName,
		MaxDoc:       int(maxDoc),
		HasDeletions: hasDelByte[0] != 0,
		DelGen:       delGen,
		Files:        files,
		ID:           id,
	}, nil
}

func highestGeneration(names []string) (int64, string, bool) {
	best := int64(-1)
	bestName := ""
	for _, n := range names {
		if !strings.HasPrefix(n, commitPrefix) {
			continue
		}
		suffix := n[len(commitPrefix):]
		g, err := strconv.ParseInt(suffix, 36, 64)
		if err != nil {
			continue
		}
		if g > best {
			best = g
			bestName = n
		}
	}
	if bestName == "" {
		return 0, "", false
	}
	return best, bestName, true
}

// NextGenerationName returns the segments_<gen> file name the writer
// should target after infos, without mutating infos.
func NextGenerationName(infos *Infos) string {
	return commitPrefix + strconv.FormatInt(infos.Generation+1, 36)
}

