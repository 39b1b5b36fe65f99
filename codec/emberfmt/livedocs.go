package emberfmt

import (
	"io"

	"github.com/emberfts/ember/codec"
	"github.com/emberfts/ember/directory"
	bitset "github.com/emberfts/ember/util/bits"
)

const liveDocsCodecName = "EmberLiveDocs"
const liveDocsVersion = int32(1)

// WriteLiveDocs serializes a dense live-docs bitset as a <segment>_<gen>.liv
// file. A nil live set is never written; its absence means every doc in
// the segment is live.
func WriteLiveDocs(w io.Writer, segmentID [16]byte, live *bitset.Fixed) error {
	cw := codec.NewChecksumWriter(w)
	if err := codec.WriteHeader(cw, liveDocsCodecName, liveDocsVersion, segmentID, ""); err != nil {
		return err
	}
	if _, err := live.WriteTo(cw); err != nil {
		return err
	}
	return codec.WriteFooter(cw)
}

func ReadLiveDocs(in directory.IndexInput) (*bitset.Fixed, error) {
	body := io.NewSectionReader(in, 0, in.Length())
	cr := codec.NewChecksumReader(body)
	if _, err := codec.ReadHeader(cr); err != nil {
		return nil, err
	}
	live, err := bitset.ReadFixedFrom(cr)
	if err != nil {
		return nil, err
	}
	tail := io.NewSectionReader(in, in.Length()-8, 8)
	if err := codec.ReadAndVerifyFooter(cr, tail, in.Name()); err != nil {
		return nil, err
	}
	return live, nil
}
