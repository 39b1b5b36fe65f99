package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderFooterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChecksumWriter(&buf)

	id := [16]byte{1, 2, 3}
	require.NoError(t, WriteHeader(cw, "Ember50", 1, id, "si"))
	_, err := cw.Write([]byte("payload bytes"))
	require.NoError(t, err)
	require.NoError(t, WriteFooter(cw))

	cr := NewChecksumReader(&buf)
	hdr, err := ReadHeader(cr)
	require.NoError(t, err)
	assert.Equal(t, "Ember50", hdr.CodecName)
	assert.Equal(t, int32(1), hdr.Version)
	assert.Equal(t, id, hdr.SegmentID)
	assert.Equal(t, "si", hdr.Suffix)

	body := make([]byte, len("payload bytes"))
	_, err = cr.Read(body)
	require.NoError(t, err)
	assert.Equal(t, "payload bytes", string(body))

	require.NoError(t, ReadAndVerifyFooter(cr, &buf, "test.si"))
}

func TestFooterDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChecksumWriter(&buf)
	id := [16]byte{}
	require.NoError(t, WriteHeader(cw, "Ember50", 1, id, ""))
	_, _ = cw.Write([]byte("x"))
	require.NoError(t, WriteFooter(cw))

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	cr := NewChecksumReader(bytes.NewReader(corrupted))
	_, err := ReadHeader(cr)
	require.NoError(t, err)
	var discard [1]byte
	_, _ = cr.Read(discard[:])

	err = ReadAndVerifyFooter(cr, bytes.NewReader(corrupted[len(corrupted)-8:]), "test.si")
	assert.Error(t, err)
}
