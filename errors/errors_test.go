package ftserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "CorruptIndex", CorruptIndex.String())
	assert.Equal(t, "Unknown", Kind(999).String())
}

func TestCorruptCarriesDetail(t *testing.T) {
	err := Corrupt("_0.si", 128, 0xDEADBEEF, 0x12345678)
	require.True(t, Is(err, CorruptIndex))
	assert.Contains(t, err.Error(), "_0.si")
	assert.Contains(t, err.Error(), "offset=128")
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IOError, "flush failed", cause)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, Is(err, IOError))
	assert.False(t, Is(err, MergeAborted))
}
