package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesOnlySetFields(t *testing.T) {
	doc := `
directory:
  path: /var/lib/ember
merge_policy:
  merge_factor: 25
`
	cfg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ember", cfg.Directory.Path)
	assert.Equal(t, 25, cfg.MergePolicy.MergeFactor)
	assert.Equal(t, 1000, cfg.RAMBufferDocs)
	assert.True(t, cfg.ApplyAllDeletes)
}

func TestLoadEmptyUsesDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultWriterConfig(), cfg)
}
