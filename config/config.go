// Package config loads the writer's tunables from YAML, with in-code
// defaults for anything the document omits.
package config

import (
	"io"

	"gopkg.in/yaml.v3"
)

// MergePolicyConfig tunes the tiered merge policy.
type MergePolicyConfig struct {
	MergeFactor int `yaml:"merge_factor"`
}

// DirectoryConfig selects and tunes the storage backend.
type DirectoryConfig struct {
	Path string `yaml:"path"`
}

// WriterConfig is the top-level configuration document for one index.
type WriterConfig struct {
	Directory       DirectoryConfig   `yaml:"directory"`
	MergePolicy     MergePolicyConfig `yaml:"merge_policy"`
	RAMBufferDocs   int               `yaml:"ram_buffer_docs"`
	ApplyAllDeletes bool              `yaml:"apply_all_deletes"`
}

// DefaultWriterConfig returns the configuration ember uses when a caller
// supplies none of its own.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		MergePolicy:     MergePolicyConfig{MergeFactor: 10},
		RAMBufferDocs:   1000,
		ApplyAllDeletes: true,
	}
}

// Load decodes a WriterConfig from r, starting from DefaultWriterConfig
// and overriding only the fields the document sets.
func Load(r io.Reader) (WriterConfig, error) {
	cfg := DefaultWriterConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, err
	}
	return cfg, nil
}
