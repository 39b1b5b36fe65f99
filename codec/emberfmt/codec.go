// Package emberfmt is the default segment format: a vellum FST terms
// dictionary over varint-delta postings, stored fields compressed with
// snappy at flush and zstd at merge, delta-packed numeric doc-values,
// raw int32-ordinal sorted doc-values, one raw byte per document for
// norms, and a dense bitset live-docs file. Every
// file it writes shares codec.WriteHeader/WriteFooter framing.
package emberfmt

import "github.com/emberfts/ember/codec"

const Name = "Ember50"

type Format struct{}

func (Format) Name() string { return Name }

func init() {
	codec.Register(Format{})
}
