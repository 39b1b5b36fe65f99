// Package log collects shared zap.Field helpers, so every package that
// logs segment names, doc ids, and generations uses the same key
// strings. The writer is currently the only caller.
package log

import (
	"go.uber.org/zap"
)

func Segment(name string) zap.Field { return zap.String("segment", name) }

func Generation(gen int64) zap.Field { return zap.Int64("generation", gen) }

func DocID(id int) zap.Field { return zap.Int("doc_id", id) }

func NumDocs(n int) zap.Field { return zap.Int("num_docs", n) }

func Field(name string) zap.Field { return zap.String("field", name) }

func Term(term []byte) zap.Field { return zap.ByteString("term", term) }
