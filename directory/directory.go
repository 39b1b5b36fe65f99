// Package directory abstracts byte-addressed on-disk storage: named,
// write-once files with atomic rename, and random-access readers that can
// be cheaply cloned and sliced.
package directory

import (
	"io"

	"github.com/emberfts/ember/iocontext"
)

// IndexOutput is a write-once, sequential output file.
type IndexOutput interface {
	io.Writer
	io.Closer
	Name() string
	// Position returns the number of bytes written so far.
	Position() int64
}

// IndexInput is a random-access input that can be cheaply cloned (sharing
// the underlying file handle) and sliced into sub-ranges.
type IndexInput interface {
	io.ReaderAt
	io.Closer
	Name() string
	Length() int64
	// Slice returns a new IndexInput reading only [offset, offset+length)
	// of this one, with its own read cursor.
	Slice(offset, length int64) (IndexInput, error)
	// Clone returns an independent cursor over the same underlying bytes.
	Clone() IndexInput
}

// Directory is the storage abstraction the writer and segment readers talk
// to; all binary format details live above this layer.
type Directory interface {
	CreateOutput(name string, ctx iocontext.Context) (IndexOutput, error)
	OpenInput(name string, ctx iocontext.Context) (IndexInput, error)
	DeleteFile(name string) error
	// Rename atomically replaces to with the contents of from.
	Rename(from, to string) error
	Sync(names []string) error
	ListAll() ([]string, error)

	// Lock acquires exclusive access for this process, used for write.lock.
	Lock() error
	Unlock() error
}
