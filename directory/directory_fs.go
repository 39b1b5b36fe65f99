package directory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sys/unix"

	ftserr "github.com/emberfts/ember/errors"
	"github.com/emberfts/ember/iocontext"
)

// FSDirectory stores index files as regular files under a root path.
// Outputs are written under a temporary name and atomically renamed into
// place on Close for crash safety.
type FSDirectory struct {
	root string

	mu      sync.Mutex
	lockFd  int
	locked  bool
}

// NewFSDirectory opens (creating if necessary) an index directory rooted at
// path.
func NewFSDirectory(path string) (*FSDirectory, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, ftserr.Wrap(ftserr.IOError, "create directory root", err)
	}
	return &FSDirectory{root: path, lockFd: -1}, nil
}

func (d *FSDirectory) path(name string) string {
	return filepath.Join(d.root, name)
}

func (d *FSDirectory) CreateOutput(name string, ctx iocontext.Context) (IndexOutput, error) {
	tmp := name + ".tmp"
	f, err := os.OpenFile(d.path(tmp), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, ftserr.Wrap(ftserr.IOError, "create output "+name, err)
	}
	return &fsOutput{dir: d, file: f, finalName: name, tmpName: tmp}, nil
}

func (d *FSDirectory) OpenInput(name string, ctx iocontext.Context) (IndexInput, error) {
	f, err := os.Open(d.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ftserr.Wrap(ftserr.IOError, "open input "+name, err)
		}
		return nil, ftserr.Wrap(ftserr.IOError, "open input "+name, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ftserr.Wrap(ftserr.IOError, "stat input "+name, err)
	}
	return &fsInput{name: name, file: f, base: 0, length: fi.Size()}, nil
}

func (d *FSDirectory) DeleteFile(name string) error {
	if err := os.Remove(d.path(name)); err != nil && !os.IsNotExist(err) {
		return ftserr.Wrap(ftserr.IOError, "delete "+name, err)
	}
	return nil
}

func (d *FSDirectory) Rename(from, to string) error {
	if err := os.Rename(d.path(from), d.path(to)); err != nil {
		return ftserr.Wrap(ftserr.IOError, fmt.Sprintf("rename %s -> %s", from, to), err)
	}
	return nil
}

func (d *FSDirectory) Sync(names []string) error {
	for _, n := range names {
		f, err := os.Open(d.path(n))
		if err != nil {
			return ftserr.Wrap(ftserr.IOError, "sync open "+n, err)
		}
		err = f.Sync()
		f.Close()
		if err != nil {
			return ftserr.Wrap(ftserr.IOError, "sync "+n, err)
		}
	}
	dirF, err := os.Open(d.root)
	if err != nil {
		return ftserr.Wrap(ftserr.IOError, "sync directory", err)
	}
	defer dirF.Close()
	// Directory fsync failures are not fatal on all platforms; best effort.
	_ = dirF.Sync()
	return nil
}

func (d *FSDirectory) ListAll() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, ftserr.Wrap(ftserr.IOError, "list directory", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name() == "write.lock" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (d *FSDirectory) Lock() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.locked {
		return ftserr.New(ftserr.IllegalState, "lock held")
	}
	fd, err := unix.Open(d.path("write.lock"), unix.O_CREAT|unix.O_RDWR, 0o644)
	if err != nil {
		return ftserr.Wrap(ftserr.IOError, "open write.lock", err)
	}
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		unix.Close(fd)
		return ftserr.New(ftserr.IllegalState, "lock held")
	}
	d.lockFd = fd
	d.locked = true
	return nil
}

func (d *FSDirectory) Unlock() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.locked {
		return nil
	}
	_ = unix.Flock(d.lockFd, unix.LOCK_UN)
	err := unix.Close(d.lockFd)
	d.locked = false
	d.lockFd = -1
	if err != nil {
		return ftserr.Wrap(ftserr.IOError, "close write.lock", err)
	}
	return nil
}

type fsOutput struct {
	dir       *FSDirectory
	file      *os.File
	finalName string
	tmpName   string
	pos       int64
	closed    bool
}

func (o *fsOutput) Write(p []byte) (int, error) {
	n, err := o.file.Write(p)
	o.pos += int64(n)
	return n, err
}

func (o *fsOutput) Name() string    { return o.finalName }
func (o *fsOutput) Position() int64 { return o.pos }

func (o *fsOutput) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	if err := o.file.Sync(); err != nil {
		o.file.Close()
		return ftserr.Wrap(ftserr.IOError, "sync "+o.tmpName, err)
	}
	if err := o.file.Close(); err != nil {
		return ftserr.Wrap(ftserr.IOError, "close "+o.tmpName, err)
	}
	return o.dir.Rename(o.tmpName, o.finalName)
}

type fsInput struct {
	name   string
	file   *os.File
	base   int64
	length int64
}

func (i *fsInput) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > i.length {
		return 0, ftserr.New(ftserr.UnexpectedEOF, "read past end of "+i.name)
	}
	return i.file.ReadAt(p, i.base+off)
}

func (i *fsInput) Close() error { return i.file.Close() }
func (i *fsInput) Name() string { return i.name }
func (i *fsInput) Length() int64 { return i.length }

func (i *fsInput) Slice(offset, length int64) (IndexInput, error) {
	if offset < 0 || length < 0 || offset+length > i.length {
		return nil, ftserr.New(ftserr.IllegalArgument, "slice out of range")
	}
	return &fsInput{name: i.name, file: i.file, base: i.base + offset, length: length}, nil
}

func (i *fsInput) Clone() IndexInput {
	return &fsInput{name: i.name, file: i.file, base: i.base, length: i.length}
}
