package directory

import (
	"sort"
	"sync"

	ftserr "github.com/emberfts/ember/errors"
	"github.com/emberfts/ember/iocontext"
)

// MemDirectory is an in-memory Directory used by tests and by the writer's
// not-yet-flushed NRT segment materialization.
type MemDirectory struct {
	mu     sync.RWMutex
	files  map[string][]byte
	locked bool
}

func NewMemDirectory() *MemDirectory {
	return &MemDirectory{files: make(map[string][]byte)}
}

func (d *MemDirectory) CreateOutput(name string, _ iocontext.Context) (IndexOutput, error) {
	return &memOutput{dir: d, name: name}, nil
}

func (d *MemDirectory) OpenInput(name string, _ iocontext.Context) (IndexInput, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, ok := d.files[name]
	if !ok {
		return nil, ftserr.New(ftserr.IOError, "no such file "+name)
	}
	return newMemInput(name, data), nil
}

func (d *MemDirectory) DeleteFile(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, name)
	return nil
}

func (d *MemDirectory) Rename(from, to string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[from]
	if !ok {
		return ftserr.New(ftserr.IOError, "no such file "+from)
	}
	d.files[to] = data
	delete(d.files, from)
	return nil
}

func (d *MemDirectory) Sync([]string) error { return nil }

func (d *MemDirectory) ListAll() ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.files))
	for n := range d.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (d *MemDirectory) Lock() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.locked {
		return ftserr.New(ftserr.IllegalState, "lock held")
	}
	d.locked = true
	return nil
}

func (d *MemDirectory) Unlock() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locked = false
	return nil
}

type memOutput struct {
	dir  *MemDirectory
	name string
	buf  []byte
}

func (o *memOutput) Write(p []byte) (int, error) {
	o.buf = append(o.buf, p...)
	return len(p), nil
}

func (o *memOutput) Name() string    { return o.name }
func (o *memOutput) Position() int64 { return int64(len(o.buf)) }

func (o *memOutput) Close() error {
	o.dir.mu.Lock()
	defer o.dir.mu.Unlock()
	o.dir.files[o.name] = o.buf
	return nil
}

type memInput struct {
	name string
	data []byte
	base int64
	len  int64
}

func newMemInput(name string, data []byte) *memInput {
	return &memInput{name: name, data: data, len: int64(len(data))}
}

func (i *memInput) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > i.len {
		return 0, ftserr.New(ftserr.UnexpectedEOF, "read past end of "+i.name)
	}
	n := copy(p, i.data[i.base+off:])
	if n < len(p) {
		return n, ftserr.New(ftserr.UnexpectedEOF, "short read on "+i.name)
	}
	return n, nil
}

func (i *memInput) Close() error  { return nil }
func (i *memInput) Name() string  { return i.name }
func (i *memInput) Length() int64 { return i.len }

func (i *memInput) Slice(offset, length int64) (IndexInput, error) {
	if offset < 0 || length < 0 || offset+length > i.len {
		return nil, ftserr.New(ftserr.IllegalArgument, "slice out of range")
	}
	return &memInput{name: i.name, data: i.data, base: i.base + offset, len: length}, nil
}

func (i *memInput) Clone() IndexInput {
	return &memInput{name: i.name, data: i.data, base: i.base, len: i.len}
}
