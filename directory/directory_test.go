package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfts/ember/iocontext"
)

func TestMemDirectoryRoundTrip(t *testing.T) {
	d := NewMemDirectory()

	out, err := d.CreateOutput("_0.si", iocontext.DefaultContext)
	require.NoError(t, err)
	_, err = out.Write([]byte("hello segment"))
	require.NoError(t, err)
	require.NoError(t, out.Close())

	in, err := d.OpenInput("_0.si", iocontext.ReadContext)
	require.NoError(t, err)
	defer in.Close()

	buf := make([]byte, in.Length())
	n, err := in.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello segment", string(buf[:n]))

	slice, err := in.Slice(6, 7)
	require.NoError(t, err)
	sbuf := make([]byte, 7)
	_, err = slice.ReadAt(sbuf, 0)
	require.NoError(t, err)
	assert.Equal(t, "segment", string(sbuf))
}

func TestMemDirectoryLockExclusive(t *testing.T) {
	d := NewMemDirectory()
	require.NoError(t, d.Lock())
	err := d.Lock()
	require.Error(t, err)
	require.NoError(t, d.Unlock())
	require.NoError(t, d.Lock())
}

func TestFSDirectoryWriteOnceRename(t *testing.T) {
	dir, err := NewFSDirectory(t.TempDir())
	require.NoError(t, err)

	out, err := dir.CreateOutput("_1.si", iocontext.NewFlush(10))
	require.NoError(t, err)
	_, err = out.Write([]byte("segment info bytes"))
	require.NoError(t, err)
	require.NoError(t, out.Close())

	names, err := dir.ListAll()
	require.NoError(t, err)
	assert.Contains(t, names, "_1.si")

	in, err := dir.OpenInput("_1.si", iocontext.ReadContext)
	require.NoError(t, err)
	defer in.Close()
	buf := make([]byte, in.Length())
	_, err = in.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "segment info bytes", string(buf))
}

func TestFSDirectoryLockExclusive(t *testing.T) {
	dir, err := NewFSDirectory(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, dir.Lock())
	defer dir.Unlock()

	dir2 := &FSDirectory{root: dir.root, lockFd: -1}
	err = dir2.Lock()
	require.Error(t, err)
}

func TestRateLimiterPauseScalesWithRate(t *testing.T) {
	rl := NewRateLimiter(1000) // 1000 MB/s, should barely pause
	d := rl.Pause(1024)
	assert.Less(t, d.Microseconds(), int64(5000))

	rl.SetMBPerSec(0)
	d = rl.Pause(1 << 20)
	assert.Equal(t, int64(0), d.Nanoseconds())
}
