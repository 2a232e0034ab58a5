package fitio

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Source produces the io.Reader a Reader decodes from, plus its known
// total size (0 if unknown) and a Close hook for anything that needs
// releasing (an mmap'd region, an opened file).
type Source interface {
	Open() (r io.Reader, size int64, closer func() error, err error)
}

type pathSource struct {
	path string
}

// PathSource opens a FIT file by filesystem path. On regular files it
// attempts a read-only mmap for zero-copy access, falling back to a plain
// buffered file read when mmap is unavailable (pipes, special files, or a
// platform where Mmap fails).
func PathSource(path string) Source {
	return pathSource{path: path}
}

func (s pathSource) Open() (io.Reader, int64, func() error, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, 0, nil, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, nil, err
	}
	size := st.Size()

	if size > 0 && st.Mode().IsRegular() {
		data, mmapErr := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
		if mmapErr == nil {
			f.Close()
			closer := func() error { return unix.Munmap(data) }
			return bytes.NewReader(data), size, closer, nil
		}
	}

	return f, size, f.Close, nil
}

type streamSource struct {
	r io.Reader
}

// StreamSource wraps an already-open byte stream. The caller retains
// ownership; Close is a no-op.
func StreamSource(r io.Reader) Source {
	return streamSource{r: r}
}

func (s streamSource) Open() (io.Reader, int64, func() error, error) {
	return s.r, 0, func() error { return nil }, nil
}

type bytesSource struct {
	b []byte
}

// BytesSource wraps an in-memory buffer.
func BytesSource(b []byte) Source {
	return bytesSource{b: b}
}

func (s bytesSource) Open() (io.Reader, int64, func() error, error) {
	return bytes.NewReader(s.b), int64(len(s.b)), func() error { return nil }, nil
}
