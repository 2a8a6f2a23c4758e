package conveyor

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Whence mirrors the POSIX lseek whence argument.
type Whence int

const (
	SeekSet Whence = iota
	SeekCur
	SeekEnd
)

// Backend is the capability set the engine is bound to: three
// offset-addressed operations assumed thread-safe with respect to other
// offsets. Implementations model a file, a remote object store, or a test
// double; the engine never assumes anything about Handle beyond passing
// it through verbatim.
type Backend interface {
	// Pwrite writes len(buf) bytes at offset, returning the number of
	// bytes written. Short writes are retried by the caller for the
	// remainder; a negative-count convention is not used in Go, errors
	// are reported via the error return instead.
	Pwrite(handle any, buf []byte, offset int64) (int, error)

	// Pread reads up to len(buf) bytes starting at offset. A return of
	// (0, nil) means EOF at offset.
	Pread(handle any, buf []byte, offset int64) (int, error)

	// Lseek computes a new absolute offset for handle. whence is one of
	// SeekSet, SeekCur, SeekEnd.
	Lseek(handle any, offset int64, whence Whence) (int64, error)
}

// FileBackend implements Backend directly on top of POSIX pwrite/pread/
// lseek syscalls via golang.org/x/sys/unix, rather than os.File's
// internal-seek-then-readwrite emulation. Handle must be an *os.File.
type FileBackend struct{}

var _ Backend = FileBackend{}

func (FileBackend) Pwrite(handle any, buf []byte, offset int64) (int, error) {
	f, ok := handle.(*os.File)
	if !ok {
		return 0, os.ErrInvalid
	}
	n, err := unix.Pwrite(int(f.Fd()), buf, offset)
	return n, err
}

func (FileBackend) Pread(handle any, buf []byte, offset int64) (int, error) {
	f, ok := handle.(*os.File)
	if !ok {
		return 0, os.ErrInvalid
	}
	n, err := unix.Pread(int(f.Fd()), buf, offset)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, nil
	}
	return n, nil
}

func (FileBackend) Lseek(handle any, offset int64, whence Whence) (int64, error) {
	f, ok := handle.(*os.File)
	if !ok {
		return 0, os.ErrInvalid
	}
	var sysWhence int
	switch whence {
	case SeekSet:
		sysWhence = io.SeekStart
	case SeekCur:
		sysWhence = io.SeekCurrent
	case SeekEnd:
		sysWhence = io.SeekEnd
	}
	return unix.Seek(int(f.Fd()), offset, sysWhence)
}
