package d3dbsp

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Stream is a seekable byte source. The header and lumps are decoded from
// a file-backed stream; the entity text is re-read from a memory stream.
type Stream interface {
	io.Reader
	io.Seeker
	Tell() int64
	EOF() bool
}

// FileStream reads from a file on disk. Close must be called when done.
type FileStream struct {
	file *os.File
	path string
	size int64
}

// OpenFileStream opens path for reading.
func OpenFileStream(path string) (*FileStream, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	return &FileStream{file: file, path: path, size: info.Size()}, nil
}

func (s *FileStream) Read(p []byte) (int, error) {
	n, err := s.file.Read(p)
	if err != nil && err != io.EOF {
		return n, &IOError{Op: "read", Path: s.path, Err: err}
	}
	return n, err
}

func (s *FileStream) Seek(offset int64, whence int) (int64, error) {
	off, err := s.file.Seek(offset, whence)
	if err != nil {
		return off, &IOError{Op: "seek", Path: s.path, Err: err}
	}
	return off, nil
}

// Tell returns the current read position, or -1 if it cannot be queried.
func (s *FileStream) Tell() int64 {
	off, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	return off
}

func (s *FileStream) EOF() bool {
	off := s.Tell()
	return off < 0 || off >= s.size
}

// Name returns the path the stream was opened with.
func (s *FileStream) Name() string {
	return s.path
}

func (s *FileStream) Close() error {
	return errors.Wrapf(s.file.Close(), "closing %s", s.path)
}

// MemoryStream reads from a byte slice it does not copy.
type MemoryStream struct {
	*bytes.Reader
}

func NewMemoryStream(b []byte) *MemoryStream {
	return &MemoryStream{bytes.NewReader(b)}
}

func (s *MemoryStream) Tell() int64 {
	return s.Size() - int64(s.Len())
}

func (s *MemoryStream) EOF() bool {
	return s.Len() == 0
}
