// Package rotation writes log files that rotate by size.
package rotation

import (
	"bytes"
	"io"
	"os"
	"strconv"
)

// File is a log file that keeps a bounded number of older
// generations beside it, named base.1 (newest) to base.n.
//
// Only whole lines reach the disk. When the next batch of lines
// would push the base file past its size limit, each generation
// moves down one slot, base becomes base.1, and a fresh base is
// opened. Rotation errors are ignored; only failures to open or
// write the base file are returned.
type File struct {
	base    string
	limit   int64
	keep    int
	pending []byte // bytes after the last newline
	f       *os.File
	written int64
}

// Create returns a File appending to name and rotating
// after size bytes, keeping n >= 1 old generations.
// The file is opened on the first complete line.
func Create(name string, size, n int) *File {
	if n < 1 {
		n = 1
	}
	return &File{base: name, limit: int64(size), keep: n}
}

var droppedNotice = []byte("\nlog write error; some data dropped\n")

// Write buffers p and writes every complete line it holds.
// It always reports len(p) bytes consumed.
func (f *File) Write(p []byte) (int, error) {
	f.pending = append(f.pending, p...)
	i := bytes.LastIndexByte(f.pending, '\n')
	if i < 0 {
		return len(p), nil
	}
	_, err := f.write(f.pending[:i+1])
	// Lines that failed to write are dropped, not retried,
	// so an unwritable file cannot grow memory without bound.
	f.pending = f.pending[i+1:]
	if err != nil {
		f.pending = append(droppedNotice[:len(droppedNotice):len(droppedNotice)], f.pending...)
	}
	return len(p), err
}

func (f *File) write(p []byte) (int, error) {
	if f.written+int64(len(p)) > f.limit {
		f.rotate()
	}
	if f.f == nil {
		if err := f.open(); err != nil {
			return 0, err
		}
	}
	n, err := f.f.Write(p)
	f.written += int64(n)
	return n, err
}

func (f *File) open() error {
	file, err := os.OpenFile(f.base, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644) // #nosec
	if err != nil {
		return err
	}
	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return err
	}
	f.f, f.written = file, end
	return nil
}

// Close writes any buffered partial line, newline-terminated,
// and closes the base file.
func (f *File) Close() error {
	if len(f.pending) > 0 {
		f.write(append(f.pending, '\n'))
		f.pending = nil
	}
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}

func (f *File) rotate() {
	if f.f != nil {
		f.f.Close()
		f.f = nil
	}
	f.written = 0
	for i := f.keep - 1; i > 0; i-- {
		os.Rename(f.name(i), f.name(i+1))
	}
	os.Rename(f.base, f.name(1))
}

func (f *File) name(i int) string {
	return f.base + "." + strconv.Itoa(i)
}
