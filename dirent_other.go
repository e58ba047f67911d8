//go:build !linux

package treewc

// dirent_other.go implements the enumerator backend (see enumerator.go) on
// non-Linux platforms with (*os.File).ReadDir.

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// readDirBatchSize is the number of entries requested per ReadDir call,
// derived from the Linux dirent buffer size at ~64 bytes per entry.
const readDirBatchSize = dirReadBufSize / 64

type dirReader struct {
	f       *os.File
	pending []fs.DirEntry
	eof     bool
}

func openDirReader(dir string) (*dirReader, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, underlying(err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, underlying(err)
	}

	if !info.IsDir() {
		_ = f.Close()

		return nil, errNotDir
	}

	return &dirReader{f: f}, nil
}

var errNotDir = errors.New("not a directory")

// Next implements [DirReader].
func (r *dirReader) Next() (Entry, error) {
	for {
		if len(r.pending) == 0 {
			if r.eof {
				return Entry{}, io.EOF
			}

			entries, err := r.f.ReadDir(readDirBatchSize)
			r.pending = entries

			if errors.Is(err, io.EOF) {
				r.eof = true

				continue
			}

			if err != nil && len(entries) == 0 {
				return Entry{}, underlying(err)
			}

			continue
		}

		de := r.pending[0]
		r.pending = r.pending[1:]

		name := de.Name()
		if name == "" || isDotName(name) {
			continue
		}

		return classify(de), nil
	}
}

func classify(de fs.DirEntry) Entry {
	name := de.Name()

	// Type comes from lstat semantics; symlinks stay symlinks.
	mode := de.Type()

	switch {
	case mode.IsDir():
		return Entry{Name: name, Type: TypeDir}
	case mode.IsRegular():
		return Entry{Name: name, Type: TypeRegular}
	default:
		return Entry{Name: name, Type: TypeOther}
	}
}

// Close implements [DirReader].
func (r *dirReader) Close() error {
	return underlying(r.f.Close())
}
