//go:build linux

package treewc

// dirent_linux.go implements the enumerator backend (see enumerator.go) on
// Linux by parsing raw dirent64 records returned by getdents64.

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/sys/unix"
)

// linux_dirent64 offsets (from linux/dirent.h):
//
//	struct linux_dirent64 {
//	    ino64_t        d_ino;    // 8 bytes  (offset 0)
//	    off64_t        d_off;    // 8 bytes  (offset 8)
//	    unsigned short d_reclen; // 2 bytes  (offset 16)
//	    unsigned char  d_type;   // 1 byte   (offset 18)
//	    char           d_name[]; // variable (offset 19)
//	};
const (
	direntReclenOffset = 16
	direntTypeOffset   = 18
	direntNameOffset   = 19
	direntMinSize      = direntNameOffset
)

var errInvalidDirent = errors.New("invalid dirent")

// dirReader wraps a directory fd and the unparsed tail of the last
// getdents64 batch.
type dirReader struct {
	fd   int
	buf  []byte
	data []byte
	eof  bool
}

// openDirReader opens dir for enumeration. A symlink given as dir is
// followed; entries inside are never followed.
func openDirReader(dir string) (*dirReader, error) {
	for {
		fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return &dirReader{fd: fd, buf: make([]byte, dirReadBufSize)}, nil
	}
}

// Next implements [DirReader].
func (r *dirReader) Next() (Entry, error) {
	for {
		if len(r.data) == 0 {
			if r.eof {
				return Entry{}, io.EOF
			}

			err := r.fill()
			if err != nil {
				return Entry{}, err
			}

			continue
		}

		if len(r.data) < direntMinSize {
			r.data = nil

			return Entry{}, errInvalidDirent
		}

		reclen := int(binary.NativeEndian.Uint16(r.data[direntReclenOffset:]))
		if reclen < direntMinSize || reclen > len(r.data) {
			r.data = nil

			return Entry{}, errInvalidDirent
		}

		rec := r.data[:reclen]
		r.data = r.data[reclen:]

		// Filename ends at the first NUL byte.
		name := rec[direntNameOffset:]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}

		if len(name) == 0 {
			continue
		}

		nameStr := string(name)
		if isDotName(nameStr) {
			continue
		}

		return r.classify(nameStr, rec[direntTypeOffset]), nil
	}
}

// fill reads the next getdents64 batch. A zero-length read marks EOF.
func (r *dirReader) fill() error {
	for {
		n, err := unix.Getdents(r.fd, r.buf)
		if errors.Is(err, unix.EINTR) {
			continue
		}

		if err != nil {
			return err
		}

		if n <= 0 {
			r.eof = true

			return nil
		}

		r.data = r.buf[:n]

		return nil
	}
}

func (r *dirReader) classify(name string, dtype byte) Entry {
	switch dtype {
	case unix.DT_DIR:
		return Entry{Name: name, Type: TypeDir}
	case unix.DT_REG:
		return Entry{Name: name, Type: TypeRegular}
	case unix.DT_UNKNOWN:
		typ, err := classifyAt(r.fd, name)

		return Entry{Name: name, Type: typ, Err: err}
	default:
		// Symlinks and special file types (fifo, sockets, devices, ...).
		return Entry{Name: name, Type: TypeOther}
	}
}

// Close implements [DirReader].
func (r *dirReader) Close() error {
	if r.fd < 0 {
		return nil
	}

	// close(2) is not retried on EINTR.
	err := unix.Close(r.fd)
	r.fd = -1

	return err
}

// classifyAt classifies the named entry using fstatat(AT_SYMLINK_NOFOLLOW).
//
// Only used when d_type == DT_UNKNOWN.
func classifyAt(dirfd int, name string) (EntryType, error) {
	var st unix.Stat_t

	for {
		err := unix.Fstatat(dirfd, name, &st, unix.AT_SYMLINK_NOFOLLOW)
		if errors.Is(err, unix.EINTR) {
			continue
		}

		if err != nil {
			return TypeOther, err
		}

		break
	}

	switch st.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return TypeDir, nil
	case unix.S_IFREG:
		return TypeRegular, nil
	default:
		return TypeOther, nil
	}
}
