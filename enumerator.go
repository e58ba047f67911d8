package treewc

// EntryType classifies a directory entry without following symlinks.
type EntryType uint8

const (
	// TypeRegular is a regular file; it is dispatched to a worker.
	TypeRegular EntryType = iota
	// TypeDir is a directory; the dispatcher descends into it.
	TypeDir
	// TypeOther is anything else (symlinks, FIFOs, sockets, devices); it is
	// ignored.
	TypeOther
)

func (t EntryType) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDir:
		return "dir"
	default:
		return "other"
	}
}

// Entry is one directory entry produced by a [DirReader].
type Entry struct {
	// Name is the base name of the entry.
	Name string
	// Type is only meaningful when Err is nil.
	Type EntryType
	// Err is set when the entry's metadata could not be read. The dispatcher
	// reports it and skips the entry.
	Err error
}

// Enumerator opens directories for entry enumeration.
//
// Errors returned by Open, [DirReader.Next] and [DirReader.Close] may be
// bare (for example a syscall.Errno); the dispatcher wraps them into an
// [*IOError] carrying the directory path.
type Enumerator interface {
	Open(dir string) (DirReader, error)
}

// DirReader streams the entries of one directory, one level deep.
//
// Next returns io.EOF when the stream is exhausted. Any other error ends
// enumeration of the directory; entries returned before it stay valid.
type DirReader interface {
	Next() (Entry, error)
	Close() error
}

// OSEnumerator enumerates the real file system.
//
// On Linux it parses getdents64 records and trusts d_type, calling
// fstatat(AT_SYMLINK_NOFOLLOW) only for DT_UNKNOWN. Other platforms use
// (*os.File).ReadDir. Neither follows symlinks.
type OSEnumerator struct{}

// Open implements [Enumerator].
func (OSEnumerator) Open(dir string) (DirReader, error) {
	r, err := openDirReader(dir)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// dirReadBufSize is the size of the raw directory-entry buffer on Linux and
// the ReadDir batch sizing heuristic elsewhere.
const dirReadBufSize = 32 * 1024

// Backend contract, checked at compile time.
var (
	_ func(string) (*dirReader, error) = openDirReader
	_ DirReader                        = (*dirReader)(nil)
	_ Enumerator                       = OSEnumerator{}
)

func isDotName(name string) bool {
	return name == "." || name == ".."
}
