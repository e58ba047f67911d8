package treewc

import (
	"errors"
	"io"
	"os"
)

// Counts holds the byte and word totals of one file.
type Counts struct {
	Bytes int64
	Words int64
}

// ScanFunc computes [Counts] for the file at path.
//
// buf is scratch space owned by the calling slot. It is only valid during the
// call.
//
// A returned error means the file produces no result line. Errors should be
// [*IOError] so that [Class] can classify them.
type ScanFunc func(path string, buf []byte) (Counts, error)

// CountFile opens path and counts its bytes and words.
//
// Words are maximal runs of bytes other than space, tab and newline. Failure
// to open, read or close the file is returned as an [*IOError] with Op
// "open", "read" or "close".
func CountFile(path string, buf []byte) (Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		return Counts{}, &IOError{Path: path, Op: OpOpen, Err: underlying(err)}
	}

	counts, readErr := CountReader(f, buf)
	closeErr := f.Close()

	if readErr != nil {
		return Counts{}, &IOError{Path: path, Op: OpRead, Err: underlying(readErr)}
	}

	if closeErr != nil {
		return Counts{}, &IOError{Path: path, Op: OpClose, Err: underlying(closeErr)}
	}

	return counts, nil
}

// CountReader counts bytes and words read from r, using buf for reads.
//
// If buf is empty a 512 byte buffer is allocated. On error the counts read so
// far are returned alongside it.
func CountReader(r io.Reader, buf []byte) (Counts, error) {
	if len(buf) == 0 {
		buf = make([]byte, minReadBufSize)
	}

	var wc wordCounter

	for {
		n, err := r.Read(buf)
		if n > 0 {
			wc.feed(buf[:n])
		}

		if errors.Is(err, io.EOF) {
			return wc.counts, nil
		}

		if err != nil {
			return wc.counts, err
		}
	}
}

// wordCounter is the inside/outside-word state machine. State carries across
// feed calls, so words split by a buffer boundary are counted once.
type wordCounter struct {
	counts Counts
	inWord bool
}

func (w *wordCounter) feed(p []byte) {
	words := w.counts.Words
	inWord := w.inWord

	for _, c := range p {
		if isWordSpace(c) {
			inWord = false

			continue
		}

		if !inWord {
			inWord = true
			words++
		}
	}

	w.counts.Bytes += int64(len(p))
	w.counts.Words = words
	w.inWord = inWord
}

func isWordSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// underlying strips *fs.PathError wrapping so diagnostics carry the bare
// errno text; the path is already on the IOError.
func underlying(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}

	return err
}
