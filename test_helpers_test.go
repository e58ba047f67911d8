package treewc_test

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/treewc"
)

func writeFile(t *testing.T, root, rel string, data []byte) string {
	t.Helper()

	fullPath := filepath.Join(root, rel)
	parent := filepath.Dir(fullPath)

	require.NoError(t, os.MkdirAll(parent, 0o750), "mkdir %s", parent)
	require.NoError(t, os.WriteFile(fullPath, data, 0o600), "write %s", fullPath)

	return fullPath
}

func writeFiles(t *testing.T, root string, files map[string][]byte) {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		writeFile(t, root, name, files[name])
	}
}

// collectSink records every result it receives.
type collectSink struct {
	mu      sync.Mutex
	results []treewc.Result
}

func (s *collectSink) Report(r treewc.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, r)

	return nil
}

func (s *collectSink) byPath() map[string]treewc.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]treewc.Result, len(s.results))
	for _, r := range s.results {
		out[r.Path] = r
	}

	return out
}

func (s *collectSink) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r.Path)
	}

	sort.Strings(out)

	return out
}

// fakeEnumerator serves a synthetic tree keyed by directory path.
type fakeEnumerator struct {
	mu      sync.Mutex
	tree    map[string][]treewc.Entry
	openErr map[string]error
	readErr map[string]error
	opened  []string
	closed  []string
}

func (f *fakeEnumerator) Open(dir string) (treewc.DirReader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.opened = append(f.opened, dir)

	if err := f.openErr[dir]; err != nil {
		return nil, err
	}

	entries := append([]treewc.Entry(nil), f.tree[dir]...)

	return &fakeDirReader{owner: f, dir: dir, entries: entries, err: f.readErr[dir]}, nil
}

type fakeDirReader struct {
	owner   *fakeEnumerator
	dir     string
	entries []treewc.Entry
	err     error
}

func (r *fakeDirReader) Next() (treewc.Entry, error) {
	if len(r.entries) == 0 {
		if r.err != nil {
			return treewc.Entry{}, r.err
		}

		return treewc.Entry{}, io.EOF
	}

	e := r.entries[0]
	r.entries = r.entries[1:]

	return e, nil
}

func (r *fakeDirReader) Close() error {
	r.owner.mu.Lock()
	defer r.owner.mu.Unlock()

	r.owner.closed = append(r.owner.closed, r.dir)

	return nil
}

func regular(name string) treewc.Entry {
	return treewc.Entry{Name: name, Type: treewc.TypeRegular}
}

func dir(name string) treewc.Entry {
	return treewc.Entry{Name: name, Type: treewc.TypeDir}
}

// fixedScan returns the same counts for every path and records the calls.
type fixedScan struct {
	mu     sync.Mutex
	counts treewc.Counts
	calls  []string
}

func (s *fixedScan) scan(path string, _ []byte) (treewc.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, path)

	return s.counts, nil
}

func (s *fixedScan) scanned() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]string(nil), s.calls...)
	sort.Strings(out)

	return out
}

func classes(errs []error) []treewc.ErrorClass {
	out := make([]treewc.ErrorClass, 0, len(errs))
	for _, err := range errs {
		out = append(out, treewc.Class(err))
	}

	return out
}
