package treewc_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/treewc"
)

func Test_AppendLine_Formats_Id_Path_Bytes_Words_When_Given_Result(t *testing.T) {
	t.Parallel()

	r := treewc.Result{WorkerID: 4242, Path: "dir/a b.txt", Counts: treewc.Counts{Bytes: 12, Words: 2}}

	assert.Equal(t, "4242 dir/a b.txt 12 2\n", string(treewc.AppendLine(nil, r)))
	assert.Equal(t, "prefix:4242 dir/a b.txt 12 2\n", string(treewc.AppendLine([]byte("prefix:"), r)))
}

// chunkWriter records each Write call separately.
type chunkWriter struct {
	mu     sync.Mutex
	chunks []string
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.chunks = append(w.chunks, string(p))

	return len(p), nil
}

func Test_LineSink_Writes_Whole_Lines_When_Reported_Concurrently(t *testing.T) {
	t.Parallel()

	const (
		goroutines = 8
		perG       = 200
	)

	w := &chunkWriter{}
	sink := treewc.NewLineSink(w)

	var wg sync.WaitGroup

	for g := range goroutines {
		wg.Go(func() {
			for i := range perG {
				err := sink.Report(treewc.Result{
					WorkerID: g,
					Path:     fmt.Sprintf("p-%d-%d", g, i),
					Counts:   treewc.Counts{Bytes: int64(i + 1), Words: int64(i)},
				})
				if err != nil {
					t.Errorf("report: %v", err)

					return
				}
			}
		})
	}

	wg.Wait()

	require.Len(t, w.chunks, goroutines*perG)

	for _, c := range w.chunks {
		require.True(t, strings.HasSuffix(c, "\n"), "chunk %q is not a whole line", c)
		require.Equal(t, 1, strings.Count(c, "\n"), "chunk %q holds more than one line", c)

		var (
			id, bytesN, words int
			path              string
		)

		_, err := fmt.Sscanf(c, "%d %s %d %d\n", &id, &path, &bytesN, &words)
		require.NoError(t, err, "line %q", c)
		assert.Equal(t, fmt.Sprintf("p-%d-%d", id, bytesN-1), path)
		assert.Equal(t, bytesN-1, words)
	}
}

func Test_LineSink_Returns_Writer_Error_When_Write_Fails(t *testing.T) {
	t.Parallel()

	sink := treewc.NewLineSink(failingWriter{})

	err := sink.Report(treewc.Result{WorkerID: 1, Path: "a", Counts: treewc.Counts{Bytes: 1}})
	require.ErrorIs(t, err, errWriteFailed)
}

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}

func Test_SinkFunc_Forwards_Results_When_Used_As_Sink(t *testing.T) {
	t.Parallel()

	var got []treewc.Result

	var s treewc.Sink = treewc.SinkFunc(func(r treewc.Result) error {
		got = append(got, r)

		return nil
	})

	require.NoError(t, s.Report(treewc.Result{Path: "a"}))
	assert.Equal(t, []treewc.Result{{Path: "a"}}, got)
}
