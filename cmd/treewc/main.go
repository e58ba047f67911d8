// Treewc prints the byte and word count of every regular file under a
// directory, scanning at most pool-size files at once.
//
// Usage:
//
//	treewc <root-directory> <pool-size>
//
// Each result line is "<worker-id> <path> <bytes> <words>" on stdout.
// Diagnostics go to stderr as "<program>: <error> <path>".
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mordilloSan/go-logger/logger"

	"github.com/calvinalkan/treewc"
)

const (
	exitOK    = 0
	exitUsage = 1
)

var (
	errArgCount = errors.New("wrong number of parameters")
	errPoolSize = errors.New("pool size must be an integer of at least 1")
)

func main() {
	logger.Init(logger.Config{
		Levels: []logger.Level{logger.WarnLevel, logger.ErrorLevel},
	})

	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	prog := "treewc"
	if len(args) > 0 {
		prog = filepath.Base(args[0])
	}

	diag := &diagnostics{prog: prog, w: stderr}

	if len(args) != 3 {
		diag.print(errArgCount)

		return exitUsage
	}

	root := args[1]

	poolSize, err := parsePoolSize(args[2])
	if err != nil {
		diag.print(err)

		return exitUsage
	}

	errs := treewc.Walk(ctx, root, poolSize,
		treewc.WithSink(treewc.NewLineSink(stdout)),
		treewc.WithOnError(func(err error, _ int) bool {
			diag.print(err)

			return false
		}),
	)

	// Only argument errors are collected; everything else was printed.
	for _, err := range errs {
		if treewc.Class(err) == treewc.ClassArgument {
			return exitUsage
		}
	}

	return exitOK
}

func parsePoolSize(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errPoolSize
	}

	return n, nil
}

// diagnostics formats error lines. print is only called from the main
// goroutine or from the serialized OnError handler, which keeps lines whole.
type diagnostics struct {
	prog string
	w    io.Writer
}

func (d *diagnostics) print(err error) {
	desc, path := describe(err)

	_, _ = fmt.Fprintf(d.w, "%s: %s %s\n", d.prog, desc, path)
}

// describe splits err into the error text and the path it concerns, if any.
func describe(err error) (string, string) {
	var ioErr *treewc.IOError
	if errors.As(err, &ioErr) && ioErr.Err != nil {
		return ioErr.Err.Error(), ioErr.Path
	}

	return err.Error(), ""
}
