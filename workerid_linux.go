//go:build linux

package treewc

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// bindWorkerIdentity wires the calling goroutine to its OS thread and
// returns the thread id.
//
// The thread is never unlocked, so the runtime terminates it when the worker
// goroutine exits. A thread id is therefore never shared by two workers that
// are alive at the same time.
func bindWorkerIdentity() int {
	runtime.LockOSThread()

	return unix.Gettid()
}
