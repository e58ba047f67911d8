//go:build !linux

package treewc

import "sync/atomic"

var workerSeq atomic.Int64

// bindWorkerIdentity returns a process-unique worker number. Platforms
// without a portable thread id get a sequence instead.
func bindWorkerIdentity() int {
	return int(workerSeq.Add(1))
}
