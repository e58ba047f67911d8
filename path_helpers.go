package treewc

import (
	"os"
	"strings"
)

// ============================================================================
// Path helpers
// ============================================================================

// joinPath appends name to dir with a separator, unless dir already ends in
// one (for example the file system root "/").
//
// Unlike filepath.Join it does not clean dir, so reported paths keep the
// spelling of the walk root the caller passed in.
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}

	var b strings.Builder

	b.Grow(len(dir) + 1 + len(name))
	b.WriteString(dir)

	last := dir[len(dir)-1]
	if last != os.PathSeparator && last != '/' {
		b.WriteByte(os.PathSeparator)
	}

	b.WriteString(name)

	return b.String()
}
