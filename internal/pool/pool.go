// Package pool provides shared buffer pools for serialization and
// compression paths that run repeatedly, such as dump rewrites in
// watch mode.
package pool

import (
	"bytes"
	"sync"
)

// Buffers under this cap go back to the pool; larger ones are dropped
// so a single huge dump does not pin memory.
const maxPooledCap = 1 << 20

var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// GetBuffer retrieves an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool. The caller must not use the
// buffer, or any slice obtained from it, after the call.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledCap {
		return
	}
	bufPool.Put(buf)
}
