package mongodb

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// DefaultBufferSize is the read size of buffers filled from a stream.
const DefaultBufferSize = 8 * 1024

// DataBuffer is a pooled byte buffer. Return it with BufferFactory.Release.
type DataBuffer = bytebufferpool.ByteBuffer

// BufferFactory hands out pooled data buffers shared by every streaming
// GridFS template.
type BufferFactory struct {
	pool        bytebufferpool.Pool
	size        int
	outstanding atomic.Int64
}

// NewBufferFactory creates a factory whose streams read size bytes at a
// time; size <= 0 uses DefaultBufferSize.
func NewBufferFactory(size int) *BufferFactory {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &BufferFactory{size: size}
}

// BufferSize is the read size of streamed buffers.
func (f *BufferFactory) BufferSize() int { return f.size }

// Allocate returns an empty buffer.
func (f *BufferFactory) Allocate() *DataBuffer {
	f.outstanding.Add(1)
	return f.pool.Get()
}

// Wrap returns a buffer holding a copy of p.
func (f *BufferFactory) Wrap(p []byte) *DataBuffer {
	b := f.Allocate()
	b.Set(p)
	return b
}

// Release returns b to the pool. b must not be used afterwards.
func (f *BufferFactory) Release(b *DataBuffer) {
	if b == nil {
		return
	}
	f.outstanding.Add(-1)
	f.pool.Put(b)
}

// Outstanding is the number of allocated buffers not yet released.
func (f *BufferFactory) Outstanding() int64 { return f.outstanding.Load() }
