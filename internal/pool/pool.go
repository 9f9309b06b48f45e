// Package pool provides reusable chunk buffers for multipart transfers.
// Part-sized buffers are expensive to allocate per part; pooling them keeps
// steady-state uploads allocation-free.
package pool

import (
	"sync"
)

// ChunkPool hands out byte slices of a fixed size. All buffers returned by
// Get have len == Size; callers slice down for short final parts but must
// return the original buffer.
type ChunkPool struct {
	size int
	pool *sync.Pool
}

// NewChunkPool creates a pool of buffers of the given size in bytes.
func NewChunkPool(size int64) *ChunkPool {
	p := &ChunkPool{size: int(size)}
	p.pool = &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, p.size)
			return &buf
		},
	}
	return p
}

// Size reports the buffer size this pool hands out.
func (p *ChunkPool) Size() int {
	return p.size
}

// Get returns a buffer of length Size.
func (p *ChunkPool) Get() []byte {
	bufPtr := p.pool.Get().(*[]byte)
	return (*bufPtr)[:p.size]
}

// Put returns a buffer to the pool. The buffer must not be used afterwards.
func (p *ChunkPool) Put(buf []byte) {
	if cap(buf) < p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}
