package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkPool_GetReturnsFullLength(t *testing.T) {
	p := NewChunkPool(1024)

	buf := p.Get()
	assert.Len(t, buf, 1024)
	assert.Equal(t, 1024, p.Size())
}

func TestChunkPool_ReuseAfterPut(t *testing.T) {
	p := NewChunkPool(256)

	buf := p.Get()
	// Simulate a short final part before returning.
	short := buf[:10]
	p.Put(short[:cap(short)])

	again := p.Get()
	assert.Len(t, again, 256)
}

func TestChunkPool_PutUndersizedBufferIgnored(t *testing.T) {
	p := NewChunkPool(512)

	p.Put(make([]byte, 16))

	buf := p.Get()
	assert.Len(t, buf, 512)
}
