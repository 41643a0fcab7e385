package services

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/artvault/internal/common"
)

// chunkBuffer holds the chunks of one submission until finalization.
type chunkBuffer struct {
	mu     sync.Mutex
	chunks map[int][]byte
	total  int64
}

// put stores data at index, replacing any earlier chunk there. The new
// running total must stay within maxBytes.
func (b *chunkBuffer) put(index int, data []byte, maxBytes int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := b.total - int64(len(b.chunks[index])) + int64(len(data))
	if total > maxBytes {
		return fmt.Errorf("%w: %d bytes buffered, limit %d", common.ErrSizeExceeded, total, maxBytes)
	}
	b.chunks[index] = append([]byte(nil), data...)
	b.total = total
	return nil
}

// assemble concatenates chunks 0..n-1. It fails with ErrIncompleteAsset when
// the indices are not exactly that range.
func (b *chunkBuffer) assemble() ([]byte, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.chunks)
	if n == 0 {
		return nil, 0, fmt.Errorf("%w: no chunks", common.ErrIncompleteAsset)
	}

	out := make([]byte, 0, b.total)
	for i := 0; i < n; i++ {
		c, ok := b.chunks[i]
		if !ok {
			return nil, 0, fmt.Errorf("%w: missing chunk %d of %d", common.ErrIncompleteAsset, i, n)
		}
		out = append(out, c...)
	}
	return out, n, nil
}

// chunkBuffers maps submission ids to their buffers.
type chunkBuffers struct {
	mu      sync.Mutex
	buffers map[int64]*chunkBuffer
}

func newChunkBuffers() *chunkBuffers {
	return &chunkBuffers{buffers: make(map[int64]*chunkBuffer)}
}

func (c *chunkBuffers) getOrCreate(id int64) *chunkBuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	if !ok {
		b = &chunkBuffer{chunks: make(map[int][]byte)}
		c.buffers[id] = b
	}
	return b
}

func (c *chunkBuffers) get(id int64) (*chunkBuffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	return b, ok
}

func (c *chunkBuffers) drop(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.buffers, id)
}

func (c *chunkBuffers) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers)
}
