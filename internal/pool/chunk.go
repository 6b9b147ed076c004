// Package pool recycles the chunk buffers used to stream DATA records.
package pool

import (
	"io"
	"sync"
)

const (
	// ChunkSize is the number of bytes buffered before a chunk is flushed.
	ChunkSize = 256 << 10
	// maxRetained is the largest chunk capacity returned to the pool.
	maxRetained = 4 << 20
)

// Chunk accumulates whole DATA records and flushes them to a writer once
// ChunkSize bytes are pending.
type Chunk struct {
	B       []byte
	flushed int64
}

var chunks = sync.Pool{
	New: func() any {
		return &Chunk{B: make([]byte, 0, ChunkSize)}
	},
}

// GetChunk returns an empty chunk from the pool.
func GetChunk() *Chunk {
	c, _ := chunks.Get().(*Chunk)
	return c
}

// PutChunk returns c to the pool. Chunks that grew past 4MiB are dropped.
func PutChunk(c *Chunk) {
	if c == nil || cap(c.B) > maxRetained {
		return
	}

	c.B = c.B[:0]
	c.flushed = 0
	chunks.Put(c)
}

// Reserve makes room for one record of recordSize bytes.
func (c *Chunk) Reserve(recordSize int) {
	if cap(c.B)-len(c.B) >= recordSize {
		return
	}

	grown := make([]byte, len(c.B), len(c.B)+max(recordSize, ChunkSize))
	copy(grown, c.B)
	c.B = grown
}

// Full reports whether the pending bytes reached ChunkSize.
func (c *Chunk) Full() bool {
	return len(c.B) >= ChunkSize
}

// Len returns the number of pending bytes.
func (c *Chunk) Len() int {
	return len(c.B)
}

// Flushed returns the total number of bytes written by Flush.
func (c *Chunk) Flushed() int64 {
	return c.flushed
}

// Flush writes the pending bytes to w and empties the chunk.
func (c *Chunk) Flush(w io.Writer) error {
	if len(c.B) == 0 {
		return nil
	}

	n, err := w.Write(c.B)
	c.flushed += int64(n)
	if err != nil {
		return err
	}
	if n != len(c.B) {
		return io.ErrShortWrite
	}
	c.B = c.B[:0]

	return nil
}
