// Package buffer provides the bounded output buffer backing terminal replay.
package buffer

import (
	"sync"
)

// RingBuffer is a thread-safe, append-only byte buffer bounded to a fixed
// capacity. Once full, the oldest bytes are evicted first so the buffer
// always holds the most recent output.
//
// Each terminal session owns one RingBuffer; attaching clients replay its
// contents as a single output message before receiving live output.
type RingBuffer struct {
	data     []byte
	capacity int
	mu       sync.RWMutex
}

// NewRingBuffer creates a RingBuffer with the given capacity.
// A capacity below 1 defaults to 1.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{
		data:     make([]byte, 0, capacity),
		capacity: capacity,
	}
}

// Write appends data, evicting the oldest bytes when the capacity would be
// exceeded. Implements io.Writer and never fails.
func (rb *RingBuffer) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()

	// Input alone exceeds capacity: keep only its tail.
	if len(p) >= rb.capacity {
		rb.data = rb.data[:rb.capacity]
		copy(rb.data, p[len(p)-rb.capacity:])
		return len(p), nil
	}

	newLen := len(rb.data) + len(p)
	if newLen <= rb.capacity {
		rb.data = append(rb.data, p...)
		return len(p), nil
	}

	discard := newLen - rb.capacity
	kept := copy(rb.data, rb.data[discard:])
	rb.data = append(rb.data[:kept], p...)
	return len(p), nil
}

// ReadAll returns a copy of the buffered bytes, or nil when empty.
func (rb *RingBuffer) ReadAll() []byte {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if len(rb.data) == 0 {
		return nil
	}
	out := make([]byte, len(rb.data))
	copy(out, rb.data)
	return out
}

// Len returns the current number of buffered bytes.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return len(rb.data)
}

// Cap returns the buffer capacity.
func (rb *RingBuffer) Cap() int {
	return rb.capacity
}
