package transfers

import (
	"log"
	"sync"
)

const (
	// FrameBufferPages and FrameBufferPageSize fix the frame buffer at 25 MiB,
	// enough for an uncompressed 4000x3000 YUYV image with headroom.
	FrameBufferPages    = 6400
	FrameBufferPageSize = 4096
)

// FrameBuffer accumulates the image bytes of one still frame as the capture
// worker demultiplexes payloads, and hands them back to the reader in
// page-sized chunks. Storage is a fixed set of pages allocated once so that a
// capture never allocates on the hot path.
//
// The worker writes while a capture is in progress, and the reader may drain
// bytes of the same frame before the capture completes; the mutex serializes
// each write and read.
type FrameBuffer struct {
	mu      sync.Mutex
	pages   [][]byte
	head    int // read position, bytes consumed
	tail    int // write position, bytes stored
	dropped bool
}

func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{pages: make([][]byte, FrameBufferPages)}
	for i := range fb.pages {
		fb.pages[i] = make([]byte, FrameBufferPageSize)
	}
	return fb
}

// Cap returns the total byte capacity of the buffer.
func (fb *FrameBuffer) Cap() int {
	return len(fb.pages) * FrameBufferPageSize
}

// Len returns the number of unread bytes.
func (fb *FrameBuffer) Len() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.tail - fb.head
}

// Dropped reports whether any bytes were discarded since the last Reset.
func (fb *FrameBuffer) Dropped() bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.dropped
}

// Reset discards buffered data. Called when a new still frame begins.
func (fb *FrameBuffer) Reset() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.head = 0
	fb.tail = 0
	fb.dropped = false
}

// Write appends p, splitting the copy across page boundaries. Bytes beyond
// the buffer capacity are discarded with a log line; the frame is then
// truncated rather than corrupted.
func (fb *FrameBuffer) Write(p []byte) (int, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	written := 0
	for len(p) > 0 {
		if fb.tail >= fb.Cap() {
			if !fb.dropped {
				log.Printf("frame buffer full, dropping %d bytes", len(p))
				fb.dropped = true
			}
			break
		}
		page := fb.pages[fb.tail/FrameBufferPageSize]
		off := fb.tail % FrameBufferPageSize
		n := copy(page[off:], p)
		fb.tail += n
		written += n
		p = p[n:]
	}
	return written, nil
}

// Read copies up to one page worth of unread bytes into p. It returns 0, nil
// when the buffer is drained; end-of-frame signalling is the caller's job.
func (fb *FrameBuffer) Read(p []byte) (int, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.head >= fb.tail {
		return 0, nil
	}
	page := fb.pages[fb.head/FrameBufferPageSize]
	off := fb.head % FrameBufferPageSize
	avail := FrameBufferPageSize - off
	if rem := fb.tail - fb.head; rem < avail {
		avail = rem
	}
	n := copy(p, page[off:off+avail])
	fb.head += n
	return n, nil
}
