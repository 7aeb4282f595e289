package transfers

import (
	"bytes"
	"testing"
)

func TestFrameBufferRoundTrip(t *testing.T) {
	fb := NewFrameBuffer()

	payload := make([]byte, FrameBufferPageSize+100)
	for i := range payload {
		payload[i] = byte(i)
	}
	if n, err := fb.Write(payload); err != nil || n != len(payload) {
		t.Fatalf("Write = %d, %v, want %d, nil", n, err, len(payload))
	}
	if got := fb.Len(); got != len(payload) {
		t.Fatalf("Len = %d, want %d", got, len(payload))
	}

	var out bytes.Buffer
	buf := make([]byte, FrameBufferPageSize)
	for {
		n, err := fb.Read(buf)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if n == 0 {
			break
		}
		out.Write(buf[:n])
	}
	if !bytes.Equal(out.Bytes(), payload) {
		t.Error("read bytes differ from written bytes")
	}
	if got := fb.Len(); got != 0 {
		t.Errorf("Len after drain = %d, want 0", got)
	}
}

func TestFrameBufferReadStopsAtPageBoundary(t *testing.T) {
	fb := NewFrameBuffer()
	fb.Write(make([]byte, FrameBufferPageSize*2))

	buf := make([]byte, FrameBufferPageSize*2)
	n, err := fb.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != FrameBufferPageSize {
		t.Errorf("Read = %d bytes, want one page (%d)", n, FrameBufferPageSize)
	}
}

func TestFrameBufferReset(t *testing.T) {
	fb := NewFrameBuffer()
	fb.Write([]byte{1, 2, 3})
	fb.Reset()
	if got := fb.Len(); got != 0 {
		t.Errorf("Len after reset = %d, want 0", got)
	}
	buf := make([]byte, 8)
	if n, _ := fb.Read(buf); n != 0 {
		t.Errorf("Read after reset = %d bytes, want 0", n)
	}
}

func TestFrameBufferOverflowTruncates(t *testing.T) {
	fb := NewFrameBuffer()

	chunk := make([]byte, 1<<20)
	remaining := fb.Cap()
	for remaining > 0 {
		n := len(chunk)
		if n > remaining {
			n = remaining
		}
		fb.Write(chunk[:n])
		remaining -= n
	}
	if fb.Dropped() {
		t.Fatal("Dropped = true before exceeding capacity")
	}

	if n, err := fb.Write([]byte{0xFF}); err != nil || n != 0 {
		t.Fatalf("Write past capacity = %d, %v, want 0, nil", n, err)
	}
	if !fb.Dropped() {
		t.Error("Dropped = false after exceeding capacity")
	}
	if got := fb.Len(); got != fb.Cap() {
		t.Errorf("Len = %d, want capacity %d", got, fb.Cap())
	}

	fb.Reset()
	if fb.Dropped() {
		t.Error("Dropped survives Reset")
	}
}
