package uvcstill

import (
	"errors"
	"io"
)

// Handle is an open capture session on a StillCamera, with the read
// semantics of a character device: at most one handle at a time by default,
// frame bytes stream out as they arrive, io.EOF delimits a completed frame.
type Handle struct {
	sc       *StillCamera
	nonblock bool
	closed   bool
}

// SetExclusive controls the single-handle guard on Open. Exclusive is the
// default; with the guard off additional handles share the one capture
// stream and its frame buffer.
func (sc *StillCamera) SetExclusive(exclusive bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.shared = !exclusive
}

// Open returns the device's capture handle. A second Open while one is
// outstanding fails with ErrBusy unless the guard was relaxed with
// SetExclusive.
func (sc *StillCamera) Open() (*Handle, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		return nil, ErrDeviceGone
	}
	if sc.opens > 0 && !sc.shared {
		return nil, ErrBusy
	}
	sc.opens++
	if sc.opens == 1 && sc.engine != nil {
		sc.engine.Attach()
	}
	return &Handle{sc: sc}, nil
}

// SetNonblock switches the handle between blocking and non-blocking reads.
func (h *Handle) SetNonblock(nonblock bool) {
	h.nonblock = nonblock
}

// Read copies captured frame bytes into buf. Bytes become available while
// the capture is still running. A fully delivered frame ends with 0, io.EOF
// and re-arms the pipeline; a disturbed capture returns ErrFrameError. In
// non-blocking mode ErrWouldBlock is returned instead of waiting. After the
// camera shuts down reads fail with ErrDeviceGone.
func (h *Handle) Read(buf []byte) (int, error) {
	h.sc.mu.Lock()
	if h.closed || h.sc.closed {
		h.sc.mu.Unlock()
		return 0, ErrDeviceGone
	}
	engine := h.sc.engine
	h.sc.mu.Unlock()
	if engine == nil {
		return 0, ErrNotStreaming
	}
	n, err := engine.Read(buf, !h.nonblock)
	if errors.Is(err, ErrInterrupted) {
		return n, ErrDeviceGone
	}
	return n, err
}

// Write accepts and discards its input. The device has no host-to-device
// data path; tools that probe with a write should not fail.
func (h *Handle) Write(buf []byte) (int, error) {
	if h.closed {
		return 0, ErrDeviceGone
	}
	return len(buf), nil
}

// Close releases the handle. Any completed but unread frame is discarded and
// the pipeline re-arms.
func (h *Handle) Close() error {
	h.sc.mu.Lock()
	defer h.sc.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.sc.opens--
	if h.sc.opens == 0 && h.sc.engine != nil {
		h.sc.engine.Detach()
	}
	return nil
}

var _ io.ReadWriteCloser = (*Handle)(nil)
