package transfers

import (
	"errors"
	"io"
	"log"
	"sync"
)

var (
	// ErrFrameError is returned when the buffered frame was disturbed, by a
	// payload error bit or by video resuming mid-capture, and must be retaken.
	ErrFrameError = errors.New("still frame capture failed")
	// ErrWouldBlock is returned by non-blocking reads with no frame ready.
	ErrWouldBlock = errors.New("no frame available")
	// ErrNotTriggerable is returned when a trigger is requested before the
	// video stream has warmed up.
	ErrNotTriggerable = errors.New("stream not ready for still trigger")
)

// warmupVideoFrames is the number of complete video frames that must pass
// before a still trigger is allowed. Triggering into a stream that has not
// settled after an alternate-setting change yields torn frames on several
// sensors.
const warmupVideoFrames = 2

// EngineStats counts packet dispositions since the engine started. The worker
// updates them under the engine's stats mutex, and Stats returns a copy taken
// under the same mutex.
type EngineStats struct {
	VideoPackets   uint64
	StillPackets   uint64
	SkippedPackets uint64
	ErroredPackets uint64
	VideoFrames    uint64
	StillFrames    uint64
	FailedFrames   uint64
}

// CaptureEngine demultiplexes the streaming endpoint into still frames. A
// worker goroutine drains the transfer pool, routes still payloads into the
// frame buffer and drives the capture state machine; readers interact only
// through the state machine and the frame buffer.
type CaptureEngine struct {
	pool *TransferPool
	fb   *FrameBuffer
	sm   *StateMachine

	// worker-local demultiplexer state
	videoEOFs int
	stillFID  bool
	fidValid  bool
	failed    bool

	statsMu sync.Mutex
	stats   EngineStats

	wg sync.WaitGroup
}

func NewCaptureEngine(pool *TransferPool) *CaptureEngine {
	return &CaptureEngine{
		pool: pool,
		fb:   NewFrameBuffer(),
		sm:   NewStateMachine(),
	}
}

// Start launches the transfer pool and the demultiplexing worker.
func (e *CaptureEngine) Start() error {
	if err := e.pool.Start(); err != nil {
		return err
	}
	e.wg.Add(1)
	go e.run()
	return nil
}

// Stop tears down the worker and the transfer pool. Blocked readers and
// trigger waiters are released with ErrInterrupted.
func (e *CaptureEngine) Stop() error {
	e.sm.Terminate()
	err := e.pool.Close()
	e.wg.Wait()
	return err
}

func (e *CaptureEngine) run() {
	defer e.wg.Done()
	for {
		buf, ok := e.pool.PopFull()
		if !ok {
			return
		}
		for _, pd := range buf.Packets {
			if pd.Offset < 0 {
				e.statsMu.Lock()
				e.stats.ErroredPackets++
				e.statsMu.Unlock()
				continue
			}
			e.dispatch(buf.Data[pd.Offset : pd.Offset+pd.Length])
		}
		e.pool.Recycle(buf)
	}
}

func (e *CaptureEngine) dispatch(pkt []byte) {
	class, p := ClassifyPacket(pkt)
	e.statsMu.Lock()
	switch class {
	case PacketSkip:
		e.stats.SkippedPackets++
	case PacketVideo:
		e.stats.VideoPackets++
	case PacketStill:
		e.stats.StillPackets++
	}
	e.statsMu.Unlock()

	switch class {
	case PacketVideo:
		e.handleVideo(p)
	case PacketStill:
		e.handleStill(p)
	}
}

func (e *CaptureEngine) handleVideo(p Payload) {
	// Video traffic resuming while a still frame is being assembled means the
	// device abandoned the still transmission.
	if e.sm.Status() == StatusInProgress {
		log.Printf("video payload interrupted still capture")
		e.finishFrame(false)
		return
	}
	if !p.EndOfFrame() {
		return
	}
	e.videoEOFs++
	e.statsMu.Lock()
	e.stats.VideoFrames++
	e.statsMu.Unlock()
	if e.videoEOFs >= warmupVideoFrames {
		e.sm.TransitionIf(StatusTriggerable, StatusWaiting)
	}
}

func (e *CaptureEngine) handleStill(p Payload) {
	if e.sm.TransitionIf(StatusInProgress, StatusWaiting, StatusTriggerable) {
		e.fb.Reset()
		e.stillFID = p.FrameID()
		e.fidValid = true
		e.failed = false
	} else if e.sm.Status() != StatusInProgress {
		// Late payloads of a frame already finalized; nothing to attach
		// them to.
		return
	}

	if e.fidValid && p.FrameID() != e.stillFID {
		// The device toggled FID without an end-of-frame bit. Close out the
		// frame we have; the new toggle's payloads belong to a transmission
		// nobody asked for.
		log.Printf("still frame id toggled without end of frame")
		e.finishFrame(!e.failed)
		return
	}

	if p.Error() {
		e.failed = true
	}
	if len(p.Data) > 0 && !e.failed {
		e.fb.Write(p.Data)
		e.sm.NotifyData()
	}
	if p.EndOfFrame() {
		e.finishFrame(!e.failed && !e.fb.Dropped())
	}
}

// finishFrame closes out the in-progress capture. A complete frame becomes
// readable only if a reader is attached; otherwise the bytes are discarded
// and the pipeline re-arms.
func (e *CaptureEngine) finishFrame(complete bool) {
	e.fidValid = false
	e.statsMu.Lock()
	if complete {
		e.stats.StillFrames++
	} else {
		e.stats.FailedFrames++
	}
	e.statsMu.Unlock()
	switch {
	case !complete:
		e.sm.Transition(StatusError)
	case e.sm.Busy():
		e.sm.Transition(StatusSuccess)
	default:
		e.fb.Reset()
		e.sm.Transition(StatusWaiting)
	}
}

// Attach marks a reader as present; Detach releases it, discards any
// buffered frame bytes and resets the pipeline to waiting.
func (e *CaptureEngine) Attach() {
	e.sm.SetBusy(true)
}

func (e *CaptureEngine) Detach() {
	e.sm.SetBusy(false)
	e.sm.Transition(StatusWaiting)
	e.fb.Reset()
}

// WaitTriggerable blocks until the video stream has warmed up enough for a
// still trigger, or the engine shuts down.
func (e *CaptureEngine) WaitTriggerable() error {
	return e.sm.WaitTriggerable()
}

// Triggerable reports without blocking whether a still trigger may be issued.
func (e *CaptureEngine) Triggerable() bool {
	return e.sm.Status() == StatusTriggerable
}

// Read copies buffered frame bytes into buf. Bytes stream out while the
// capture is still in progress; with block set the call parks until data or
// an outcome arrives, otherwise it returns ErrWouldBlock. A drained frame
// returns 0, io.EOF and re-arms the pipeline; a failed capture returns
// ErrFrameError.
func (e *CaptureEngine) Read(buf []byte, block bool) (int, error) {
	for {
		if n, _ := e.fb.Read(buf); n > 0 {
			return n, nil
		}
		switch e.sm.Status() {
		case StatusSuccess:
			// The buffer drained between the Read above and this check only
			// if another reader raced us; either way the frame is done.
			e.sm.Transition(StatusWaiting)
			return 0, io.EOF
		case StatusError:
			e.sm.Transition(StatusWaiting)
			return 0, ErrFrameError
		}
		if !block {
			return 0, ErrWouldBlock
		}
		if _, err := e.sm.WaitReadable(func() bool { return e.fb.Len() > 0 }); err != nil {
			return 0, err
		}
	}
}

// ResetFrame discards any buffered frame bytes. The trigger path calls this
// so a new capture never delivers a predecessor's tail.
func (e *CaptureEngine) ResetFrame() {
	e.fb.Reset()
}

// Pending returns the number of unread bytes of a completed frame.
func (e *CaptureEngine) Pending() int {
	return e.fb.Len()
}

// Stats returns a snapshot of the packet counters.
func (e *CaptureEngine) Stats() EngineStats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}
