package transfers

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

const (
	flagFID = 0x01
	flagEOF = 0x02
	flagSTI = 0x20
	flagERR = 0x40
	flagEOH = 0x80
)

// packet builds a streaming packet with the fixed 12-byte header the capture
// path expects.
func packet(flags byte, data ...byte) []byte {
	pkt := make([]byte, PayloadHeaderSize+len(data))
	pkt[0] = PayloadHeaderSize
	pkt[1] = flags | flagEOH
	copy(pkt[PayloadHeaderSize:], data)
	return pkt
}

func TestClassifyPacket(t *testing.T) {
	tests := []struct {
		name string
		pkt  []byte
		want PacketClass
	}{
		{"empty", nil, PacketSkip},
		{"one byte", []byte{12}, PacketSkip},
		{"wrong header length", packetWithHeaderLength(2, flagEOH), PacketSkip},
		{"truncated header", []byte{12, flagEOH, 0, 0}, PacketSkip},
		{"video", packet(flagEOF), PacketVideo},
		{"still", packet(flagSTI), PacketStill},
		{"still with error", packet(flagSTI | flagERR), PacketStill},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, _ := ClassifyPacket(tt.pkt)
			if class != tt.want {
				t.Errorf("ClassifyPacket() = %v, want %v", class, tt.want)
			}
		})
	}
}

func packetWithHeaderLength(n byte, flags byte) []byte {
	pkt := make([]byte, 16)
	pkt[0] = n
	pkt[1] = flags
	return pkt
}

func warmUp(e *CaptureEngine) {
	e.dispatch(packet(flagEOF))
	e.dispatch(packet(flagEOF))
}

func TestEngineWarmup(t *testing.T) {
	e := NewCaptureEngine(nil)
	if e.Triggerable() {
		t.Fatal("engine triggerable before any video frame")
	}
	e.dispatch(packet(flagEOF))
	if e.Triggerable() {
		t.Fatal("engine triggerable after one video frame")
	}
	e.dispatch(packet(flagEOF))
	if !e.Triggerable() {
		t.Fatal("engine not triggerable after two video frames")
	}
}

func TestEngineWarmupIgnoresPartialVideo(t *testing.T) {
	e := NewCaptureEngine(nil)
	for i := 0; i < 10; i++ {
		e.dispatch(packet(0, 0xAA))
	}
	if e.Triggerable() {
		t.Fatal("video payloads without end-of-frame must not warm up the stream")
	}
}

func TestEngineStillCapture(t *testing.T) {
	e := NewCaptureEngine(nil)
	e.Attach()
	warmUp(e)

	e.dispatch(packet(flagSTI, 0x01, 0x02))
	e.dispatch(packet(flagSTI, 0x03))
	e.dispatch(packet(flagSTI|flagEOF, 0x04))

	if got := e.sm.Status(); got != StatusSuccess {
		t.Fatalf("status = %v, want %v", got, StatusSuccess)
	}

	var out bytes.Buffer
	buf := make([]byte, 16)
	for {
		n, err := e.Read(buf, false)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		out.Write(buf[:n])
	}
	if want := []byte{0x01, 0x02, 0x03, 0x04}; !bytes.Equal(out.Bytes(), want) {
		t.Errorf("frame = %x, want %x", out.Bytes(), want)
	}
	if got := e.sm.Status(); got != StatusWaiting {
		t.Errorf("status after drain = %v, want %v", got, StatusWaiting)
	}
}

func TestEngineRearmsWithoutFullWarmup(t *testing.T) {
	// The warm-up counter survives a completed capture: the alternate setting
	// never changed, so one more video frame re-arms the trigger.
	e := NewCaptureEngine(nil)
	e.Attach()
	warmUp(e)

	e.dispatch(packet(flagSTI|flagEOF, 0x01))
	buf := make([]byte, 16)
	for {
		if _, err := e.Read(buf, false); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
	}

	if e.Triggerable() {
		t.Fatal("engine triggerable with no video frame since the capture")
	}
	e.dispatch(packet(flagEOF))
	if !e.Triggerable() {
		t.Fatal("engine not triggerable after one post-capture video frame")
	}
}

func TestEngineStreamsDuringCapture(t *testing.T) {
	e := NewCaptureEngine(nil)
	e.Attach()
	warmUp(e)

	e.dispatch(packet(flagSTI, 0xAB, 0xCD))

	buf := make([]byte, 16)
	n, err := e.Read(buf, false)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte{0xAB, 0xCD}) {
		t.Errorf("Read = %x, want abcd", buf[:n])
	}

	// drained mid-capture; nothing more until the next payload
	if _, err := e.Read(buf, false); !errors.Is(err, ErrWouldBlock) {
		t.Errorf("Read = %v, want ErrWouldBlock", err)
	}

	e.dispatch(packet(flagSTI|flagEOF, 0xEF))
	n, err = e.Read(buf, false)
	if err != nil || n != 1 || buf[0] != 0xEF {
		t.Fatalf("Read = %d, %v (% 02x), want the final byte", n, err, buf[:n])
	}
	if _, err := e.Read(buf, false); err != io.EOF {
		t.Errorf("Read after drain = %v, want io.EOF", err)
	}
}

func TestEngineErrorBitFailsFrame(t *testing.T) {
	e := NewCaptureEngine(nil)
	e.Attach()
	warmUp(e)

	e.dispatch(packet(flagSTI, 0x01))
	e.dispatch(packet(flagSTI|flagERR, 0x02))
	e.dispatch(packet(flagSTI|flagEOF))

	// the pre-error bytes are still drained first
	buf := make([]byte, 16)
	if n, err := e.Read(buf, false); err != nil || n != 1 {
		t.Fatalf("Read = %d, %v, want pre-error byte", n, err)
	}
	if _, err := e.Read(buf, false); !errors.Is(err, ErrFrameError) {
		t.Errorf("Read = %v, want ErrFrameError", err)
	}
	if got := e.sm.Status(); got != StatusWaiting {
		t.Errorf("status after failed read = %v, want %v", got, StatusWaiting)
	}
}

func TestEngineVideoInterruptsStill(t *testing.T) {
	e := NewCaptureEngine(nil)
	e.Attach()
	warmUp(e)

	e.dispatch(packet(flagSTI, 0x01))
	if got := e.sm.Status(); got != StatusInProgress {
		t.Fatalf("status = %v, want %v", got, StatusInProgress)
	}
	e.dispatch(packet(flagEOF))
	if got := e.sm.Status(); got != StatusError {
		t.Fatalf("status = %v, want %v", got, StatusError)
	}
	stats := e.Stats()
	if stats.FailedFrames != 1 {
		t.Errorf("FailedFrames = %d, want 1", stats.FailedFrames)
	}
}

func TestEngineFIDToggleFinalizesFrame(t *testing.T) {
	e := NewCaptureEngine(nil)
	e.Attach()
	warmUp(e)

	e.dispatch(packet(flagSTI, 0x01))
	e.dispatch(packet(flagSTI|flagFID, 0x02))

	if got := e.sm.Status(); got != StatusSuccess {
		t.Fatalf("status = %v, want %v", got, StatusSuccess)
	}
	buf := make([]byte, 16)
	n, err := e.Read(buf, false)
	if err != nil || n != 1 || buf[0] != 0x01 {
		t.Fatalf("Read = %d, %v (% 02x), want only the pre-toggle byte", n, err, buf[:n])
	}
}

func TestEngineUnattachedFrameDiscarded(t *testing.T) {
	e := NewCaptureEngine(nil)
	warmUp(e)

	e.dispatch(packet(flagSTI, 0x01, 0x02))
	e.dispatch(packet(flagSTI | flagEOF))

	if got := e.sm.Status(); got != StatusWaiting {
		t.Errorf("status = %v, want %v", got, StatusWaiting)
	}
	if got := e.Pending(); got != 0 {
		t.Errorf("Pending = %d, want 0", got)
	}
	stats := e.Stats()
	if stats.StillFrames != 1 {
		t.Errorf("StillFrames = %d, want 1", stats.StillFrames)
	}
}

func TestEngineDetachDiscardsCompletedFrame(t *testing.T) {
	e := NewCaptureEngine(nil)
	e.Attach()
	warmUp(e)

	e.dispatch(packet(flagSTI, 0x01))
	e.dispatch(packet(flagSTI | flagEOF))
	if got := e.sm.Status(); got != StatusSuccess {
		t.Fatalf("status = %v, want %v", got, StatusSuccess)
	}

	e.Detach()
	if got := e.sm.Status(); got != StatusWaiting {
		t.Errorf("status after detach = %v, want %v", got, StatusWaiting)
	}
	if got := e.Pending(); got != 0 {
		t.Errorf("Pending after detach = %d, want 0", got)
	}
}

func TestEngineDetachResetsInProgress(t *testing.T) {
	e := NewCaptureEngine(nil)
	e.Attach()
	warmUp(e)

	e.dispatch(packet(flagSTI, 0x01))
	if got := e.sm.Status(); got != StatusInProgress {
		t.Fatalf("status = %v, want %v", got, StatusInProgress)
	}

	e.Detach()
	if got := e.sm.Status(); got != StatusWaiting {
		t.Errorf("status after detach = %v, want %v", got, StatusWaiting)
	}
	if got := e.Pending(); got != 0 {
		t.Errorf("Pending after detach = %d, want 0", got)
	}
}

func TestEngineStatsCounters(t *testing.T) {
	e := NewCaptureEngine(nil)
	e.Attach()

	e.dispatch([]byte{1})               // skip
	e.dispatch(packet(0, 0xAA))         // video, no EOF
	e.dispatch(packet(flagEOF))         // video frame
	e.dispatch(packet(flagEOF))         // video frame, warm
	e.dispatch(packet(flagSTI, 0x01))   // still
	e.dispatch(packet(flagSTI | flagEOF)) // still, complete

	stats := e.Stats()
	if stats.SkippedPackets != 1 {
		t.Errorf("SkippedPackets = %d, want 1", stats.SkippedPackets)
	}
	if stats.VideoPackets != 3 {
		t.Errorf("VideoPackets = %d, want 3", stats.VideoPackets)
	}
	if stats.StillPackets != 2 {
		t.Errorf("StillPackets = %d, want 2", stats.StillPackets)
	}
	if stats.VideoFrames != 2 {
		t.Errorf("VideoFrames = %d, want 2", stats.VideoFrames)
	}
	if stats.StillFrames != 1 {
		t.Errorf("StillFrames = %d, want 1", stats.StillFrames)
	}
}
