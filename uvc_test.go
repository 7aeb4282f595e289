//go:build integration

package uvcstill

import (
	"io"
	"testing"
)

func TestStillCaptureEndToEnd(t *testing.T) {
	dev := openTestDevice(t)

	sc, err := NewStillCamera(dev)
	if err != nil {
		t.Fatal(err)
	}
	defer sc.Close()

	sizes := sc.FrameSizes()
	if len(sizes) == 0 {
		t.Fatal("no still sizes advertised")
	}
	t.Logf("still sizes: %v, default %v", sizes, sc.FrameSize())

	if err := sc.Start(); err != nil {
		t.Fatal(err)
	}

	h, err := sc.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := sc.Open(); err != ErrBusy {
		t.Fatalf("second open = %v, want ErrBusy", err)
	}

	if err := sc.Trigger(); err != nil {
		t.Fatal(err)
	}

	n, err := io.Copy(io.Discard, h)
	if err != nil {
		t.Fatal(err)
	}
	def := sc.FrameSize()
	want := int64(def.Width) * int64(def.Height) * 2 // YUYV
	if n != want {
		t.Errorf("frame size = %d bytes, want %d for %dx%d", n, want, def.Width, def.Height)
	}
	t.Logf("stats: %+v", sc.Stats())
}
