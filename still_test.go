package uvcstill

import (
	"errors"
	"testing"

	"github.com/openstill/uvcstill/pkg/transfers"
)

func testCamera() *StillCamera {
	return &StillCamera{
		info: &DeviceInfo{},
		sizes: []FrameSize{
			{Width: 640, Height: 480},
			{Width: 2592, Height: 1944},
			{Width: 1280, Height: 720},
		},
		sizeIndex: 1,
	}
}

func TestFrameSizesReturnsCopy(t *testing.T) {
	sc := testCamera()
	sizes := sc.FrameSizes()
	if len(sizes) != 3 {
		t.Fatalf("got %d sizes, want 3", len(sizes))
	}
	sizes[0] = FrameSize{Width: 1, Height: 1}
	if sc.FrameSizes()[0].Width != 640 {
		t.Error("FrameSizes exposed internal catalogue storage")
	}
}

func TestSetFrameSizeSelectsCatalogueEntry(t *testing.T) {
	sc := testCamera()
	if err := sc.SetFrameSize(FrameSize{Width: 1280, Height: 720}); err != nil {
		t.Fatalf("SetFrameSize failed: %v", err)
	}
	if got := sc.FrameSize(); got != (FrameSize{Width: 1280, Height: 720}) {
		t.Errorf("FrameSize = %+v, want 1280x720", got)
	}
}

func TestSetFrameSizeRejectsUnknownSize(t *testing.T) {
	sc := testCamera()
	err := sc.SetFrameSize(FrameSize{Width: 4000, Height: 3000})
	if !errors.Is(err, ErrFrameSizeNotSupported) {
		t.Fatalf("SetFrameSize = %v, want ErrFrameSizeNotSupported", err)
	}
	if got := sc.FrameSize(); got != (FrameSize{Width: 2592, Height: 1944}) {
		t.Errorf("rejected size changed the selection to %+v", got)
	}
}

func TestSetFrameSizeRequiresExactMatch(t *testing.T) {
	sc := testCamera()
	// same width, wrong height
	if err := sc.SetFrameSize(FrameSize{Width: 640, Height: 360}); !errors.Is(err, ErrFrameSizeNotSupported) {
		t.Errorf("SetFrameSize = %v, want ErrFrameSizeNotSupported", err)
	}
}

func TestStatsZeroWhenStopped(t *testing.T) {
	sc := testCamera()
	if got := sc.Stats(); got != (transfers.EngineStats{}) {
		t.Errorf("Stats = %+v, want zero value", got)
	}
}
