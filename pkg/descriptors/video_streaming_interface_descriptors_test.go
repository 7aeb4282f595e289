package descriptors

import (
	"errors"
	"testing"
)

func TestStillImageFrameDescriptorUnmarshal(t *testing.T) {
	// two size patterns, one compression pattern
	buf := []byte{
		15,   // bLength
		0x24, // CS_INTERFACE
		0x03, // VS_STILL_IMAGE_FRAME
		0x00, // bEndpointAddress (method 2: zero)
		2,    // bNumImageSizePatterns
		0x80, 0x02, 0xE0, 0x01, // 640x480
		0x20, 0x0A, 0x98, 0x07, // 2592x1944
		1,    // bNumCompressionPtn
		0x05, // compression pattern
	}
	sifd := &StillImageFrameDescriptor{}
	if err := sifd.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if sifd.EndpointAddress != 0 {
		t.Errorf("EndpointAddress = %#x, want 0", sifd.EndpointAddress)
	}
	want := []ImageSizePattern{{Width: 640, Height: 480}, {Width: 2592, Height: 1944}}
	if len(sifd.ImageSizePatterns) != len(want) {
		t.Fatalf("got %d size patterns, want %d", len(sifd.ImageSizePatterns), len(want))
	}
	for i, p := range want {
		if sifd.ImageSizePatterns[i] != p {
			t.Errorf("pattern %d = %+v, want %+v", i, sifd.ImageSizePatterns[i], p)
		}
	}
	if len(sifd.CompressionPatterns) != 1 || sifd.CompressionPatterns[0] != 0x05 {
		t.Errorf("CompressionPatterns = %v, want [5]", sifd.CompressionPatterns)
	}
}

func TestStillImageFrameDescriptorRejectsWrongSubtype(t *testing.T) {
	buf := []byte{6, 0x24, 0x01, 0, 0, 0}
	sifd := &StillImageFrameDescriptor{}
	if err := sifd.UnmarshalBinary(buf); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("UnmarshalBinary = %v, want ErrInvalidDescriptor", err)
	}
}

func TestInputHeaderDescriptorUnmarshal(t *testing.T) {
	buf := []byte{
		15,   // bLength
		0x24, // CS_INTERFACE
		0x01, // VS_INPUT_HEADER
		2,    // bNumFormats
		0x6F, 0x00, // wTotalLength
		0x81, // bEndpointAddress
		0x00, // bmInfo
		0x03, // bTerminalLink
		0x02, // bStillCaptureMethod
		0x01, // bTriggerSupport
		0x00, // bTriggerUsage
		1,    // bControlSize
		0x00, 0x00,
	}
	ihd := &InputHeaderDescriptor{}
	if err := ihd.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if ihd.TotalLength != 0x6F {
		t.Errorf("TotalLength = %d, want 111", ihd.TotalLength)
	}
	if ihd.EndpointAddress != 0x81 {
		t.Errorf("EndpointAddress = %#x, want 0x81", ihd.EndpointAddress)
	}
	if ihd.StillCaptureMethod != 2 {
		t.Errorf("StillCaptureMethod = %d, want 2", ihd.StillCaptureMethod)
	}
	if !ihd.SupportsHardwareTrigger() {
		t.Error("SupportsHardwareTrigger = false, want true")
	}
	if len(ihd.ControlBitmasks) != 2 {
		t.Errorf("got %d control bitmasks, want 2", len(ihd.ControlBitmasks))
	}
}

func TestUnmarshalStreamingInterfaceSkipsUnsupported(t *testing.T) {
	// MPEG2TS format descriptor subtype, not handled by the still pipeline
	buf := []byte{7, 0x24, 0x0A, 0, 0, 0, 0}
	if _, err := UnmarshalStreamingInterface(buf); !errors.Is(err, ErrUnsupportedDescriptor) {
		t.Errorf("UnmarshalStreamingInterface = %v, want ErrUnsupportedDescriptor", err)
	}
}

func TestUnmarshalStreamingInterfaceDispatch(t *testing.T) {
	buf := []byte{
		10, 0x24, 0x03, 0x00,
		1, 0x80, 0x02, 0xE0, 0x01,
		0,
	}
	desc, err := UnmarshalStreamingInterface(buf)
	if err != nil {
		t.Fatalf("UnmarshalStreamingInterface failed: %v", err)
	}
	if _, ok := desc.(*StillImageFrameDescriptor); !ok {
		t.Errorf("got %T, want *StillImageFrameDescriptor", desc)
	}
}
