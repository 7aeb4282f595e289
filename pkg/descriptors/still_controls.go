package descriptors

import (
	"encoding/binary"
	"io"
)

// StillProbeCommitControl is the VS_STILL_PROBE_CONTROL /
// VS_STILL_COMMIT_CONTROL payload as defined in UVC spec 1.5, 4.3.1.2.
//
// FrameIndex is one-based against the image size patterns advertised by the
// StillImageFrameDescriptor: pattern i is committed as FrameIndex i+1.
type StillProbeCommitControl struct {
	FormatIndex            uint8
	FrameIndex             uint8
	CompressionIndex       uint8
	MaxVideoFrameSize      uint32
	MaxPayloadTransferSize uint32
}

// StillProbeCommitControlSize is the wire size of the still probe/commit payload.
const StillProbeCommitControlSize = 11

func (spcc *StillProbeCommitControl) MarshalSize() int {
	return StillProbeCommitControlSize
}

func (spcc *StillProbeCommitControl) MarshalInto(buf []byte) error {
	if len(buf) < StillProbeCommitControlSize {
		return io.ErrShortBuffer
	}
	buf[0] = spcc.FormatIndex
	buf[1] = spcc.FrameIndex
	buf[2] = spcc.CompressionIndex
	binary.LittleEndian.PutUint32(buf[3:7], spcc.MaxVideoFrameSize)
	binary.LittleEndian.PutUint32(buf[7:11], spcc.MaxPayloadTransferSize)
	return nil
}

func (spcc *StillProbeCommitControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, StillProbeCommitControlSize)
	return buf, spcc.MarshalInto(buf)
}

func (spcc *StillProbeCommitControl) UnmarshalBinary(buf []byte) error {
	if len(buf) < StillProbeCommitControlSize {
		return io.ErrShortBuffer
	}
	spcc.FormatIndex = buf[0]
	spcc.FrameIndex = buf[1]
	spcc.CompressionIndex = buf[2]
	spcc.MaxVideoFrameSize = binary.LittleEndian.Uint32(buf[3:7])
	spcc.MaxPayloadTransferSize = binary.LittleEndian.Uint32(buf[7:11])
	return nil
}

// StillImageTriggerControl is the VS_STILL_IMAGE_TRIGGER_CONTROL payload as
// defined in UVC spec 1.5, 4.3.1.3.
type StillImageTriggerControl struct {
	Trigger StillImageTrigger
}

type StillImageTrigger uint8

const (
	StillImageTriggerNormal               StillImageTrigger = 0x00
	StillImageTriggerTransmit             StillImageTrigger = 0x01
	StillImageTriggerTransmitViaDedicated StillImageTrigger = 0x02
	StillImageTriggerAbort                StillImageTrigger = 0x03
)

func (sitc *StillImageTriggerControl) MarshalBinary() ([]byte, error) {
	return []byte{byte(sitc.Trigger)}, nil
}

func (sitc *StillImageTriggerControl) UnmarshalBinary(buf []byte) error {
	if len(buf) < 1 {
		return io.ErrShortBuffer
	}
	sitc.Trigger = StillImageTrigger(buf[0])
	return nil
}
