package transfers

import (
	"fmt"
	"time"

	usb "github.com/kevmo314/go-usb"

	"github.com/openstill/uvcstill/pkg/descriptors"
	"github.com/openstill/uvcstill/pkg/requests"
)

type VideoStreamingInterfaceControlSelector int

const (
	VideoStreamingInterfaceControlSelectorUndefined                 VideoStreamingInterfaceControlSelector = 0x00
	VideoStreamingInterfaceControlSelectorProbeControl                                                     = 0x01
	VideoStreamingInterfaceControlSelectorCommitControl                                                    = 0x02
	VideoStreamingInterfaceControlSelectorStillProbeControl                                                = 0x03
	VideoStreamingInterfaceControlSelectorStillCommitControl                                               = 0x04
	VideoStreamingInterfaceControlSelectorStillImageTriggerControl                                         = 0x05
	VideoStreamingInterfaceControlSelectorStreamErrorCodeControl                                           = 0x06
	VideoStreamingInterfaceControlSelectorGenerateKeyFrameControl                                          = 0x07
	VideoStreamingInterfaceControlSelectorUpdateFrameSegmentControl                                        = 0x08
	VideoStreamingInterfaceControlSelectorSynchDelayControl                                                = 0x09
)

// StreamingInterface is one VideoStreaming interface of the device, with its
// class-specific descriptors parsed.
type StreamingInterface struct {
	bcdUVC uint16 // cached since it's used a lot
	handle *usb.DeviceHandle
	iface  *usb.Interface

	Descriptors []descriptors.StreamingInterface
}

func NewStreamingInterface(handle *usb.DeviceHandle, iface *usb.Interface, bcdUVC uint16) *StreamingInterface {
	return &StreamingInterface{handle: handle, iface: iface, bcdUVC: bcdUVC}
}

func (si *StreamingInterface) InterfaceNumber() uint8 {
	return si.iface.AltSettings[0].InterfaceNumber
}

// Interface exposes the underlying USB interface for alternate-setting
// selection.
func (si *StreamingInterface) Interface() *usb.Interface {
	return si.iface
}

func (si *StreamingInterface) UVCVersionString() string {
	return fmt.Sprintf("%x.%02x", si.bcdUVC>>8, si.bcdUVC&0xff)
}

func (si *StreamingInterface) FormatDescriptors() []descriptors.FormatDescriptor {
	var descs []descriptors.FormatDescriptor
	for _, desc := range si.Descriptors {
		if d, ok := desc.(descriptors.FormatDescriptor); ok {
			descs = append(descs, d)
		}
	}
	return descs
}

func (si *StreamingInterface) FrameDescriptors() []descriptors.FrameDescriptor {
	var descs []descriptors.FrameDescriptor
	for _, desc := range si.Descriptors {
		if d, ok := desc.(descriptors.FrameDescriptor); ok {
			descs = append(descs, d)
		}
	}
	return descs
}

func (si *StreamingInterface) InputHeaderDescriptors() []*descriptors.InputHeaderDescriptor {
	var descs []*descriptors.InputHeaderDescriptor
	for _, desc := range si.Descriptors {
		if d, ok := desc.(*descriptors.InputHeaderDescriptor); ok {
			descs = append(descs, d)
		}
	}
	return descs
}

func (si *StreamingInterface) StillImageFrameDescriptors() []*descriptors.StillImageFrameDescriptor {
	var descs []*descriptors.StillImageFrameDescriptor
	for _, desc := range si.Descriptors {
		if d, ok := desc.(*descriptors.StillImageFrameDescriptor); ok {
			descs = append(descs, d)
		}
	}
	return descs
}

// Claim detaches any kernel driver and claims the interface. Detach failures
// are ignored; there is usually no driver bound once the device node has been
// handed over.
func (si *StreamingInterface) Claim() error {
	ifnum := si.InterfaceNumber()
	si.handle.DetachKernelDriver(ifnum)
	if err := si.handle.ClaimInterface(ifnum); err != nil {
		return fmt.Errorf("failed to claim streaming interface %d: %w", ifnum, err)
	}
	return nil
}

func (si *StreamingInterface) Release() error {
	return si.handle.ReleaseInterface(si.InterfaceNumber())
}

// SetAltSetting selects an alternate setting; alternate zero idles the
// endpoint and releases its bandwidth reservation.
func (si *StreamingInterface) SetAltSetting(alt uint8) error {
	if err := si.handle.SetInterfaceAltSetting(si.InterfaceNumber(), alt); err != nil {
		return fmt.Errorf("failed to set alternate setting %d: %w", alt, err)
	}
	return nil
}

func (si *StreamingInterface) get(selector VideoStreamingInterfaceControlSelector, rc requests.RequestCode, data []byte) error {
	_, err := requests.Do(si.handle,
		requests.RequestTypeVideoInterfaceGetRequest, rc,
		uint16(selector)<<8, uint16(si.InterfaceNumber()), data)
	return err
}

func (si *StreamingInterface) set(selector VideoStreamingInterfaceControlSelector, data []byte) error {
	_, err := requests.Do(si.handle,
		requests.RequestTypeVideoInterfaceSetRequest, requests.RequestCodeSetCur,
		uint16(selector)<<8, uint16(si.InterfaceNumber()), data)
	return err
}

// NegotiateVideo runs the probe/commit handshake for the video stream that
// carries still payloads between captures. The device's GET_MAX bounds seed
// the request so fields this driver does not care about stay within range.
func (si *StreamingInterface) NegotiateVideo(formatIndex, frameIndex uint8, frameInterval time.Duration) (*descriptors.VideoProbeCommitControl, error) {
	vpcc := &descriptors.VideoProbeCommitControl{}
	// the 26-byte legacy layout, whatever bcdUVC the device reports
	buf := make([]byte, vpcc.MarshalSize(0x0100))

	if err := si.get(VideoStreamingInterfaceControlSelectorProbeControl, requests.RequestCodeGetMax, buf); err != nil {
		return nil, fmt.Errorf("video probe GET_MAX failed: %w", err)
	}
	if err := vpcc.UnmarshalBinary(buf); err != nil {
		return nil, err
	}

	vpcc.FormatIndex = formatIndex
	vpcc.FrameIndex = frameIndex
	vpcc.FrameInterval = frameInterval
	if err := vpcc.MarshalInto(buf); err != nil {
		return nil, err
	}
	if err := si.set(VideoStreamingInterfaceControlSelectorProbeControl, buf); err != nil {
		return nil, fmt.Errorf("video probe SET_CUR failed: %w", err)
	}

	if err := si.get(VideoStreamingInterfaceControlSelectorProbeControl, requests.RequestCodeGetCur, buf); err != nil {
		return nil, fmt.Errorf("video probe GET_CUR failed: %w", err)
	}
	if err := si.set(VideoStreamingInterfaceControlSelectorCommitControl, buf); err != nil {
		return nil, fmt.Errorf("video commit SET_CUR failed: %w", err)
	}
	if err := vpcc.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return vpcc, nil
}

// NegotiateStill runs the still probe/commit handshake for a frame index from
// the still image frame descriptor. MaxVideoFrameSize is requested wide open
// so the device answers with what it can actually deliver. When
// skipCommitReadback is set, the commit is not read back with GET_CUR;
// some firmware stalls that request after a commit.
func (si *StreamingInterface) NegotiateStill(frameIndex uint8, skipCommitReadback bool) (*descriptors.StillProbeCommitControl, error) {
	spcc := &descriptors.StillProbeCommitControl{
		FormatIndex:       1,
		FrameIndex:        frameIndex,
		CompressionIndex:  1,
		MaxVideoFrameSize: 0xFFFFFFFF,
	}
	buf := make([]byte, descriptors.StillProbeCommitControlSize)
	if err := spcc.MarshalInto(buf); err != nil {
		return nil, err
	}
	if err := si.set(VideoStreamingInterfaceControlSelectorStillProbeControl, buf); err != nil {
		return nil, fmt.Errorf("still probe SET_CUR failed: %w", err)
	}
	if err := si.get(VideoStreamingInterfaceControlSelectorStillProbeControl, requests.RequestCodeGetCur, buf); err != nil {
		return nil, fmt.Errorf("still probe GET_CUR failed: %w", err)
	}
	if err := spcc.UnmarshalBinary(buf); err != nil {
		return nil, err
	}

	if err := si.set(VideoStreamingInterfaceControlSelectorStillCommitControl, buf); err != nil {
		return nil, fmt.Errorf("still commit SET_CUR failed: %w", err)
	}
	if !skipCommitReadback {
		if err := si.get(VideoStreamingInterfaceControlSelectorStillCommitControl, requests.RequestCodeGetCur, buf); err != nil {
			return nil, fmt.Errorf("still commit GET_CUR failed: %w", err)
		}
		if err := spcc.UnmarshalBinary(buf); err != nil {
			return nil, err
		}
	}
	return spcc, nil
}

// TriggerStill asks the device to transmit one still image over the video
// streaming endpoint.
func (si *StreamingInterface) TriggerStill() error {
	sitc := &descriptors.StillImageTriggerControl{Trigger: descriptors.StillImageTriggerTransmit}
	buf, err := sitc.MarshalBinary()
	if err != nil {
		return err
	}
	if err := si.set(VideoStreamingInterfaceControlSelectorStillImageTriggerControl, buf); err != nil {
		return fmt.Errorf("still trigger SET_CUR failed: %w", err)
	}
	return nil
}

// AbortStill cancels an in-progress still transmission.
func (si *StreamingInterface) AbortStill() error {
	sitc := &descriptors.StillImageTriggerControl{Trigger: descriptors.StillImageTriggerAbort}
	buf, err := sitc.MarshalBinary()
	if err != nil {
		return err
	}
	return si.set(VideoStreamingInterfaceControlSelectorStillImageTriggerControl, buf)
}

// NewCaptureEngine builds the transfer pool for the chosen alternate setting
// and wraps it in a capture engine. The engine is not started.
func (si *StreamingInterface) NewCaptureEngine(choice AltSettingChoice, maxPayloadTransferSize uint32) (*CaptureEngine, error) {
	var (
		transports []Transport
		bufSize    int
		err        error
	)
	if choice.Isochronous {
		transports, bufSize, err = NewIsochronousTransports(si.handle, choice.EndpointAddress, choice.PacketSize)
	} else {
		transports, bufSize, err = NewBulkTransports(si.handle, choice.EndpointAddress, maxPayloadTransferSize)
	}
	if err != nil {
		return nil, err
	}
	return NewCaptureEngine(NewTransferPool(transports, bufSize)), nil
}
