package uvcstill

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/openstill/uvcstill/pkg/descriptors"
	"github.com/openstill/uvcstill/pkg/transfers"
)

// maxFrameSizePatterns caps the catalogue; devices advertising more patterns
// have the tail ignored.
const maxFrameSizePatterns = 10

// videoFrameInterval is the frame interval requested for the carrier video
// stream, in 100ns units it is 333333 (30fps).
const videoFrameInterval = 333333 * 100 * time.Nanosecond

// FrameSize is one still image size pattern from the catalogue.
type FrameSize struct {
	Width  uint32
	Height uint32
}

// StillCamera drives still-image capture on one device: it owns the
// streaming interface, the negotiated still and video streams, and the
// capture engine behind the read path.
type StillCamera struct {
	dev  *UVCDevice
	info *DeviceInfo
	si   *transfers.StreamingInterface

	mu         sync.Mutex
	sizes      []FrameSize
	sizeIndex  int
	streaming  bool
	suspended  bool
	engine     *transfers.CaptureEngine
	choice     transfers.AltSettingChoice
	maxPayload uint32
	opens      int
	shared     bool
	closed     bool
	status     *statusListener
}

// NewStillCamera walks the device descriptors and binds the first
// VideoStreaming interface that advertises a still image frame descriptor.
// The streaming interface is claimed; streaming itself starts with Start.
func NewStillCamera(dev *UVCDevice) (*StillCamera, error) {
	info, err := dev.DeviceInfo()
	if err != nil {
		return nil, err
	}

	var si *transfers.StreamingInterface
	var sifd *descriptors.StillImageFrameDescriptor
	for _, cand := range info.StreamingInterfaces {
		if descs := cand.StillImageFrameDescriptors(); len(descs) > 0 {
			si = cand
			sifd = descs[0]
			break
		}
	}
	if si == nil {
		return nil, ErrNoStillDescriptors
	}

	sc := &StillCamera{dev: dev, info: info, si: si}
	for i, pattern := range sifd.ImageSizePatterns {
		if i == maxFrameSizePatterns {
			log.Printf("still size catalogue truncated to %d patterns", maxFrameSizePatterns)
			break
		}
		sc.sizes = append(sc.sizes, FrameSize{Width: uint32(pattern.Width), Height: uint32(pattern.Height)})
	}
	if len(sc.sizes) == 0 {
		return nil, ErrNoStillDescriptors
	}
	// default to the largest advertised image
	for i, size := range sc.sizes {
		if size.Width > sc.sizes[sc.sizeIndex].Width {
			sc.sizeIndex = i
		}
	}

	if err := si.Claim(); err != nil {
		return nil, err
	}
	if info.StatusEndpoint != nil {
		sc.status = newStatusListener(dev.Handle(), info.StatusEndpoint)
	}
	return sc, nil
}

func (sc *StillCamera) Info() *DeviceInfo {
	return sc.info
}

// FrameSizes returns the still size catalogue.
func (sc *StillCamera) FrameSizes() []FrameSize {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sizes := make([]FrameSize, len(sc.sizes))
	copy(sizes, sc.sizes)
	return sizes
}

func (sc *StillCamera) FrameSize() FrameSize {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sizes[sc.sizeIndex]
}

// SetFrameSize selects a catalogue entry and renegotiates both streams. The
// stream must be started; a capture in flight is abandoned.
func (sc *StillCamera) SetFrameSize(size FrameSize) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	index := -1
	for i, cand := range sc.sizes {
		if cand == size {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrFrameSizeNotSupported
	}
	sc.sizeIndex = index
	if !sc.streaming {
		return nil
	}
	return sc.renegotiateLocked()
}

// negotiateLocked runs the still handshake for the selected size and then
// the carrier video handshake. The still negotiation comes first; committing
// video resets some firmwares' still selection.
func (sc *StillCamera) negotiateLocked() error {
	spcc, err := sc.si.NegotiateStill(uint8(sc.sizeIndex)+1, sc.dev.IsUnityCamera())
	if err != nil {
		return fmt.Errorf("still negotiation failed: %w", err)
	}
	sc.maxPayload = spcc.MaxPayloadTransferSize
	if _, err := sc.si.NegotiateVideo(1, 1, videoFrameInterval); err != nil {
		return fmt.Errorf("video negotiation failed: %w", err)
	}
	return nil
}

func (sc *StillCamera) renegotiateLocked() error {
	if err := sc.stopTransfersLocked(); err != nil {
		return err
	}
	if err := sc.negotiateLocked(); err != nil {
		return err
	}
	return sc.startTransfersLocked()
}

// startTransfersLocked selects the max-bandwidth alternate setting and
// brings up a fresh engine. The warm-up trigger guard restarts with it.
func (sc *StillCamera) startTransfersLocked() error {
	headers := sc.si.InputHeaderDescriptors()
	if len(headers) == 0 {
		return ErrNoStillDescriptors
	}
	choice, err := transfers.SelectAltSetting(sc.si.Interface(), headers[0].EndpointAddress)
	if err != nil {
		return err
	}
	if err := sc.si.SetAltSetting(choice.AltSetting); err != nil {
		return err
	}
	engine, err := sc.si.NewCaptureEngine(choice, sc.maxPayload)
	if err != nil {
		return err
	}
	if err := engine.Start(); err != nil {
		return err
	}
	sc.choice = choice
	sc.engine = engine
	sc.suspended = false
	if sc.opens > 0 {
		engine.Attach()
	}
	return nil
}

func (sc *StillCamera) stopTransfersLocked() error {
	if sc.engine == nil {
		return nil
	}
	err := sc.engine.Stop()
	sc.engine = nil
	sc.suspended = false
	return err
}

// Start negotiates both streams and begins streaming on the max-bandwidth
// alternate setting.
func (sc *StillCamera) Start() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		return ErrDeviceGone
	}
	if sc.streaming {
		return nil
	}
	if err := sc.negotiateLocked(); err != nil {
		return err
	}
	if err := sc.startTransfersLocked(); err != nil {
		return err
	}
	sc.streaming = true
	if sc.status != nil {
		sc.status.Start()
	}
	return nil
}

// Stop idles the endpoint on alternate setting zero and tears the transfers
// down.
func (sc *StillCamera) Stop() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if !sc.streaming {
		return nil
	}
	err := sc.stopTransfersLocked()
	if altErr := sc.si.SetAltSetting(0); altErr != nil && err == nil {
		err = altErr
	}
	sc.streaming = false
	return err
}

// Suspend cancels the in-flight transfers without touching the alternate
// setting or the negotiated streams.
func (sc *StillCamera) Suspend() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if !sc.streaming || sc.suspended {
		return nil
	}
	if err := sc.stopTransfersLocked(); err != nil {
		return err
	}
	sc.suspended = true
	return nil
}

// Resume reselects the alternate setting and resubmits transfers after a
// Suspend.
func (sc *StillCamera) Resume() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if !sc.streaming {
		return ErrNotStreaming
	}
	if !sc.suspended {
		return nil
	}
	return sc.startTransfersLocked()
}

// Trigger asks the device for one still image. It blocks until the carrier
// video stream has proven itself with two complete frames, then discards any
// buffered predecessor and issues the trigger control.
func (sc *StillCamera) Trigger() error {
	sc.mu.Lock()
	if !sc.streaming || sc.engine == nil {
		sc.mu.Unlock()
		return ErrNotStreaming
	}
	engine := sc.engine
	sc.mu.Unlock()

	if err := engine.WaitTriggerable(); err != nil {
		return err
	}
	engine.ResetFrame()
	return sc.si.TriggerStill()
}

// AbortStill cancels an in-progress still transmission on the device.
func (sc *StillCamera) AbortStill() error {
	return sc.si.AbortStill()
}

// Stats returns the capture engine's packet counters, zeroed when streaming
// is down.
func (sc *StillCamera) Stats() transfers.EngineStats {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.engine == nil {
		return transfers.EngineStats{}
	}
	return sc.engine.Stats()
}

// Close stops streaming, releases the interface and closes the status
// listener. The device handle itself stays open for the owner to close.
func (sc *StillCamera) Close() error {
	sc.mu.Lock()
	if sc.closed {
		sc.mu.Unlock()
		return nil
	}
	sc.closed = true
	err := sc.stopTransfersLocked()
	streaming := sc.streaming
	sc.streaming = false
	sc.mu.Unlock()

	if sc.status != nil {
		sc.status.Stop()
	}
	if streaming {
		if altErr := sc.si.SetAltSetting(0); altErr != nil && err == nil {
			err = altErr
		}
	}
	if relErr := sc.si.Release(); relErr != nil && err == nil {
		err = relErr
	}
	return err
}
