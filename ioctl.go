package uvcstill

import (
	"encoding/binary"
	"io"
)

// Control request codes understood by Handle.Control. The numeric values are
// the driver's longstanding wire contract and must not be renumbered.
const (
	ControlTriggerStillImage     uint32 = 1226
	ControlSetFrameSize          uint32 = 1227
	ControlGetFrameSize          uint32 = 1228
	ControlSuspend               uint32 = 1229
	ControlResume                uint32 = 1230
	ControlSetCameraProperty     uint32 = 1231
	ControlGetCameraProperty     uint32 = 1232
	ControlSetProcessingProperty uint32 = 1233
	ControlGetProcessingProperty uint32 = 1234
	ControlSetExtensionProperty  uint32 = 1235
	ControlGetExtensionProperty  uint32 = 1236
	ControlStart                 uint32 = 1237
	ControlStop                  uint32 = 1238
)

const frameSizeWireSize = 8

func (fs *FrameSize) MarshalBinary() ([]byte, error) {
	buf := make([]byte, frameSizeWireSize)
	binary.LittleEndian.PutUint32(buf[0:4], fs.Width)
	binary.LittleEndian.PutUint32(buf[4:8], fs.Height)
	return buf, nil
}

func (fs *FrameSize) UnmarshalBinary(buf []byte) error {
	if len(buf) < frameSizeWireSize {
		return io.ErrShortBuffer
	}
	fs.Width = binary.LittleEndian.Uint32(buf[0:4])
	fs.Height = binary.LittleEndian.Uint32(buf[4:8])
	return nil
}

// Control dispatches one device control request. arg carries the request's
// input payload; requests that produce output return it as bytes. Unknown
// codes fail with ErrUnknownRequest.
func (h *Handle) Control(code uint32, arg []byte) ([]byte, error) {
	if h.closed {
		return nil, ErrDeviceGone
	}
	sc := h.sc
	switch code {
	case ControlTriggerStillImage:
		return nil, sc.Trigger()
	case ControlSetFrameSize:
		var fs FrameSize
		if err := fs.UnmarshalBinary(arg); err != nil {
			return nil, err
		}
		return nil, sc.SetFrameSize(fs)
	case ControlGetFrameSize:
		fs := sc.FrameSize()
		return fs.MarshalBinary()
	case ControlSuspend:
		return nil, sc.Suspend()
	case ControlResume:
		return nil, sc.Resume()
	case ControlStart:
		return nil, sc.Start()
	case ControlStop:
		return nil, sc.Stop()
	case ControlSetCameraProperty, ControlGetCameraProperty:
		if sc.info.CameraTerminal == nil {
			return nil, ErrNoCameraTerminal
		}
		return h.unitProperty(code == ControlGetCameraProperty,
			sc.info.CameraTerminal.UnitID(), arg)
	case ControlSetProcessingProperty, ControlGetProcessingProperty:
		if sc.info.ProcessingUnit == nil {
			return nil, ErrNoProcessingUnit
		}
		return h.unitProperty(code == ControlGetProcessingProperty,
			sc.info.ProcessingUnit.UnitID(), arg)
	case ControlSetExtensionProperty, ControlGetExtensionProperty:
		if len(sc.info.ExtensionUnits) == 0 {
			return nil, ErrNoExtensionUnit
		}
		return h.unitProperty(code == ControlGetExtensionProperty,
			sc.info.ExtensionUnits[0].UnitID(), arg)
	}
	return nil, ErrUnknownRequest
}

func (h *Handle) unitProperty(get bool, unitID uint8, arg []byte) ([]byte, error) {
	prop := &UnitProperty{}
	if err := prop.UnmarshalBinary(arg); err != nil {
		return nil, err
	}
	ifnum := h.sc.info.ControlInterfaceNumber
	if get {
		if err := getProperty(h.sc.dev.Handle(), unitID, ifnum, prop); err != nil {
			return nil, err
		}
		return prop.MarshalBinary()
	}
	return nil, setProperty(h.sc.dev.Handle(), unitID, ifnum, prop)
}
