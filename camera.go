package uvcstill

import (
	usb "github.com/kevmo314/go-usb"

	"github.com/openstill/uvcstill/pkg/descriptors"
	"github.com/openstill/uvcstill/pkg/requests"
)

// CameraTerminal wraps the camera input terminal's property controls.
type CameraTerminal struct {
	handle           *usb.DeviceHandle
	interfaceNumber  uint8
	CameraDescriptor *descriptors.CameraTerminalDescriptor
}

func (ct *CameraTerminal) UnitID() uint8 {
	return ct.CameraDescriptor.TerminalID
}

// Get reads the control's current value into desc.
func (ct *CameraTerminal) Get(desc descriptors.CameraTerminalControlDescriptor) error {
	buf, err := desc.MarshalBinary()
	if err != nil {
		return err
	}
	if err := unitRequest(ct.handle, requests.RequestCodeGetCur, ct.UnitID(), ct.interfaceNumber, uint8(desc.Value()), buf); err != nil {
		return err
	}
	return desc.UnmarshalBinary(buf)
}

func (ct *CameraTerminal) Set(desc descriptors.CameraTerminalControlDescriptor) error {
	buf, err := desc.MarshalBinary()
	if err != nil {
		return err
	}
	return unitRequest(ct.handle, requests.RequestCodeSetCur, ct.UnitID(), ct.interfaceNumber, uint8(desc.Value()), buf)
}

func (ct *CameraTerminal) GetAutoFocus() (bool, error) {
	fac := &descriptors.FocusAutoControl{}
	if err := ct.Get(fac); err != nil {
		return false, err
	}
	return fac.FocusAuto, nil
}

func (ct *CameraTerminal) SetAutoFocus(on bool) error {
	return ct.Set(&descriptors.FocusAutoControl{FocusAuto: on})
}

func (ct *CameraTerminal) GetExposureTime() (uint32, error) {
	etac := &descriptors.ExposureTimeAbsoluteControl{}
	if err := ct.Get(etac); err != nil {
		return 0, err
	}
	return etac.Time, nil
}

// SetExposureTime sets the absolute exposure time in 100us units. Most
// sensors require manual or shutter-priority auto-exposure mode first.
func (ct *CameraTerminal) SetExposureTime(time uint32) error {
	return ct.Set(&descriptors.ExposureTimeAbsoluteControl{Time: time})
}

func (ct *CameraTerminal) SetAutoExposureMode(mode descriptors.AutoExposureMode) error {
	return ct.Set(&descriptors.AutoExposureModeControl{Mode: mode})
}
