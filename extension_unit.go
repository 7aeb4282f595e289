package uvcstill

import (
	"fmt"

	usb "github.com/kevmo314/go-usb"

	"github.com/openstill/uvcstill/pkg/descriptors"
	"github.com/openstill/uvcstill/pkg/requests"
)

// Vendor-defined extension unit registers of the Unity camera firmware.
const (
	ExtensionSelectorExposureMode uint8 = 0x01 // len 1: 0 auto, 1 hold, 2 manual, 3 shutter, 4 iso
	ExtensionSelectorEVCorrection uint8 = 0x02 // len 2: -6..6
	ExtensionSelectorShutterSpeed uint8 = 0x0A // len 1: 1..38
	ExtensionSelectorGain         uint8 = 0x0B // len 2: 1..65535, default 800
	ExtensionSelectorFirmwareRev  uint8 = 0x15 // len 8, read-only
)

// ExposureMode values for ExtensionSelectorExposureMode.
type ExposureMode uint8

const (
	ExposureModeAuto    ExposureMode = 0
	ExposureModeHold    ExposureMode = 1
	ExposureModeManual  ExposureMode = 2
	ExposureModeShutter ExposureMode = 3
	ExposureModeISO     ExposureMode = 4
)

// ExtensionUnit wraps one vendor extension unit's raw register controls.
type ExtensionUnit struct {
	handle          *usb.DeviceHandle
	interfaceNumber uint8
	UnitDescriptor  *descriptors.ExtensionUnitDescriptor
}

func (eu *ExtensionUnit) UnitID() uint8 {
	return eu.UnitDescriptor.UnitID
}

// Get reads len(data) bytes of the register behind selector.
func (eu *ExtensionUnit) Get(selector uint8, data []byte) error {
	return unitRequest(eu.handle, requests.RequestCodeGetCur, eu.UnitID(), eu.interfaceNumber, selector, data)
}

// GetRange reads the register's MIN and MAX bounds.
func (eu *ExtensionUnit) GetRange(selector uint8, min, max []byte) error {
	if err := unitRequest(eu.handle, requests.RequestCodeGetMin, eu.UnitID(), eu.interfaceNumber, selector, min); err != nil {
		return err
	}
	return unitRequest(eu.handle, requests.RequestCodeGetMax, eu.UnitID(), eu.interfaceNumber, selector, max)
}

func (eu *ExtensionUnit) Set(selector uint8, data []byte) error {
	return unitRequest(eu.handle, requests.RequestCodeSetCur, eu.UnitID(), eu.interfaceNumber, selector, data)
}

func (eu *ExtensionUnit) GetExposureMode() (ExposureMode, error) {
	var buf [1]byte
	if err := eu.Get(ExtensionSelectorExposureMode, buf[:]); err != nil {
		return 0, err
	}
	return ExposureMode(buf[0]), nil
}

func (eu *ExtensionUnit) SetExposureMode(mode ExposureMode) error {
	if mode > ExposureModeISO {
		return fmt.Errorf("exposure mode %d out of range", mode)
	}
	return eu.Set(ExtensionSelectorExposureMode, []byte{byte(mode)})
}

func (eu *ExtensionUnit) SetEVCorrection(ev int16) error {
	if ev < -6 || ev > 6 {
		return fmt.Errorf("ev correction %d out of range [-6, 6]", ev)
	}
	return eu.Set(ExtensionSelectorEVCorrection, []byte{byte(uint16(ev)), byte(uint16(ev) >> 8)})
}

func (eu *ExtensionUnit) SetShutterSpeed(speed uint8) error {
	if speed < 1 || speed > 38 {
		return fmt.Errorf("shutter speed %d out of range [1, 38]", speed)
	}
	return eu.Set(ExtensionSelectorShutterSpeed, []byte{speed})
}

func (eu *ExtensionUnit) SetGain(gain uint16) error {
	if gain < 1 {
		return fmt.Errorf("gain %d out of range [1, 65535]", gain)
	}
	return eu.Set(ExtensionSelectorGain, []byte{byte(gain), byte(gain >> 8)})
}

// FirmwareRevision reads the 8-byte firmware revision register.
func (eu *ExtensionUnit) FirmwareRevision() ([8]byte, error) {
	var rev [8]byte
	err := eu.Get(ExtensionSelectorFirmwareRev, rev[:])
	return rev, err
}
