package uvcstill

import (
	usb "github.com/kevmo314/go-usb"

	"github.com/openstill/uvcstill/pkg/descriptors"
	"github.com/openstill/uvcstill/pkg/requests"
)

var puControls = []descriptors.ProcessingUnitControlDescriptor{
	&descriptors.BrightnessControl{},
	&descriptors.ContrastControl{},
	&descriptors.HueControl{},
	&descriptors.SaturationControl{},
	&descriptors.SharpnessControl{},
	&descriptors.GammaControl{},
	&descriptors.WhiteBalanceTemperatureControl{},
	&descriptors.BacklightCompensationControl{},
	&descriptors.GainControl{},
	&descriptors.PowerLineFrequencyControl{},
	&descriptors.WhiteBalanceTemperatureAutoControl{},
}

// ProcessingUnit wraps the processing unit's property controls.
type ProcessingUnit struct {
	handle          *usb.DeviceHandle
	interfaceNumber uint8
	UnitDescriptor  *descriptors.ProcessingUnitDescriptor
}

func (pu *ProcessingUnit) UnitID() uint8 {
	return pu.UnitDescriptor.UnitID
}

func (pu *ProcessingUnit) GetSupportedControls() []descriptors.ProcessingUnitControlDescriptor {
	var supportedControls []descriptors.ProcessingUnitControlDescriptor
	for _, desc := range puControls {
		if pu.IsControlRequestSupported(desc) {
			supportedControls = append(supportedControls, desc)
		}
	}
	return supportedControls
}

func (pu *ProcessingUnit) IsControlRequestSupported(desc descriptors.ProcessingUnitControlDescriptor) bool {
	byteIndex := desc.FeatureBit() / 8
	bitIndex := desc.FeatureBit() % 8

	// Support devices that follow older UVC versions (PUD length 10+n vs 13). See UVC 1.1
	if byteIndex >= len(pu.UnitDescriptor.ControlsBitmask) {
		return false
	}

	return (pu.UnitDescriptor.ControlsBitmask[byteIndex] & (1 << bitIndex)) != 0
}

func (pu *ProcessingUnit) Get(desc descriptors.ProcessingUnitControlDescriptor) error {
	buf, err := desc.MarshalBinary()
	if err != nil {
		return err
	}
	if err := unitRequest(pu.handle, requests.RequestCodeGetCur, pu.UnitID(), pu.interfaceNumber, uint8(desc.Value()), buf); err != nil {
		return err
	}
	return desc.UnmarshalBinary(buf)
}

func (pu *ProcessingUnit) Set(desc descriptors.ProcessingUnitControlDescriptor) error {
	buf, err := desc.MarshalBinary()
	if err != nil {
		return err
	}
	return unitRequest(pu.handle, requests.RequestCodeSetCur, pu.UnitID(), pu.interfaceNumber, uint8(desc.Value()), buf)
}
