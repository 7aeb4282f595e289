package uvcstill

import (
	"fmt"

	usb "github.com/kevmo314/go-usb"

	"github.com/openstill/uvcstill/pkg/requests"
)

// unitRequest issues one property transfer against a VideoControl unit or
// terminal. The control selector rides the high byte of wValue and the unit
// ID the high byte of wIndex, UVC spec 1.5, section 4.2.
func unitRequest(handle *usb.DeviceHandle, rc requests.RequestCode, unitID uint8, interfaceNumber uint8, selector uint8, data []byte) error {
	n, err := requests.Do(handle, rc.RequestType(), rc,
		uint16(selector)<<8,
		uint16(unitID)<<8|uint16(interfaceNumber),
		data)
	if err != nil {
		return err
	}
	if rc.In() && n < len(data) {
		return fmt.Errorf("short read on unit %d selector %#02x: %d of %d bytes", unitID, selector, n, len(data))
	}
	return nil
}
