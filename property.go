package uvcstill

import (
	"encoding/binary"
	"io"

	usb "github.com/kevmo314/go-usb"

	"github.com/openstill/uvcstill/pkg/requests"
)

// UnitPropertyMaxSize bounds the whole property envelope on the wire,
// header included.
const UnitPropertyMaxSize = 64

const unitPropertyHeaderSize = 4

// UnitProperty is a raw property transfer against a VideoControl unit: a
// control selector, the request code to issue, and the payload bytes. It is
// the wire argument of the property control operations.
type UnitProperty struct {
	ControlSelector uint8
	Request         requests.RequestCode
	Data            []byte
}

func (p *UnitProperty) MarshalSize() int {
	return unitPropertyHeaderSize + len(p.Data)
}

func (p *UnitProperty) MarshalBinary() ([]byte, error) {
	if p.MarshalSize() > UnitPropertyMaxSize {
		return nil, ErrPropertyTooLarge
	}
	buf := make([]byte, p.MarshalSize())
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(p.Data)))
	buf[2] = p.ControlSelector
	buf[3] = uint8(p.Request)
	copy(buf[4:], p.Data)
	return buf, nil
}

func (p *UnitProperty) UnmarshalBinary(buf []byte) error {
	if len(buf) < unitPropertyHeaderSize {
		return io.ErrShortBuffer
	}
	if len(buf) > UnitPropertyMaxSize {
		return ErrPropertyTooLarge
	}
	n := int(binary.LittleEndian.Uint16(buf[0:2]))
	if unitPropertyHeaderSize+n > UnitPropertyMaxSize {
		return ErrPropertyTooLarge
	}
	if len(buf) < unitPropertyHeaderSize+n {
		return io.ErrShortBuffer
	}
	p.ControlSelector = buf[2]
	p.Request = requests.RequestCode(buf[3])
	p.Data = make([]byte, n)
	copy(p.Data, buf[4:4+n])
	return nil
}

// getProperty issues the envelope's GET request against the unit and returns
// the envelope with its data filled in.
func getProperty(handle *usb.DeviceHandle, unitID, interfaceNumber uint8, p *UnitProperty) error {
	if !p.Request.ValidGet() {
		return ErrInvalidRequestCode
	}
	return unitRequest(handle, p.Request, unitID, interfaceNumber, p.ControlSelector, p.Data)
}

// setProperty issues the envelope's SET request against the unit.
func setProperty(handle *usb.DeviceHandle, unitID, interfaceNumber uint8, p *UnitProperty) error {
	if !p.Request.ValidSet() {
		return ErrInvalidRequestCode
	}
	return unitRequest(handle, p.Request, unitID, interfaceNumber, p.ControlSelector, p.Data)
}
