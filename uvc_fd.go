package uvcstill

import (
	"sync/atomic"

	usb "github.com/kevmo314/go-usb"
)

// NewUVCDevice wraps an already-open usbfs file descriptor, for callers that
// receive the device node from a broker rather than enumerating themselves.
// Vendor and product identity are unknown on this path; quirk handling can be
// forced with SetIdentity.
func NewUVCDevice(fd uintptr) (*UVCDevice, error) {
	handle, err := usb.WrapSysDevice(int(fd))
	if err != nil {
		return nil, err
	}
	return &UVCDevice{handle: handle, closed: &atomic.Bool{}}, nil
}

// SetIdentity records the vendor and product IDs for quirk detection when the
// device was opened from a bare file descriptor.
func (d *UVCDevice) SetIdentity(vendorID, productID uint16) {
	d.vendorID = vendorID
	d.productID = productID
}
