package uvcstill

import (
	"errors"
	"fmt"
	"sync/atomic"

	usb "github.com/kevmo314/go-usb"

	"github.com/openstill/uvcstill/pkg/descriptors"
	"github.com/openstill/uvcstill/pkg/transfers"
)

// UVCDevice is one opened video-class device.
type UVCDevice struct {
	handle    *usb.DeviceHandle
	vendorID  uint16
	productID uint16
	closed    *atomic.Bool
}

// OpenDevice opens a device from the enumeration list.
func OpenDevice(dev *usb.Device) (*UVCDevice, error) {
	handle, err := dev.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dev.Path, err)
	}
	return &UVCDevice{
		handle:    handle,
		vendorID:  dev.Descriptor.VendorID,
		productID: dev.Descriptor.ProductID,
		closed:    &atomic.Bool{},
	}, nil
}

// Handle exposes the underlying USB handle for transfer construction.
func (d *UVCDevice) Handle() *usb.DeviceHandle {
	return d.handle
}

func (d *UVCDevice) VendorID() uint16  { return d.vendorID }
func (d *UVCDevice) ProductID() uint16 { return d.productID }

// IsUnityCamera reports whether this is the camera with the post-commit
// GET_CUR firmware stall.
func (d *UVCDevice) IsUnityCamera() bool {
	return d.vendorID == unityVendorID && d.productID == unityProductID
}

func (d *UVCDevice) Close() error {
	d.closed.Store(true)
	return d.handle.Close()
}

func (d *UVCDevice) Closed() bool {
	return d.closed.Load()
}

// ControlInterface is one parsed unit or terminal of the VideoControl
// interface.
type ControlInterface struct {
	CameraTerminal *CameraTerminal
	Descriptor     descriptors.ControlInterface
}

// StatusEndpoint describes the VideoControl interrupt endpoint used for
// asynchronous device status, when the device exposes one.
type StatusEndpoint struct {
	EndpointAddress uint8
	MaxPacketSize   uint16
	Interval        uint8

	// MaxTransferSize is the class-specific payload cap from the interrupt
	// endpoint descriptor, zero when the device does not carry one.
	MaxTransferSize uint16
}

// DeviceInfo is the result of the descriptor walk: the VideoControl units
// addressable for property requests and the VideoStreaming interfaces that
// can carry still payloads.
type DeviceInfo struct {
	bcdUVC     uint16 // cached since it's used a lot
	handle     *usb.DeviceHandle
	configDesc *usb.ConfigDescriptor

	ControlInterfaceNumber uint8
	ControlInterfaces      []*ControlInterface
	StreamingInterfaces    []*transfers.StreamingInterface

	CameraTerminal *CameraTerminal
	ProcessingUnit *ProcessingUnit
	ExtensionUnits []*ExtensionUnit
	StatusEndpoint *StatusEndpoint
}

func (info *DeviceInfo) UVCVersion() uint16 {
	return info.bcdUVC
}

// DeviceInfo walks the active configuration's class-specific descriptors.
func (d *UVCDevice) DeviceInfo() (*DeviceInfo, error) {
	configDesc, err := d.handle.GetActiveConfigDescriptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get config descriptor: %w", err)
	}

	// scan for the video control interface
	ifaceIdx := -1
	for i, iface := range configDesc.Interfaces {
		if len(iface.AltSettings) == 0 {
			continue
		}
		if iface.AltSettings[0].InterfaceClass == ClassVideo && iface.AltSettings[0].InterfaceSubClass == SubclassVideoControl {
			ifaceIdx = i
			break
		}
	}
	if ifaceIdx == -1 {
		return nil, fmt.Errorf("video control interface not found")
	}

	controlSetting := &configDesc.Interfaces[ifaceIdx].AltSettings[0]
	info := &DeviceInfo{
		handle:                 d.handle,
		configDesc:             configDesc,
		ControlInterfaceNumber: controlSetting.InterfaceNumber,
	}

	var interruptEP descriptors.StandardVideoControlInterruptEndpointDescriptor
	vcbuf := controlSetting.Extra
	for i := 0; i != len(vcbuf); i += int(vcbuf[i]) {
		block := vcbuf[i : i+int(vcbuf[i])]
		if len(block) >= 3 && block[1] == 0x25 {
			// CS_ENDPOINT rides along in the same blob
			if err := interruptEP.UnmarshalBinary(block); err != nil && !errors.Is(err, descriptors.ErrInvalidDescriptor) {
				return nil, err
			}
			continue
		}
		if len(block) < 3 || block[1] != 0x24 {
			// ignore blocks that are not CS_INTERFACE 0x24
			continue
		}
		ci, err := descriptors.UnmarshalControlInterface(block)
		if errors.Is(err, descriptors.ErrUnsupportedDescriptor) {
			continue
		} else if err != nil {
			return nil, err
		}
		switch ci := ci.(type) {
		case *descriptors.InputTerminalDescriptor:
			if !ci.IsCamera() {
				info.ControlInterfaces = append(info.ControlInterfaces, &ControlInterface{Descriptor: ci})
				continue
			}
			camDesc := &descriptors.CameraTerminalDescriptor{}
			if err := camDesc.UnmarshalBinary(block); err != nil {
				return nil, err
			}
			camera := &CameraTerminal{
				handle:           d.handle,
				interfaceNumber:  controlSetting.InterfaceNumber,
				CameraDescriptor: camDesc,
			}
			info.CameraTerminal = camera
			info.ControlInterfaces = append(info.ControlInterfaces, &ControlInterface{CameraTerminal: camera, Descriptor: camDesc})
		case *descriptors.ProcessingUnitDescriptor:
			pu := &ProcessingUnit{
				handle:          d.handle,
				interfaceNumber: controlSetting.InterfaceNumber,
				UnitDescriptor:  ci,
			}
			info.ProcessingUnit = pu
			info.ControlInterfaces = append(info.ControlInterfaces, &ControlInterface{Descriptor: ci})
		case *descriptors.ExtensionUnitDescriptor:
			eu := &ExtensionUnit{
				handle:          d.handle,
				interfaceNumber: controlSetting.InterfaceNumber,
				UnitDescriptor:  ci,
			}
			info.ExtensionUnits = append(info.ExtensionUnits, eu)
			info.ControlInterfaces = append(info.ControlInterfaces, &ControlInterface{Descriptor: ci})
		case *descriptors.HeaderDescriptor:
			info.bcdUVC = ci.UVC
			// pull the streaming interfaces too
			for _, idx := range ci.VideoStreamingInterfaceIndexes {
				if int(idx) >= len(configDesc.Interfaces) {
					continue
				}
				iface := &configDesc.Interfaces[idx]
				if len(iface.AltSettings) == 0 {
					continue
				}
				asi := transfers.NewStreamingInterface(d.handle, iface, info.bcdUVC)
				vsbuf := iface.AltSettings[0].Extra
				for j := 0; j != len(vsbuf); j += int(vsbuf[j]) {
					block := vsbuf[j : j+int(vsbuf[j])]
					si, err := descriptors.UnmarshalStreamingInterface(block)
					if errors.Is(err, descriptors.ErrUnsupportedDescriptor) {
						continue
					} else if err != nil {
						return nil, err
					}
					asi.Descriptors = append(asi.Descriptors, si)
				}
				info.StreamingInterfaces = append(info.StreamingInterfaces, asi)
			}
		default:
			// a unit this driver does not address directly
			info.ControlInterfaces = append(info.ControlInterfaces, &ControlInterface{Descriptor: ci})
		}
	}

	// Look for the VideoControl interrupt-IN status endpoint. Small or
	// unpolled endpoints are ignored; a packet under 8 bytes cannot carry a
	// UVC 1.1 status word.
	for i := range controlSetting.Endpoints {
		ep := &controlSetting.Endpoints[i]
		if ep.EndpointAddr&0x80 == 0 || ep.Attributes&0x03 != 0x03 {
			continue
		}
		if ep.MaxPacketSize < 8 || ep.Interval == 0 {
			continue
		}
		info.StatusEndpoint = &StatusEndpoint{
			EndpointAddress: ep.EndpointAddr,
			MaxPacketSize:   ep.MaxPacketSize,
			Interval:        ep.Interval,
			MaxTransferSize: interruptEP.MaxTransferSize,
		}
		break
	}

	return info, nil
}
