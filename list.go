package uvcstill

import (
	"fmt"
	"log"

	usb "github.com/kevmo314/go-usb"
)

// DeviceName names a discovered camera by its discovery-order index. The
// daemon's socket names follow it.
func DeviceName(index int) string {
	return fmt.Sprintf("still%d", index)
}

// FindStillCameras enumerates the bus and returns the devices that expose a
// VideoControl interface, in enumeration order. Devices that cannot be
// opened for inspection are skipped with a log line; the kernel driver may
// hold them.
func FindStillCameras() ([]*usb.Device, error) {
	devices, err := usb.DeviceList()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	var cameras []*usb.Device
	for _, dev := range devices {
		handle, err := dev.Open()
		if err != nil {
			log.Printf("skipping %s: %v", dev.Path, err)
			continue
		}
		config, err := handle.GetActiveConfigDescriptor()
		if err == nil && hasVideoControlInterface(config) {
			cameras = append(cameras, dev)
		}
		handle.Close()
	}
	return cameras, nil
}

func hasVideoControlInterface(config *usb.ConfigDescriptor) bool {
	for _, iface := range config.Interfaces {
		for _, alt := range iface.AltSettings {
			if alt.InterfaceClass == ClassVideo && alt.InterfaceSubClass == SubclassVideoControl {
				return true
			}
		}
	}
	return false
}
