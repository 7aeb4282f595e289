package main

import (
	"fmt"
	"log"

	uvcstill "github.com/openstill/uvcstill"
)

func main() {
	cameras, err := uvcstill.FindStillCameras()
	if err != nil {
		log.Fatalf("Failed to list devices: %v", err)
	}

	if len(cameras) == 0 {
		fmt.Println("No video-class USB devices found.")
		fmt.Println("\nNote: the kernel uvcvideo driver may hold the device; it is")
		fmt.Println("detached automatically when the capture interface is claimed.")
		return
	}

	fmt.Printf("Found %d camera(s):\n\n", len(cameras))

	for i, dev := range cameras {
		fmt.Printf("%s:\n", uvcstill.DeviceName(i))
		fmt.Printf("  Path: %s\n", dev.Path)
		fmt.Printf("  VID:PID: %04x:%04x\n", dev.Descriptor.VendorID, dev.Descriptor.ProductID)
		fmt.Printf("  USB Version: %d.%02d\n", dev.Descriptor.USBVersion>>8, dev.Descriptor.USBVersion&0xFF)

		if dev.SysfsStrings != nil {
			if dev.SysfsStrings.Manufacturer != "" {
				fmt.Printf("  Manufacturer: %s\n", dev.SysfsStrings.Manufacturer)
			}
			if dev.SysfsStrings.Product != "" {
				fmt.Printf("  Product: %s\n", dev.SysfsStrings.Product)
			}
			if dev.SysfsStrings.Serial != "" {
				fmt.Printf("  Serial: %s\n", dev.SysfsStrings.Serial)
			}
		}

		udev, err := uvcstill.OpenDevice(dev)
		if err != nil {
			fmt.Printf("  (Could not open: %v)\n\n", err)
			continue
		}
		if udev.IsUnityCamera() {
			fmt.Printf("  Quirks: skip still-commit read-back\n")
		}

		sc, err := uvcstill.NewStillCamera(udev)
		if err != nil {
			fmt.Printf("  Still capture: unavailable (%v)\n\n", err)
			udev.Close()
			continue
		}
		fmt.Printf("  UVC Version: %x.%02x\n", sc.Info().UVCVersion()>>8, sc.Info().UVCVersion()&0xFF)
		fmt.Printf("  Still sizes:")
		for _, size := range sc.FrameSizes() {
			fmt.Printf(" %dx%d", size.Width, size.Height)
		}
		def := sc.FrameSize()
		fmt.Printf("\n  Default: %dx%d\n", def.Width, def.Height)
		sc.Close()
		udev.Close()

		fmt.Println()
	}
}
