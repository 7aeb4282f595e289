package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	uvcstill "github.com/openstill/uvcstill"
	"github.com/openstill/uvcstill/pkg/descriptors"
)

func main() {
	path := flag.String("path", "", "path to the usb device node")

	flag.Parse()

	fd, err := os.OpenFile(*path, os.O_RDWR, 0)
	if err != nil {
		panic(err)
	}
	defer fd.Close()

	dev, err := uvcstill.NewUVCDevice(fd.Fd())
	if err != nil {
		panic(err)
	}
	defer dev.Close()

	info, err := dev.DeviceInfo()
	if err != nil {
		panic(err)
	}

	app := tview.NewApplication()

	streamingIfaces := tview.NewList()
	streamingIfaces.SetBorder(true).SetTitle("Streaming Interfaces")

	controlIfaces := tview.NewList().ShowSecondaryText(false)
	controlIfaces.SetBorder(true).SetTitle("Control Interfaces")

	controlRequests := tview.NewList().ShowSecondaryText(false)
	controlRequests.SetBorder(true).SetTitle("Control Requests")

	ifaces := tview.NewFlex().SetDirection(tview.FlexRow).AddItem(streamingIfaces, 0, 1, true).AddItem(controlIfaces, 0, 1, false)

	secondColumn := tview.NewFlex()

	formats := tview.NewList()
	formats.SetBorder(true).SetTitle("Formats")

	secondColumn.SetDirection(tview.FlexRow).AddItem(formats, 0, 1, false).AddItem(controlRequests, 0, 1, false)

	frames := tview.NewList()
	frames.SetBorder(true).SetTitle("Frames")

	stillSizes := tview.NewList().ShowSecondaryText(false)
	stillSizes.SetBorder(true).SetTitle("Still Sizes")

	thirdColumn := tview.NewFlex().SetDirection(tview.FlexRow).AddItem(frames, 0, 1, false).AddItem(stillSizes, 0, 1, false)

	logText := tview.NewTextView()
	logText.SetMaxLines(10).SetBorder(true).SetTitle("Log")

	log.SetOutput(logText)

	var (
		stillOnce sync.Once
		sc        *uvcstill.StillCamera
	)
	stillCamera := func() *uvcstill.StillCamera {
		stillOnce.Do(func() {
			var err error
			sc, err = uvcstill.NewStillCamera(dev)
			if err != nil {
				log.Printf("still capture unavailable: %s", err)
				return
			}
			if err := sc.Start(); err != nil {
				log.Printf("failed to start streaming: %s", err)
				sc.Close()
				sc = nil
			}
		})
		return sc
	}
	defer func() {
		if sc != nil {
			sc.Close()
		}
	}()

	capturing := &atomic.Bool{}
	captureStill := func(size uvcstill.FrameSize) {
		if !capturing.CompareAndSwap(false, true) {
			log.Printf("capture already running")
			return
		}
		defer capturing.Store(false)
		cam := stillCamera()
		if cam == nil {
			return
		}
		if err := cam.SetFrameSize(size); err != nil {
			log.Printf("frame size %dx%d rejected: %s", size.Width, size.Height, err)
			return
		}
		h, err := cam.Open()
		if err != nil {
			log.Printf("open failed: %s", err)
			return
		}
		defer h.Close()
		if err := cam.Trigger(); err != nil {
			log.Printf("trigger failed: %s", err)
			return
		}
		n, err := io.Copy(io.Discard, h)
		if err != nil {
			log.Printf("capture failed: %s", err)
			return
		}
		stats := cam.Stats()
		log.Printf("captured %d bytes at %dx%d (video %d, still %d, skipped %d, errored %d packets)",
			n, size.Width, size.Height,
			stats.VideoPackets, stats.StillPackets, stats.SkippedPackets, stats.ErroredPackets)
		app.ForceDraw()
	}

	for _, si := range info.StreamingInterfaces {
		streamingIfaces.AddItem(fmt.Sprintf("Interface %d", si.InterfaceNumber()), fmt.Sprintf("v%s", si.UVCVersionString()), 0, func() {
			formats.Clear()
			frames.Clear()
			stillSizes.Clear()
			for fdIndex, d := range si.Descriptors {
				if fd, ok := d.(descriptors.FormatDescriptor); ok {
					formats.AddItem(formatDescriptorTitle(fd), formatDescriptorSubtitle(fd), 0, func() {
						frames.Clear()
						frs := si.Descriptors[fdIndex+1 : fdIndex+int(numFrameDescriptors(fd))+1]
						for _, fr := range frs {
							if fr, ok := fr.(descriptors.FrameDescriptor); ok {
								frames.AddItem(frameDescriptorTitle(fr), frameDescriptorSubtitle(fr), 0, nil)
							}
						}
						app.SetFocus(frames)
					})
				}
			}
			for _, sd := range si.StillImageFrameDescriptors() {
				for _, size := range sd.ImageSizePatterns {
					fs := uvcstill.FrameSize{Width: uint32(size.Width), Height: uint32(size.Height)}
					stillSizes.AddItem(fmt.Sprintf("%dx%d", size.Width, size.Height), "", 0, func() {
						go captureStill(fs)
					})
				}
			}
			app.SetFocus(formats)
		})
	}

	for _, ci := range info.ControlInterfaces {
		controlIfaces.AddItem(controlInterfaceTitle(ci), "", 0, func() {
			switch ci.Descriptor.(type) {
			case *descriptors.CameraTerminalDescriptor:
				controlRequests.Clear()
				controlRequests.AddItem("Exposure Time Absolute", "", 0, func() {
					controlRequestInput := tview.NewInputField()

					controlRequestInput.SetLabel("Enter exposure time (100us units): ").
						SetFieldWidth(10).
						SetAcceptanceFunc(tview.InputFieldInteger).
						SetDoneFunc(func(key tcell.Key) {
							value, err := strconv.ParseUint(controlRequestInput.GetText(), 10, 32)
							if err != nil {
								log.Printf("failed parsing value %s", err)
								return
							}
							if err := ci.CameraTerminal.SetExposureTime(uint32(value)); err != nil {
								log.Printf("control request failed %s", err)
							}
							secondColumn.RemoveItem(controlRequestInput)
							app.SetFocus(controlRequests)
						})
					secondColumn.AddItem(controlRequestInput, 0, 1, false)
					app.SetFocus(controlRequestInput)
				})
				controlRequests.AddItem("Auto Focus On", "", 0, func() {
					if err := ci.CameraTerminal.SetAutoFocus(true); err != nil {
						log.Printf("control request failed %s", err)
					}
				})
				controlRequests.AddItem("Auto Focus Off", "", 0, func() {
					if err := ci.CameraTerminal.SetAutoFocus(false); err != nil {
						log.Printf("control request failed %s", err)
					}
				})
				app.SetFocus(controlRequests)
			case *descriptors.ProcessingUnitDescriptor:
				controlRequests.Clear()
				if info.ProcessingUnit == nil {
					return
				}
				controlRequests.AddItem("Brightness", "", 0, func() {
					controlRequestInput := tview.NewInputField()

					controlRequestInput.SetLabel("Enter brightness: ").
						SetFieldWidth(10).
						SetAcceptanceFunc(tview.InputFieldInteger).
						SetDoneFunc(func(key tcell.Key) {
							value, err := strconv.ParseUint(controlRequestInput.GetText(), 10, 16)
							if err != nil {
								log.Printf("failed parsing value %s", err)
								return
							}
							setControl := &descriptors.BrightnessControl{Brightness: uint16(value)}
							if err := info.ProcessingUnit.Set(setControl); err != nil {
								log.Printf("control request failed %s", err)
							}
							secondColumn.RemoveItem(controlRequestInput)
							app.SetFocus(controlRequests)
						})
					secondColumn.AddItem(controlRequestInput, 0, 1, false)
					app.SetFocus(controlRequestInput)
				})
				app.SetFocus(controlRequests)
			}
		})
	}

	// Create the layout.

	flex := tview.NewFlex().
		AddItem(ifaces, 0, 1, true).
		AddItem(secondColumn, 0, 1, false).
		AddItem(thirdColumn, 0, 1, false)

	if err := app.SetRoot(tview.NewFlex().SetDirection(tview.FlexRow).AddItem(flex, 0, 1, true).AddItem(logText, 10, 0, false), true).Run(); err != nil {
		panic(err)
	}
}

func numFrameDescriptors(fd descriptors.FormatDescriptor) uint8 {
	// darn you golang and your lack of structural typing.
	switch fd := fd.(type) {
	case *descriptors.MJPEGFormatDescriptor:
		return fd.NumFrameDescriptors
	case *descriptors.UncompressedFormatDescriptor:
		return fd.NumFrameDescriptors
	default:
		return 0
	}
}

func formatDescriptorTitle(fd descriptors.FormatDescriptor) string {
	switch fd := fd.(type) {
	case *descriptors.MJPEGFormatDescriptor:
		return fmt.Sprintf("MJPEG (%d frames)", fd.NumFrameDescriptors)
	case *descriptors.UncompressedFormatDescriptor:
		return fmt.Sprintf("Uncompressed (%d frames)", fd.NumFrameDescriptors)
	default:
		return "Unknown"
	}
}

func formatDescriptorSubtitle(fd descriptors.FormatDescriptor) string {
	switch fd := fd.(type) {
	case *descriptors.MJPEGFormatDescriptor:
		return fmt.Sprintf("Aspect Ratio: %d:%d", fd.AspectRatioX, fd.AspectRatioY)
	case *descriptors.UncompressedFormatDescriptor:
		return fd.GUIDFormat.String()
	default:
		return "Unknown"
	}
}

func frameDescriptorTitle(fd descriptors.FrameDescriptor) string {
	switch fd := fd.(type) {
	case *descriptors.MJPEGFrameDescriptor:
		return fmt.Sprintf("MJPEG (%dx%d)", fd.Width, fd.Height)
	case *descriptors.UncompressedFrameDescriptor:
		return fmt.Sprintf("Uncompressed (%dx%d)", fd.Width, fd.Height)
	default:
		return "Unknown"
	}
}

func frameDescriptorSubtitle(fd descriptors.FrameDescriptor) string {
	switch fd := fd.(type) {
	case *descriptors.MJPEGFrameDescriptor:
		return fmt.Sprintf("Bitrate: %d-%d Mbps", fd.MinBitRate, fd.MaxBitRate)
	case *descriptors.UncompressedFrameDescriptor:
		return fmt.Sprintf("Bitrate: %d-%d Mbps", fd.MinBitRate, fd.MaxBitRate)
	default:
		return "Unknown"
	}
}

func controlInterfaceTitle(ci *uvcstill.ControlInterface) string {
	switch ci.Descriptor.(type) {
	case *descriptors.HeaderDescriptor:
		return "Header"
	case *descriptors.InputTerminalDescriptor:
		return "Input Terminal"
	case *descriptors.CameraTerminalDescriptor:
		return "Camera Terminal"
	case *descriptors.OutputTerminalDescriptor:
		return "Output Terminal"
	case *descriptors.ProcessingUnitDescriptor:
		return "Processing Unit"
	case *descriptors.ExtensionUnitDescriptor:
		return "Extension Unit"
	default:
		return "Unknown"
	}
}
