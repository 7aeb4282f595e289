//go:build integration

package uvcstill

import (
	"syscall"
	"testing"

	"github.com/openstill/uvcstill/pkg/descriptors"
)

const testDevicePath = "/dev/bus/usb/001/002"

func openTestDevice(t *testing.T) *UVCDevice {
	t.Helper()
	fd, err := syscall.Open(testDevicePath, syscall.O_RDWR, 0)
	if err != nil {
		t.Skipf("no test device at %s: %v", testDevicePath, err)
	}
	dev, err := NewUVCDevice(uintptr(fd))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestAutoExposureMode(t *testing.T) {
	dev := openTestDevice(t)

	info, err := dev.DeviceInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.CameraTerminal == nil {
		t.Skip("device has no camera terminal")
	}

	setControl := &descriptors.AutoExposureModeControl{Mode: descriptors.AutoExposureModeManual}
	if err := info.CameraTerminal.Set(setControl); err != nil {
		t.Fatal(err)
	}

	control := &descriptors.AutoExposureModeControl{}
	if err := info.CameraTerminal.Get(control); err != nil {
		t.Fatal(err)
	}
	if control.Mode != descriptors.AutoExposureModeManual {
		t.Fatalf("expected ae mode 1 (manual), got %d", control.Mode)
	}
}

func TestAutoFocus(t *testing.T) {
	dev := openTestDevice(t)

	info, err := dev.DeviceInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.CameraTerminal == nil {
		t.Skip("device has no camera terminal")
	}

	if err := info.CameraTerminal.SetAutoFocus(true); err != nil {
		t.Fatal(err)
	}
	on, err := info.CameraTerminal.GetAutoFocus()
	if err != nil {
		t.Fatal(err)
	}
	if !on {
		t.Fatal("expected auto focus on, got off")
	}
}
