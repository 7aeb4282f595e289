package uvcstill

import (
	"errors"

	"github.com/openstill/uvcstill/pkg/transfers"
)

var (
	// ErrBusy is returned by Open while another handle holds the device.
	ErrBusy = errors.New("device is busy")
	// ErrDeviceGone is returned once the device has been stopped or removed
	// underneath an open handle.
	ErrDeviceGone = errors.New("device is gone")
	// ErrFrameSizeNotSupported is returned when a requested still size is not
	// in the device's catalogue.
	ErrFrameSizeNotSupported = errors.New("frame size not supported")
	// ErrPropertyTooLarge is returned for property envelopes over the wire
	// limit.
	ErrPropertyTooLarge = errors.New("property payload too large")
	// ErrUnknownRequest is returned for control codes outside the dispatch
	// table.
	ErrUnknownRequest = errors.New("unknown control request")
	// ErrInvalidRequestCode is returned when a property envelope carries a
	// request code its direction does not permit.
	ErrInvalidRequestCode = errors.New("invalid request code for property transfer")
	// ErrNoCameraTerminal is returned when a property targets a unit the
	// descriptor walk did not find.
	ErrNoCameraTerminal   = errors.New("no camera terminal")
	ErrNoProcessingUnit   = errors.New("no processing unit")
	ErrNoExtensionUnit    = errors.New("no extension unit")
	ErrNoStillDescriptors = errors.New("no still image frame descriptor")
	ErrNotStreaming       = errors.New("streaming is stopped")
)

// Read-path sentinels shared with the capture engine.
var (
	ErrWouldBlock  = transfers.ErrWouldBlock
	ErrFrameError  = transfers.ErrFrameError
	ErrInterrupted = transfers.ErrInterrupted
)
