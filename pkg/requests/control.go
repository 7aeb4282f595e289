package requests

import (
	"errors"
	"fmt"
	"os"
	"time"

	usb "github.com/kevmo314/go-usb"
	"golang.org/x/sys/unix"
)

const (
	// ControlTimeout bounds a single control transfer. Cameras that are busy
	// re-exposing routinely take over 100ms to answer property requests.
	ControlTimeout = 300 * time.Millisecond

	// controlAttempts is how many times a timed-out transfer is reissued.
	// Only timeouts are retried; a stall or disconnect will not heal itself.
	controlAttempts = 3
)

// Do issues one control transfer on the default pipe with the standard
// timeout and retry policy. It returns the number of bytes transferred.
func Do(handle *usb.DeviceHandle, rt RequestType, rc RequestCode, wValue, wIndex uint16, data []byte) (int, error) {
	var err error
	for attempt := 0; attempt <= controlAttempts; attempt++ {
		var n int
		n, err = handle.ControlTransfer(uint8(rt), uint8(rc), wValue, wIndex, data, ControlTimeout)
		if err == nil {
			return n, nil
		}
		if !isTimeout(err) {
			return 0, fmt.Errorf("control transfer failed: %w", err)
		}
	}
	return 0, fmt.Errorf("control transfer timed out after %d attempts: %w", controlAttempts+1, err)
}

func isTimeout(err error) bool {
	return errors.Is(err, unix.ETIMEDOUT) || errors.Is(err, os.ErrDeadlineExceeded)
}
