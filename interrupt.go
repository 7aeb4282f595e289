package uvcstill

import (
	"log"
	"sync"
	"sync/atomic"

	usb "github.com/kevmo314/go-usb"
)

// statusBufferSize is the read size on the status interrupt pipe. UVC 1.1
// status words are at most 16 bytes.
const statusBufferSize = 16

// statusListener keeps one URB parked on the VideoControl interrupt endpoint
// and logs whatever the device reports. The payloads are informational; no
// capture decision is derived from them.
type statusListener struct {
	handle *usb.DeviceHandle
	ep     *StatusEndpoint

	stopped atomic.Bool
	started bool
	tx      *usb.AsyncBulkTransfer
	wg      sync.WaitGroup
}

func newStatusListener(handle *usb.DeviceHandle, ep *StatusEndpoint) *statusListener {
	return &statusListener{handle: handle, ep: ep}
}

func (sl *statusListener) Start() {
	if sl.started {
		return
	}
	size := statusBufferSize
	if int(sl.ep.MaxTransferSize) > size {
		size = int(sl.ep.MaxTransferSize)
	}
	// usbfs drives interrupt endpoints through the same async URB path as
	// bulk; the endpoint's descriptor type selects the transfer schedule.
	tx, err := sl.handle.NewAsyncBulkTransfer(sl.ep.EndpointAddress, size)
	if err != nil {
		log.Printf("status endpoint %#02x unavailable: %v", sl.ep.EndpointAddress, err)
		return
	}
	sl.tx = tx
	sl.started = true
	sl.wg.Add(1)
	go sl.run()
}

func (sl *statusListener) run() {
	defer sl.wg.Done()
	for !sl.stopped.Load() {
		if err := sl.tx.Submit(); err != nil {
			if !sl.stopped.Load() {
				log.Printf("status interrupt submit failed: %v", err)
			}
			return
		}
		data, err := sl.tx.Wait()
		if sl.stopped.Load() {
			return
		}
		if err != nil {
			log.Printf("status interrupt failed: %v", err)
			return
		}
		if len(data) > 0 {
			log.Printf("device status: % 02x", data)
		}
	}
}

func (sl *statusListener) Stop() {
	if !sl.started {
		return
	}
	sl.stopped.Store(true)
	sl.tx.Cancel()
	sl.wg.Wait()
	sl.started = false
}
