package transfers

import (
	"fmt"

	usb "github.com/kevmo314/go-usb"
)

// MaxURBBufferSize is the maximum buffer size per URB to avoid ENOMEM. This
// matches libusb's MAX_BULK_BUFFER_LENGTH and the kernel's
// MAX_USBFS_BUFFER_SIZE.
const MaxURBBufferSize = 16384

type bulkTransport struct {
	tx *usb.AsyncBulkTransfer
}

// NewBulkTransports creates the transfer request set for a bulk streaming
// endpoint. Each completed URB is treated as one transport packet; the
// payload header at the front of the URB keeps demultiplexing identical to
// the isochronous path.
func NewBulkTransports(handle *usb.DeviceHandle, endpointAddress uint8, maxPayloadTransferSize uint32) ([]Transport, int, error) {
	urbSize := MaxURBBufferSize
	if int(maxPayloadTransferSize) > 0 && int(maxPayloadTransferSize) < urbSize {
		urbSize = int(maxPayloadTransferSize)
	}
	transports := make([]Transport, 0, NumTransferRequests)
	for i := 0; i < NumTransferRequests; i++ {
		tx, err := handle.NewAsyncBulkTransfer(endpointAddress, urbSize)
		if err != nil {
			for _, t := range transports {
				t.Cancel()
			}
			return nil, 0, fmt.Errorf("failed to create async bulk transfer: %w", err)
		}
		transports = append(transports, &bulkTransport{tx: tx})
	}
	return transports, urbSize, nil
}

func (t *bulkTransport) Submit() error {
	return t.tx.Submit()
}

// Harvest copies before the caller resubmits to avoid a race with the kernel.
func (t *bulkTransport) Harvest(pb *PoolBuffer) error {
	data, err := t.tx.Wait()
	if err != nil {
		return fmt.Errorf("async bulk transfer failed: %w", err)
	}
	pb.Packets = pb.Packets[:0]
	if len(data) == 0 {
		return nil
	}
	n := copy(pb.Data, data)
	pb.Packets = append(pb.Packets, PacketDescriptor{Offset: 0, Length: n})
	return nil
}

func (t *bulkTransport) Cancel() {
	t.tx.Cancel()
}
