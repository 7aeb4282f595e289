package transfers

import (
	"fmt"

	usb "github.com/kevmo314/go-usb"
)

// IsoPacketsPerTransfer is the number of isochronous packets batched into one
// transfer request. One packet arrives per microframe, so one request of 32
// packets covers 4ms of bus time.
const IsoPacketsPerTransfer = 32

type isochronousTransport struct {
	tx         *usb.IsochronousTransfer
	packetSize int
}

// NewIsochronousTransports creates the transfer request set for an
// isochronous streaming endpoint.
func NewIsochronousTransports(handle *usb.DeviceHandle, endpointAddress uint8, packetSize int) ([]Transport, int, error) {
	transports := make([]Transport, 0, NumTransferRequests)
	for i := 0; i < NumTransferRequests; i++ {
		tx, err := handle.NewIsochronousTransfer(endpointAddress, IsoPacketsPerTransfer, packetSize)
		if err != nil {
			for _, t := range transports {
				t.Cancel()
			}
			return nil, 0, fmt.Errorf("failed to create isochronous transfer: %w", err)
		}
		transports = append(transports, &isochronousTransport{tx: tx, packetSize: packetSize})
	}
	return transports, IsoPacketsPerTransfer * packetSize, nil
}

func (t *isochronousTransport) Submit() error {
	return t.tx.Submit()
}

// Harvest copies every received packet into pb before the transfer is
// resubmitted, so the kernel never scribbles over bytes the worker still
// holds. Errored packets keep a descriptor with Offset -1 so the worker can
// account for them.
func (t *isochronousTransport) Harvest(pb *PoolBuffer) error {
	if err := t.tx.Wait(); err != nil {
		return fmt.Errorf("isochronous transfer failed: %w", err)
	}
	pb.Packets = pb.Packets[:0]
	offset := 0
	for i, pkt := range t.tx.Packets() {
		if pkt.Status != 0 {
			pb.Packets = append(pb.Packets, PacketDescriptor{Offset: -1})
			continue
		}
		if pkt.ActualLength == 0 {
			continue
		}
		data, err := t.tx.IsoPacketBuffer(i)
		if err != nil {
			pb.Packets = append(pb.Packets, PacketDescriptor{Offset: -1})
			continue
		}
		n := copy(pb.Data[offset:], data)
		pb.Packets = append(pb.Packets, PacketDescriptor{Offset: offset, Length: n})
		offset += n
	}
	return nil
}

func (t *isochronousTransport) Cancel() {
	t.tx.Cancel()
}
