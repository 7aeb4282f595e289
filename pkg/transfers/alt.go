package transfers

import (
	"errors"

	usb "github.com/kevmo314/go-usb"
)

var ErrNoStreamingEndpoint = errors.New("no usable streaming endpoint")

const (
	endpointDirectionIn      = 0x80
	transferTypeMask         = 0x03
	transferTypeIsochronous  = 0x01
	transferTypeBulk         = 0x02
)

// AltSettingChoice is the outcome of alternate-setting selection for the
// video streaming interface.
type AltSettingChoice struct {
	AltSetting      uint8
	EndpointAddress uint8
	Isochronous     bool
	// PacketSize is the per-microframe byte budget: wMaxPacketSize bits 0-10
	// multiplied by the additional-transaction count in bits 11-12.
	PacketSize int
}

// packetSizeBytes decodes wMaxPacketSize into the bytes deliverable per
// microframe (USB 2.0 spec, section 9.6.6).
func packetSizeBytes(w uint16) int {
	return int(w&0x07ff) * (1 + int((w>>11)&3))
}

// SelectAltSetting walks the streaming interface's alternate settings and
// picks the one whose IN endpoint offers the most bandwidth toward the
// configured endpoint address. Isochronous endpoints win ties against bulk;
// alternate setting zero carries no endpoints and is never chosen.
func SelectAltSetting(iface *usb.Interface, endpointAddress uint8) (AltSettingChoice, error) {
	var best AltSettingChoice
	found := false
	for _, alt := range iface.AltSettings {
		for i := range alt.Endpoints {
			ep := &alt.Endpoints[i]
			if ep.EndpointAddr != endpointAddress || ep.EndpointAddr&endpointDirectionIn == 0 {
				continue
			}
			var iso bool
			switch ep.Attributes & transferTypeMask {
			case transferTypeIsochronous:
				iso = true
			case transferTypeBulk:
				iso = false
			default:
				continue
			}
			size := packetSizeBytes(ep.MaxPacketSize)
			better := size > best.PacketSize ||
				(size == best.PacketSize && iso && !best.Isochronous)
			if !found || better {
				best = AltSettingChoice{
					AltSetting:      alt.AlternateSetting,
					EndpointAddress: ep.EndpointAddr,
					Isochronous:     iso,
					PacketSize:      size,
				}
				found = true
			}
		}
	}
	if !found {
		return AltSettingChoice{}, ErrNoStreamingEndpoint
	}
	return best, nil
}
