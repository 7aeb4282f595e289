package uvcstill

// USB interface class and subclass codes for video devices, USB Device Class
// Definition for Video Devices, section A.1.
const (
	ClassVideo             = 14
	SubclassVideoControl   = 1
	SubclassVideoStreaming = 2
)

// VideoControlInterfaceControlSelector addresses controls on the VideoControl
// interface itself, UVC spec 1.5, A.9.1.
type VideoControlInterfaceControlSelector int

const (
	VideoControlInterfaceControlSelectorUndefined             VideoControlInterfaceControlSelector = 0x00
	VideoControlInterfaceControlSelectorVideoPowerModeControl VideoControlInterfaceControlSelector = 0x01
	VideoControlInterfaceControlSelectorRequestErrorCode      VideoControlInterfaceControlSelector = 0x02
)

// Vendor and product of the camera whose firmware stalls a GET_CUR issued
// after a still commit. Negotiation skips the commit read-back for it.
const (
	unityVendorID  = 0x2a12
	unityProductID = 0x0001
)
