package descriptors

import (
	"encoding"
	"encoding/binary"
)

type ProcessingUnitControlSelector int

const (
	ProcessingUnitControlSelectorUndefined           ProcessingUnitControlSelector = 0x00
	ProcessingUnitBacklightCompensationControl       ProcessingUnitControlSelector = 0x01
	ProcessingUnitBrightnessControl                  ProcessingUnitControlSelector = 0x02
	ProcessingUnitContrastControl                    ProcessingUnitControlSelector = 0x03
	ProcessingUnitGainControl                        ProcessingUnitControlSelector = 0x04
	ProcessingUnitPowerLineFrequencyControl          ProcessingUnitControlSelector = 0x05
	ProcessingUnitHueControl                         ProcessingUnitControlSelector = 0x06
	ProcessingUnitSaturationControl                  ProcessingUnitControlSelector = 0x07
	ProcessingUnitSharpnessControl                   ProcessingUnitControlSelector = 0x08
	ProcessingUnitGammaControl                       ProcessingUnitControlSelector = 0x09
	ProcessingUnitWhiteBalanceTemperatureControl     ProcessingUnitControlSelector = 0x0A
	ProcessingUnitWhiteBalanceTemperatureAutoControl ProcessingUnitControlSelector = 0x0B
	ProcessingUnitWhiteBalanceComponentControl       ProcessingUnitControlSelector = 0x0C
	ProcessingUnitWhiteBalanceComponentAutoControl   ProcessingUnitControlSelector = 0x0D
	ProcessingUnitDigitalMultiplierControl           ProcessingUnitControlSelector = 0x0E
	ProcessingUnitDigitalMultiplierLimitControl      ProcessingUnitControlSelector = 0x0F
	ProcessingUnitHueAutoControl                     ProcessingUnitControlSelector = 0x10
	ProcessingUnitAnalogVideoStandardControl         ProcessingUnitControlSelector = 0x11
	ProcessingUnitAnalogVideoLockStatusControl       ProcessingUnitControlSelector = 0x12
	ProcessingUnitContrastAutoControl                ProcessingUnitControlSelector = 0x13
)

type ProcessingUnitControlDescriptor interface {
	Value() ProcessingUnitControlSelector
	FeatureBit() int //Indicates the position of the control on the controls bitmap
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

type BrightnessControl struct {
	Brightness uint16
}

func (bc *BrightnessControl) FeatureBit() int {
	return 0
}

func (bc *BrightnessControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitBrightnessControl
}

func (bc *BrightnessControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, bc.Brightness)
	return buf, nil
}

func (bc *BrightnessControl) UnmarshalBinary(buf []byte) error {
	bc.Brightness = binary.LittleEndian.Uint16(buf)
	return nil
}

type ContrastControl struct {
	Contrast uint16
}

func (cc *ContrastControl) FeatureBit() int {
	return 1
}

func (cc *ContrastControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitContrastControl
}

func (cc *ContrastControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, cc.Contrast)
	return buf, nil
}

func (cc *ContrastControl) UnmarshalBinary(buf []byte) error {
	cc.Contrast = binary.LittleEndian.Uint16(buf)
	return nil
}

type HueControl struct {
	Hue int16
}

func (hc *HueControl) FeatureBit() int {
	return 2
}

func (hc *HueControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitHueControl
}

func (hc *HueControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, uint16(hc.Hue))
	return buf, nil
}

func (hc *HueControl) UnmarshalBinary(buf []byte) error {
	hc.Hue = int16(binary.LittleEndian.Uint16(buf))
	return nil
}

type SaturationControl struct {
	Saturation uint16
}

func (sc *SaturationControl) FeatureBit() int {
	return 3
}

func (sc *SaturationControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitSaturationControl
}

func (sc *SaturationControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, sc.Saturation)
	return buf, nil
}

func (sc *SaturationControl) UnmarshalBinary(buf []byte) error {
	sc.Saturation = binary.LittleEndian.Uint16(buf)
	return nil
}

type SharpnessControl struct {
	Sharpness uint16
}

func (sc *SharpnessControl) FeatureBit() int {
	return 4
}

func (sc *SharpnessControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitSharpnessControl
}

func (sc *SharpnessControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, sc.Sharpness)
	return buf, nil
}

func (sc *SharpnessControl) UnmarshalBinary(buf []byte) error {
	sc.Sharpness = binary.LittleEndian.Uint16(buf)
	return nil
}

type GammaControl struct {
	Gamma uint16
}

func (gc *GammaControl) FeatureBit() int {
	return 5
}

func (gc *GammaControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitGammaControl
}

func (gc *GammaControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, gc.Gamma)
	return buf, nil
}

func (gc *GammaControl) UnmarshalBinary(buf []byte) error {
	gc.Gamma = binary.LittleEndian.Uint16(buf)
	return nil
}

type WhiteBalanceTemperatureControl struct {
	Temperature uint16
}

func (wc *WhiteBalanceTemperatureControl) FeatureBit() int {
	return 6
}

func (wc *WhiteBalanceTemperatureControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitWhiteBalanceTemperatureControl
}

func (wc *WhiteBalanceTemperatureControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, wc.Temperature)
	return buf, nil
}

func (wc *WhiteBalanceTemperatureControl) UnmarshalBinary(buf []byte) error {
	wc.Temperature = binary.LittleEndian.Uint16(buf)
	return nil
}

type BacklightCompensationControl struct {
	Compensation uint16
}

func (bc *BacklightCompensationControl) FeatureBit() int {
	return 8
}

func (bc *BacklightCompensationControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitBacklightCompensationControl
}

func (bc *BacklightCompensationControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, bc.Compensation)
	return buf, nil
}

func (bc *BacklightCompensationControl) UnmarshalBinary(buf []byte) error {
	bc.Compensation = binary.LittleEndian.Uint16(buf)
	return nil
}

type GainControl struct {
	Gain uint16
}

func (gc *GainControl) FeatureBit() int {
	return 9
}

func (gc *GainControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitGainControl
}

func (gc *GainControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, gc.Gain)
	return buf, nil
}

func (gc *GainControl) UnmarshalBinary(buf []byte) error {
	gc.Gain = binary.LittleEndian.Uint16(buf)
	return nil
}

type PowerLineFrequencyControl struct {
	Frequency uint8
}

func (pc *PowerLineFrequencyControl) FeatureBit() int {
	return 10
}

func (pc *PowerLineFrequencyControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitPowerLineFrequencyControl
}

func (pc *PowerLineFrequencyControl) MarshalBinary() ([]byte, error) {
	return []byte{pc.Frequency}, nil
}

func (pc *PowerLineFrequencyControl) UnmarshalBinary(buf []byte) error {
	pc.Frequency = buf[0]
	return nil
}

type WhiteBalanceTemperatureAutoControl struct {
	Auto bool
}

func (wc *WhiteBalanceTemperatureAutoControl) FeatureBit() int {
	return 12
}

func (wc *WhiteBalanceTemperatureAutoControl) Value() ProcessingUnitControlSelector {
	return ProcessingUnitWhiteBalanceTemperatureAutoControl
}

func (wc *WhiteBalanceTemperatureAutoControl) MarshalBinary() ([]byte, error) {
	if wc.Auto {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (wc *WhiteBalanceTemperatureAutoControl) UnmarshalBinary(buf []byte) error {
	wc.Auto = buf[0] == 1
	return nil
}
