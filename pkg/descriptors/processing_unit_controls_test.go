package descriptors

import "testing"

func TestProcessingUnitControlSelectors(t *testing.T) {
	tests := []struct {
		desc       ProcessingUnitControlDescriptor
		selector   ProcessingUnitControlSelector
		featureBit int
	}{
		{&BrightnessControl{}, ProcessingUnitBrightnessControl, 0},
		{&ContrastControl{}, ProcessingUnitContrastControl, 1},
		{&HueControl{}, ProcessingUnitHueControl, 2},
		{&SaturationControl{}, ProcessingUnitSaturationControl, 3},
		{&SharpnessControl{}, ProcessingUnitSharpnessControl, 4},
		{&GammaControl{}, ProcessingUnitGammaControl, 5},
		{&WhiteBalanceTemperatureControl{}, ProcessingUnitWhiteBalanceTemperatureControl, 6},
		{&BacklightCompensationControl{}, ProcessingUnitBacklightCompensationControl, 8},
		{&GainControl{}, ProcessingUnitGainControl, 9},
		{&PowerLineFrequencyControl{}, ProcessingUnitPowerLineFrequencyControl, 10},
		{&WhiteBalanceTemperatureAutoControl{}, ProcessingUnitWhiteBalanceTemperatureAutoControl, 12},
	}
	for _, tt := range tests {
		if got := tt.desc.Value(); got != tt.selector {
			t.Errorf("%T.Value() = %#x, want %#x", tt.desc, got, tt.selector)
		}
		if got := tt.desc.FeatureBit(); got != tt.featureBit {
			t.Errorf("%T.FeatureBit() = %d, want %d", tt.desc, got, tt.featureBit)
		}
	}
}

func TestHueControlSignedRoundTrip(t *testing.T) {
	hc := &HueControl{Hue: -180}
	buf, err := hc.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	got := &HueControl{}
	if err := got.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if got.Hue != -180 {
		t.Errorf("Hue = %d, want -180", got.Hue)
	}
}
