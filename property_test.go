package uvcstill

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/openstill/uvcstill/pkg/requests"
)

func TestUnitPropertyRoundTrip(t *testing.T) {
	p := &UnitProperty{
		ControlSelector: 0x02,
		Request:         requests.RequestCodeGetCur,
		Data:            []byte{0xDE, 0xAD},
	}
	buf, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	if len(buf) != p.MarshalSize() {
		t.Errorf("len = %d, want %d", len(buf), p.MarshalSize())
	}

	got := &UnitProperty{}
	if err := got.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if got.ControlSelector != p.ControlSelector {
		t.Errorf("ControlSelector = %#x, want %#x", got.ControlSelector, p.ControlSelector)
	}
	if got.Request != p.Request {
		t.Errorf("Request = %#x, want %#x", got.Request, p.Request)
	}
	if !bytes.Equal(got.Data, p.Data) {
		t.Errorf("Data = %x, want %x", got.Data, p.Data)
	}
}

func TestUnitPropertyMarshalTooLarge(t *testing.T) {
	p := &UnitProperty{
		Request: requests.RequestCodeSetCur,
		Data:    make([]byte, UnitPropertyMaxSize),
	}
	if _, err := p.MarshalBinary(); !errors.Is(err, ErrPropertyTooLarge) {
		t.Errorf("MarshalBinary = %v, want ErrPropertyTooLarge", err)
	}

	// the largest envelope that still fits
	p.Data = make([]byte, UnitPropertyMaxSize-4)
	if _, err := p.MarshalBinary(); err != nil {
		t.Errorf("MarshalBinary at max size = %v, want nil", err)
	}
}

func TestUnitPropertyUnmarshalBounds(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"empty", nil, io.ErrShortBuffer},
		{"header only truncated", []byte{2, 0}, io.ErrShortBuffer},
		{"data shorter than declared", []byte{4, 0, 0x01, 0x81, 0xAA}, io.ErrShortBuffer},
		{"declared length exceeds envelope", append([]byte{0xFF, 0x00, 0x01, 0x81}, make([]byte, 60)...), ErrPropertyTooLarge},
		{"oversized buffer", make([]byte, UnitPropertyMaxSize+1), ErrPropertyTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &UnitProperty{}
			if err := p.UnmarshalBinary(tt.buf); !errors.Is(err, tt.want) {
				t.Errorf("UnmarshalBinary = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnitPropertyUnmarshalIgnoresTrailingBytes(t *testing.T) {
	buf := []byte{1, 0, 0x03, 0x87, 0x42, 0xFF, 0xFF}
	p := &UnitProperty{}
	if err := p.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if !bytes.Equal(p.Data, []byte{0x42}) {
		t.Errorf("Data = %x, want 42", p.Data)
	}
}
