package descriptors

import "errors"

var (
	ErrInvalidDescriptor     = errors.New("invalid descriptor")
	ErrUnsupportedDescriptor = errors.New("unsupported descriptor subtype")
)
