package wire

import "encoding/json"

// Transcoder re-encodes an outgoing JSON envelope into a compact
// alternate form. Implementations live outside this package; the codec
// only relies on failure being reported through the error return, never
// by corrupting output. Encoding options belong to the implementation's
// constructor.
type Transcoder interface {
	Encode(envelope json.RawMessage) ([]byte, error)
}

// TranscoderFunc adapts a function to the Transcoder interface.
type TranscoderFunc func(envelope json.RawMessage) ([]byte, error)

func (f TranscoderFunc) Encode(envelope json.RawMessage) ([]byte, error) {
	return f(envelope)
}
