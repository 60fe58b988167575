package wire

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Codec errors.
var (
	ErrInvalidMessage = errors.New("invalid handshake message")
	ErrEncode         = errors.New("message encoding failed")
)

// encMode is the CBOR encoder mode for handshake messages.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for handshake messages.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Requests arrive from untrusted peers: duplicate keys and
	// indefinite-length items are rejected, nesting is kept shallow.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		MaxNestedLevels:   16,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder creates a new CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a new CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// EncodeRequest encodes a handshake request to CBOR bytes.
func EncodeRequest[A, G any](req *HandshakeRequest[A, G]) ([]byte, error) {
	data, err := Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return data, nil
}

// DecodeRequest decodes CBOR bytes into a handshake request.
func DecodeRequest[A, G any](data []byte) (*HandshakeRequest[A, G], error) {
	var req HandshakeRequest[A, G]
	if err := Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: request: %v", ErrInvalidMessage, err)
	}
	return &req, nil
}

// EncodeResponse encodes a handshake response to CBOR bytes.
func EncodeResponse[AE, GE any](resp *HandshakeResponse[AE, GE]) ([]byte, error) {
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	data, err := Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return data, nil
}

// DecodeResponse decodes CBOR bytes into a handshake response.
func DecodeResponse[AE, GE any](data []byte) (*HandshakeResponse[AE, GE], error) {
	var resp HandshakeResponse[AE, GE]
	if err := Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: response: %v", ErrInvalidMessage, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return &resp, nil
}
