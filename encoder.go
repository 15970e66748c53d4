package hxwrap

import (
	"errors"

	"github.com/pthm/hxwrap/lib/encoding"
)

// Codec is an alias for encoding.Codec for convenience.
type Codec = encoding.Codec

// NewCodec creates a codec for carrying async vars in URLs. Pass
// encoding.Encrypted() to make tokens opaque.
func NewCodec(key []byte, opts ...encoding.Option) (*Codec, error) {
	return encoding.New(key, opts...)
}

// EncodeVars packs vars into a URL-safe token.
func EncodeVars[V any](c *Codec, vars V) (string, error) {
	return c.Encode(vars)
}

// DecodeVars unpacks a token produced by EncodeVars. Errors map onto
// ErrInvalidFormat, ErrSignatureInvalid and ErrDecryptFailed.
func DecodeVars[V any](c *Codec, token string) (V, error) {
	var vars V
	if err := c.Decode(token, &vars); err != nil {
		return vars, wrapEncodingError(err)
	}
	return vars, nil
}

// wrapEncodingError wraps encoding package errors with hxwrap sentinel errors.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) {
		return ErrInvalidFormat
	}
	if errors.Is(err, encoding.ErrSignatureInvalid) {
		return ErrSignatureInvalid
	}
	if errors.Is(err, encoding.ErrDecryptFailed) {
		return ErrDecryptFailed
	}
	return err
}
