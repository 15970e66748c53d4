package hxwrap

import (
	"errors"
	"testing"

	"github.com/pthm/hxwrap/lib/encoding"
)

func TestVarsRoundTrip(t *testing.T) {
	for _, opts := range [][]encoding.Option{nil, {encoding.Encrypted()}} {
		c, err := NewCodec([]byte("test-key"), opts...)
		if err != nil {
			t.Fatalf("NewCodec failed: %v", err)
		}

		token, err := EncodeVars(c, userVars{ID: 42, Title: "Dr"})
		if err != nil {
			t.Fatalf("EncodeVars failed: %v", err)
		}
		got, err := DecodeVars[userVars](c, token)
		if err != nil {
			t.Fatalf("DecodeVars failed: %v", err)
		}
		if got != (userVars{ID: 42, Title: "Dr"}) {
			t.Errorf("DecodeVars = %+v", got)
		}
	}
}

func TestDecodeVarsMapsErrors(t *testing.T) {
	c, _ := NewCodec([]byte("key-one"))
	other, _ := NewCodec([]byte("key-two"))
	token, err := EncodeVars(other, userVars{ID: 1})
	if err != nil {
		t.Fatalf("EncodeVars failed: %v", err)
	}

	if _, err := DecodeVars[userVars](c, token); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("wrong key: err = %v, want ErrSignatureInvalid", err)
	}
	if _, err := DecodeVars[userVars](c, "garbage"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("garbage: err = %v, want ErrInvalidFormat", err)
	}

	sealed, _ := NewCodec([]byte("key-one"), encoding.Encrypted())
	if _, err := DecodeVars[userVars](sealed, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("bad ciphertext: err = %v, want ErrDecryptFailed", err)
	}
}
