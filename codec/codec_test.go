package codec

import (
	"bytes"
	"testing"

	"github.com/larian-tools/assetcore/apperr"
)

func TestRoundTripEachMethod(t *testing.T) {
	src := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 64)

	for _, m := range []Method{MethodNone, MethodZlib, MethodLZ4Frame, MethodZstd} {
		m := m
		t.Run(m.String(), func(t *testing.T) {
			enc, err := Encode(m, src, 6)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			dec, err := Decode(m, enc, len(src))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(dec, src) {
				t.Fatalf("round trip mismatch for %s", m)
			}
		})
	}
}

func TestDecodeSizeMismatchIsDecompressionError(t *testing.T) {
	enc, err := Encode(MethodZlib, []byte("hello world"), 6)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = Decode(MethodZlib, enc, 3)
	if err == nil {
		t.Fatal("expected a size-mismatch error")
	}
	if _, ok := err.(*apperr.DecompressionError); !ok {
		t.Fatalf("expected *apperr.DecompressionError, got %T", err)
	}
}

func TestDecodeNoneRequiresExactSize(t *testing.T) {
	_, err := Decode(MethodNone, []byte("abc"), 4)
	if err == nil {
		t.Fatal("expected size-mismatch error for MethodNone")
	}
}

func TestUnsupportedMethod(t *testing.T) {
	if _, err := Decode(Method(99), nil, 0); err == nil {
		t.Fatal("expected an error for an unsupported method")
	}
	if _, err := Encode(Method(99), nil, 0); err == nil {
		t.Fatal("expected an error for an unsupported method")
	}
}

func TestMethodString(t *testing.T) {
	cases := map[Method]string{
		MethodNone:     "none",
		MethodZlib:     "zlib",
		MethodLZ4Frame: "lz4",
		MethodLZ4Fast:  "lz4fast",
		MethodZstd:     "zstd",
		Method(200):    "unknown",
	}
	for m, want := range cases {
		if got := m.String(); got != want {
			t.Fatalf("Method(%d).String() = %q, want %q", m, got, want)
		}
	}
}
