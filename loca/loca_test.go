package loca

import (
	"bytes"
	"testing"
)

func sampleEntries() []Entry {
	return []Entry{
		{Key: "h1111111111111111111111111111111", Version: 1, Value: "Gustav's Camp"},
		{Key: "h2222222222222222222222222222222", Version: 3, Value: "Hold on, let me check my notes."},
		{Key: "h3333333333333333333333333333333", Version: 0, Value: ""},
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	entries := sampleEntries()

	var buf bytes.Buffer
	if err := Encode(&buf, entries); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i] != e {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], e)
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode(bytes.NewBufferString("NOPE"))
	if err == nil {
		t.Fatal("expected a magic mismatch error")
	}
}

func TestDecodeFailsOnTruncatedHeader(t *testing.T) {
	_, err := Decode(bytes.NewReader(Magic[:]))
	if err == nil {
		t.Fatal("expected an error reading a truncated entry count")
	}
}

func TestXMLRoundTrip(t *testing.T) {
	entries := sampleEntries()

	var buf bytes.Buffer
	if err := EncodeXML(&buf, entries); err != nil {
		t.Fatalf("EncodeXML: %v", err)
	}

	got, err := DecodeXML(&buf)
	if err != nil {
		t.Fatalf("DecodeXML: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i] != e {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], e)
		}
	}
}

// TestBinaryToXMLRoundTrip mirrors the cross-format pivot a localization
// pipeline actually runs: decode a binary table, render it as the XML
// pivot, and parse that back to the same entries.
func TestBinaryToXMLRoundTrip(t *testing.T) {
	entries := sampleEntries()

	var binBuf bytes.Buffer
	if err := Encode(&binBuf, entries); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(&binBuf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var xmlBuf bytes.Buffer
	if err := EncodeXML(&xmlBuf, decoded); err != nil {
		t.Fatalf("EncodeXML: %v", err)
	}
	final, err := DecodeXML(&xmlBuf)
	if err != nil {
		t.Fatalf("DecodeXML: %v", err)
	}
	for i, e := range entries {
		if final[i] != e {
			t.Fatalf("entry %d = %+v, want %+v", i, final[i], e)
		}
	}
}
