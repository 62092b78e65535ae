// Package loca implements the LOCA localization table codec: a flat
// keyed string table, plus an XML pivot mirroring the in-game
// contentList shape, using encoding/xml with struct-tag unmarshaling
// since every entry has the same flat shape.
package loca

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"io"

	"github.com/larian-tools/assetcore/apperr"
)

// Magic is the four-byte LOCA file signature.
var Magic = [4]byte{'L', 'O', 'C', 'A'}

// Entry is one localized string keyed by handle (§4.5).
type Entry struct {
	Key     string
	Version uint16
	Value   string
}

// maxKeyLen bounds the null-padded key field; LOCA has no versioning
// beyond the magic, so this constant is this codec's own choice
// rather than something the format declares.
const maxKeyLen = 64

// Decode parses a binary LOCA file from r.
func Decode(r io.Reader) ([]Entry, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "loca magic"}
	}
	if magic != Magic {
		return nil, &apperr.InvalidFormat{Context: "loca magic mismatch"}
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "loca entry count"}
	}

	entries := make([]Entry, count)
	for i := range entries {
		var keyBuf [maxKeyLen]byte
		if _, err := io.ReadFull(r, keyBuf[:]); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "loca entry key"}
		}
		nul := bytes.IndexByte(keyBuf[:], 0)
		if nul < 0 {
			nul = maxKeyLen
		}

		var version uint16
		if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "loca entry version"}
		}
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "loca entry length"}
		}
		value := make([]byte, length)
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "loca entry value"}
		}

		entries[i] = Entry{Key: string(keyBuf[:nul]), Version: version, Value: string(value)}
	}
	return entries, nil
}

// Encode serializes entries as a binary LOCA file.
func Encode(w io.Writer, entries []Entry) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		var keyBuf [maxKeyLen]byte
		copy(keyBuf[:], e.Key)
		if _, err := w.Write(keyBuf[:]); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, e.Version); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(e.Value))); err != nil {
			return err
		}
		if _, err := w.Write([]byte(e.Value)); err != nil {
			return err
		}
	}
	return nil
}

// xmlContentList mirrors the in-game contentList XML shape this
// codec pivots through (§4.5).
type xmlContentList struct {
	XMLName xml.Name       `xml:"contentList"`
	Content []xmlContentVal `xml:"content"`
}

type xmlContentVal struct {
	ContentUID string `xml:"contentuid,attr"`
	Version    uint16 `xml:"version,attr"`
	Text       string `xml:",chardata"`
}

// DecodeXML parses the XML pivot form of a LOCA table.
func DecodeXML(r io.Reader) ([]Entry, error) {
	var doc xmlContentList
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &apperr.InvalidFormat{Context: "loca xml", Err: err}
	}
	entries := make([]Entry, len(doc.Content))
	for i, c := range doc.Content {
		entries[i] = Entry{Key: c.ContentUID, Version: c.Version, Value: c.Text}
	}
	return entries, nil
}

// EncodeXML renders entries as the XML contentList pivot form.
func EncodeXML(w io.Writer, entries []Entry) error {
	doc := xmlContentList{}
	for _, e := range entries {
		doc.Content = append(doc.Content, xmlContentVal{ContentUID: e.Key, Version: e.Version, Text: e.Value})
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return enc.Encode(doc)
}
