// Package lsx implements the LSX sibling text form of an LSF document:
// the same typed tree, rendered as XML. doctree is the only pivot;
// lsx never talks to lsj or lsf directly.
//
// Decoding walks xml.Decoder tokens by hand, token-loop style, rather
// than a single xml.Unmarshal into a fixed Go struct: LSX's element
// shape is a generic, deeply recursive node/attribute tree that a
// static struct cannot express.
package lsx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/doctree"
)

func findAttrib(s xml.StartElement, name string) (xml.Attr, bool) {
	for _, a := range s.Attr {
		if a.Name.Local == name {
			return a, true
		}
	}
	return xml.Attr{}, false
}

// Decode parses an LSX document from r.
func Decode(r io.Reader) (*doctree.Document, error) {
	dec := xml.NewDecoder(r)
	doc := doctree.NewDocument(0, 0, 0, 0)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &apperr.InvalidFormat{Context: "lsx document", Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "save" {
			return nil, &apperr.InvalidFormat{Context: fmt.Sprintf("lsx root element %q, want \"save\"", start.Name.Local)}
		}
		if err := decSave(dec, doc); err != nil {
			return nil, err
		}
		break
	}
	return doc, nil
}

func decSave(dec *xml.Decoder, doc *doctree.Document) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &apperr.InvalidFormat{Context: "lsx save", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "version":
				decVersion(t, doc)
			case "region":
				region, err := decRegion(dec, t)
				if err != nil {
					return err
				}
				doc.Regions = append(doc.Regions, region)
			}
		case xml.EndElement:
			if t.Name.Local == "save" {
				return nil
			}
		}
	}
}

func decVersion(start xml.StartElement, doc *doctree.Document) {
	if a, ok := findAttrib(start, "major"); ok {
		doc.Major = parseUint32(a.Value)
	}
	if a, ok := findAttrib(start, "minor"); ok {
		doc.Minor = parseUint32(a.Value)
	}
	if a, ok := findAttrib(start, "revision"); ok {
		doc.Revision = parseUint32(a.Value)
	}
	if a, ok := findAttrib(start, "build"); ok {
		doc.Build = parseUint32(a.Value)
	}
}

func decRegion(dec *xml.Decoder, start xml.StartElement) (*doctree.Region, error) {
	idAttr, _ := findAttrib(start, "id")
	region := &doctree.Region{ID: idAttr.Value}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return region, nil
		}
		if err != nil {
			return nil, &apperr.InvalidFormat{Context: "lsx region", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "node" {
				n, err := decNode(dec, t)
				if err != nil {
					return nil, err
				}
				region.Root = n
			}
		case xml.EndElement:
			if t.Name.Local == "region" {
				return region, nil
			}
		}
	}
}

func decNode(dec *xml.Decoder, start xml.StartElement) (*doctree.Node, error) {
	idAttr, _ := findAttrib(start, "id")
	n := doctree.NewNode(idAttr.Value)
	if keyAttr, ok := findAttrib(start, "key"); ok {
		n.Key = keyAttr.Value
		n.HasKey = true
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return nil, &apperr.InvalidFormat{Context: "lsx node", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "attribute":
				a, err := decAttribute(t)
				if err != nil {
					return nil, err
				}
				n.Attributes = append(n.Attributes, a)
			case "children":
				if err := decChildren(dec, n); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "node" {
				return n, nil
			}
		}
	}
}

func decChildren(dec *xml.Decoder, parent *doctree.Node) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &apperr.InvalidFormat{Context: "lsx children", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "node" {
				child, err := decNode(dec, t)
				if err != nil {
					return err
				}
				parent.AddChild(child)
			}
		case xml.EndElement:
			if t.Name.Local == "children" {
				return nil
			}
		}
	}
}

func decAttribute(start xml.StartElement) (*doctree.Attribute, error) {
	idAttr, _ := findAttrib(start, "id")
	typeAttr, _ := findAttrib(start, "type")
	valueAttr, hasValue := findAttrib(start, "value")
	handleAttr, hasHandle := findAttrib(start, "handle")
	versionAttr, hasVersion := findAttrib(start, "version")

	t, ok := doctree.TypeByName(typeAttr.Value)
	if !ok {
		// Numeric type-id fallback: some LSX producers emit the raw
		// wire type-id instead of the tag name.
		if n, err := strconv.ParseUint(typeAttr.Value, 10, 32); err == nil {
			t = doctree.ValueType(n)
		}
	}

	v, err := parseValueText(t, valueAttr.Value, hasValue, handleAttr.Value, hasHandle, versionAttr.Value, hasVersion)
	if err != nil {
		return nil, err
	}
	return &doctree.Attribute{ID: idAttr.Value, Value: v}, nil
}

func parseUint32(s string) uint32 {
	n, _ := strconv.ParseUint(s, 10, 32)
	return uint32(n)
}

// Encode renders doc as LSX, mirroring decode's shape exactly so that
// Encode(Decode(x)) round-trips per §8.1 (attribute order is always
// preserved by this codec; only LSJ is documented lossy there).
func Encode(w io.Writer, doc *doctree.Document) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<save>\n")
	fmt.Fprintf(&b, "\t<version major=\"%d\" minor=\"%d\" revision=\"%d\" build=\"%d\"/>\n", doc.Major, doc.Minor, doc.Revision, doc.Build)
	for _, r := range doc.Regions {
		fmt.Fprintf(&b, "\t<region id=%q>\n", r.ID)
		encNode(&b, r.Root, 2)
		b.WriteString("\t</region>\n")
	}
	b.WriteString("</save>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func encNode(b *strings.Builder, n *doctree.Node, depth int) {
	ind := strings.Repeat("\t", depth)
	if n.HasKey {
		fmt.Fprintf(b, "%s<node id=%q key=%q>\n", ind, n.ID, n.Key)
	} else {
		fmt.Fprintf(b, "%s<node id=%q>\n", ind, n.ID)
	}
	for _, a := range n.Attributes {
		encAttribute(b, a, depth+1)
	}
	if len(n.Children) > 0 {
		fmt.Fprintf(b, "%s\t<children>\n", ind)
		for _, c := range n.Children {
			encNode(b, c, depth+2)
		}
		fmt.Fprintf(b, "%s\t</children>\n", ind)
	}
	fmt.Fprintf(b, "%s</node>\n", ind)
}

func encAttribute(b *strings.Builder, a *doctree.Attribute, depth int) {
	ind := strings.Repeat("\t", depth)
	typeName := a.Value.Type.Name()
	switch a.Value.Type {
	case doctree.TypeTranslatedString, doctree.TypeTranslatedFSString:
		if a.Value.Translated.HasValue {
			fmt.Fprintf(b, "%s<attribute id=%q type=%q handle=%q version=\"%d\" value=%q/>\n",
				ind, a.ID, typeName, a.Value.Translated.Handle, a.Value.Translated.Version, a.Value.Translated.Value)
		} else {
			fmt.Fprintf(b, "%s<attribute id=%q type=%q handle=%q/>\n", ind, a.ID, typeName, a.Value.Translated.Handle)
		}
	default:
		fmt.Fprintf(b, "%s<attribute id=%q type=%q value=%q/>\n", ind, a.ID, typeName, renderValueText(a.Value))
	}
}
