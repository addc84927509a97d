// Package hl7xml strips the first-level XML wrapper that the Mirth
// engine wraps around free-text HL7 fields such as OBX-5
// (observation_result) before they land in the warehouse.
//
// A value like
//
//	<OBX.5><OBX.5.1>x</OBX.5.1><OBX.5.2>y</OBX.5.2></OBX.5>
//
// becomes "x|y" once stripped.
package hl7xml

import (
	"encoding/xml"
	"strings"

	"golang.org/x/net/html"
)

// Delimiter joins the text content of each direct child element.
const Delimiter = "|"

// Strip parses s as an XML document, takes the text content of each
// direct child of the root element, and joins the non-empty values
// with Delimiter. HTML entities in the source (e.g. "&gt;") are
// decoded. Empty input is passed through unchanged.
func Strip(s string) string {
	if len(s) == 0 {
		return s
	}

	decoder := xml.NewDecoder(strings.NewReader(s))

	var (
		parts       []string
		depth       int
		text        strings.Builder
		sawChildren bool
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				text.Reset()
				sawChildren = true
			}
		case xml.CharData:
			if depth == 2 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 2 {
				if v := html.UnescapeString(text.String()); v != "" {
					parts = append(parts, v)
				}
			}
			depth--
		}
	}

	if !sawChildren {
		return s
	}

	return strings.Join(parts, Delimiter)
}
