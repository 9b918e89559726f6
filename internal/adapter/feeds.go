package adapter

import (
	"encoding/xml"
	"io"
	"strings"
)

// decodeFeed unmarshals a provider XML feed leniently: HTML entities are
// accepted, mismatched tags are tolerated and the root element name is not
// checked.
func decodeFeed(body string, v any) error {
	dec := xml.NewDecoder(strings.NewReader(body))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	// Feeds declare all sorts of encodings; the body has already been read as text.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	return dec.Decode(v)
}

// feedText is element text with surrounding whitespace trimmed and any
// remaining entities decoded.
type feedText string

func (t feedText) String() string {
	return DecodeEntities(strings.TrimSpace(string(t)))
}
