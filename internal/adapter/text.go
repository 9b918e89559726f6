package adapter

import (
	"encoding/json"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	scriptBlockRegex = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	styleBlockRegex  = regexp.MustCompile(`(?is)<style\b.*?</style\s*>`)
	htmlTagRegex     = regexp.MustCompile(`<[^>]+>`)
)

// StripHTML converts markup to plain text: script and style blocks are
// removed first, then every remaining tag, then whitespace is collapsed.
func StripHTML(content string) string {
	if content == "" {
		return ""
	}
	plain := scriptBlockRegex.ReplaceAllString(content, " ")
	plain = styleBlockRegex.ReplaceAllString(plain, " ")
	plain = htmlTagRegex.ReplaceAllString(plain, " ")
	return strings.Join(strings.Fields(plain), " ")
}

// PlainText handles entity-encoded HTML (Greenhouse double-encodes its
// content): entities are decoded, markup stripped, and any entities that were
// inside the markup decoded once more.
func PlainText(content string) string {
	return DecodeEntities(StripHTML(DecodeEntities(content)))
}

// DecodeEntities decodes HTML/XML character references.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// boardHosts maps host fragments to their board classification, checked in order.
var boardHosts = []struct {
	fragment string
	board    string
}{
	{"linkedin.com", "linkedin"},
	{"indeed.", "indeed"},
	{"xing.com", "xing"},
	{"naukri.com", "naukri"},
	{"stepstone.", "stepstone"},
	{"smartrecruiters.com", "smartrecruiters"},
	{"greenhouse.io", "greenhouse"},
	{"lever.co", "lever"},
	{"teamtailor.com", "teamtailor"},
	{"recruitee.com", "recruitee"},
	{"ashbyhq.com", "ashby"},
}

// ClassifyBoard names the site a destination URL points at: a known job
// board, else the raw hostname, else "web".
func ClassifyBoard(rawURL string) string {
	host := hostOf(rawURL)
	if host == "" {
		return "web"
	}
	for _, b := range boardHosts {
		if strings.Contains(host, b.fragment) {
			return b.board
		}
	}
	return host
}

// WithBoard refines a source tag with the classification of url.
func WithBoard(base, rawURL string) string {
	return base + ":" + ClassifyBoard(rawURL)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// text is a lenient JSON string. Providers are inconsistent about types, so
// numbers and booleans are accepted as their literal text and anything else
// (null, objects, arrays) becomes empty instead of failing the whole decode.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*t = ""
		return nil
	}
	switch x := v.(type) {
	case string:
		*t = text(x)
	case float64:
		*t = text(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*t = text(strconv.FormatBool(x))
	default:
		*t = ""
	}
	return nil
}

func (t text) String() string { return strings.TrimSpace(string(t)) }

// flag is a lenient JSON boolean.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case bool:
		*f = flag(x)
	case string:
		b, _ := strconv.ParseBool(x)
		*f = flag(b)
	}
	return nil
}

// list decodes either a JSON array or an object wrapping the array under key.
// Anything else yields an empty list.
func list[T any](raw json.RawMessage, key string) []T {
	var direct []T
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil
	}
	var nested []T
	if err := json.Unmarshal(wrapped[key], &nested); err != nil {
		return nil
	}
	return nested
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// joinNonEmpty joins the non-empty values with sep.
func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

// unixMillisToISO renders a Unix millisecond timestamp, or "" when absent.
func unixMillisToISO(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
