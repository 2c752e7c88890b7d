package datauri

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidFormat is returned when a string is not a base64 data URI.
var ErrInvalidFormat = errors.New("invalid data uri format")

// maxHeaderLen bounds the "data:...;base64" prefix so a comma-less payload
// is rejected without scanning a large string twice.
const maxHeaderLen = 255

var headerPattern = regexp.MustCompile(`^data:([A-Za-z0-9][\w.+-]*)/([A-Za-z0-9][\w.+-]*);base64$`)

// DataURI is a parsed data:<media-type>/<subtype>;base64,<payload> string.
// Payload aliases the input string, nothing is copied or decoded.
type DataURI struct {
	MediaType string
	Subtype   string
	Payload   string
}

// Parse splits s into its declared MIME type and base64 payload.
func Parse(s string) (DataURI, error) {
	idx := strings.IndexByte(s, ',')
	if idx < 0 || idx > maxHeaderLen {
		return DataURI{}, ErrInvalidFormat
	}

	m := headerPattern.FindStringSubmatch(s[:idx])
	if m == nil {
		return DataURI{}, ErrInvalidFormat
	}

	return DataURI{
		MediaType: strings.ToLower(m[1]),
		Subtype:   strings.ToLower(m[2]),
		Payload:   s[idx+1:],
	}, nil
}

// MimeType returns the declared "type/subtype".
func (d DataURI) MimeType() string {
	return d.MediaType + "/" + d.Subtype
}

// EstimatedSize is floor(len(payload) * 3 / 4). It never under-estimates the
// decoded size, padding and line breaks only make the real size smaller.
func (d DataURI) EstimatedSize() int64 {
	return EstimateDecodedSize(len(d.Payload))
}

// EstimateDecodedSize is the upper bound on the bytes decoded from
// payloadLen characters of base64 text.
func EstimateDecodedSize(payloadLen int) int64 {
	return int64(payloadLen) * 3 / 4
}

// Encode builds a data URI for data declared as mimeType.
func Encode(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}
