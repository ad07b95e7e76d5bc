// Package codec converts binary image assets to and from portable data-URL
// tokens so they can travel inside JSON documents.
package codec

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"wardrobeapi/models"
)

// DefaultMimeType is assumed when a token carries no MIME marker.
const DefaultMimeType = "image/png"

var mimeMarker = regexp.MustCompile(`^data:(.*?)(;|,)`)

// CodecError reports a token whose body could not be decoded.
type CodecError struct {
	Token string
	Err   error
}

func (e *CodecError) Error() string {
	preview := e.Token
	if len(preview) > 32 {
		preview = preview[:32] + "..."
	}
	return fmt.Sprintf("codec: cannot decode token %q: %v", preview, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// Encode renders b as "data:<mime>;base64,<payload>". The MIME type is
// sniffed from the content when b does not declare one. An empty blob
// encodes to the empty string.
func Encode(b models.Blob) string {
	if b.IsEmpty() {
		return ""
	}
	mime := b.MimeType
	if mime == "" {
		mime = DetectMimeType(b.Data)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}

// Decode parses a token produced by Encode. Bare base64 without the data-URL
// header is accepted and gets DefaultMimeType.
func Decode(token string) (models.Blob, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Blob{}, nil
	}

	mime := DefaultMimeType
	payload := token
	if strings.HasPrefix(token, "data:") {
		comma := strings.IndexByte(token, ',')
		if comma < 0 {
			return models.Blob{}, &CodecError{Token: token, Err: fmt.Errorf("missing payload separator")}
		}
		header := token[:comma+1]
		payload = token[comma+1:]
		if m := mimeMarker.FindStringSubmatch(header); len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			mime = strings.TrimSpace(m[1])
		}
		if !strings.Contains(header, ";base64") {
			return models.Blob{}, &CodecError{Token: token, Err: fmt.Errorf("only base64 data URLs are supported")}
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return models.Blob{}, &CodecError{Token: token, Err: err}
	}
	return models.Blob{MimeType: mime, Data: data}, nil
}

// DetectMimeType sniffs content and returns the bare media type.
func DetectMimeType(data []byte) string {
	mime := mimetype.Detect(data).String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

// IsImage reports whether content sniffs as an image.
func IsImage(data []byte) bool {
	return strings.HasPrefix(DetectMimeType(data), "image/")
}
