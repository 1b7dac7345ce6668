package catalog

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abduss/filecrypt/internal/category"
	"github.com/abduss/filecrypt/internal/file"
	"github.com/gabriel-vasile/mimetype"
)

// Preview kinds returned to clients.
const (
	PreviewImage = "image"
	PreviewAudio = "audio"
	PreviewJSON  = "json"
	PreviewText  = "text"
)

// Preview is a decrypted file shaped for inline display.
type Preview struct {
	Type   string `json:"type"`
	Data   any    `json:"data"`
	Notice string `json:"notice,omitempty"`
}

// renderPreview picks the preview shape from the file category. A JSON file
// that does not parse is rendered as text and ErrMalformedContent is returned
// alongside the usable preview.
func renderPreview(f file.StoredFile, plaintext []byte) (Preview, error) {
	switch f.Category {
	case category.Image:
		return Preview{Type: PreviewImage, Data: dataURL(mediaType(f, plaintext, "image/"), plaintext)}, nil
	case category.Audio:
		return Preview{Type: PreviewAudio, Data: dataURL(mediaType(f, plaintext, "audio/"), plaintext)}, nil
	case category.JSON:
		var buf bytes.Buffer
		if err := json.Compact(&buf, plaintext); err != nil {
			p := textPreview(plaintext)
			p.Notice = "content is not valid JSON"
			return p, fmt.Errorf("%w: %v", ErrMalformedContent, err)
		}
		return Preview{Type: PreviewJSON, Data: json.RawMessage(buf.Bytes())}, nil
	default:
		return textPreview(plaintext), nil
	}
}

func textPreview(plaintext []byte) Preview {
	if utf8.Valid(plaintext) {
		return Preview{Type: PreviewText, Data: string(plaintext)}
	}
	return Preview{
		Type:   PreviewText,
		Data:   "",
		Notice: fmt.Sprintf("binary content, %d bytes (%s)", len(plaintext), file.FormatSize(int64(len(plaintext)))),
	}
}

// mediaType returns a MIME type within family, preferring the recorded type,
// then content sniffing, then the category default.
func mediaType(f file.StoredFile, plaintext []byte, family string) string {
	if strings.HasPrefix(f.MimeType, family) {
		return f.MimeType
	}
	if detected := mimetype.Detect(plaintext).String(); strings.HasPrefix(detected, family) {
		return detected
	}
	return category.DefaultMIMEType(f.Category)
}

func dataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
