package category

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the coarse content class used for filtering and icons.
type Category string

const (
	Audio     Category = "audio"
	Image     Category = "image"
	JSON      Category = "json"
	Encrypted Category = "encrypted"
	Other     Category = "other"
)

// ErrUnknownCategory is returned by Parse for names outside the enumeration.
var ErrUnknownCategory = errors.New("unknown category")

var all = []Category{Audio, Image, JSON, Encrypted, Other}

// All returns every category in display order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case Audio, Image, JSON, Encrypted, Other:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// Parse converts a user-supplied name into a Category.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// extensions already carrying ciphertext: the generic marker plus every
// obfuscated extension of the codec table.
var encryptedExtensions = map[string]struct{}{
	"crypt": {}, "ad3": {}, "vd4": {}, "ph": {}, "sz": {},
	"ssz": {}, "jsn": {}, "sc": {}, "sty": {}, "hyp": {},
}

var byExtension = map[string]Category{
	"mp3": Audio, "wav": Audio, "aac": Audio, "flac": Audio, "ogg": Audio, "m4a": Audio,
	"png": Image, "jpg": Image, "jpeg": Image, "gif": Image, "webp": Image, "bmp": Image, "svg": Image,
	"json": JSON,
	"txt": Other, "pdf": Other, "js": Other, "css": Other, "html": Other, "xml": Other, "csv": Other, "md": Other,
}

// Classify derives the category of a file from its real extension, using
// the MIME hint only when the extension is not recognized. It never fails.
func Classify(realExt, mimeHint string) Category {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(realExt), "."))

	if _, ok := encryptedExtensions[ext]; ok {
		return Encrypted
	}
	if c, ok := byExtension[ext]; ok {
		return c
	}

	mimeHint = strings.ToLower(strings.TrimSpace(mimeHint))
	switch {
	case strings.HasPrefix(mimeHint, "audio/"):
		return Audio
	case strings.HasPrefix(mimeHint, "image/"):
		return Image
	case strings.Contains(mimeHint, "json"):
		return JSON
	}
	return Other
}
