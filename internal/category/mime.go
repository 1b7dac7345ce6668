package category

import "strings"

var mimeByExtension = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"aac":  "audio/aac",
	"flac": "audio/flac",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"mp4":  "video/mp4",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
	"json": "application/json",
	"txt":  "text/plain",
	"md":   "text/markdown",
	"csv":  "text/csv",
	"xml":  "application/xml",
	"html": "text/html",
	"css":  "text/css",
	"js":   "text/javascript",
	"pdf":  "application/pdf",
}

// MIMEType returns the MIME type for a real extension, or "" if unknown.
func MIMEType(ext string) string {
	return mimeByExtension[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// DefaultMIMEType is the fallback used when rendering a category inline.
func DefaultMIMEType(c Category) string {
	switch c {
	case Audio:
		return "audio/mpeg"
	case Image:
		return "image/png"
	case JSON:
		return "application/json"
	}
	return "application/octet-stream"
}
