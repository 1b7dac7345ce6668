package file

import (
	"fmt"
	"time"

	"github.com/abduss/filecrypt/internal/category"
	"github.com/google/uuid"
)

// StoredFile is the catalog record of an encrypted upload.
type StoredFile struct {
	ID              uuid.UUID         `json:"id"`
	OriginalName    string            `json:"original_name"`
	RealExtension   string            `json:"real_extension"`
	StoredExtension string            `json:"stored_extension"`
	Category        category.Category `json:"category"`
	SizeBytes       int64             `json:"size_bytes"`
	MimeType        string            `json:"mime_type"`
	BlobKey         string            `json:"blob_key"`
	Nonce           []byte            `json:"nonce"`
	AuthTag         []byte            `json:"auth_tag"`
	UploadedAt      time.Time         `json:"uploaded_at"`
}

// NewFile carries an upload into Store.Create.
type NewFile struct {
	Name      string
	Extension string
	MimeHint  string
	Data      []byte
}

// SizeFormatted renders SizeBytes for display.
func (f StoredFile) SizeFormatted() string {
	return FormatSize(f.SizeBytes)
}

// DownloadName is the attachment filename: name.ext, or name when there is no extension.
func (f StoredFile) DownloadName() string {
	if f.RealExtension == "" {
		return f.OriginalName
	}
	return f.OriginalName + "." + f.RealExtension
}

// FormatSize renders a byte count in 1024 steps with two decimals.
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f TB", size)
}

func blobKey(id uuid.UUID, storedExt string) string {
	name := id.String()
	if storedExt != "" {
		name += "." + storedExt
	}
	return name[0:2] + "/" + name
}
