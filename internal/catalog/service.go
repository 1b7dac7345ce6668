package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/abduss/filecrypt/internal/category"
	"github.com/abduss/filecrypt/internal/config"
	"github.com/abduss/filecrypt/internal/cryptox"
	"github.com/abduss/filecrypt/internal/extcodec"
	"github.com/abduss/filecrypt/internal/file"
	"github.com/abduss/filecrypt/internal/metrics"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	defaultMaxFileSize = 50 * 1024 * 1024 // 50MB

	categoryAll = "all"
	orderAsc    = "asc"
	orderDesc   = "desc"
)

type fileStore interface {
	Create(ctx context.Context, in file.NewFile) (file.StoredFile, error)
	List(ctx context.Context, filter category.Category) ([]file.StoredFile, error)
	Plaintext(ctx context.Context, id uuid.UUID) (file.StoredFile, []byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileInfo is the public view of a stored file.
type FileInfo struct {
	ID              string    `json:"id"`
	OriginalName    string    `json:"originalName"`
	StoredExtension string    `json:"extension"`
	RealExtension   string    `json:"realExtension"`
	Category        string    `json:"category"`
	Size            int64     `json:"size"`
	SizeFormatted   string    `json:"sizeFormatted"`
	MimeType        string    `json:"mimeType"`
	UploadedAt      time.Time `json:"uploadedAt"`
}

// Upload is a single file received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ListQuery selects and orders catalog entries.
type ListQuery struct {
	Category string `form:"category" binding:"omitempty,max=32"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// ListResult is the filtered catalog.
type ListResult struct {
	Files []FileInfo
	Total int
}

// Download is a decrypted file ready to be sent as an attachment.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service orchestrates the file store for the HTTP layer.
type Service struct {
	files       fileStore
	codec       *extcodec.Codec
	maxFileSize int64
	allowed     []string
	log         *zap.Logger
}

// NewService constructs a catalog service.
func NewService(files fileStore, codec *extcodec.Codec, cfg config.UploadConfig, log *zap.Logger) *Service {
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = defaultMaxFileSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		files:       files,
		codec:       codec,
		maxFileSize: maxSize,
		allowed:     cfg.AllowedExtensions,
		log:         log,
	}
}

// MaxFileSize is the largest accepted upload in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// Upload validates and stores a file, returning its public metadata.
func (s *Service) Upload(ctx context.Context, in Upload) (FileInfo, error) {
	name, ext := splitFilename(secureFilename(in.Filename))
	if name == "" {
		return FileInfo{}, ErrEmptyFilename
	}
	if int64(len(in.Data)) > s.maxFileSize {
		return FileInfo{}, ErrPayloadTooLarge
	}
	if len(s.allowed) > 0 && !lo.Contains(s.allowed, ext) {
		return FileInfo{}, fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}

	hint := strings.TrimSpace(in.ContentType)
	if hint == "" || strings.HasPrefix(hint, "application/octet-stream") {
		hint = mimetype.Detect(in.Data).String()
	}

	f, err := s.files.Create(ctx, file.NewFile{
		Name:      name,
		Extension: ext,
		MimeHint:  hint,
		Data:      in.Data,
	})
	if err != nil {
		return FileInfo{}, err
	}

	metrics.RecordUpload(string(f.Category), f.SizeBytes)
	s.log.Info("file stored",
		zap.String("file_id", f.ID.String()),
		zap.String("category", string(f.Category)),
		zap.Int64("size_bytes", f.SizeBytes),
	)
	return toFileInfo(f), nil
}

// List returns catalog entries for a category, or every entry for "all".
func (s *Service) List(ctx context.Context, q ListQuery) (ListResult, error) {
	var filter category.Category
	if raw := strings.TrimSpace(q.Category); raw != "" && !strings.EqualFold(raw, categoryAll) {
		c, err := category.Parse(raw)
		if err != nil {
			return ListResult{}, err
		}
		filter = c
	}

	order := strings.ToLower(strings.TrimSpace(q.Order))
	if order != "" && order != orderAsc && order != orderDesc {
		return ListResult{}, fmt.Errorf("%w: %q", ErrInvalidOrder, q.Order)
	}

	files, err := s.files.List(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}
	if order == orderDesc {
		slices.Reverse(files)
	}

	infos := lo.Map(files, func(f file.StoredFile, _ int) FileInfo {
		return toFileInfo(f)
	})
	return ListResult{Files: infos, Total: len(infos)}, nil
}

// Preview decrypts a file and shapes it for inline display.
func (s *Service) Preview(ctx context.Context, id uuid.UUID) (Preview, error) {
	f, plaintext, err := s.plaintext(ctx, id)
	if err != nil {
		return Preview{}, err
	}

	p, err := renderPreview(f, plaintext)
	if errors.Is(err, ErrMalformedContent) {
		s.log.Warn("preview degraded to text",
			zap.String("file_id", id.String()),
			zap.Error(err),
		)
	}
	metrics.RecordPreview(p.Type)
	return p, nil
}

// Download decrypts a file for an attachment response.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (Download, error) {
	f, plaintext, err := s.plaintext(ctx, id)
	if err != nil {
		return Download{}, err
	}

	realExt, err := s.codec.Decode(f.StoredExtension)
	if err != nil {
		return Download{}, err
	}
	f.RealExtension = realExt

	contentType := f.MimeType
	if contentType == "" {
		contentType = mimetype.Detect(plaintext).String()
	}
	return Download{Filename: f.DownloadName(), ContentType: contentType, Data: plaintext}, nil
}

// Delete removes a file from the store.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.files.Delete(ctx, id); err != nil {
		return err
	}
	metrics.RecordDelete()
	s.log.Info("file deleted", zap.String("file_id", id.String()))
	return nil
}

// ParseID validates an external file handle.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

func (s *Service) plaintext(ctx context.Context, id uuid.UUID) (file.StoredFile, []byte, error) {
	f, plaintext, err := s.files.Plaintext(ctx, id)
	if errors.Is(err, cryptox.ErrAuthentication) {
		metrics.RecordDecryptFailure()
	}
	return f, plaintext, err
}

func toFileInfo(f file.StoredFile) FileInfo {
	return FileInfo{
		ID:              f.ID.String(),
		OriginalName:    f.OriginalName,
		StoredExtension: f.StoredExtension,
		RealExtension:   f.RealExtension,
		Category:        string(f.Category),
		Size:            f.SizeBytes,
		SizeFormatted:   f.SizeFormatted(),
		MimeType:        f.MimeType,
		UploadedAt:      f.UploadedAt,
	}
}
