package storage

import (
	"context"
	"fmt"

	"github.com/abduss/filecrypt/internal/category"
	"github.com/abduss/filecrypt/internal/config"
	"github.com/abduss/filecrypt/internal/file"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MetadataRepository is a file catalog backend.
type MetadataRepository interface {
	Create(ctx context.Context, f file.StoredFile) (file.StoredFile, error)
	List(ctx context.Context, filter category.Category) ([]file.StoredFile, error)
	Get(ctx context.Context, id uuid.UUID) (file.StoredFile, error)
	Delete(ctx context.Context, id uuid.UUID) (file.StoredFile, error)
	Ping(ctx context.Context) error
}

// BlobStore is a ciphertext backend.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Backends holds the storage selected by configuration.
type Backends struct {
	Metadata MetadataRepository
	Blobs    BlobStore

	closers []func()
}

// Open connects the metadata and blob backends named in cfg.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Backends, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Backends{}

	switch cfg.Storage.MetadataBackend {
	case "postgres":
		repo, closeFn, err := openPostgresMetadata(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		b.Metadata = repo
		b.closers = append(b.closers, closeFn)
	case "badger":
		db, err := OpenBadger(cfg.Storage.BadgerDir, log.Named("badger"))
		if err != nil {
			return nil, err
		}
		b.Metadata = file.NewBadgerRepository(db)
		b.closers = append(b.closers, func() {
			if err := db.Close(); err != nil {
				log.Warn("close badger", zap.Error(err))
			}
		})
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", cfg.Storage.MetadataBackend)
	}

	switch cfg.Storage.BlobBackend {
	case "minio":
		blobs, err := openMinIOBlobs(ctx, cfg.MinIO)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Blobs = blobs
	case "local":
		blobs, err := file.NewLocalBlobStore(cfg.Storage.DataDir)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Blobs = blobs
	default:
		b.Close()
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Storage.BlobBackend)
	}

	log.Info("storage ready",
		zap.String("metadata", cfg.Storage.MetadataBackend),
		zap.String("blobs", cfg.Storage.BlobBackend),
	)
	return b, nil
}

// Close releases backend connections in reverse order of opening.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
