package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abduss/filecrypt/internal/category"
	"github.com/abduss/filecrypt/internal/extcodec"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type metadataStore interface {
	Create(ctx context.Context, f StoredFile) (StoredFile, error)
	List(ctx context.Context, filter category.Category) ([]StoredFile, error)
	Get(ctx context.Context, id uuid.UUID) (StoredFile, error)
	Delete(ctx context.Context, id uuid.UUID) (StoredFile, error)
}

type blobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type cipherEngine interface {
	Encrypt(plaintext []byte) (ciphertext, nonce, tag []byte, err error)
	Decrypt(ciphertext, nonce, tag []byte) ([]byte, error)
}

// Store persists encrypted blobs together with their metadata.
type Store struct {
	repo   metadataStore
	blobs  blobStore
	engine cipherEngine
	codec  *extcodec.Codec
	locks  *lockSet
	log    *zap.Logger
	now    func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for cleanup warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the upload timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore constructs a file store.
func NewStore(repo metadataStore, blobs blobStore, engine cipherEngine, codec *extcodec.Codec, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		blobs:  blobs,
		engine: engine,
		codec:  codec,
		locks:  newLockSet(),
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create classifies, encrypts and persists a new file.
// The blob is written first; if the metadata commit fails it is removed again.
func (s *Store) Create(ctx context.Context, in NewFile) (StoredFile, error) {
	storedExt, err := s.codec.Encode(in.Extension)
	if err != nil {
		return StoredFile{}, err
	}
	realExt, err := s.codec.Decode(storedExt)
	if err != nil {
		return StoredFile{}, err
	}

	ciphertext, nonce, tag, err := s.engine.Encrypt(in.Data)
	if err != nil {
		return StoredFile{}, fmt.Errorf("encrypt upload: %w", err)
	}

	id := uuid.New()
	f := StoredFile{
		ID:              id,
		OriginalName:    in.Name,
		RealExtension:   realExt,
		StoredExtension: storedExt,
		Category:        category.Classify(realExt, in.MimeHint),
		SizeBytes:       int64(len(in.Data)),
		MimeType:        mimeTypeFor(realExt, in.MimeHint),
		BlobKey:         blobKey(id, storedExt),
		Nonce:           nonce,
		AuthTag:         tag,
		UploadedAt:      s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.blobs.Put(ctx, f.BlobKey, ciphertext); err != nil {
		return StoredFile{}, storageErr("write blob", id, err)
	}

	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		s.removeBlob(ctx, f)
		return StoredFile{}, storageErr("write metadata", id, err)
	}
	return stored, nil
}

// List returns metadata ordered by upload time. An empty filter returns everything.
func (s *Store) List(ctx context.Context, filter category.Category) ([]StoredFile, error) {
	files, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storageErr("list metadata", uuid.Nil, err)
	}
	return files, nil
}

// Get returns the metadata of one file.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (StoredFile, error) {
	unlock := s.locks.RLock(id)
	defer unlock()
	return s.get(ctx, id)
}

// Plaintext loads and decrypts a file under its read lock.
func (s *Store) Plaintext(ctx context.Context, id uuid.UUID) (StoredFile, []byte, error) {
	unlock := s.locks.RLock(id)
	defer unlock()

	f, err := s.get(ctx, id)
	if err != nil {
		return StoredFile{}, nil, err
	}

	ciphertext, err := s.blobs.Get(ctx, f.BlobKey)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return StoredFile{}, nil, storageErr("read blob", id, errors.Join(ErrInconsistent, err))
		}
		return StoredFile{}, nil, storageErr("read blob", id, err)
	}

	plaintext, err := s.engine.Decrypt(ciphertext, f.Nonce, f.AuthTag)
	if err != nil {
		return StoredFile{}, nil, fmt.Errorf("decrypt %s: %w", id, err)
	}
	return f, plaintext, nil
}

// Delete removes the metadata record and then the blob.
// A blob that cannot be removed afterwards is reported as ErrInconsistent.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	f, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return err
		}
		return storageErr("delete metadata", id, err)
	}

	if err := s.blobs.Delete(context.WithoutCancel(ctx), f.BlobKey); err != nil {
		return storageErr("delete blob", id, errors.Join(ErrInconsistent, err))
	}
	return nil
}

func (s *Store) get(ctx context.Context, id uuid.UUID) (StoredFile, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return StoredFile{}, err
		}
		return StoredFile{}, storageErr("read metadata", id, err)
	}
	return f, nil
}

func (s *Store) removeBlob(ctx context.Context, f StoredFile) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), f.BlobKey); err != nil {
		s.log.Warn("rollback blob",
			zap.String("file_id", f.ID.String()),
			zap.String("blob_key", f.BlobKey),
			zap.Error(err),
		)
	}
}

func mimeTypeFor(realExt, hint string) string {
	if mt := category.MIMEType(realExt); mt != "" {
		return mt
	}
	if hint != "" {
		return hint
	}
	return "application/octet-stream"
}
