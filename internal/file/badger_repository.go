package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/abduss/filecrypt/internal/category"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var filePrefix = []byte("files:")

// BadgerRepository stores file metadata in an embedded Badger database.
type BadgerRepository struct {
	db *badger.DB
}

// NewBadgerRepository wraps an opened Badger database.
func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func fileKey(id uuid.UUID) []byte {
	return append(append([]byte(nil), filePrefix...), id.String()...)
}

// Create inserts metadata for a new file.
func (r *BadgerRepository) Create(ctx context.Context, f StoredFile) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}
	data, err := json.Marshal(f)
	if err != nil {
		return StoredFile{}, fmt.Errorf("encode file metadata: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		key := fileKey(f.ID)
		if _, err := txn.Get(key); err == nil {
			return ErrDuplicateID
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateID) {
			return StoredFile{}, err
		}
		return StoredFile{}, fmt.Errorf("create file metadata: %w", err)
	}
	return f, nil
}

// List returns files ordered by upload time, optionally filtered by category.
func (r *BadgerRepository) List(ctx context.Context, filter category.Category) ([]StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var files []StoredFile
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = filePrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(filePrefix); it.ValidForPrefix(filePrefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var f StoredFile
				if err := json.Unmarshal(v, &f); err != nil {
					return fmt.Errorf("decode file metadata: %w", err)
				}
				files = append(files, f)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	if filter != "" {
		files = lo.Filter(files, func(f StoredFile, _ int) bool {
			return f.Category == filter
		})
	}
	slices.SortStableFunc(files, func(a, b StoredFile) int {
		if c := a.UploadedAt.Compare(b.UploadedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return files, nil
}

// Get fetches metadata for a single file.
func (r *BadgerRepository) Get(ctx context.Context, id uuid.UUID) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}
	var f StoredFile
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		f, err = getFile(txn, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return StoredFile{}, err
		}
		return StoredFile{}, fmt.Errorf("get file metadata: %w", err)
	}
	return f, nil
}

// Delete removes metadata and returns the deleted record.
func (r *BadgerRepository) Delete(ctx context.Context, id uuid.UUID) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}
	var f StoredFile
	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		if f, err = getFile(txn, id); err != nil {
			return err
		}
		return txn.Delete(fileKey(id))
	})
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return StoredFile{}, err
		}
		return StoredFile{}, fmt.Errorf("delete file metadata: %w", err)
	}
	return f, nil
}

// Ping reports whether the database is still open.
func (r *BadgerRepository) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

func getFile(txn *badger.Txn, id uuid.UUID) (StoredFile, error) {
	item, err := txn.Get(fileKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return StoredFile{}, ErrFileNotFound
	}
	if err != nil {
		return StoredFile{}, err
	}

	var f StoredFile
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &f)
	})
	return f, err
}
