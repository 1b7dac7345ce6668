package file

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrFileNotFound signals that the file could not be located.
	ErrFileNotFound = errors.New("file not found")
	// ErrBlobNotFound signals a missing ciphertext blob.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrInconsistent marks a metadata record and blob that are out of sync.
	ErrInconsistent = errors.New("metadata and blob out of sync")
	// ErrDuplicateID is returned when a record with the same id already exists.
	ErrDuplicateID = errors.New("duplicate file id")
)

// StorageError reports an I/O failure in the metadata repository or blob store.
type StorageError struct {
	Op  string
	ID  uuid.UUID
	Err error
}

func (e *StorageError) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, id uuid.UUID, err error) error {
	return &StorageError{Op: op, ID: id, Err: err}
}
