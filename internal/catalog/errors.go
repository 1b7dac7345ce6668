package catalog

import "errors"

var (
	// ErrMissingFile is returned when the multipart field "file" is absent.
	ErrMissingFile = errors.New("no file uploaded")
	// ErrEmptyFilename is returned when the upload has no usable name.
	ErrEmptyFilename = errors.New("empty filename")
	// ErrPayloadTooLarge is returned when the upload exceeds the size limit.
	ErrPayloadTooLarge = errors.New("file too large")
	// ErrExtensionNotAllowed is returned for extensions outside the allow-list.
	ErrExtensionNotAllowed = errors.New("file type not allowed")
	// ErrInvalidID is returned for identifiers that are not UUIDs.
	ErrInvalidID = errors.New("invalid file id")
	// ErrInvalidOrder is returned for an unknown list order.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrMalformedContent marks a preview whose content did not parse as its category.
	ErrMalformedContent = errors.New("malformed content")
)
